// Package discovery resolves service instances by name.
package discovery

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Registry defines a service registry.
type Registry interface {
	// Register creates a service instance record in the registry.
	Register(ctx context.Context, instanceID string, serviceName string, hostPort string) error
	// Deregister removes a service instance record from the registry.
	Deregister(ctx context.Context, instanceID string, serviceName string) error
	// ServiceAddresses returns the list of addresses of active instances of the given service.
	ServiceAddresses(ctx context.Context, serviceName string) ([]string, error)
	// ReportHealthyState is a push mechanism for reporting healthy state to the registry.
	ReportHealthyState(instanceID string, serviceName string) error
}

// ErrNotFound is returned when no service addresses are found.
var ErrNotFound = errors.New("no service addresses found")

// GenerateInstanceID generates a pseudo-random service instance identifier,
// using a service name suffixed by dash and a random UUID.
func GenerateInstanceID(serviceName string) string {
	return serviceName + "-" + uuid.NewString()
}

// Instance is one registered endpoint of a service.
type Instance struct {
	ID       string
	Name     string
	HostPort string
}

// NewInstance creates an Instance with a generated id.
func NewInstance(serviceName, hostPort string) Instance {
	return Instance{ID: GenerateInstanceID(serviceName), Name: serviceName, HostPort: hostPort}
}

// Heartbeat reports every instance as healthy each interval until ctx is
// done. Failures are passed to onError and do not stop the loop.
func Heartbeat(ctx context.Context, registry Registry, interval time.Duration, onError func(Instance, error), instances ...Instance) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		for _, i := range instances {
			if err := registry.ReportHealthyState(i.ID, i.Name); err != nil && onError != nil {
				onError(i, err)
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
