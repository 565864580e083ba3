package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/abhishek622/movieticket/pkg/discovery"
)

// ErrNotRegistered is returned when reporting state of an unknown instance.
var ErrNotRegistered = errors.New("service is not registered yet")

type serviceInstance struct {
	hostPort   string
	lastActive time.Time
}

// Registry defines an in-memory service registry.
type Registry struct {
	sync.RWMutex
	serviceAddrs map[string]map[string]*serviceInstance
	ttl          time.Duration
	now          func() time.Time
}

// NewRegistry creates a new in-memory service registry instance.
func NewRegistry() *Registry {
	return &Registry{
		serviceAddrs: map[string]map[string]*serviceInstance{},
		ttl:          5 * time.Second,
		now:          time.Now,
	}
}

// Register creates a service record in the registry.
func (r *Registry) Register(_ context.Context, instanceID string, serviceName string, hostPort string) error {
	r.Lock()
	defer r.Unlock()
	if _, ok := r.serviceAddrs[serviceName]; !ok {
		r.serviceAddrs[serviceName] = map[string]*serviceInstance{}
	}
	r.serviceAddrs[serviceName][instanceID] = &serviceInstance{hostPort: hostPort, lastActive: r.now()}
	return nil
}

// Deregister removes a service record from the registry.
func (r *Registry) Deregister(_ context.Context, instanceID string, serviceName string) error {
	r.Lock()
	defer r.Unlock()
	if _, ok := r.serviceAddrs[serviceName]; !ok {
		return nil
	}
	delete(r.serviceAddrs[serviceName], instanceID)
	return nil
}

// ReportHealthyState is a push mechanism for reporting healthy state to the registry.
func (r *Registry) ReportHealthyState(instanceID string, serviceName string) error {
	r.Lock()
	defer r.Unlock()
	instance, ok := r.serviceAddrs[serviceName][instanceID]
	if !ok {
		return ErrNotRegistered
	}
	instance.lastActive = r.now()
	return nil
}

// ServiceAddresses returns the list of addresses of instances that reported
// within the TTL.
func (r *Registry) ServiceAddresses(_ context.Context, serviceName string) ([]string, error) {
	r.RLock()
	defer r.RUnlock()
	var res []string
	for _, i := range r.serviceAddrs[serviceName] {
		if i.lastActive.Before(r.now().Add(-r.ttl)) {
			continue
		}
		res = append(res, i.hostPort)
	}
	if len(res) == 0 {
		return nil, discovery.ErrNotFound
	}
	return res, nil
}
