package consul

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/abhishek622/movieticket/pkg/discovery"
	consul "github.com/hashicorp/consul/api"
)

// Registry defines a Consul-based service registry.
type Registry struct {
	client *consul.Client
}

// NewRegistry creates a new Consul-based service registry instance.
func NewRegistry(addr string) (*Registry, error) {
	config := consul.DefaultConfig()
	config.Address = addr
	client, err := consul.NewClient(config)
	if err != nil {
		return nil, err
	}
	return &Registry{client: client}, nil
}

// Register creates a service record in the registry with a 5 second TTL check.
func (r *Registry) Register(_ context.Context, instanceID string, serviceName string, hostPort string) error {
	host, portStr, err := net.SplitHostPort(hostPort)
	if err != nil {
		return fmt.Errorf("hostPort must be in a form of <host>:<port>, got %q: %w", hostPort, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return err
	}
	return r.client.Agent().ServiceRegister(&consul.AgentServiceRegistration{
		Address: host,
		ID:      instanceID,
		Name:    serviceName,
		Port:    port,
		Check: &consul.AgentServiceCheck{
			CheckID:                        instanceID,
			TTL:                            "5s",
			DeregisterCriticalServiceAfter: "1m",
		},
	})
}

// Deregister removes a service record from the registry.
func (r *Registry) Deregister(_ context.Context, instanceID string, _ string) error {
	return r.client.Agent().ServiceDeregister(instanceID)
}

// ServiceAddresses returns the list of addresses of healthy instances of the given service.
func (r *Registry) ServiceAddresses(_ context.Context, serviceName string) ([]string, error) {
	entries, _, err := r.client.Health().Service(serviceName, "", true, nil)
	if err != nil {
		return nil, err
	} else if len(entries) == 0 {
		return nil, discovery.ErrNotFound
	}
	var res []string
	for _, e := range entries {
		res = append(res, net.JoinHostPort(e.Service.Address, strconv.Itoa(e.Service.Port)))
	}
	return res, nil
}

// ReportHealthyState passes the TTL check of the instance.
func (r *Registry) ReportHealthyState(instanceID string, _ string) error {
	if instanceID == "" {
		return errors.New("empty instance id")
	}
	return r.client.Agent().UpdateTTL(instanceID, "", consul.HealthPassing)
}
