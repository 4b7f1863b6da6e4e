package discovery

import (
	"fmt"
	"net"
	"strconv"

	"inventoryreservation/internal/platform/observability"

	"github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

type ConsulClient struct {
	client *api.Client
	logger observability.Logger
}

type ServiceConfig struct {
	Name    string
	ID      string
	Address string
	Port    int
	Tags    []string
}

func NewConsulClient(addr string, logger observability.Logger) (*ConsulClient, error) {
	config := api.DefaultConfig()
	config.Address = addr

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %w", err)
	}

	// Test connection
	if _, err := client.Agent().Self(); err != nil {
		return nil, fmt.Errorf("failed to connect to Consul: %w", err)
	}

	logger.Info("✅ Connected to Consul", zap.String("addr", addr))
	return &ConsulClient{client: client, logger: logger}, nil
}

// Register registers a service with Consul, health-checked through its /health route
func (c *ConsulClient) Register(cfg ServiceConfig) error {
	if err := c.client.Agent().ServiceRegister(NewRegistration(cfg)); err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}

	c.logger.Info("✅ Registered service",
		zap.String("name", cfg.Name),
		zap.String("id", cfg.ID),
		zap.String("address", cfg.Address),
		zap.Int("port", cfg.Port),
	)
	return nil
}

// Deregister removes a service from Consul
func (c *ConsulClient) Deregister(serviceID string) error {
	if err := c.client.Agent().ServiceDeregister(serviceID); err != nil {
		return fmt.Errorf("failed to deregister service: %w", err)
	}

	c.logger.Info("✅ Deregistered service", zap.String("id", serviceID))
	return nil
}

func NewRegistration(cfg ServiceConfig) *api.AgentServiceRegistration {
	return &api.AgentServiceRegistration{
		ID:      cfg.ID,
		Name:    cfg.Name,
		Port:    cfg.Port,
		Address: cfg.Address,
		Tags:    cfg.Tags,
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s/health", net.JoinHostPort(cfg.Address, strconv.Itoa(cfg.Port))),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "30s",
		},
	}
}

// ListenPort extracts the port from a listen address such as ":3003".
func ListenPort(listenAddr string) (int, error) {
	_, portStr, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return 0, fmt.Errorf("invalid listen address %q: %w", listenAddr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return 0, fmt.Errorf("invalid port in listen address %q", listenAddr)
	}
	return port, nil
}

// ServiceID identifies one instance by name, host and port.
func ServiceID(name, host string, port int) string {
	return fmt.Sprintf("%s-%s-%d", name, host, port)
}
