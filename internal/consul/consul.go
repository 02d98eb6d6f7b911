package consul

import (
	"fmt"

	consulapi "github.com/hashicorp/consul/api"
)

// GetServiceAddress asks Consul for a healthy instance of the named service
// and returns its address and port.
func GetServiceAddress(client *consulapi.Client, serviceName string) (string, int, error) {
	if client == nil {
		return "", 0, fmt.Errorf("consul client is nil")
	}

	services, _, err := client.Health().Service(serviceName, "", true, nil)
	if err != nil {
		return "", 0, fmt.Errorf("error querying consul for service %s: %w", serviceName, err)
	}
	if len(services) == 0 {
		return "", 0, fmt.Errorf("no healthy instances of service %s registered", serviceName)
	}

	entry := services[0]
	address := entry.Service.Address
	if address == "" {
		address = entry.Node.Address
	}
	return address, entry.Service.Port, nil
}
