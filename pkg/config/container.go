package config

import (
	"os"
	"sync"
)

// dockerHostGateway is the name Docker gives the host machine inside a container.
const dockerHostGateway = "host.docker.internal"

var (
	inContainerOnce sync.Once
	inContainer     bool
)

// InContainer reports whether the binary runs inside a Docker container, detected by
// the /.dockerenv marker. The result is cached.
func InContainer() bool {
	inContainerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		inContainer = err == nil
	})
	return inContainer
}

// WarehouseHost returns the host the PostgreSQL mirror is dialed at. Inside a container a
// loopback host means the mirror runs on the Docker host.
func WarehouseHost(host string) string {
	return warehouseHost(host, InContainer())
}

func warehouseHost(host string, containerized bool) string {
	if !containerized {
		return host
	}
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return dockerHostGateway
	}
	return host
}
