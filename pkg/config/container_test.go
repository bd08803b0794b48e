package config

import "testing"

func TestWarehouseHost(t *testing.T) {
	tests := []struct {
		host          string
		containerized bool
		want          string
	}{
		{"localhost", false, "localhost"},
		{"127.0.0.1", false, "127.0.0.1"},
		{"localhost", true, "host.docker.internal"},
		{"127.0.0.1", true, "host.docker.internal"},
		{"::1", true, "host.docker.internal"},
		{"mirror.lostma.internal", true, "mirror.lostma.internal"},
		{"10.0.0.5", true, "10.0.0.5"},
	}

	for _, tt := range tests {
		if got := warehouseHost(tt.host, tt.containerized); got != tt.want {
			t.Errorf("warehouseHost(%q, %v) = %q, want %q", tt.host, tt.containerized, got, tt.want)
		}
	}
}

func TestWarehouseHost_RemoteHostUnchanged(t *testing.T) {
	// Holds whether or not the test itself runs in a container.
	if got := WarehouseHost("mirror.lostma.internal"); got != "mirror.lostma.internal" {
		t.Errorf("WarehouseHost() = %q, want the host unchanged", got)
	}
}
