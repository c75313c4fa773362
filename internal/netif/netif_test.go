package netif

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		iface    Interface
		expected string
	}{
		{
			name:     "description preferred",
			iface:    Interface{Name: "eth0", Description: "Realtek PCIe GbE Family Controller"},
			expected: "Realtek PCIe GbE Family Controller",
		},
		{
			name:     "falls back to system name",
			iface:    Interface{Name: "eth0"},
			expected: "eth0",
		},
		{
			name:     "empty interface",
			iface:    Interface{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.iface.DisplayName())
		})
	}
}

func TestIsVirtual(t *testing.T) {
	tests := []struct {
		name     string
		iface    Interface
		expected bool
	}{
		{
			name:     "vmware adapter by description",
			iface:    Interface{Name: "eth1", Description: "VMware Virtual Ethernet Adapter"},
			expected: true,
		},
		{
			name:     "hyper-v adapter",
			iface:    Interface{Name: "eth2", Description: "Hyper-V Virtual Switch Extension Adapter"},
			expected: true,
		},
		{
			name:     "tun device by name",
			iface:    Interface{Name: "tun0"},
			expected: true,
		},
		{
			name:     "tap device by name",
			iface:    Interface{Name: "tap1"},
			expected: true,
		},
		{
			name:     "docker bridge",
			iface:    Interface{Name: "docker0"},
			expected: true,
		},
		{
			name:     "veth pair",
			iface:    Interface{Name: "veth4f21ab0"},
			expected: true,
		},
		{
			name:     "physical ethernet",
			iface:    Interface{Name: "eth0", Description: "Intel(R) Ethernet Connection I219-V"},
			expected: false,
		},
		{
			name:     "wireless",
			iface:    Interface{Name: "wlan0"},
			expected: false,
		},
		{
			name:     "loopback is not virtual by keyword",
			iface:    Interface{Name: "lo"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.iface.IsVirtual())
		})
	}
}
