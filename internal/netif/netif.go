// Package netif provides network interface discovery and raw counter
// access for the bandwidth monitor.
package netif

import (
	"net"
	"strings"
)

// Interface describes one network interface as discovered at session
// start. The Index is the OS-assigned handle, stable for the lifetime of
// the process. Interfaces are immutable after discovery.
type Interface struct {
	// Index is the OS interface index the counter source keys reads by.
	Index int

	// Name is the system interface name (e.g. "eth0", "wlan0").
	Name string

	// Description is a user-friendly adapter description where the
	// platform provides one. Empty on most Unix systems.
	Description string

	// MAC is the hardware address as reported by the OS. Empty for
	// interfaces without one (loopback, tunnels).
	MAC string

	// Addrs lists the IP addresses assigned at discovery time.
	Addrs []net.IP

	// Up reports whether the interface was administratively up.
	Up bool

	// Loopback reports whether this is a loopback device.
	Loopback bool

	// SpeedBits is the nominal link speed in bits per second, or zero
	// when the platform does not report one.
	SpeedBits uint64
}

// virtualKeywords flag common virtual adapter naming across platforms.
var virtualKeywords = []string{
	"virtual", "vmware", "virtualbox", "hyper-v", "vpn", "tap", "tun",
	"bridge", "docker", "veth",
}

// DisplayName returns the adapter description when the platform provides
// one, falling back to the system name.
func (i Interface) DisplayName() string {
	if i.Description != "" {
		return i.Description
	}
	return i.Name
}

// IsVirtual reports whether the interface looks like a virtual adapter,
// based on well-known substrings in its description or name.
func (i Interface) IsVirtual() bool {
	probe := strings.ToLower(i.DisplayName())
	for _, keyword := range virtualKeywords {
		if strings.Contains(probe, keyword) {
			return true
		}
	}
	return false
}
