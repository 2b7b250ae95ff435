package relay

import "strings"

// Relay is one directory entry (immutable value object).
// Absent attributes are zero values, never missing.
type Relay struct {
	id        string
	nickname  string
	os        string
	bandwidth int64
	ports     []int
}

// New creates a relay. Ports are copied and keep their published order.
func New(id, nickname, os string, bandwidth int64, ports []int) Relay {
	var p []int
	if len(ports) > 0 {
		p = make([]int, len(ports))
		copy(p, ports)
	}
	return Relay{
		id:        id,
		nickname:  nickname,
		os:        os,
		bandwidth: bandwidth,
		ports:     p,
	}
}

// ID returns the hex identity fingerprint.
func (r Relay) ID() string { return r.id }

// Nickname returns the relay nickname.
func (r Relay) Nickname() string { return r.nickname }

// OS returns the operating system string.
func (r Relay) OS() string { return r.os }

// Bandwidth returns the advertised bandwidth in bytes/sec.
func (r Relay) Bandwidth() int64 { return r.bandwidth }

// Ports returns a copy of the listed ports in published order.
func (r Relay) Ports() []int {
	if len(r.ports) == 0 {
		return nil
	}
	p := make([]int, len(r.ports))
	copy(p, r.ports)
	return p
}

// SameID reports whether id identifies this relay. Hex comparison is case-insensitive.
func (r Relay) SameID(id string) bool {
	return strings.EqualFold(r.id, id)
}
