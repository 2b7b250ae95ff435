// Package fingerprint derives the comparable string form of a relay.
//
// Every fingerprint has the layout
//
//	nickname|ports|os|bandwidth
//
// with ports sorted ascending and space separated, and bandwidth as plain
// decimal digits. Empty attributes keep their slot so that equal values
// always land at the same field position.
package fingerprint

import (
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/relaynn/internal/domain/relay"
)

const (
	// FieldSep separates fingerprint fields. Relay nicknames are alphanumeric
	// and platform strings never contain it.
	FieldSep = "|"
	// PortSep separates ports inside the ports field.
	PortSep = " "
)

// Field order inside a fingerprint.
const (
	FieldNickname = iota
	FieldPorts
	FieldOS
	FieldBandwidth

	NumFields
)

// Fingerprint is the canonical comparable string of one relay.
type Fingerprint string

// String returns the fingerprint text.
func (f Fingerprint) String() string { return string(f) }

// Build returns the fingerprint of r.
func Build(r relay.Relay) Fingerprint {
	fields := Fields(r)
	return Fingerprint(strings.Join(fields[:], FieldSep))
}

// Fields returns the rendered fingerprint fields of r in field order.
func Fields(r relay.Relay) [NumFields]string {
	return [NumFields]string{
		FieldNickname:  r.Nickname(),
		FieldPorts:     Ports(r.Ports()),
		FieldOS:        r.OS(),
		FieldBandwidth: strconv.FormatInt(r.Bandwidth(), 10),
	}
}

// Ports renders ports sorted ascending without modifying the input.
func Ports(ports []int) string {
	if len(ports) == 0 {
		return ""
	}
	sorted := slices.Clone(ports)
	slices.Sort(sorted)

	parts := make([]string, len(sorted))
	for i, p := range sorted {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, PortSep)
}
