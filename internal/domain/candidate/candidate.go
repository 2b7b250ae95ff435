package candidate

import (
	"github.com/kailas-cloud/relaynn/internal/domain/distance"
	"github.com/kailas-cloud/relaynn/internal/domain/relay"
)

// Candidate is a relay scored against the reference.
type Candidate struct {
	relay     relay.Relay
	distance  int
	alignment distance.Alignment
}

// New creates a scored candidate. alignment may be nil.
func New(r relay.Relay, dist int, alignment distance.Alignment) Candidate {
	return Candidate{relay: r, distance: dist, alignment: alignment}
}

// Relay returns the scored relay.
func (c *Candidate) Relay() relay.Relay { return c.relay }

// Distance returns the edit distance from the reference fingerprint.
func (c *Candidate) Distance() int { return c.distance }

// Alignment returns the reference-to-candidate alignment, or nil if it was not requested.
func (c *Candidate) Alignment() distance.Alignment { return c.alignment }

// HasAlignment reports whether an alignment is attached.
func (c *Candidate) HasAlignment() bool { return c.alignment != nil }
