package distance

import "strings"

// Kind is the type of one alignment step.
type Kind uint8

// Alignment step kinds.
const (
	Match Kind = iota
	Substitute
	Delete
	Insert
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Match:
		return "match"
	case Substitute:
		return "substitute"
	case Delete:
		return "delete"
	case Insert:
		return "insert"
	default:
		return "unknown"
	}
}

// Op is one step of an alignment from a source string to a target string.
// From is zero for Insert, To is zero for Delete.
type Op struct {
	Kind Kind
	From rune
	To   rune
}

// Alignment is an optimal edit script turning the source into the target.
type Alignment []Op

// Cost returns the number of non-match steps.
func (a Alignment) Cost() int {
	n := 0
	for _, op := range a {
		if op.Kind != Match {
			n++
		}
	}
	return n
}

// Source reconstructs the source string.
func (a Alignment) Source() string {
	var b strings.Builder
	for _, op := range a {
		if op.Kind != Insert {
			b.WriteRune(op.From)
		}
	}
	return b.String()
}

// Target reconstructs the target string.
func (a Alignment) Target() string {
	var b strings.Builder
	for _, op := range a {
		if op.Kind != Delete {
			b.WriteRune(op.To)
		}
	}
	return b.String()
}

// TargetKinds returns the kind of every target rune in order, skipping
// deletions. Its length equals the rune count of Target().
func (a Alignment) TargetKinds() []Kind {
	kinds := make([]Kind, 0, len(a))
	for _, op := range a {
		if op.Kind != Delete {
			kinds = append(kinds, op.Kind)
		}
	}
	return kinds
}
