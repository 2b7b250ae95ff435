package rank

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/relaynn/internal/domain"
	"github.com/kailas-cloud/relaynn/internal/domain/candidate"
	"github.com/kailas-cloud/relaynn/internal/domain/fingerprint"
	"github.com/kailas-cloud/relaynn/internal/domain/relay"
	"github.com/kailas-cloud/relaynn/internal/logger"
)

// --- Mocks ---

type mockRecorder struct {
	calls  int
	scored int
}

func (m *mockRecorder) ObserveRank(scored int, _ time.Duration) {
	m.calls++
	m.scored += scored
}

// --- Fixtures ---

var (
	relayA = relay.New("AAAA", "relay1", "Linux", 1000, []int{443})
	relayB = relay.New("BBBB", "relay1", "Linux", 1000, []int{443})
	relayC = relay.New("CCCC", "relay9", "BSD", 50, []int{9001})
)

func scenario() []relay.Relay {
	return []relay.Relay{relayA, relayB, relayC}
}

func ids(results []candidate.Candidate) []string {
	out := make([]string, len(results))
	for i := range results {
		out[i] = results[i].Relay().ID()
	}
	return out
}

func TestRank_Scenario(t *testing.T) {
	rec := &mockRecorder{}
	svc := New(rec)

	results, err := svc.Rank(context.Background(), relayA, scenario())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := fmt.Sprint(ids(results)); got != "[AAAA BBBB CCCC]" {
		t.Fatalf("order = %s, want [AAAA BBBB CCCC]", got)
	}
	if results[0].Distance() != 0 || results[1].Distance() != 0 {
		t.Errorf("identical relays should have distance 0, got %d and %d",
			results[0].Distance(), results[1].Distance())
	}
	if results[2].Distance() <= 0 {
		t.Errorf("CCCC distance = %d, want > 0", results[2].Distance())
	}
	if rec.calls != 1 || rec.scored != 3 {
		t.Errorf("recorder calls=%d scored=%d, want 1 and 3", rec.calls, rec.scored)
	}
}

func TestRank_TopOne(t *testing.T) {
	results, err := New(nil).Rank(context.Background(), relayA, scenario(), WithTop(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len = %d, want 1", len(results))
	}
	if results[0].Relay().ID() != "AAAA" || results[0].Distance() != 0 {
		t.Errorf("got %s at %d, want AAAA at 0", results[0].Relay().ID(), results[0].Distance())
	}
}

func TestRank_Length(t *testing.T) {
	tests := []struct {
		top  int
		want int
	}{
		{0, 3},
		{-1, 3},
		{1, 1},
		{2, 2},
		{3, 3},
		{10, 3},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("top=%d", tt.top), func(t *testing.T) {
			results, err := New(nil).Rank(context.Background(), relayA, scenario(), WithTop(tt.top))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(results) != tt.want {
				t.Errorf("len = %d, want %d", len(results), tt.want)
			}
		})
	}
}

func TestRank_SortedAndStable(t *testing.T) {
	var relays []relay.Relay
	for i := range 50 {
		// Nicknames cycle so that many relays share a distance.
		relays = append(relays, relay.New(
			fmt.Sprintf("%04X", i), fmt.Sprintf("relay%d", i%5), "Linux", 1000, []int{443},
		))
	}

	results, err := New(nil).WithWorkers(4).Rank(context.Background(), relayA, relays)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != len(relays) {
		t.Fatalf("len = %d, want %d", len(results), len(relays))
	}

	index := make(map[string]int, len(relays))
	for i, r := range relays {
		index[r.ID()] = i
	}
	for i := 1; i < len(results); i++ {
		prev, cur := results[i-1], results[i]
		if prev.Distance() > cur.Distance() {
			t.Fatalf("not sorted at %d: %d > %d", i, prev.Distance(), cur.Distance())
		}
		if prev.Distance() == cur.Distance() && index[prev.Relay().ID()] > index[cur.Relay().ID()] {
			t.Fatalf("tie at %d broke input order: %s before %s", i, prev.Relay().ID(), cur.Relay().ID())
		}
	}
}

func TestRank_ReferenceNotInCandidates(t *testing.T) {
	results, err := New(nil).Rank(context.Background(), relayA, []relay.Relay{relayC, relayB})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := fmt.Sprint(ids(results)); got != "[BBBB CCCC]" {
		t.Errorf("order = %s, want [BBBB CCCC]", got)
	}
}

func TestRank_ExcludeReference(t *testing.T) {
	ref := relay.New("aaaa", "relay1", "Linux", 1000, []int{443})
	results, err := New(nil).Rank(context.Background(), ref, scenario(), WithExcludeReference(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := fmt.Sprint(ids(results)); got != "[BBBB CCCC]" {
		t.Errorf("order = %s, want [BBBB CCCC]", got)
	}
}

func TestRank_EmptyFields(t *testing.T) {
	bare := relay.New("DDDD", "", "", 0, nil)
	results, err := New(nil).Rank(context.Background(), relayA, []relay.Relay{bare, relayA})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Relay().ID() != "AAAA" {
		t.Errorf("first = %s, want AAAA", results[0].Relay().ID())
	}
	if results[1].Distance() <= 0 {
		t.Errorf("bare relay distance = %d, want > 0", results[1].Distance())
	}

	// And as the reference itself.
	results, err = New(nil).Rank(context.Background(), bare, scenario())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range results {
		if c.Distance() < 0 {
			t.Errorf("negative distance for %s", c.Relay().ID())
		}
	}
}

func TestRank_PortOrderIgnored(t *testing.T) {
	ref := relay.New("AAAA", "relay1", "Linux", 1000, []int{443, 80})
	other := relay.New("BBBB", "relay1", "Linux", 1000, []int{80, 443})

	results, err := New(nil).Rank(context.Background(), ref, []relay.Relay{other})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Distance() != 0 {
		t.Errorf("distance = %d, want 0", results[0].Distance())
	}
}

func TestRank_Alignment(t *testing.T) {
	results, err := New(nil).Rank(context.Background(), relayA, scenario(), WithAlignment(true), WithTop(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range results {
		if !c.HasAlignment() {
			t.Fatalf("%s has no alignment", c.Relay().ID())
		}
		want := fingerprint.Build(c.Relay()).String()
		if got := c.Alignment().Target(); got != want {
			t.Errorf("alignment target = %q, want %q", got, want)
		}
		if c.Alignment().Cost() != c.Distance() {
			t.Errorf("alignment cost = %d, distance = %d", c.Alignment().Cost(), c.Distance())
		}
	}
}

func TestRank_NoAlignmentByDefault(t *testing.T) {
	results, err := New(nil).Rank(context.Background(), relayA, scenario())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range results {
		if c.HasAlignment() {
			t.Errorf("%s has unexpected alignment", c.Relay().ID())
		}
	}
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	in := []relay.Relay{relayC, relayB, relayA}
	_, err := New(nil).Rank(context.Background(), relayA, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fmt.Sprint(ids(candidatesOf(in))) != "[CCCC BBBB AAAA]" {
		t.Errorf("input reordered: %v", ids(candidatesOf(in)))
	}
}

func TestRank_Empty(t *testing.T) {
	results, err := New(nil).Rank(context.Background(), relayA, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("len = %d, want 0", len(results))
	}
}

func TestRank_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil).Rank(ctx, relayA, scenario())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRank_LoggerFromContext(t *testing.T) {
	ctx := logger.ContextWithLogger(context.Background(), zap.NewNop())
	if _, err := New(nil).Rank(ctx, relayA, scenario()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLookup(t *testing.T) {
	r, err := Lookup(scenario(), "cccc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Nickname() != "relay9" {
		t.Errorf("Nickname() = %q, want relay9", r.Nickname())
	}

	_, err = Lookup(scenario(), "EEEE")
	if !errors.Is(err, domain.ErrRelayNotFound) {
		t.Fatalf("expected ErrRelayNotFound, got %v", err)
	}
}

func candidatesOf(relays []relay.Relay) []candidate.Candidate {
	out := make([]candidate.Candidate, len(relays))
	for i, r := range relays {
		out[i] = candidate.New(r, 0, nil)
	}
	return out
}
