package rank

import (
	"cmp"
	"context"
	"fmt"
	"runtime"
	"slices"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/relaynn/internal/domain"
	"github.com/kailas-cloud/relaynn/internal/domain/candidate"
	"github.com/kailas-cloud/relaynn/internal/domain/distance"
	"github.com/kailas-cloud/relaynn/internal/domain/fingerprint"
	"github.com/kailas-cloud/relaynn/internal/domain/relay"
	"github.com/kailas-cloud/relaynn/internal/logger"
)

// progressEvery controls how often scoring progress is logged.
const progressEvery = 1000

// Service ranks relays by fingerprint edit distance to a reference relay.
type Service struct {
	workers  int
	recorder Recorder
}

// New creates a ranking service. recorder may be nil.
func New(recorder Recorder) *Service {
	return &Service{workers: runtime.GOMAXPROCS(0), recorder: recorder}
}

// WithWorkers sets how many candidates are scored concurrently. n <= 0 keeps the default.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// Rank scores every candidate against reference and returns them ordered by
// ascending distance. Equal distances keep their input order. reference does
// not have to be one of candidates. The only error is context cancellation.
func (s *Service) Rank(
	ctx context.Context, reference relay.Relay, candidates []relay.Relay, opts ...Option,
) ([]candidate.Candidate, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	log := logger.FromContext(ctx)
	start := time.Now()

	pool := candidates
	if o.excludeReference {
		pool = make([]relay.Relay, 0, len(candidates))
		for _, r := range candidates {
			if !r.SameID(reference.ID()) {
				pool = append(pool, r)
			}
		}
	}

	ref := fingerprint.Build(reference).String()
	scores, err := s.score(ctx, ref, pool)
	if err != nil {
		return nil, err
	}

	order := make([]int, len(pool))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(scores[a], scores[b])
	})
	if o.top > 0 && len(order) > o.top {
		order = order[:o.top]
	}

	results := make([]candidate.Candidate, 0, len(order))
	for _, i := range order {
		var ops distance.Alignment
		if o.alignment {
			_, ops = distance.Align(ref, fingerprint.Build(pool[i]).String())
		}
		results = append(results, candidate.New(pool[i], scores[i], ops))
	}

	elapsed := time.Since(start)
	if s.recorder != nil {
		s.recorder.ObserveRank(len(pool), elapsed)
	}
	log.Info("Ranking finished",
		zap.String("reference", reference.ID()),
		zap.Int("candidates", len(pool)),
		zap.Int("returned", len(results)),
		zap.Duration("elapsed", elapsed),
	)

	return results, nil
}

// score computes the distance of every relay in pool to ref. Results are
// index-aligned with pool.
func (s *Service) score(ctx context.Context, ref string, pool []relay.Relay) ([]int, error) {
	log := logger.FromContext(ctx)
	scores := make([]int, len(pool))
	var processed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, r := range pool {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scores[i] = distance.Distance(ref, fingerprint.Build(r).String())
			if n := processed.Add(1); n%progressEvery == 0 {
				log.Debug("Scoring progress", zap.Int64("processed", n), zap.Int("total", len(pool)))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("score candidates: %w", err)
	}
	// The loop may stop early without any goroutine observing cancellation.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("score candidates: %w", err)
	}
	return scores, nil
}

// Lookup finds the relay with the given identifier. Hex case is ignored.
func Lookup(relays []relay.Relay, id string) (relay.Relay, error) {
	for _, r := range relays {
		if r.SameID(id) {
			return r, nil
		}
	}
	return relay.Relay{}, fmt.Errorf("%w: %s", domain.ErrRelayNotFound, id)
}
