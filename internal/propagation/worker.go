package propagation

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/brandon-sexton/openspace-coordinates/internal/epoch"
	"github.com/brandon-sexton/openspace-coordinates/internal/metrics"
	"github.com/brandon-sexton/openspace-coordinates/internal/tle"
	"github.com/brandon-sexton/openspace-coordinates/internal/transform"
	"github.com/brandon-sexton/openspace-coordinates/internal/vecmath"
)

// Snapshot propagates every satellite in the catalog to t, running at most
// Config.Workers propagations at once. Satellites that fail to propagate
// are logged and omitted. Results follow dataset order, one per NORAD ID.
func (s *Service) Snapshot(ctx context.Context, t time.Time) ([]State, error) {
	ds := s.catalog.Get()
	if ds == nil {
		return nil, ErrNoCatalog
	}

	entries := uniqueEntries(ds)
	cache := s.cachedProps(ds)
	ep := epoch.New(t.Truncate(time.Second))
	gmst := ep.GMST()

	start := time.Now()
	fixed := make([]transform.StateFixed, len(entries))
	ok := make([]bool, len(entries))
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i, entry := range entries {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			st, err := cache.fixedState(entry.NORADID, ep.Time(), gmst)
			if err != nil {
				failed.Add(1)
				s.logger.Warn("propagation failed", "norad_id", entry.NORADID, "error", err)
				return nil
			}
			fixed[i], ok[i] = st, true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var kept []tle.Entry
	var keptFixed []transform.StateFixed
	positions := make([]vecmath.Vector3, 0, len(entries))
	for i, entry := range entries {
		if !ok[i] {
			continue
		}
		kept = append(kept, entry)
		keptFixed = append(keptFixed, fixed[i])
		positions = append(positions, fixed[i].Position)
	}

	duration := time.Since(start)
	metrics.RecordPropagation(duration, len(kept), int(failed.Load()))
	s.logger.Debug("snapshot complete",
		"success", len(kept),
		"errors", failed.Load(),
		"target_time", ep.String(),
		"duration_ms", duration.Milliseconds(),
	)

	if len(positions) == 0 {
		return []State{}, nil
	}
	inertial, err := s.converter.InertialFromFixed(ep, positions...)
	if err != nil {
		return nil, fmt.Errorf("converting snapshot: %w", err)
	}

	states := make([]State, len(kept))
	for i := range kept {
		states[i] = newState(kept[i], ep, keptFixed[i], inertial[i])
	}
	return states, nil
}

// uniqueEntries returns the first entry for each NORAD ID in dataset order.
func uniqueEntries(ds *tle.Dataset) []tle.Entry {
	seen := make(map[int]bool, len(ds.Entries))
	out := make([]tle.Entry, 0, len(ds.Entries))
	for _, e := range ds.Entries {
		if seen[e.NORADID] {
			continue
		}
		seen[e.NORADID] = true
		out = append(out, e)
	}
	return out
}
