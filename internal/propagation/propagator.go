// Package propagation turns catalog entries into satellite states in the
// fixed and inertial frames.
package propagation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brandon-sexton/openspace-coordinates/internal/epoch"
	"github.com/brandon-sexton/openspace-coordinates/internal/frames"
	"github.com/brandon-sexton/openspace-coordinates/internal/tle"
	"github.com/brandon-sexton/openspace-coordinates/internal/transform"
	"github.com/brandon-sexton/openspace-coordinates/internal/vecmath"
)

var (
	// ErrNoCatalog is returned when no TLE dataset has been loaded.
	ErrNoCatalog = errors.New("no TLE dataset loaded")
	// ErrUnknownSatellite is returned for NORAD IDs absent from the dataset.
	ErrUnknownSatellite = errors.New("unknown satellite")
)

// sgp4Cache holds preinitialized SGP4 propagators for one dataset.
// Immutable after construction; safe for concurrent reads.
type sgp4Cache struct {
	dataset *tle.Dataset
	props   map[int]*SGP4Propagator
	errs    map[int]error
}

// Service propagates catalog entries and converts them between frames.
type Service struct {
	catalog   *tle.Catalog
	converter *frames.Converter
	config    Config
	logger    *slog.Logger
	sgp4      atomic.Pointer[sgp4Cache]
	sgp4Mu    sync.Mutex // serializes cache rebuilds
}

// NewService creates a propagation service. Workers below 1 are treated
// as 1.
func NewService(catalog *tle.Catalog, converter *frames.Converter, config Config, logger *slog.Logger) *Service {
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &Service{
		catalog:   catalog,
		converter: converter,
		config:    config,
		logger:    logger,
	}
}

// cachedProps returns the propagators for ds, rebuilding the cache when the
// dataset has changed (double-checked locking).
func (s *Service) cachedProps(ds *tle.Dataset) *sgp4Cache {
	if c := s.sgp4.Load(); c != nil && c.dataset == ds {
		return c
	}

	s.sgp4Mu.Lock()
	defer s.sgp4Mu.Unlock()

	if c := s.sgp4.Load(); c != nil && c.dataset == ds {
		return c
	}

	c := &sgp4Cache{
		dataset: ds,
		props:   make(map[int]*SGP4Propagator, len(ds.Entries)),
		errs:    make(map[int]error),
	}
	for _, entry := range ds.Entries {
		if _, ok := c.props[entry.NORADID]; ok {
			continue
		}
		if _, ok := c.errs[entry.NORADID]; ok {
			continue
		}
		sp, err := NewSGP4Propagator(entry)
		if err != nil {
			s.logger.Warn("sgp4 cache init failed", "norad_id", entry.NORADID, "error", err)
			c.errs[entry.NORADID] = err
			continue
		}
		c.props[entry.NORADID] = sp
	}

	s.logger.Info("sgp4 propagator cache rebuilt",
		"cached", len(c.props),
		"skipped", len(c.errs),
		"dataset_loaded_at", ds.LoadedAt.UTC().Format(time.RFC3339),
	)
	s.sgp4.Store(c)
	return c
}

// fixedState propagates one satellite and rotates the result into ECF.
func (c *sgp4Cache) fixedState(noradID int, t time.Time, gmst float64) (transform.StateFixed, error) {
	prop, ok := c.props[noradID]
	if !ok {
		if err, failed := c.errs[noradID]; failed {
			return transform.StateFixed{}, err
		}
		return transform.StateFixed{}, fmt.Errorf("NORAD %d: %w", noradID, ErrUnknownSatellite)
	}

	teme, err := prop.Propagate(t)
	if err != nil {
		return transform.StateFixed{}, err
	}
	return transform.FixedFromTEME(teme, gmst), nil
}

// StateAt propagates a single satellite to t.
func (s *Service) StateAt(ctx context.Context, noradID int, t time.Time) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	ds := s.catalog.Get()
	if ds == nil {
		return State{}, ErrNoCatalog
	}
	entry, ok := ds.Lookup(noradID)
	if !ok {
		return State{}, fmt.Errorf("NORAD %d: %w", noradID, ErrUnknownSatellite)
	}

	// SGP4 runs at whole-second resolution; the frame epoch must match.
	ep := epoch.New(t.Truncate(time.Second))
	fixed, err := s.cachedProps(ds).fixedState(noradID, ep.Time(), ep.GMST())
	if err != nil {
		return State{}, err
	}

	inertial, err := s.converter.InertialFromFixed(ep, fixed.Position)
	if err != nil {
		return State{}, fmt.Errorf("NORAD %d: %w", noradID, err)
	}
	return newState(entry, ep, fixed, inertial[0]), nil
}

func newState(entry tle.Entry, ep epoch.Epoch, fixed transform.StateFixed, inertial vecmath.Vector3) State {
	st := State{
		NORADID:  entry.NORADID,
		Name:     entry.Name,
		Epoch:    ep.Time(),
		Fixed:    fixed,
		Inertial: inertial,
	}
	st.Spherical = frames.SphericalFromCartesian(st.Inertial)
	st.Geodetic = transform.GeodeticFromFixed(fixed.Position)
	return st
}
