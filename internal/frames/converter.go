package frames

import (
	"errors"
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/brandon-sexton/openspace-coordinates/internal/metrics"
	"github.com/brandon-sexton/openspace-coordinates/internal/vecmath"
)

// ErrInvalidInput is returned by checked conversions when an epoch value or
// a vector component is NaN or infinite.
var ErrInvalidInput = errors.New("invalid input")

// DefaultCacheSize is the number of epochs whose transforms are retained.
const DefaultCacheSize = 1024

// Config controls a Converter.
type Config struct {
	// CacheSize is the number of transforms kept in the LRU cache.
	// Zero or negative disables caching.
	CacheSize int

	// OrthonormalNutation replaces the first-order nutation matrix with its
	// nearest rotation. Off by default.
	OrthonormalNutation bool
}

// epochKey holds the three values the rotations read, sampled once. It
// implements Epoch so a cached transform is built from the same values it
// is keyed by.
type epochKey struct {
	days, centuries, gmst float64
}

func sampleEpoch(e Epoch) epochKey {
	return epochKey{e.DaysPastJ2000(), e.JulianCenturiesPastJ2000(), e.GMST()}
}

func (k epochKey) DaysPastJ2000() float64            { return k.days }
func (k epochKey) JulianCenturiesPastJ2000() float64 { return k.centuries }
func (k epochKey) GMST() float64                     { return k.gmst }

func (k epochKey) validate() error {
	for _, v := range []struct {
		name  string
		value float64
	}{
		{"days past J2000", k.days},
		{"centuries past J2000", k.centuries},
		{"GMST", k.gmst},
	} {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return fmt.Errorf("%w: epoch %s is %v", ErrInvalidInput, v.name, v.value)
		}
	}
	return nil
}

// Converter performs checked frame conversions. It validates inputs at the
// boundary, caches transforms per epoch, and is safe for concurrent use.
type Converter struct {
	config Config
	cache  *lru.Cache[epochKey, Transform]
}

// NewConverter creates a Converter.
func NewConverter(config Config) (*Converter, error) {
	c := &Converter{config: config}
	if config.CacheSize > 0 {
		cache, err := lru.New[epochKey, Transform](config.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating transform cache: %w", err)
		}
		c.cache = cache
	}
	return c, nil
}

// Config returns the converter's configuration.
func (c *Converter) Config() Config {
	return c.config
}

// ValidateEpoch returns ErrInvalidInput if any epoch value is not finite.
func ValidateEpoch(e Epoch) error {
	return sampleEpoch(e).validate()
}

// ValidatePosition returns ErrInvalidInput if any component is not finite.
func ValidatePosition(v vecmath.Vector3) error {
	if !v.IsFinite() {
		return fmt.Errorf("%w: position %v is not finite", ErrInvalidInput, v)
	}
	return nil
}

// Transform returns the transform for e, from cache when possible.
func (c *Converter) Transform(e Epoch) (Transform, error) {
	key := sampleEpoch(e)
	if err := key.validate(); err != nil {
		metrics.RecordInvalidInput("epoch")
		return Transform{}, err
	}

	if c.cache != nil {
		if t, ok := c.cache.Get(key); ok {
			metrics.RecordTransformCache(true)
			return t, nil
		}
		metrics.RecordTransformCache(false)
	}

	t := NewTransform(key)
	if c.config.OrthonormalNutation {
		t.Nutation = t.Nutation.Orthonormalize()
	}
	if c.cache != nil {
		c.cache.Add(key, t)
	}
	return t, nil
}

// FixedFromInertial converts ECI positions to ECF at e. It fails on the
// first non-finite position.
func (c *Converter) FixedFromInertial(e Epoch, positions ...vecmath.Vector3) ([]vecmath.Vector3, error) {
	return c.convert(e, positions, metrics.DirectionToFixed, Transform.FixedFromInertial)
}

// InertialFromFixed converts ECF positions to ECI at e. It fails on the
// first non-finite position.
func (c *Converter) InertialFromFixed(e Epoch, positions ...vecmath.Vector3) ([]vecmath.Vector3, error) {
	return c.convert(e, positions, metrics.DirectionToInertial, Transform.InertialFromFixed)
}

func (c *Converter) convert(e Epoch, positions []vecmath.Vector3, direction string, apply func(Transform, vecmath.Vector3) vecmath.Vector3) ([]vecmath.Vector3, error) {
	t, err := c.Transform(e)
	if err != nil {
		return nil, err
	}

	out := make([]vecmath.Vector3, len(positions))
	for i, p := range positions {
		if err := ValidatePosition(p); err != nil {
			metrics.RecordInvalidInput("position")
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		out[i] = apply(t, p)
	}
	metrics.RecordConversions(direction, len(out))
	return out, nil
}

// Spherical converts Cartesian positions to (range, right ascension,
// declination). It fails on the first non-finite position.
func (c *Converter) Spherical(positions ...vecmath.Vector3) ([]vecmath.Vector3, error) {
	out := make([]vecmath.Vector3, len(positions))
	for i, p := range positions {
		if err := ValidatePosition(p); err != nil {
			metrics.RecordInvalidInput("position")
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		out[i] = SphericalFromCartesian(p)
	}
	metrics.RecordConversions(metrics.DirectionToSpherical, len(out))
	return out, nil
}
