package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/brandon-sexton/openspace-coordinates/internal/epoch"
	"github.com/brandon-sexton/openspace-coordinates/internal/frames"
	"github.com/brandon-sexton/openspace-coordinates/internal/propagation"
	"github.com/brandon-sexton/openspace-coordinates/internal/vecmath"
)

// maxRequestBytes bounds conversion request bodies.
const maxRequestBytes = 8 << 20

type handlers struct {
	logger   *slog.Logger
	maxBatch int
	deps     Deps
}

type convertRequest struct {
	Epoch     string      `json:"epoch"`
	Positions [][]float64 `json:"positions"`
}

type convertResponse struct {
	Epoch     string            `json:"epoch"`
	Positions []vecmath.Vector3 `json:"positions"`
}

type sphericalCoordinate struct {
	Range          float64 `json:"range"`
	RightAscension float64 `json:"right_ascension"`
	Declination    float64 `json:"declination"`
}

type sphericalResponse struct {
	Coordinates []sphericalCoordinate `json:"coordinates"`
}

type matricesResponse struct {
	Epoch                    string          `json:"epoch"`
	JulianDate               float64         `json:"julian_date"`
	DaysPastJ2000            float64         `json:"days_past_j2000"`
	JulianCenturiesPastJ2000 float64         `json:"julian_centuries_past_j2000"`
	GMST                     float64         `json:"gmst"`
	GAST                     float64         `json:"gast"`
	Obliquity                float64         `json:"obliquity"`
	Precession               vecmath.Matrix3 `json:"precession"`
	Nutation                 vecmath.Matrix3 `json:"nutation"`
	Rotation                 vecmath.Matrix3 `json:"rotation"`
	FixedFromInertial        vecmath.Matrix3 `json:"fixed_from_inertial"`
}

type stateVector struct {
	Position vecmath.Vector3 `json:"position"`
	Velocity vecmath.Vector3 `json:"velocity"`
}

type geodeticPoint struct {
	LatitudeDeg  float64 `json:"latitude_deg"`
	LongitudeDeg float64 `json:"longitude_deg"`
	AltitudeKm   float64 `json:"altitude_km"`
}

type ephemerisResponse struct {
	NORADID   int                 `json:"norad_id"`
	Name      string              `json:"name"`
	Epoch     string              `json:"epoch"`
	Fixed     stateVector         `json:"fixed"`
	Inertial  vecmath.Vector3     `json:"inertial"`
	Spherical sphericalCoordinate `json:"spherical"`
	Geodetic  geodeticPoint       `json:"geodetic"`
}

type snapshotResponse struct {
	Epoch      string              `json:"epoch"`
	Satellites []ephemerisResponse `json:"satellites"`
}

type catalogResponse struct {
	Loaded     bool    `json:"loaded"`
	Source     string  `json:"source,omitempty"`
	LoadedAt   string  `json:"loaded_at,omitempty"`
	AgeSeconds float64 `json:"age_seconds"`
	Satellites int     `json:"satellites"`
	EpochMin   string  `json:"epoch_min,omitempty"`
	EpochMax   string  `json:"epoch_max,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodePositions reads a conversion request body and enforces the batch cap.
// It writes the error response itself and returns ok=false on failure.
func (h *handlers) decodePositions(w http.ResponseWriter, r *http.Request) (convertRequest, []vecmath.Vector3, bool) {
	var req convertRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return req, nil, false
	}

	if len(req.Positions) == 0 {
		writeError(w, http.StatusBadRequest, "positions must not be empty")
		return req, nil, false
	}
	if len(req.Positions) > h.maxBatch {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":         fmt.Sprintf("too many positions: %d", len(req.Positions)),
			"max_positions": h.maxBatch,
		})
		return req, nil, false
	}

	positions := make([]vecmath.Vector3, len(req.Positions))
	for i, p := range req.Positions {
		if len(p) != 3 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("position %d has %d components, want 3", i, len(p)))
			return req, nil, false
		}
		positions[i] = vecmath.NewVector3(p[0], p[1], p[2])
	}
	return req, positions, true
}

// parseEpoch parses an RFC 3339 epoch, defaulting to now when s is empty.
func parseEpoch(s string) (epoch.Epoch, error) {
	if s == "" {
		return epoch.New(time.Now()), nil
	}
	return epoch.Parse(s)
}

// conversion is a batch frame conversion such as Converter.FixedFromInertial.
type conversion func(frames.Epoch, ...vecmath.Vector3) ([]vecmath.Vector3, error)

func (h *handlers) convert(apply conversion) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, positions, ok := h.decodePositions(w, r)
		if !ok {
			return
		}
		if req.Epoch == "" {
			writeError(w, http.StatusBadRequest, "epoch is required")
			return
		}
		ep, err := epoch.Parse(req.Epoch)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		out, err := apply(ep, positions...)
		if err != nil {
			h.conversionError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, convertResponse{Epoch: ep.String(), Positions: out})
	}
}

func (h *handlers) spherical(w http.ResponseWriter, r *http.Request) {
	_, positions, ok := h.decodePositions(w, r)
	if !ok {
		return
	}

	out, err := h.deps.Converter.Spherical(positions...)
	if err != nil {
		h.conversionError(w, err)
		return
	}

	resp := sphericalResponse{Coordinates: make([]sphericalCoordinate, len(out))}
	for i, s := range out {
		resp.Coordinates[i] = sphericalCoordinate{Range: s[0], RightAscension: s[1], Declination: s[2]}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) conversionError(w http.ResponseWriter, err error) {
	if errors.Is(err, frames.ErrInvalidInput) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Error("conversion failed", "component", "api", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func (h *handlers) matrices(w http.ResponseWriter, r *http.Request) {
	ep, err := parseEpoch(r.URL.Query().Get("epoch"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.deps.Converter.Transform(ep)
	if err != nil {
		h.conversionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, matricesResponse{
		Epoch:                    ep.String(),
		JulianDate:               ep.JulianDate(),
		DaysPastJ2000:            ep.DaysPastJ2000(),
		JulianCenturiesPastJ2000: ep.JulianCenturiesPastJ2000(),
		GMST:                     ep.GMST(),
		GAST:                     frames.GAST(ep),
		Obliquity:                frames.Obliquity(ep),
		Precession:               t.Precession,
		Nutation:                 t.Nutation,
		Rotation:                 t.Rotation,
		FixedFromInertial:        t.Matrix(),
	})
}

func (h *handlers) ephemeris(w http.ResponseWriter, r *http.Request) {
	if h.deps.Ephemeris == nil {
		writeError(w, http.StatusServiceUnavailable, "no TLE source configured")
		return
	}

	noradID, err := strconv.Atoi(r.PathValue("norad_id"))
	if err != nil || noradID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid NORAD ID")
		return
	}
	ep, err := parseEpoch(r.URL.Query().Get("epoch"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	st, err := h.deps.Ephemeris.StateAt(r.Context(), noradID, ep.Time())
	switch {
	case err == nil:
	case errors.Is(err, propagation.ErrNoCatalog):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case errors.Is(err, propagation.ErrUnknownSatellite):
		writeError(w, http.StatusNotFound, err.Error())
		return
	default:
		h.logger.Warn("ephemeris failed", "component", "api", "norad_id", noradID, "error", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, newEphemerisResponse(st))
}

func newEphemerisResponse(st propagation.State) ephemerisResponse {
	return ephemerisResponse{
		NORADID:  st.NORADID,
		Name:     st.Name,
		Epoch:    st.Epoch.Format(time.RFC3339Nano),
		Fixed:    stateVector{Position: st.Fixed.Position, Velocity: st.Fixed.Velocity},
		Inertial: st.Inertial,
		Spherical: sphericalCoordinate{
			Range:          st.Spherical[0],
			RightAscension: st.Spherical[1],
			Declination:    st.Spherical[2],
		},
		Geodetic: geodeticPoint{
			LatitudeDeg:  st.Geodetic.Latitude.Deg(),
			LongitudeDeg: st.Geodetic.Longitude.Deg(),
			AltitudeKm:   st.Geodetic.AltKm,
		},
	}
}

func (h *handlers) snapshot(w http.ResponseWriter, r *http.Request) {
	if h.deps.Ephemeris == nil {
		writeError(w, http.StatusServiceUnavailable, "no TLE source configured")
		return
	}
	ep, err := parseEpoch(r.URL.Query().Get("epoch"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	states, err := h.deps.Ephemeris.Snapshot(r.Context(), ep.Time())
	if err != nil {
		if errors.Is(err, propagation.ErrNoCatalog) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		h.logger.Warn("snapshot failed", "component", "api", "error", err)
		writeError(w, http.StatusInternalServerError, "snapshot failed")
		return
	}

	resp := snapshotResponse{
		Epoch:      ep.Time().Truncate(time.Second).Format(time.RFC3339Nano),
		Satellites: make([]ephemerisResponse, len(states)),
	}
	for i, st := range states {
		resp.Satellites[i] = newEphemerisResponse(st)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) catalog(w http.ResponseWriter, r *http.Request) {
	resp := catalogResponse{AgeSeconds: -1}
	if h.deps.Catalog != nil {
		if ds := h.deps.Catalog.Get(); ds != nil {
			resp = catalogResponse{
				Loaded:     true,
				Source:     ds.Source,
				LoadedAt:   ds.LoadedAt.UTC().Format(time.RFC3339),
				AgeSeconds: h.deps.Catalog.AgeSeconds(),
				Satellites: len(ds.Entries),
			}
			if len(ds.Entries) > 0 {
				resp.EpochMin = ds.EpochRange.Min.UTC().Format(time.RFC3339)
				resp.EpochMax = ds.EpochRange.Max.UTC().Format(time.RFC3339)
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
