// Package calibration loads a calibration artifact and remaps raw track
// scores into calibrated confidences via Platt scaling followed by an
// isotonic piecewise-linear correction.
package calibration

import (
	"fmt"
	"math"
	"sort"

	"github.com/tidwall/gjson"

	"harmonic-analysis/track"
)

// LibraryError wraps a fatal, load-time-only failure.
type LibraryError struct {
	Reason string
}

func (e *LibraryError) Error() string {
	return fmt.Sprintf("invalid calibration artifact: %s", e.Reason)
}

// Global is the bucket name every track falls back to when no more
// specific bucket is present.
const Global = "GLOBAL"

// Platt is the logistic-scaling pair applied before the isotonic remap.
type Platt struct {
	A float64
	B float64
}

// Isotonic is a monotone piecewise-linear correction curve.
type Isotonic struct {
	X []float64
	Y []float64
}

// Bucket is one (platt, isotonic, method) entry for a single track.
type Bucket struct {
	Platt    Platt
	Isotonic Isotonic
	Method   string // "learned" | "identity"
}

// Artifact is the fully parsed, validated calibration artifact: a map
// from track to bucket name to Bucket.
type Artifact struct {
	Version string
	Tracks  map[track.Kind]map[string]Bucket
}

// Features is the explicit struct that drives calibration bucket routing.
type Features struct {
	ChordCountBand     string
	OutsideKeyRatioBand string
	EvidenceStrengthBand string
	IsMelody           bool
}

// BucketName derives the deterministic bucket key from Features; an
// artifact may or may not have a bucket under this exact name, in which
// case the caller falls back to Global.
func (f Features) BucketName() string {
	melody := "false"
	if f.IsMelody {
		melody = "true"
	}
	return fmt.Sprintf("%s|%s|%s|%s", f.ChordCountBand, f.OutsideKeyRatioBand, f.EvidenceStrengthBand, melody)
}

// Load parses a calibration artifact using tolerant gjson path queries, so
// unknown informational fields (e.g. "fixes_applied") introduced by a
// later schema version are accepted and ignored rather than rejected.
func Load(data []byte) (*Artifact, error) {
	if !gjson.ValidBytes(data) {
		return nil, &LibraryError{Reason: "not valid JSON"}
	}
	root := gjson.ParseBytes(data)

	art := &Artifact{
		Version: root.Get("version").String(),
		Tracks:  map[track.Kind]map[string]Bucket{},
	}

	tracksNode := root.Get("tracks")
	if !tracksNode.Exists() {
		return nil, &LibraryError{Reason: "missing \"tracks\""}
	}

	for _, kind := range []track.Kind{track.Functional, track.Modal, track.Chromatic} {
		trackNode := tracksNode.Get(string(kind))
		if !trackNode.Exists() {
			continue
		}
		buckets := map[string]Bucket{}
		var loadErr error
		trackNode.ForEach(func(key, value gjson.Result) bool {
			b, err := parseBucket(value)
			if err != nil {
				loadErr = fmt.Errorf("track %s bucket %s: %w", kind, key.String(), err)
				return false
			}
			buckets[key.String()] = b
			return true
		})
		if loadErr != nil {
			return nil, &LibraryError{Reason: loadErr.Error()}
		}
		art.Tracks[kind] = buckets
	}

	return art, nil
}

func parseBucket(v gjson.Result) (Bucket, error) {
	method := v.Get("method").String()
	if method == "" {
		method = "learned"
	}

	b := Bucket{
		Platt: Platt{
			A: v.Get("platt.a").Num,
			B: v.Get("platt.b").Num,
		},
		Method: method,
	}

	xs := v.Get("isotonic.x").Array()
	ys := v.Get("isotonic.y").Array()
	if len(xs) != len(ys) {
		return Bucket{}, fmt.Errorf("isotonic x/y length mismatch (%d vs %d)", len(xs), len(ys))
	}
	b.Isotonic.X = make([]float64, len(xs))
	b.Isotonic.Y = make([]float64, len(ys))
	for i := range xs {
		b.Isotonic.X[i] = xs[i].Num
		b.Isotonic.Y[i] = ys[i].Num
	}
	if !nonDecreasing(b.Isotonic.X) {
		return Bucket{}, fmt.Errorf("isotonic.x is not non-decreasing")
	}
	if !nonDecreasing(b.Isotonic.Y) {
		return Bucket{}, fmt.Errorf("isotonic.y is not non-decreasing")
	}

	if method == "identity" {
		b.Platt = Platt{A: 1, B: 0}
		if len(b.Isotonic.X) == 0 {
			b.Isotonic = Isotonic{X: []float64{0, 1}, Y: []float64{0, 1}}
		}
	}

	return b, nil
}

func nonDecreasing(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i] < xs[i-1] {
			return false
		}
	}
	return true
}

// Calibrate applies the bucket lookup (falling back to Global), then
// Platt scaling, then the isotonic remap.
func Calibrate(art *Artifact, kind track.Kind, raw float64, features Features) float64 {
	buckets := art.Tracks[kind]
	bucket, ok := buckets[features.BucketName()]
	if !ok {
		bucket, ok = buckets[Global]
	}
	if !ok {
		// No bucket at all for this track: identity, matching the
		// artifact's own identity-mapping contract.
		return clamp01(raw)
	}

	if bucket.Method == "identity" {
		return clamp01(raw)
	}

	p := sigmoid(bucket.Platt.A*raw + bucket.Platt.B)
	return clamp01(isotonicInterpolate(bucket.Isotonic, p))
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// isotonicInterpolate performs piecewise-linear interpolation over the
// bucket's knots, clamped to the endpoints.
func isotonicInterpolate(iso Isotonic, p float64) float64 {
	n := len(iso.X)
	if n == 0 {
		return p
	}
	if p <= iso.X[0] {
		return iso.Y[0]
	}
	if p >= iso.X[n-1] {
		return iso.Y[n-1]
	}
	i := sort.SearchFloat64s(iso.X, p)
	if i > 0 && iso.X[i] != p {
		i--
	}
	if i >= n-1 {
		return iso.Y[n-1]
	}
	x0, x1 := iso.X[i], iso.X[i+1]
	y0, y1 := iso.Y[i], iso.Y[i+1]
	if x1 == x0 {
		return y0
	}
	t := (p - x0) / (x1 - x0)
	return y0 + t*(y1-y0)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
