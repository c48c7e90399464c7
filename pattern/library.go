package pattern

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
)

// InvalidPatternDefinitionError is raised at load time only; it prevents
// startup and is never raised per-request.
type InvalidPatternDefinitionError struct {
	Reason string
}

func (e *InvalidPatternDefinitionError) Error() string {
	return fmt.Sprintf("invalid pattern definition: %s", e.Reason)
}

var patternIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z0-9_]+)*$`)

// rootDocument is the on-disk shape of a pattern library file.
type rootDocument struct {
	Version  int          `json:"version"`
	Patterns []Definition `json:"patterns"`
}

// Library is the indexed, validated pattern set produced by Load.
type Library struct {
	Version           int
	all               []Definition
	byFamily          map[string][]Definition
	byScope           map[Scope][]Definition
	byTrack           map[Track][]Definition
	orderedByPriority []Definition
}

// ByFamily returns all patterns whose id's leading dotted segment matches
// family (e.g. family "cadence" returns "cadence.authentic.perfect").
func (l *Library) ByFamily(family string) []Definition { return l.byFamily[family] }

// ByScope returns all patterns declaring scope s.
func (l *Library) ByScope(s Scope) []Definition { return l.byScope[s] }

// ByTrack returns all patterns declaring track t.
func (l *Library) ByTrack(t Track) []Definition { return l.byTrack[t] }

// OrderedByPriorityDesc returns every pattern ordered by descending
// priority, ties broken by pattern id.
func (l *Library) OrderedByPriorityDesc() []Definition { return l.orderedByPriority }

// All returns every loaded pattern definition.
func (l *Library) All() []Definition { return l.all }

// Load parses and validates a pattern library JSON document. It fails
// fast (InvalidPatternDefinitionError) on any schema violation -- no
// partial loading.
func Load(data []byte) (*Library, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var doc rootDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, &InvalidPatternDefinitionError{Reason: err.Error()}
	}

	seen := map[string]bool{}
	for i, p := range doc.Patterns {
		if err := validate(p); err != nil {
			return nil, &InvalidPatternDefinitionError{Reason: fmt.Sprintf("pattern[%d] (%s): %v", i, p.ID, err)}
		}
		if seen[p.ID] {
			return nil, &InvalidPatternDefinitionError{Reason: fmt.Sprintf("duplicate pattern id %q", p.ID)}
		}
		seen[p.ID] = true
	}

	lib := &Library{
		Version:  doc.Version,
		all:      doc.Patterns,
		byFamily: map[string][]Definition{},
		byScope:  map[Scope][]Definition{},
		byTrack:  map[Track][]Definition{},
	}
	for _, p := range doc.Patterns {
		fam := familyOf(p.ID)
		lib.byFamily[fam] = append(lib.byFamily[fam], p)
		for _, s := range p.Scope {
			lib.byScope[s] = append(lib.byScope[s], p)
		}
		for _, t := range p.Track {
			lib.byTrack[t] = append(lib.byTrack[t], p)
		}
	}
	lib.orderedByPriority = append([]Definition{}, doc.Patterns...)
	sort.SliceStable(lib.orderedByPriority, func(i, j int) bool {
		a, b := lib.orderedByPriority[i], lib.orderedByPriority[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.ID < b.ID
	})

	return lib, nil
}

// Reweight builds a new Library with every pattern's evidence.weight
// multiplied by multiplier(pattern family), reindexing from scratch. Used
// to apply a profile's per-family weight multipliers without mutating the
// shared, read-only loaded Library.
func Reweight(lib *Library, multiplier func(family string) float64) *Library {
	adjusted := make([]Definition, len(lib.all))
	for i, p := range lib.all {
		p.Evidence.Weight = p.Evidence.Weight * multiplier(familyOf(p.ID))
		if p.Evidence.Weight > 1 {
			p.Evidence.Weight = 1
		}
		adjusted[i] = p
	}

	out := &Library{
		Version:  lib.Version,
		all:      adjusted,
		byFamily: map[string][]Definition{},
		byScope:  map[Scope][]Definition{},
		byTrack:  map[Track][]Definition{},
	}
	for _, p := range adjusted {
		fam := familyOf(p.ID)
		out.byFamily[fam] = append(out.byFamily[fam], p)
		for _, s := range p.Scope {
			out.byScope[s] = append(out.byScope[s], p)
		}
		for _, t := range p.Track {
			out.byTrack[t] = append(out.byTrack[t], p)
		}
	}
	out.orderedByPriority = append([]Definition{}, adjusted...)
	sort.SliceStable(out.orderedByPriority, func(i, j int) bool {
		a, b := out.orderedByPriority[i], out.orderedByPriority[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.ID < b.ID
	})
	return out
}

// familyOf returns a pattern id's leading dotted segment, e.g.
// "cadence.authentic.perfect" -> "cadence".
func familyOf(id string) string {
	for i := 0; i < len(id); i++ {
		if id[i] == '.' {
			return id[:i]
		}
	}
	return id
}

func validate(p Definition) error {
	if !patternIDPattern.MatchString(p.ID) {
		return fmt.Errorf("id %q does not match pattern id grammar", p.ID)
	}
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(p.Scope) == 0 {
		return fmt.Errorf("scope must be non-empty")
	}
	for _, s := range p.Scope {
		switch s {
		case ScopeHarmonic, ScopeMelodic, ScopeScale:
		default:
			return fmt.Errorf("unknown scope %q", s)
		}
	}
	if len(p.Track) == 0 {
		return fmt.Errorf("track must be non-empty")
	}
	for _, t := range p.Track {
		switch t {
		case TrackFunctional, TrackModal, TrackChromatic:
		default:
			return fmt.Errorf("unknown track %q", t)
		}
	}
	if p.Window.Min <= 0 || p.Window.Max <= 0 {
		return fmt.Errorf("window.min and window.max must be positive")
	}
	if p.Window.Min > p.Window.Max {
		return fmt.Errorf("window.min (%d) > window.max (%d)", p.Window.Min, p.Window.Max)
	}
	if len(p.Sequence) > p.Window.Max {
		return fmt.Errorf("sequence length (%d) exceeds window.max (%d)", len(p.Sequence), p.Window.Max)
	}
	if len(p.Sequence) == 0 {
		return fmt.Errorf("sequence must be non-empty")
	}
	anyGaps := 0
	for i, step := range p.Sequence {
		if step.AnyGap {
			anyGaps++
		}
		for _, q := range step.Qualities {
			switch q {
			case "uppercase", "lowercase", "°", "ø", "+":
			default:
				return fmt.Errorf("sequence[%d]: unknown quality marker %q", i, q)
			}
		}
		if step.Role != "" {
			switch step.Role {
			case "T", "PD", "D":
			default:
				return fmt.Errorf("sequence[%d]: unknown role %q", i, step.Role)
			}
		}
	}
	if anyGaps > 1 {
		return fmt.Errorf("sequence declares more than one variable-length gap")
	}
	if p.Evidence.Weight < 0 || p.Evidence.Weight > 1 {
		return fmt.Errorf("evidence.weight must be in [0,1], got %v", p.Evidence.Weight)
	}
	if p.Priority < 0 || p.Priority > 100 {
		return fmt.Errorf("priority must be in [0,100], got %d", p.Priority)
	}
	return nil
}
