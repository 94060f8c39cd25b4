package aggregation

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProofOfSleep is granted when a team reaches 100 cumulative successes.
const ProofOfSleep = "proofOfSleep"

// Scope selects who is credited when an achievement fires.
type Scope string

// ScopeTeamMembers credits every member listed on the team at grant time.
const ScopeTeamMembers Scope = "team_members"

// Counters is the team counter transition a predicate is evaluated against.
type Counters struct {
	TotalSuccessBefore int64
	TotalSuccessAfter  int64
}

// Predicate decides whether a transition fires an achievement.
type Predicate func(c Counters) bool

// Crossed fires on the transition that reaches target. Increments are always
// one, so this is the strict equality check on the new value.
func Crossed(target int64) Predicate {
	return func(c Counters) bool {
		return c.TotalSuccessBefore < target && c.TotalSuccessAfter >= target
	}
}

// Definition is one entry of the achievement catalogue.
type Definition struct {
	ID        string
	Predicate Predicate
	Reward    int64
	Scope     Scope
}

// Catalogue is an immutable, ordered set of achievement definitions.
type Catalogue struct {
	defs []Definition
}

// NewCatalogue validates and freezes defs.
func NewCatalogue(defs ...Definition) (Catalogue, error) {
	seen := make(map[string]struct{}, len(defs))
	out := make([]Definition, 0, len(defs))
	for _, d := range defs {
		if d.ID == "" {
			return Catalogue{}, errors.New("achievement id is required")
		}
		if _, dup := seen[d.ID]; dup {
			return Catalogue{}, fmt.Errorf("duplicate achievement id %q", d.ID)
		}
		if d.Predicate == nil {
			return Catalogue{}, fmt.Errorf("achievement %q has no predicate", d.ID)
		}
		if d.Scope == "" {
			d.Scope = ScopeTeamMembers
		}
		if d.Scope != ScopeTeamMembers {
			return Catalogue{}, fmt.Errorf("achievement %q: unsupported scope %q", d.ID, d.Scope)
		}
		seen[d.ID] = struct{}{}
		out = append(out, d)
	}
	return Catalogue{defs: out}, nil
}

// DefaultCatalogue holds the single production achievement.
func DefaultCatalogue() Catalogue {
	return Catalogue{defs: []Definition{{
		ID:        ProofOfSleep,
		Predicate: Crossed(100),
		Reward:    1000,
		Scope:     ScopeTeamMembers,
	}}}
}

// Definitions returns a copy of the catalogue entries.
func (c Catalogue) Definitions() []Definition {
	return append([]Definition(nil), c.defs...)
}

// Len returns the number of definitions.
func (c Catalogue) Len() int { return len(c.defs) }

type catalogueFile struct {
	Achievements []struct {
		ID     string `yaml:"id"`
		Metric string `yaml:"metric"`
		Target int64  `yaml:"target"`
		Reward int64  `yaml:"reward"`
		Scope  string `yaml:"scope"`
	} `yaml:"achievements"`
}

const metricTotalSuccess = "total_success_count"

// ParseCatalogue reads a YAML catalogue.
func ParseCatalogue(data []byte) (Catalogue, error) {
	var f catalogueFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Catalogue{}, fmt.Errorf("decode catalogue: %w", err)
	}
	defs := make([]Definition, 0, len(f.Achievements))
	for _, a := range f.Achievements {
		metric := a.Metric
		if metric == "" {
			metric = metricTotalSuccess
		}
		if metric != metricTotalSuccess {
			return Catalogue{}, fmt.Errorf("achievement %q: unsupported metric %q", a.ID, a.Metric)
		}
		if a.Target <= 0 {
			return Catalogue{}, fmt.Errorf("achievement %q: target must be positive", a.ID)
		}
		defs = append(defs, Definition{
			ID:        a.ID,
			Predicate: Crossed(a.Target),
			Reward:    a.Reward,
			Scope:     Scope(a.Scope),
		})
	}
	return NewCatalogue(defs...)
}

// LoadCatalogue reads a YAML catalogue from path, or returns the default one when path is empty.
func LoadCatalogue(path string) (Catalogue, error) {
	if path == "" {
		return DefaultCatalogue(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalogue{}, fmt.Errorf("read catalogue: %w", err)
	}
	return ParseCatalogue(data)
}
