// Package discovery answers read-only relationship queries over the
// character store: pairwise lookups, per-character discovery of direct,
// indirect and future relationships, and a full population pass.
//
// The pass over one character is O(N*K) for N characters with average
// relationship fan-out K, and the population pass is O(N^2*K). That is
// deliberate: N is bounded by a session's cast size, so an index would buy
// nothing.
package discovery

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"npcforge/internal/character"
	"npcforge/pkg/logger"
)

// Engine runs relationship queries against a character store. It never
// mutates characters.
type Engine struct {
	store  *character.Store
	logger *zap.Logger
}

// NewEngine creates a discovery engine over store
func NewEngine(store *character.Store) *Engine {
	return &Engine{
		store:  store,
		logger: logger.Get(),
	}
}

// RelationshipBetween resolves a and b (each an id or a name) and returns
// the directed labels both ways. A side that does not resolve is named in
// the result; the sentinel "none" stands in for an undefined direction.
func (e *Engine) RelationshipBetween(a, b string) *Pairwise {
	ca, err := e.store.Get(a)
	if err != nil {
		return &Pairwise{A: a, B: b, AToB: character.RelationshipNone, BToA: character.RelationshipNone, Missing: "a", MissingRef: a}
	}
	cb, err := e.store.Get(b)
	if err != nil {
		return &Pairwise{A: ca.Name, B: b, AToB: character.RelationshipNone, BToA: character.RelationshipNone, Missing: "b", MissingRef: b}
	}
	return e.pairwise(ca, cb)
}

func (e *Engine) pairwise(ca, cb *character.Character) *Pairwise {
	aToB, aDefined := ca.RelationshipTo(cb.Name)
	bToA, bDefined := cb.RelationshipTo(ca.Name)

	return &Pairwise{
		A:             ca.Name,
		B:             cb.Name,
		AToB:          aToB,
		BToA:          bToA,
		IsMutual:      aDefined && bDefined && aToB == bToA,
		IsConflicting: aDefined && bDefined && aToB != bToA,
	}
}

// DiscoverFor classifies every other stored character against the subject:
// direct when either direction has a label, indirect (only when there is no
// direct edge) through shared relationship targets, and future for edges
// whose target name has no registered character.
func (e *Engine) DiscoverFor(ref string) (*Report, error) {
	subject, err := e.store.Get(ref)
	if err != nil {
		return nil, err
	}
	return e.discover(subject), nil
}

func (e *Engine) discover(subject *character.Character) *Report {
	report := &Report{
		CharacterID: subject.ID,
		Character:   subject.Name,
		Direct:      []DirectLink{},
		Indirect:    []IndirectLink{},
		Future:      []FutureLink{},
	}

	subjectTargets := sortedTargets(subject)

	for _, other := range e.store.Snapshot() {
		if other.ID == subject.ID {
			continue
		}
		report.Stats.Examined++

		pw := e.pairwise(subject, other)
		if pw.AToB != character.RelationshipNone || pw.BToA != character.RelationshipNone {
			report.Stats.Direct++
			if pw.IsMutual {
				report.Stats.Mutual++
			}
			if pw.IsConflicting {
				report.Stats.Conflicting++
			}
			report.Direct = append(report.Direct, DirectLink{
				Name:          other.Name,
				AToB:          pw.AToB,
				BToA:          pw.BToA,
				IsMutual:      pw.IsMutual,
				IsConflicting: pw.IsConflicting,
			})
			continue
		}

		// No direct edge: look for shared relationship targets
		linked := false
		for _, target := range subjectTargets {
			if strings.EqualFold(target, other.Name) {
				continue
			}
			otherLabel, otherDefined := other.RelationshipTo(target)
			if !otherDefined {
				continue
			}
			subjectLabel, _ := subject.RelationshipTo(target)
			report.Indirect = append(report.Indirect, IndirectLink{
				Name:           other.Name,
				Through:        target,
				TargetToCommon: subjectLabel,
				OtherToCommon:  otherLabel,
			})
			linked = true
		}
		if linked {
			report.Stats.IndirectPairs++
		}
	}

	// Edges pointing at names with no registered character yet
	for _, target := range subjectTargets {
		if _, err := e.store.FindByName(target); err == nil {
			continue
		}
		label, _ := subject.RelationshipTo(target)
		report.Future = append(report.Future, FutureLink{
			Name:        target,
			Label:       label,
			Placeholder: true,
		})
	}

	return report
}

// Network runs discovery for the subject and attaches a point-in-time
// metadata snapshot of the other party (or the intermediate party for
// indirect links) to each result.
func (e *Engine) Network(ref string) (*Report, error) {
	report, err := e.DiscoverFor(ref)
	if err != nil {
		return nil, err
	}

	for i := range report.Direct {
		report.Direct[i].Profile = e.profileOf(report.Direct[i].Name)
	}
	for i := range report.Indirect {
		report.Indirect[i].ThroughProfile = e.profileOf(report.Indirect[i].Through)
	}
	return report, nil
}

func (e *Engine) profileOf(name string) *Profile {
	c, err := e.store.FindByName(name)
	if err != nil {
		return nil
	}
	return &Profile{
		Name:         c.Name,
		Description:  c.Description,
		Personality:  c.Personality,
		Faction:      c.Faction,
		Location:     c.Location,
		CurrentState: c.CurrentState,
	}
}

// DiscoverAll runs per-character discovery for the whole population.
// Characters that vanish mid-pass are counted as failures, not fatal.
func (e *Engine) DiscoverAll() *PopulationReport {
	pop := &PopulationReport{Reports: []*Report{}}

	for _, id := range e.store.ListIDs() {
		report, err := e.DiscoverFor(id)
		if err != nil {
			pop.Totals.Failures++
			e.logger.Warn("Skipping character during population discovery",
				zap.String("id", id),
				zap.Error(err),
			)
			continue
		}
		pop.Reports = append(pop.Reports, report)
		pop.Totals.Characters++
		pop.Totals.Direct += report.Stats.Direct
		pop.Totals.Mutual += report.Stats.Mutual
		pop.Totals.Conflicting += report.Stats.Conflicting
		pop.Totals.IndirectPairs += report.Stats.IndirectPairs
		pop.Totals.Future += len(report.Future)
	}

	sort.Slice(pop.Reports, func(i, j int) bool {
		return pop.Reports[i].Character < pop.Reports[j].Character
	})
	return pop
}

func sortedTargets(c *character.Character) []string {
	targets := make([]string, 0, len(c.Relationships))
	for name := range c.Relationships {
		targets = append(targets, name)
	}
	sort.Strings(targets)
	return targets
}
