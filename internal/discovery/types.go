package discovery

// Pairwise is the result of a directed lookup between two characters. A
// side that failed to resolve is reported through Missing rather than an
// error.
type Pairwise struct {
	A             string `json:"a"`
	B             string `json:"b"`
	AToB          string `json:"a_to_b"`
	BToA          string `json:"b_to_a"`
	IsMutual      bool   `json:"is_mutual"`
	IsConflicting bool   `json:"is_conflicting"`

	// Missing names the side ("a" or "b") that did not resolve, with the
	// reference the caller used
	Missing    string `json:"missing,omitempty"`
	MissingRef string `json:"missing_ref,omitempty"`
}

// Found reports whether both sides resolved
func (p *Pairwise) Found() bool {
	return p.Missing == ""
}

// Profile is a point-in-time metadata snapshot of a character, attached
// during network assembly. It is a copy, not a live reference.
type Profile struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Personality  string `json:"personality"`
	Faction      string `json:"faction"`
	Location     string `json:"location"`
	CurrentState string `json:"currentState"`
}

// DirectLink is an explicit edge (in either direction) between the subject
// and another registered character
type DirectLink struct {
	Name          string   `json:"name"`
	AToB          string   `json:"a_to_b"`
	BToA          string   `json:"b_to_a"`
	IsMutual      bool     `json:"is_mutual"`
	IsConflicting bool     `json:"is_conflicting"`
	Profile       *Profile `json:"profile,omitempty"`
}

// IndirectLink connects the subject to another character through a shared
// relationship target. A pair with several shared targets yields one link
// per target.
type IndirectLink struct {
	Name           string   `json:"name"`
	Through        string   `json:"through"`
	TargetToCommon string   `json:"target_to_common"`
	OtherToCommon  string   `json:"other_to_common"`
	ThroughProfile *Profile `json:"through_profile,omitempty"`
}

// FutureLink is an edge whose target name has no registered character yet.
// This is intentional, not an error state.
type FutureLink struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Placeholder bool   `json:"placeholder"`
}

// Stats holds the running counts of one discovery pass
type Stats struct {
	Examined      int `json:"examined"`
	Direct        int `json:"direct"`
	Mutual        int `json:"mutual"`
	Conflicting   int `json:"conflicting"`
	IndirectPairs int `json:"indirect_pairs"`
}

// Report is the full discovery result for one character
type Report struct {
	CharacterID string         `json:"character_id"`
	Character   string         `json:"character"`
	Direct      []DirectLink   `json:"direct"`
	Indirect    []IndirectLink `json:"indirect"`
	Future      []FutureLink   `json:"future"`
	Stats       Stats          `json:"stats"`
}

// PopulationTotals accumulates counts across a full population pass
type PopulationTotals struct {
	Characters    int `json:"characters"`
	Direct        int `json:"direct"`
	Mutual        int `json:"mutual"`
	Conflicting   int `json:"conflicting"`
	IndirectPairs int `json:"indirect_pairs"`
	Future        int `json:"future"`
	Failures      int `json:"failures"`
}

// PopulationReport is the result of discovery across every stored character
type PopulationReport struct {
	Totals  PopulationTotals `json:"totals"`
	Reports []*Report        `json:"reports"`
}
