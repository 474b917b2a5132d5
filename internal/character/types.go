package character

import (
	"strings"
	"time"
)

// Conversation roles
const (
	RolePlayer = "player"
	RoleNPC    = "npc"
)

// RelationshipNone is the sentinel label for an undefined directed edge
const RelationshipNone = "none"

// Message is a single conversation entry for a character
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// PlayerRelationship tracks how a character stands toward the player.
// History holds milestone notes, not a transcript.
type PlayerRelationship struct {
	Status   string   `json:"status"`
	Affinity int      `json:"affinity"`
	Trust    int      `json:"trust"`
	Respect  int      `json:"respect"`
	History  []string `json:"history"`
}

// Character represents a registered NPC
type Character struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Personality  string `json:"personality"`
	Location     string `json:"location"`
	CurrentState string `json:"currentState"`
	Faction      string `json:"faction"`

	Inventory []string `json:"inventory"`
	Skills    []string `json:"skills"`

	// Extra holds metadata keys the model has no field for
	Extra map[string]interface{} `json:"extra,omitempty"`

	Player PlayerRelationship `json:"player_relationship"`

	// Relationships maps another character's NAME (not id) to a free-form
	// label. The target name may not be registered yet; such edges are
	// reported as "future" relationships by discovery.
	Relationships map[string]string `json:"relationships"`

	Conversations []Message `json:"conversations"`

	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// RelationshipTo returns the directed label from c toward the named target.
// Lookup is case-insensitive: an exact key hit wins, otherwise the keys are
// scanned with case folding.
func (c *Character) RelationshipTo(target string) (string, bool) {
	if label, ok := c.Relationships[target]; ok {
		return label, true
	}
	for name, label := range c.Relationships {
		if strings.EqualFold(name, target) {
			return label, true
		}
	}
	return RelationshipNone, false
}

// Clone returns a deep copy of the character. Store reads hand out clones
// so readers never share mutable state with writers.
func (c *Character) Clone() *Character {
	if c == nil {
		return nil
	}
	out := *c
	out.Inventory = append([]string(nil), c.Inventory...)
	out.Skills = append([]string(nil), c.Skills...)
	out.Player.History = append([]string(nil), c.Player.History...)
	out.Conversations = append([]Message(nil), c.Conversations...)
	out.Relationships = make(map[string]string, len(c.Relationships))
	for k, v := range c.Relationships {
		out.Relationships[k] = v
	}
	if c.Extra != nil {
		out.Extra = make(map[string]interface{}, len(c.Extra))
		for k, v := range c.Extra {
			out.Extra[k] = v
		}
	}
	return &out
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
