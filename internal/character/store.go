package character

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"npcforge/pkg/errors"
	"npcforge/pkg/logger"
)

// Store is the in-memory character registry. It is the single source of
// truth for character state; there is no persistence.
type Store struct {
	mu     sync.RWMutex
	byID   map[string]*Character
	byName map[string]string // lower(name) -> id
	logger *zap.Logger
}

// NewStore creates an empty character store
func NewStore() *Store {
	return &Store{
		byID:   make(map[string]*Character),
		byName: make(map[string]string),
		logger: logger.Get(),
	}
}

// Create registers a character under name, replacing any existing character
// with the same name (case-insensitive). The replaced character's id is
// invalidated and its conversation history discarded. fields is a canonical
// metadata payload (run it through normalize first for external input).
func (s *Store) Create(name string, fields map[string]interface{}) (*Character, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewBaseError(errors.ErrorTypeCharacter, "character name is required", nil)
	}

	now := time.Now()
	c := &Character{
		ID:   uuid.New().String(),
		Name: name,
		Player: PlayerRelationship{
			Status:   "neutral",
			Affinity: 50,
			Trust:    50,
			Respect:  50,
			History:  []string{},
		},
		Inventory:     []string{},
		Skills:        []string{},
		Relationships: map[string]string{},
		Conversations: []Message{},
		CreatedAt:     now,
		LastUpdated:   now,
	}
	applyFields(c, fields)

	key := strings.ToLower(name)

	s.mu.Lock()
	if oldID, ok := s.byName[key]; ok {
		delete(s.byID, oldID)
		s.logger.Info("Replacing character",
			zap.String("name", name),
			zap.String("old_id", oldID),
			zap.String("new_id", c.ID),
		)
	}
	s.byName[key] = c.ID
	s.byID[c.ID] = c
	s.mu.Unlock()

	s.logger.Debug("Character registered",
		zap.String("id", c.ID),
		zap.String("name", c.Name),
	)
	return c.Clone(), nil
}

// Get resolves ref as an id first, then falls back to a case-insensitive
// name lookup. The name is the user-facing handle, the id is internal.
func (s *Store) Get(ref string) (*Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, err := s.resolveLocked(ref)
	if err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

// FindByName looks a character up by case-insensitive exact name match
func (s *Store) FindByName(name string) (*Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byName[strings.ToLower(name)]; ok {
		if c, ok := s.byID[id]; ok {
			return c.Clone(), nil
		}
	}
	return nil, errors.NewCharacterNotFound(name)
}

// UpdateMetadata shallow-merges fields into the character. Relationships
// are only touched when explicitly present in fields.
func (s *Store) UpdateMetadata(ref string, fields map[string]interface{}) (*Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.resolveLocked(ref)
	if err != nil {
		return nil, err
	}
	applyFields(c, fields)
	c.LastUpdated = time.Now()
	return c.Clone(), nil
}

// AppendMessage appends a conversation entry. Only the player and npc roles
// are accepted.
func (s *Store) AppendMessage(ref, role, content string) error {
	if role != RolePlayer && role != RoleNPC {
		return errors.NewCharacterInvalidRole(role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.resolveLocked(ref)
	if err != nil {
		return err
	}
	c.Conversations = append(c.Conversations, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	c.LastUpdated = time.Now()
	return nil
}

// Remove deletes a character
func (s *Store) Remove(ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.resolveLocked(ref)
	if err != nil {
		return err
	}
	delete(s.byID, c.ID)
	delete(s.byName, strings.ToLower(c.Name))
	s.logger.Info("Character removed",
		zap.String("id", c.ID),
		zap.String("name", c.Name),
	)
	return nil
}

// ListIDs returns the ids of all live characters in stable order
func (s *Store) ListIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of live characters
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Snapshot returns clones of every live character. Discovery and the
// background refresh operate on snapshots, never on live pointers.
func (s *Store) Snapshot() []*Character {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Character, 0, len(s.byID))
	for _, c := range s.byID {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Store) resolveLocked(ref string) (*Character, error) {
	if c, ok := s.byID[ref]; ok {
		return c, nil
	}
	if id, ok := s.byName[strings.ToLower(ref)]; ok {
		if c, ok := s.byID[id]; ok {
			return c, nil
		}
	}
	return nil, errors.NewCharacterNotFound(ref)
}

// applyFields shallow-merges a canonical metadata payload into c. Unknown
// keys land in the extras bag.
func applyFields(c *Character, fields map[string]interface{}) {
	for key, value := range fields {
		switch key {
		case "name", "id", "conversations":
			// Immutable through metadata merges
		case "description":
			c.Description = asString(value)
		case "personality":
			c.Personality = asString(value)
		case "location":
			c.Location = asString(value)
		case "currentState", "current_state":
			c.CurrentState = asString(value)
		case "faction":
			c.Faction = asString(value)
		case "inventory":
			c.Inventory = asStringSlice(value)
		case "skills":
			c.Skills = asStringSlice(value)
		case "relationships":
			c.Relationships = asStringMap(value)
		case "player_relationship":
			applyPlayerRelationship(&c.Player, value)
		default:
			if c.Extra == nil {
				c.Extra = make(map[string]interface{})
			}
			c.Extra[key] = value
		}
	}
}

func applyPlayerRelationship(p *PlayerRelationship, value interface{}) {
	m, ok := value.(map[string]interface{})
	if !ok {
		return
	}
	if v, ok := m["status"]; ok {
		if s := asString(v); s != "" {
			p.Status = s
		}
	}
	if v, ok := m["affinity"]; ok {
		p.Affinity = clampScore(asInt(v, p.Affinity))
	}
	if v, ok := m["trust"]; ok {
		p.Trust = clampScore(asInt(v, p.Trust))
	}
	if v, ok := m["respect"]; ok {
		p.Respect = clampScore(asInt(v, p.Respect))
	}
	if v, ok := m["history"]; ok {
		p.History = append(p.History, asStringSlice(v)...)
	}
}
