// Package chat orchestrates a conversation turn: resolve the character,
// build its system prompt, call the language model, then record both sides
// of the exchange.
package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"npcforge/internal/character"
	"npcforge/internal/gamevars"
	"npcforge/internal/prompts"
	"npcforge/pkg/logger"
)

// Completer is the language-model collaborator
type Completer interface {
	Generate(ctx context.Context, systemPrompt string, history []character.Message, userMsg string) (string, error)
}

// TurnResult is the outcome of one conversation turn
type TurnResult struct {
	Character string `json:"character"`
	Content   string `json:"content"`
	Command   bool   `json:"command"`
}

// Service runs conversation turns against the character store
type Service struct {
	store   *character.Store
	llm     Completer
	prompts *prompts.Loader
	vars    *gamevars.Store
	logger  *zap.Logger

	// The read-call-write sequence around the model call is not atomic on
	// its own; with goroutines serving turns in parallel a second turn for
	// the same character could interleave and its write would silently win.
	// One lock per character serializes turns without blocking the rest of
	// the cast.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewService creates a chat service
func NewService(store *character.Store, llm Completer, loader *prompts.Loader, vars *gamevars.Store) *Service {
	return &Service{
		store:   store,
		llm:     llm,
		prompts: loader,
		vars:    vars,
		locks:   map[string]*sync.Mutex{},
		logger:  logger.Get(),
	}
}

// RunTurn executes one turn for the character referenced by ref. Messages
// starting with "/" are admin commands and never reach the model.
func (s *Service) RunTurn(ctx context.Context, ref, message string) (*TurnResult, error) {
	if strings.HasPrefix(strings.TrimSpace(message), "/") {
		return s.handleCommand(message)
	}

	c, err := s.store.Get(ref)
	if err != nil {
		return nil, err
	}

	lock := s.lockFor(c.Name)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock; the character may have changed while a prior
	// turn held it
	c, err = s.store.Get(c.Name)
	if err != nil {
		return nil, err
	}

	systemPrompt := s.prompts.Render("npc_system", map[string]string{
		"name":          c.Name,
		"description":   c.Description,
		"personality":   c.Personality,
		"faction":       c.Faction,
		"location":      c.Location,
		"currentState":  c.CurrentState,
		"player_status": c.Player.Status,
	})

	reply, err := s.llm.Generate(ctx, systemPrompt, c.Conversations, message)
	if err != nil {
		return nil, fmt.Errorf("turn failed for %s: %w", c.Name, err)
	}

	if err := s.store.AppendMessage(c.ID, character.RolePlayer, message); err != nil {
		return nil, err
	}
	if err := s.store.AppendMessage(c.ID, character.RoleNPC, reply); err != nil {
		return nil, err
	}

	s.logger.Debug("Turn completed",
		zap.String("character", c.Name),
		zap.Int("history", len(c.Conversations)+2),
	)
	return &TurnResult{Character: c.Name, Content: reply}, nil
}

func (s *Service) lockFor(name string) *sync.Mutex {
	key := strings.ToLower(name)
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	if lock, ok := s.locks[key]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	s.locks[key] = lock
	return lock
}

// handleCommand serves the admin /var commands against the game-variable
// store
func (s *Service) handleCommand(message string) (*TurnResult, error) {
	fields := strings.Fields(strings.TrimSpace(message))
	result := &TurnResult{Command: true}

	if len(fields) == 0 || fields[0] != "/var" {
		result.Content = "Unknown command. Available: /var set|get|del|list"
		return result, nil
	}
	if len(fields) < 2 {
		result.Content = "Usage: /var set <key> <value> | /var get <key> | /var del <key> | /var list"
		return result, nil
	}

	switch fields[1] {
	case "set":
		if len(fields) < 4 {
			result.Content = "Usage: /var set <key> <value>"
			return result, nil
		}
		key := fields[2]
		value := strings.Join(fields[3:], " ")
		s.vars.Set(key, value)
		result.Content = fmt.Sprintf("%s = %s", key, value)
	case "get":
		if len(fields) < 3 {
			result.Content = "Usage: /var get <key>"
			return result, nil
		}
		if value, ok := s.vars.Get(fields[2]); ok {
			result.Content = fmt.Sprintf("%s = %s", fields[2], value)
		} else {
			result.Content = fmt.Sprintf("%s is not set", fields[2])
		}
	case "del":
		if len(fields) < 3 {
			result.Content = "Usage: /var del <key>"
			return result, nil
		}
		if s.vars.Delete(fields[2]) {
			result.Content = fields[2] + " deleted"
		} else {
			result.Content = fields[2] + " is not set"
		}
	case "list":
		vars := s.vars.List()
		if len(vars) == 0 {
			result.Content = "No variables set"
			return result, nil
		}
		lines := make([]string, 0, len(vars))
		for _, v := range vars {
			lines = append(lines, v.Key+" = "+v.Value)
		}
		result.Content = strconv.Itoa(len(vars)) + " variables:\n" + strings.Join(lines, "\n")
	default:
		result.Content = "Unknown subcommand: " + fields[1]
	}
	return result, nil
}
