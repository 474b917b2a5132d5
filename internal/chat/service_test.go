package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"npcforge/internal/character"
	"npcforge/internal/gamevars"
	"npcforge/internal/prompts"
	apperrors "npcforge/pkg/errors"
)

// fakeCompleter is a test double for the language model
type fakeCompleter struct {
	reply        string
	err          error
	systemPrompt string
	history      []character.Message
	userMsg      string
	calls        int
}

func (f *fakeCompleter) Generate(_ context.Context, systemPrompt string, history []character.Message, userMsg string) (string, error) {
	f.calls++
	f.systemPrompt = systemPrompt
	f.history = append([]character.Message(nil), history...)
	f.userMsg = userMsg
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestService(t *testing.T, llm Completer) (*Service, *character.Store) {
	t.Helper()
	store := character.NewStore()
	return NewService(store, llm, prompts.NewLoader("does-not-exist.yaml"), gamevars.NewStore()), store
}

func TestRunTurn_AppendsBothSides(t *testing.T) {
	llm := &fakeCompleter{reply: "Well met, traveler."}
	svc, store := newTestService(t, llm)

	c, err := store.Create("Blacksmith", map[string]interface{}{
		"description": "The town smith",
		"personality": "gruff",
	})
	require.NoError(t, err)

	result, err := svc.RunTurn(context.Background(), "blacksmith", "Hello there")
	require.NoError(t, err)
	assert.Equal(t, "Blacksmith", result.Character)
	assert.Equal(t, "Well met, traveler.", result.Content)
	assert.False(t, result.Command)

	// The prompt is built from the character sheet
	assert.Contains(t, llm.systemPrompt, "Blacksmith")
	assert.Contains(t, llm.systemPrompt, "gruff")
	assert.Equal(t, "Hello there", llm.userMsg)

	after, err := store.Get(c.ID)
	require.NoError(t, err)
	require.Len(t, after.Conversations, 2)
	assert.Equal(t, character.RolePlayer, after.Conversations[0].Role)
	assert.Equal(t, "Hello there", after.Conversations[0].Content)
	assert.Equal(t, character.RoleNPC, after.Conversations[1].Role)
	assert.Equal(t, "Well met, traveler.", after.Conversations[1].Content)
}

func TestRunTurn_HistoryPassedToModel(t *testing.T) {
	llm := &fakeCompleter{reply: "Again?"}
	svc, store := newTestService(t, llm)

	_, err := store.Create("Bard", nil)
	require.NoError(t, err)

	_, err = svc.RunTurn(context.Background(), "Bard", "first")
	require.NoError(t, err)
	_, err = svc.RunTurn(context.Background(), "Bard", "second")
	require.NoError(t, err)

	require.Len(t, llm.history, 2)
	assert.Equal(t, "first", llm.history[0].Content)
	assert.Equal(t, "Again?", llm.history[1].Content)
}

func TestRunTurn_UnknownCharacter(t *testing.T) {
	svc, _ := newTestService(t, &fakeCompleter{})

	_, err := svc.RunTurn(context.Background(), "Nobody", "Hello")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRunTurn_LLMFailureDoesNotWriteHistory(t *testing.T) {
	llm := &fakeCompleter{err: errors.New("upstream down")}
	svc, store := newTestService(t, llm)

	c, err := store.Create("Guard", nil)
	require.NoError(t, err)

	_, err = svc.RunTurn(context.Background(), "Guard", "Halt?")
	assert.Error(t, err)

	after, err := store.Get(c.ID)
	require.NoError(t, err)
	assert.Empty(t, after.Conversations)
}

func TestRunTurn_VarCommands(t *testing.T) {
	llm := &fakeCompleter{}
	svc, _ := newTestService(t, llm)

	result, err := svc.RunTurn(context.Background(), "anyone", "/var set weather stormy")
	require.NoError(t, err)
	assert.True(t, result.Command)
	assert.Contains(t, result.Content, "weather = stormy")

	result, err = svc.RunTurn(context.Background(), "anyone", "/var get weather")
	require.NoError(t, err)
	assert.Contains(t, result.Content, "stormy")

	result, err = svc.RunTurn(context.Background(), "anyone", "/var list")
	require.NoError(t, err)
	assert.Contains(t, result.Content, "1 variables")

	result, err = svc.RunTurn(context.Background(), "anyone", "/var del weather")
	require.NoError(t, err)
	assert.Contains(t, result.Content, "deleted")

	result, err = svc.RunTurn(context.Background(), "anyone", "/var get weather")
	require.NoError(t, err)
	assert.Contains(t, result.Content, "not set")

	// Commands never reach the model
	assert.Equal(t, 0, llm.calls)
}

func TestRunTurn_UnknownCommand(t *testing.T) {
	svc, _ := newTestService(t, &fakeCompleter{})

	result, err := svc.RunTurn(context.Background(), "anyone", "/dance")
	require.NoError(t, err)
	assert.True(t, result.Command)
	assert.Contains(t, result.Content, "Unknown command")
}
