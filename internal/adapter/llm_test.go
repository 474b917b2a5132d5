package adapter

import (
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"npcforge/internal/character"
)

func TestNewLLMAdapter_DefaultsAPIKey(t *testing.T) {
	a := NewLLMAdapter("http://localhost:4000", "", "test-model")
	assert.Equal(t, "test-model", a.GetModel())
}

func TestSetModel(t *testing.T) {
	a := NewLLMAdapter("http://localhost:4000", "key", "first")

	a.SetModel("second")
	assert.Equal(t, "second", a.GetModel())

	// Empty model is ignored
	a.SetModel("")
	assert.Equal(t, "second", a.GetModel())
}

func TestBuildMessages(t *testing.T) {
	history := []character.Message{
		{Role: character.RolePlayer, Content: "Hello"},
		{Role: character.RoleNPC, Content: "Well met"},
	}

	messages := buildMessages("You are the Mayor.", history, "How is the town?")
	require.Len(t, messages, 4)

	assert.Equal(t, openai.ChatMessageRoleSystem, messages[0].Role)
	assert.Equal(t, "You are the Mayor.", messages[0].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, messages[1].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, messages[2].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, messages[3].Role)
	assert.Equal(t, "How is the town?", messages[3].Content)
}

func TestBuildMessages_EmptyHistory(t *testing.T) {
	messages := buildMessages("system", nil, "hi")
	require.Len(t, messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, messages[1].Role)
}
