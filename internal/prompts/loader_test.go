package prompts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoader_MissingFileFallsBack(t *testing.T) {
	l := NewLoader("no-such-file.yaml")

	tpl := l.Get("npc_system")
	assert.Contains(t, tpl, "{{name}}")
}

func TestLoader_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	content := "npc_system: \"You are {{name}}. Keep it short.\"\ncustom: \"Hello {{who}}\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	l := NewLoader(path)

	assert.Equal(t, "You are {{name}}. Keep it short.", l.Get("npc_system"))
	assert.Equal(t, "Hello {{who}}", l.Get("custom"))
	// Names the file does not define still fall back
	assert.NotEmpty(t, l.Get("snapshot_summary"))
}

func TestLoader_InvalidYAMLFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":: not yaml ["), 0o644))

	l := NewLoader(path)
	assert.Contains(t, l.Get("npc_system"), "{{name}}")
}

func TestLoader_UnknownNameIsEmpty(t *testing.T) {
	l := NewLoader("no-such-file.yaml")
	assert.Equal(t, "", l.Get("does_not_exist"))
}

func TestLoader_Render(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	content := "greeting: \"{{name}} of {{faction}} says hi to {{name}}\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	l := NewLoader(path)
	got := l.Render("greeting", map[string]string{
		"name":    "Mayor",
		"faction": "Council",
	})
	assert.Equal(t, "Mayor of Council says hi to Mayor", got)
}

func TestLoader_RenderLeavesUnknownPlaceholders(t *testing.T) {
	l := NewLoader("no-such-file.yaml")

	got := l.Render("npc_system", map[string]string{"name": "Guard"})
	assert.Contains(t, got, "Guard")
	assert.Contains(t, got, "{{description}}")
}
