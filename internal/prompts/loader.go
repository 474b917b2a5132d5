// Package prompts loads named prompt templates from a YAML file. A missing
// file or missing name falls back to the built-in template so a broken
// deployment still produces usable prompts.
package prompts

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"npcforge/pkg/logger"
)

var defaults = map[string]string{
	"npc_system": "You are {{name}}, a character in a living world.\n" +
		"Description: {{description}}\n" +
		"Personality: {{personality}}\n" +
		"Faction: {{faction}}\n" +
		"Location: {{location}}\n" +
		"Current state: {{currentState}}\n" +
		"Your standing toward the player is {{player_status}}.\n" +
		"Stay in character and answer as {{name}} would.",
	"snapshot_summary": "{{name}} ({{faction}}) at {{location}}: {{currentState}}",
}

// Loader resolves prompt templates by name
type Loader struct {
	templates map[string]string
	logger    *zap.Logger
}

// NewLoader reads templates from path. The file is optional; any template
// it does not define falls back to the built-in one.
func NewLoader(path string) *Loader {
	l := &Loader{
		templates: map[string]string{},
		logger:    logger.Get(),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.Warn("Prompt file not readable, using built-in templates",
			zap.String("path", path),
			zap.Error(err),
		)
		return l
	}

	var loaded map[string]string
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		l.logger.Warn("Prompt file not valid YAML, using built-in templates",
			zap.String("path", path),
			zap.Error(err),
		)
		return l
	}

	l.templates = loaded
	l.logger.Info("Prompt templates loaded",
		zap.String("path", path),
		zap.Int("count", len(loaded)),
	)
	return l
}

// Get returns the template for name, falling back to the built-in one
func (l *Loader) Get(name string) string {
	if tpl, ok := l.templates[name]; ok && tpl != "" {
		return tpl
	}
	if tpl, ok := defaults[name]; ok {
		return tpl
	}
	l.logger.Warn("Unknown prompt template", zap.String("name", name))
	return ""
}

// Render substitutes {{key}} placeholders in the named template
func (l *Loader) Render(name string, vars map[string]string) string {
	tpl := l.Get(name)
	if tpl == "" {
		return ""
	}
	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}
