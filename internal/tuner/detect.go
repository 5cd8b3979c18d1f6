package tuner

import (
	"context"
	"strings"

	"github.com/kalambet/ptune/internal/ollama"
)

// Sampling used for type detection: low temperature for a stable label.
var detectOptions = ollama.Options{Temperature: 0.2, TopP: 0.9}

// DetectType asks the model to label the task type of a template.
// Classification is the model call plus normalizeType; persistence of the
// label is the caller's concern.
func DetectType(ctx context.Context, g Generator, model, tmpl string) (string, error) {
	reply, err := g.Generate(ctx, model, typePrompt(tmpl), detectOptions)
	if err != nil {
		return "", err
	}
	return normalizeType(reply), nil
}

// normalizeType reduces a model reply to a single lowercase tag: the first
// whitespace-separated word, stripped of surrounding punctuation. An empty
// reply maps to "general".
func normalizeType(reply string) string {
	fields := strings.Fields(reply)
	if len(fields) == 0 {
		return "general"
	}
	tag := strings.ToLower(fields[0])
	tag = strings.Trim(tag, ".,:;!\"'`")
	if tag == "" {
		return "general"
	}
	return tag
}
