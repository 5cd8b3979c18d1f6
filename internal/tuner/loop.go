// Package tuner drives the interactive prompt-tuning session: fill the
// template, query the model, collect the user's verdict, and either stop
// or ask the model for a revision, persisting every step.
package tuner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/kalambet/ptune/internal/console"
	"github.com/kalambet/ptune/internal/history"
	"github.com/kalambet/ptune/internal/ollama"
	"github.com/kalambet/ptune/internal/template"
)

// Generator is the model gateway capability the loop needs.
type Generator interface {
	Generate(ctx context.Context, model, prompt string, opts ollama.Options) (string, error)
}

// Loop holds one tuning session's collaborators. History may be nil when
// learning is disabled; with Learn false the store is never read or
// written.
type Loop struct {
	Gateway Generator
	Model   string
	Options ollama.Options
	Console *console.Console
	History *history.Store
	Learn   bool
}

// Result reports how a session ended. Accepted false with no error means
// the session was abandoned; its history has no terminal entry.
type Result struct {
	Accepted bool
	Template string
	Session  int64
	Type     string
}

// Run executes the revision loop for one template and variable set until
// the user accepts a result or aborts. The template and variables may be
// incomplete; missing values are solicited interactively.
func (l *Loop) Run(ctx context.Context, tmpl string, vars map[string]string) (Result, error) {
	if vars == nil {
		vars = make(map[string]string)
	}
	learning := l.Learn && l.History != nil

	var session int64
	ptype := ""
	if learning {
		var err error
		session, err = l.History.NextSession()
		if err != nil {
			return Result{}, fmt.Errorf("allocating session: %w", err)
		}
		ptype, err = DetectType(ctx, l.Gateway, l.Model, tmpl)
		if err != nil {
			l.Console.Say("Could not detect prompt type (%v); using 'general'.", err)
			ptype = "general"
		} else {
			l.Console.Say("Detected prompt type: %s", ptype)
		}
		slog.Debug("session started", "session", session, "type", ptype, "model", l.Model)
	}

	for {
		filled, err := template.Fill(tmpl, vars)
		if err != nil {
			var missing *template.MissingVariableError
			if !errors.As(err, &missing) {
				return Result{}, fmt.Errorf("filling template: %w", err)
			}
			l.Console.Say("Missing variables: %s", strings.Join(missing.Names, ", "))
			if err := l.askVariables(missing.Names, vars); err != nil {
				return Result{}, err
			}
			continue
		}

		l.Console.Say("\n--- Current Prompt (Filled with Variables) ---\n")
		l.Console.Say("%s", filled)
		l.Console.Say("\nQuerying %s. Please wait, this may take some time...", l.Model)

		result, err := l.Gateway.Generate(ctx, l.Model, filled, l.Options)
		if err != nil {
			l.Console.Say("Model query failed: %v", err)
			retry, askErr := l.ask("Retry the query? (y/n): ")
			if askErr != nil {
				return Result{}, askErr
			}
			if isYes(retry) {
				continue
			}
			// Abort: the session ends with no terminal entry.
			l.Console.Say("Session aborted.")
			return Result{Accepted: false, Template: tmpl, Session: session, Type: ptype}, nil
		}

		l.Console.Say("\n--- Model Response ---\n")
		l.Console.Say("%s", result)

		feedback, err := l.ask("\nAny problems to fix? (describe the problem, or press Enter to finish): ")
		if err != nil {
			return Result{}, err
		}

		if feedback != "" {
			if learning {
				if err := l.History.SaveEntry(history.Entry{
					Session:  session,
					Type:     ptype,
					Model:    l.Model,
					Prompt:   filled,
					Result:   result,
					Feedback: feedback,
					Accepted: false,
				}); err != nil {
					return Result{}, err
				}
			}

			summary := ""
			if learning {
				summary, err = l.History.Summary(ptype)
				if err != nil {
					return Result{}, err
				}
			}

			l.Console.Say("\nRevising prompt now...")
			tmpl = l.revise(ctx, tmpl, feedback, summary)
			l.Console.Say("\n--- Revised Template ---\n")
			l.Console.Say("%s", tmpl)
			continue
		}

		answer, err := l.ask("Do you accept this prompt? (y/n): ")
		if err != nil {
			return Result{}, err
		}
		accepted := isYes(answer)

		if learning {
			if err := l.History.SaveEntry(history.Entry{
				Session:  session,
				Type:     ptype,
				Model:    l.Model,
				Prompt:   filled,
				Result:   result,
				Accepted: accepted,
			}); err != nil {
				return Result{}, err
			}
		}

		if err := l.offerSave(tmpl, vars); err != nil {
			return Result{}, err
		}

		if learning {
			if err := l.updateSummary(ctx, ptype, session); err != nil {
				return Result{}, err
			}
		}

		return Result{Accepted: accepted, Template: tmpl, Session: session, Type: ptype}, nil
	}
}

// revise asks the model for a replacement template and validates that
// every placeholder of the current template survives. A revision that
// drops a placeholder is retried exactly once; after that the current
// template is kept with a warning rather than discarding the user's
// feedback silently.
func (l *Loop) revise(ctx context.Context, tmpl, feedback, summary string) string {
	required := template.Detect(tmpl)
	prompt := revisionPrompt(tmpl, feedback, summary)

	for attempt := 0; attempt < 2; attempt++ {
		out, err := l.Gateway.Generate(ctx, l.Model, prompt, l.Options)
		if err != nil {
			l.Console.Say("Revision query failed: %v", err)
			continue
		}
		revised := strings.TrimSpace(out)
		if revised != "" && preservesPlaceholders(revised, required) {
			return revised
		}
		l.Console.Say("Revision dropped required placeholders; requesting a new revision...")
	}

	l.Console.Say("Warning: could not obtain a valid revision; keeping the current template.")
	return tmpl
}

func preservesPlaceholders(revised string, required []string) bool {
	have := make(map[string]bool)
	for _, name := range template.Detect(revised) {
		have[name] = true
	}
	for _, name := range required {
		if !have[name] {
			return false
		}
	}
	return true
}

// askVariables solicits a value for each named variable.
func (l *Loop) askVariables(names []string, vars map[string]string) error {
	for _, name := range names {
		value, err := l.Console.Ask(fmt.Sprintf("Please provide a value for variable '%s': ", name))
		if err != nil && err != io.EOF {
			return err
		}
		vars[name] = value
	}
	return nil
}

// offerSave lets the user persist the final template and variables to
// files for reuse. Empty input skips either save.
func (l *Loop) offerSave(tmpl string, vars map[string]string) error {
	path, err := l.ask("Enter filename to save the prompt template, or press Enter to skip: ")
	if err != nil {
		return err
	}
	if path != "" {
		if err := os.WriteFile(path, []byte(tmpl), 0o644); err != nil {
			return fmt.Errorf("saving template: %w", err)
		}
		l.Console.Say("Prompt saved to %s", path)
	}

	path, err = l.ask("Enter filename to save the variables JSON, or press Enter to skip: ")
	if err != nil {
		return err
	}
	if path != "" {
		data, err := json.MarshalIndent(vars, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding variables: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("saving variables: %w", err)
		}
		l.Console.Say("Variables saved to %s", path)
	}
	return nil
}

// ask reads one line, treating exhausted input as an empty answer so a
// closed stdin degrades to the default choice instead of an error.
func (l *Loop) ask(prompt string) (string, error) {
	answer, err := l.Console.Ask(prompt)
	if err == io.EOF {
		return "", nil
	}
	return answer, err
}

func isYes(answer string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	return a == "y" || a == "yes"
}
