package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kalambet/ptune/internal/catalog"
	"github.com/kalambet/ptune/internal/config"
	"github.com/kalambet/ptune/internal/console"
	"github.com/kalambet/ptune/internal/history"
	"github.com/kalambet/ptune/internal/ollama"
	"github.com/kalambet/ptune/internal/tuner"
)

var tuneCmd = &cobra.Command{
	Use:   "tune",
	Short: "Run an interactive prompt tuning session",
	Long: `Run an interactive prompt tuning session.

The template comes from the prompts catalog (--prompt-id / --prompt-tag),
a template file (--prompt), or interactive entry, in that priority order.

Examples:
  ptune tune --prompt prompt.txt --vars vars.json --model gemma3:1b
  ptune tune --prompt-tag summary --random-vars --learn
  ptune tune --prompt-id 3 --learn --db tune_prompt.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTune(cmd)
	},
}

func init() {
	tuneCmd.Flags().String("prompt", "prompt.txt", "prompt template file")
	tuneCmd.Flags().String("vars", "vars.json", "variables file (JSON)")
	tuneCmd.Flags().String("model", "", "model name (interactive selection when empty)")
	tuneCmd.Flags().Bool("learn", false, "record history and merge feedback into per-type preference summaries")
	tuneCmd.Flags().String("db", "", "history database file path")
	tuneCmd.Flags().String("prompts-db", "", "prompts catalog database file path")
	tuneCmd.Flags().Int64("prompt-id", 0, "load a prompt from the catalog by id")
	tuneCmd.Flags().String("prompt-tag", "", "load a prompt from the catalog by tag")
	tuneCmd.Flags().Bool("random-vars", false, "pick uniformly among prompts sharing the tag")
}

func runTune(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	promptFile, _ := cmd.Flags().GetString("prompt")
	varsFile, _ := cmd.Flags().GetString("vars")
	modelFlag, _ := cmd.Flags().GetString("model")
	learn, _ := cmd.Flags().GetBool("learn")
	dbFlag, _ := cmd.Flags().GetString("db")
	promptsDBFlag, _ := cmd.Flags().GetString("prompts-db")
	promptID, _ := cmd.Flags().GetInt64("prompt-id")
	promptTag, _ := cmd.Flags().GetString("prompt-tag")
	randomVars, _ := cmd.Flags().GetBool("random-vars")

	if modelFlag != "" {
		cfg.Ollama.Model = modelFlag
	}
	if dbFlag != "" {
		cfg.Storage.HistoryDB = dbFlag
	}
	if promptsDBFlag != "" {
		cfg.Storage.PromptsDB = promptsDBFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cons := console.New(os.Stdin, os.Stdout)
	client := ollama.New(cfg.Ollama.BaseURL)

	model := cfg.Ollama.Model
	if model == "" {
		model, err = selectModel(ctx, client, cons)
		if err != nil {
			return err
		}
	}

	// The catalog is optional unless explicitly addressed by id or tag.
	cat, err := catalog.Open(cfg.Storage.PromptsDB)
	if err != nil {
		if !errors.Is(err, catalog.ErrUnavailable) {
			return err
		}
		if promptID > 0 || promptTag != "" {
			return fmt.Errorf("loading prompt from catalog: %w", err)
		}
		cat = nil
	}
	if cat != nil {
		defer cat.Close()
	}

	tmpl, vars, err := loadTemplate(cons, cat, sourceSpec{
		promptID:   promptID,
		promptTag:  promptTag,
		promptFile: promptFile,
		randomVars: randomVars,
	})
	if err != nil {
		return err
	}

	if len(vars) == 0 {
		vars, err = loadVarsFile(varsFile)
		if err != nil {
			return err
		}
	}

	var store *history.Store
	if learn {
		store, err = history.Open(cfg.Storage.HistoryDB)
		if err != nil {
			return fmt.Errorf("opening history database: %w", err)
		}
		defer store.Close()
	}

	loop := &tuner.Loop{
		Gateway: client,
		Model:   model,
		Options: ollama.Options{
			Temperature: cfg.Ollama.Temperature,
			TopP:        cfg.Ollama.TopP,
			NumThread:   cfg.Ollama.NumThread,
		},
		Console: cons,
		History: store,
		Learn:   learn,
	}

	res, err := loop.Run(ctx, tmpl, vars)
	if err != nil {
		return err
	}
	if res.Accepted {
		printSuccess("Prompt accepted.")
	} else {
		printWarning("Session ended without acceptance.")
	}
	return nil
}

// selectModel lists the local models and asks the user to pick one. When
// the gateway cannot be reached, it degrades to manual model name entry.
func selectModel(ctx context.Context, client *ollama.Client, cons *console.Console) (string, error) {
	models, err := client.ListModels(ctx)
	if err != nil {
		printWarning("Cannot list models from Ollama: %v", err)
		name, askErr := cons.Ask("Enter a model name manually: ")
		if askErr != nil {
			return "", askErr
		}
		if name == "" {
			return "", fmt.Errorf("no model selected")
		}
		return name, nil
	}
	if len(models) == 0 {
		return "", fmt.Errorf("no models found in Ollama")
	}

	cons.Say("Available models:")
	for i, m := range models {
		cons.Say("  [%d] %s", i+1, m)
	}
	for {
		choice, err := cons.Ask("Pick a model by number: ")
		if err != nil {
			return "", err
		}
		n, convErr := strconv.Atoi(choice)
		if convErr != nil || n < 1 || n > len(models) {
			cons.Say("Invalid choice. Please enter a number between 1 and %d.", len(models))
			continue
		}
		return models[n-1], nil
	}
}

type sourceSpec struct {
	promptID   int64
	promptTag  string
	promptFile string
	randomVars bool
}

// loadTemplate resolves the template and any catalog-stored variables.
// Priority: catalog by id or tag, then the template file, then the tag
// menu (when a catalog is available and nothing was specified), then
// interactive entry.
func loadTemplate(cons *console.Console, cat *catalog.Store, spec sourceSpec) (string, map[string]string, error) {
	if cat != nil && spec.promptID > 0 {
		p, err := cat.GetByID(spec.promptID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				printWarning("No prompt with id %d in the catalog.", spec.promptID)
				return promptFromFileOrInput(cons, spec.promptFile)
			}
			return "", nil, err
		}
		return catalogPrompt(cons, cat, p, "loaded")
	}

	if cat != nil && spec.promptTag != "" {
		return promptByTag(cons, cat, spec.promptTag, spec.randomVars, spec.promptFile)
	}

	if _, err := os.Stat(spec.promptFile); err == nil {
		data, err := os.ReadFile(spec.promptFile)
		if err != nil {
			return "", nil, fmt.Errorf("reading template file: %w", err)
		}
		cons.Say("Prompt template loaded from %s", spec.promptFile)
		return string(data), nil, nil
	}

	// Nothing specified: offer the catalog's tags before manual entry.
	if cat != nil {
		tag, err := selectTag(cons, cat)
		if err != nil {
			return "", nil, err
		}
		if tag != "" {
			return promptByTag(cons, cat, tag, spec.randomVars, spec.promptFile)
		}
	}

	return promptFromFileOrInput(cons, spec.promptFile)
}

func promptByTag(cons *console.Console, cat *catalog.Store, tag string, randomVars bool, promptFile string) (string, map[string]string, error) {
	candidates, err := cat.GetByTag(tag)
	if err != nil {
		return "", nil, err
	}
	if len(candidates) == 0 {
		printWarning("No prompt with tag %q in the catalog.", tag)
		return promptFromFileOrInput(cons, promptFile)
	}
	if randomVars {
		return catalogPrompt(cons, cat, catalog.PickRandom(candidates), "randomly selected")
	}
	return catalogPrompt(cons, cat, candidates[0], "loaded")
}

func catalogPrompt(cons *console.Console, cat *catalog.Store, p catalog.Prompt, how string) (string, map[string]string, error) {
	cons.Say("Prompt %s from catalog (ID: %d, Tag: %s)", how, p.ID, p.Tag)
	vars, err := cat.Variables(p.ID)
	if err != nil {
		return "", nil, err
	}
	if len(vars) > 0 {
		cons.Say("Loaded %d variables from catalog", len(vars))
	}
	return p.Template, vars, nil
}

// selectTag shows the catalog's tags as a numbered menu. Empty return
// means the user skipped.
func selectTag(cons *console.Console, cat *catalog.Store) (string, error) {
	tags, err := cat.ListTags()
	if err != nil {
		return "", err
	}
	if len(tags) == 0 {
		return "", nil
	}

	cons.Say("\n=== Available Prompt Tags ===")
	cons.Say("  [0] Skip - enter prompt manually")
	for i, tc := range tags {
		plural := ""
		if tc.Count > 1 {
			plural = "s"
		}
		cons.Say("  [%d] %s (%d prompt%s)", i+1, tc.Tag, tc.Count, plural)
	}
	for {
		choice, err := cons.Ask("\nSelect a tag by number (or press Enter to skip): ")
		if err != nil {
			return "", err
		}
		if choice == "" || choice == "0" {
			return "", nil
		}
		n, convErr := strconv.Atoi(choice)
		if convErr != nil || n < 1 || n > len(tags) {
			cons.Say("Invalid choice. Please enter a valid number.")
			continue
		}
		cons.Say("Selected tag: %s", tags[n-1].Tag)
		return tags[n-1].Tag, nil
	}
}

func promptFromFileOrInput(cons *console.Console, promptFile string) (string, map[string]string, error) {
	if _, err := os.Stat(promptFile); err == nil {
		data, err := os.ReadFile(promptFile)
		if err != nil {
			return "", nil, fmt.Errorf("reading template file: %w", err)
		}
		cons.Say("Prompt template loaded from %s", promptFile)
		return string(data), nil, nil
	}

	tmpl, err := cons.AskMultiline("Please input the prompt template (use {var} for variables). End with a blank line:")
	if err != nil {
		return "", nil, err
	}
	if strings.TrimSpace(tmpl) == "" {
		return "", nil, fmt.Errorf("no prompt template provided")
	}
	return tmpl, nil, nil
}

// loadVarsFile reads a JSON variables file. A missing file or an empty
// file yields an empty set rather than an error.
func loadVarsFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading variables file: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		printWarning("Variables file %s is empty; starting with no variables.", path)
		return map[string]string{}, nil
	}

	var vars map[string]string
	if err := json.Unmarshal(data, &vars); err != nil {
		return nil, fmt.Errorf("decoding variables file %s: %w", path, err)
	}
	printStep("Loaded %d variables from %s", len(vars), path)
	return vars, nil
}
