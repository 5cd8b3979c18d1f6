package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kalambet/ptune/internal/config"
	"github.com/kalambet/ptune/internal/ollama"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available in the local Ollama instance",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		client := ollama.New(cfg.Ollama.BaseURL)
		models, err := client.ListModels(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing models from %s: %w", cfg.Ollama.BaseURL, err)
		}
		if len(models) == 0 {
			fmt.Println("No models found in Ollama.")
			return nil
		}

		for _, m := range models {
			fmt.Println(m)
		}
		return nil
	},
}
