package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/ptune/internal/catalog"
	"github.com/kalambet/ptune/internal/config"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Browse the prompts catalog",
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all prompts in the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer cat.Close()

		prompts, err := cat.ListAll()
		if err != nil {
			return err
		}
		if len(prompts) == 0 {
			fmt.Println("No prompts found in the catalog.")
			return nil
		}

		fmt.Println("\n=== Available Prompts ===")
		for _, p := range prompts {
			tag := "[no tag]"
			if p.Tag != "" {
				tag = "[" + p.Tag + "]"
			}
			fmt.Printf("ID %d %s: %s\n", p.ID, colorize(colorBold, tag), preview(p.Template, 60))
		}
		return nil
	},
}

var promptsTagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List catalog tags with prompt counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer cat.Close()

		tags, err := cat.ListTags()
		if err != nil {
			return err
		}
		if len(tags) == 0 {
			fmt.Println("No tags found in the catalog.")
			return nil
		}

		for _, tc := range tags {
			fmt.Printf("%s (%d)\n", colorize(colorBold, tc.Tag), tc.Count)
		}
		return nil
	},
}

func openCatalog(cmd *cobra.Command) (*catalog.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	path, _ := cmd.Flags().GetString("prompts-db")
	if path == "" {
		path = cfg.Storage.PromptsDB
	}
	return catalog.Open(path)
}

// preview renders the first line-folded n characters of a template.
func preview(template string, n int) string {
	flat := strings.ReplaceAll(template, "\n", " ")
	if len(flat) <= n {
		return flat
	}
	return flat[:n] + "..."
}

func init() {
	promptsCmd.PersistentFlags().String("prompts-db", "", "prompts catalog database file path")
	promptsCmd.AddCommand(promptsListCmd)
	promptsCmd.AddCommand(promptsTagsCmd)
}
