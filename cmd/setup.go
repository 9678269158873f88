package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/nessus-rider/pkg/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard for the tunables file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}

		var models []string
		if m, err := fetchModels(cmd.Context()); err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Warning: could not fetch models: %v\n", err)
		} else {
			models = m
		}

		if err := runSetup(cmd.InOrStdin(), cmd.OutOrStdout(), cfg, models); err != nil {
			return err
		}
		if err := config.SaveConfig(path, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
		return nil
	},
}

// runSetup asks for each tunable in turn. An empty answer keeps the current value.
func runSetup(in io.Reader, out io.Writer, cfg *config.Config, models []string) error {
	scanner := bufio.NewScanner(in)
	ask := func(prompt, current string) string {
		fmt.Fprintf(out, "%s [%s] > ", prompt, current)
		if !scanner.Scan() {
			return ""
		}
		return strings.TrimSpace(scanner.Text())
	}

	fmt.Fprintln(out, "nessus-rider setup")
	fmt.Fprintln(out, "---------------------------------")

	// 1. Model
	if len(models) > 0 {
		fmt.Fprintf(out, "Step 1: Choose the Gemini model (%d available)\n", len(models))
		for i, m := range models {
			fmt.Fprintf(out, "%d. %s\n", i+1, m)
		}
		if sel := ask("Select model (number)", cfg.Model); sel != "" {
			idx, err := strconv.Atoi(sel)
			if err != nil || idx < 1 || idx > len(models) {
				fmt.Fprintln(out, "Invalid selection, keeping current model.")
			} else {
				cfg.Model = models[idx-1]
			}
		}
	} else if m := ask("Step 1: Gemini model name", cfg.Model); m != "" {
		cfg.Model = m
	}

	// 2. Quota cooldown
	if v := ask("Step 2: Cooldown when the translation quota is reached", cfg.Quota.Cooldown.String()); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid cooldown %q: %w", v, err)
		}
		cfg.Quota.Cooldown = d
	}

	// 3. Translation cache
	if v := ask("Step 3: Translation cache file", cfg.TranslationsFile); v != "" {
		cfg.TranslationsFile = v
	}

	// 4. Minimum severity
	if v := ask("Step 4: Minimum Nessus severity to report (1-4)", strconv.Itoa(cfg.MinSeverity)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid severity %q: %w", v, err)
		}
		cfg.MinSeverity = n
	}

	return cfg.Validate()
}

func init() {
	configCmd.AddCommand(setupCmd)
}
