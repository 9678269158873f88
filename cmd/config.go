package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/user/nessus-rider/pkg/config"
	"github.com/user/nessus-rider/pkg/translate"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage run tunables (model, quota, files)",
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective tunables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", path, data)
		return nil
	},
}

var setModelCmd = &cobra.Command{
	Use:   "set-model",
	Short: "Set the Gemini model used for translation",
	RunE: func(cmd *cobra.Command, args []string) error {
		model, _ := cmd.Flags().GetString("model")
		if model == "" {
			return fmt.Errorf("--model is required")
		}

		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}
		cfg.Model = model
		if err := config.SaveConfig(path, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Active model updated: %s\n", cfg.Model)
		return nil
	},
}

var listModelsCmd = &cobra.Command{
	Use:   "list-models",
	Short: "List the Gemini models that can translate",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		models, err := fetchModels(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Available Models (gemini):")
		for _, m := range models {
			mark := " "
			if m == cfg.Model {
				mark = "*"
			}
			fmt.Fprintf(out, "%s %s\n", mark, m)
		}
		return nil
	},
}

func fetchModels(ctx context.Context) ([]string, error) {
	creds := config.LoadCredentials()
	if creds.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY", config.ErrMissingCredential)
	}
	gen, err := translate.NewGeminiGenerator(ctx, creds.GeminiAPIKey, "")
	if err != nil {
		return nil, fmt.Errorf("initialize Gemini: %w", err)
	}
	defer gen.Close()
	return gen.ListModels(ctx)
}

func init() {
	setModelCmd.Flags().StringP("model", "m", "", "Model name, e.g. gemini-1.5-flash")

	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(setModelCmd)
	configCmd.AddCommand(listModelsCmd)
	rootCmd.AddCommand(configCmd)
}
