package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/user/nessus-rider/pkg/config"
	"github.com/user/nessus-rider/pkg/telemetry"
)

var rootCmd = &cobra.Command{
	Use:   "nessus-rider",
	Short: "Import Nessus findings into a Ghostwriter report",
	Long: `nessus-rider pulls vulnerability findings from one or more Nessus scans,
merges them per plugin, optionally translates them with Gemini and inserts
them into a Ghostwriter report ordered by CVSS score.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitLogger(os.Stderr, DebugMode, LogFormat)
	},
}

var (
	DebugMode  bool
	LogFormat  string
	ConfigFile string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func loadConfig() (*config.Config, string, error) {
	path, err := config.GetConfigPath(ConfigFile)
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&DebugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&LogFormat, "log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().StringVar(&ConfigFile, "config", "", "Tunables file (default ~/.nessus-rider/config.yaml)")
}
