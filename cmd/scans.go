package cmd

import (
	"github.com/spf13/cobra"

	"github.com/user/nessus-rider/pkg/config"
	"github.com/user/nessus-rider/pkg/nessus"
	"github.com/user/nessus-rider/pkg/report"
)

var scansInsecure bool

var scansCmd = &cobra.Command{
	Use:   "scans",
	Short: "List the Nessus scans available to the API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds := config.LoadCredentials()
		if err := creds.Validate(config.Nessus); err != nil {
			return err
		}

		nc := nessus.NewClient(creds.NessusURL, creds.NessusAccessKey, creds.NessusSecretKey, !scansInsecure)
		scans, err := nc.ListScans(cmd.Context())
		if err != nil {
			return err
		}
		return report.PrintScans(cmd.OutOrStdout(), scans)
	},
}

func init() {
	scansCmd.Flags().BoolVar(&scansInsecure, "insecure", false, "Skip TLS verification")
	rootCmd.AddCommand(scansCmd)
}
