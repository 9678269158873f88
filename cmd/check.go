package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/nessus-rider/pkg/config"
	"github.com/user/nessus-rider/pkg/ghostwriter"
	"github.com/user/nessus-rider/pkg/nessus"
)

var checkInsecure bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that Nessus and Ghostwriter are reachable with the configured keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds := config.LoadCredentials()
		if err := creds.Validate(config.Nessus, config.Ghostwriter); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		ctx := cmd.Context()

		var failed bool

		nc := nessus.NewClient(creds.NessusURL, creds.NessusAccessKey, creds.NessusSecretKey, !checkInsecure)
		status, err := nc.ServerStatus(ctx)
		if err != nil {
			fmt.Fprintf(out, "Nessus      %s: %v\n", creds.NessusURL, err)
			failed = true
		} else {
			fmt.Fprintf(out, "Nessus      %s: %s\n", creds.NessusURL, status)
		}

		gw := ghostwriter.NewClient(creds.GhostwriterURL, creds.GhostwriterAPIKey, !checkInsecure)
		id, err := gw.Whoami(ctx)
		if err != nil {
			fmt.Fprintf(out, "Ghostwriter %s: %v\n", creds.GhostwriterURL, err)
			failed = true
		} else {
			fmt.Fprintf(out, "Ghostwriter %s: %s (%s)\n", creds.GhostwriterURL, id.Username, id.Role)
		}

		if failed {
			return errors.New("connectivity check failed")
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkInsecure, "insecure", false, "Skip TLS verification")
	rootCmd.AddCommand(checkCmd)
}
