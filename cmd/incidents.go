package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"voiceguard/internal/bootstrap"
	"voiceguard/internal/domain"
)

// sosCmd represents the sos command
var sosCmd = &cobra.Command{
	Use:   "sos",
	Short: "Raise a manual SOS and print the notification cascade",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd.Context(), nil, func(s bootstrap.Services) error {
			entry, rows, err := s.State.RecordIncident(cmd.Context(), domain.IncidentManualSOS)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s raised at %s %s\n", entry.Type, entry.Date, entry.Time)
			writeCascade(out, rows)
			return nil
		})
	},
}

// logsCmd represents the logs command
var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show incidents from the last 7 days",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd.Context(), nil, func(s bootstrap.Services) error {
			writeLogs(cmd.OutOrStdout(), s.State.Logs())
			return nil
		})
	},
}

var logsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every incident log entry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd.Context(), nil, func(s bootstrap.Services) error {
			return s.State.ClearLogs(cmd.Context())
		})
	},
}

func init() {
	logsCmd.AddCommand(logsClearCmd)
	rootCmd.AddCommand(sosCmd, logsCmd)
}
