package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"voiceguard/internal/bootstrap"
)

// numberCmd represents the number command
var numberCmd = &cobra.Command{
	Use:   "number [new-number]",
	Short: "Show or change the emergency line number",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd.Context(), nil, func(s bootstrap.Services) error {
			if len(args) == 1 {
				if err := s.State.SetEmergencyNumber(cmd.Context(), args[0]); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.State.EmergencyNumber())
			return nil
		})
	},
}

// languageCmd represents the language command
var languageCmd = &cobra.Command{
	Use:   "language [name]",
	Short: "Show, list or change the trigger phrase language",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd.Context(), nil, func(s bootstrap.Services) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				current := s.State.Language()
				for _, lang := range s.Catalog.Languages() {
					marker := " "
					if lang == current {
						marker = "*"
					}
					fmt.Fprintf(out, "%s %s\n", marker, lang)
				}
				return nil
			}
			if !s.Catalog.Has(args[0]) {
				return fmt.Errorf("unsupported language %q", args[0])
			}
			if err := s.State.SetLanguage(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(out, "Language set to %s\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(numberCmd, languageCmd)
}
