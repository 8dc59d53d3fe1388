package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"voiceguard/internal/bootstrap"
	"voiceguard/internal/roster"
)

var contactType string

// contactsCmd represents the contacts command
var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Manage the SOS contact and the trusted circle",
}

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contacts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd.Context(), nil, func(s bootstrap.Services) error {
			writeContacts(cmd.OutOrStdout(), s.State.Contacts())
			return nil
		})
	},
}

var contactsAddCmd = &cobra.Command{
	Use:   "add <name> <phone>",
	Short: "Add a contact (one SOS contact, up to three normal contacts)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := roster.ParseType(contactType)
		if err != nil {
			return err
		}
		return withServices(cmd.Context(), nil, func(s bootstrap.Services) error {
			contact, err := s.State.AddContact(cmd.Context(), kind, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s (%s)\n", contact.Type, contact.Name, contact.ID)
			return nil
		})
	},
}

var contactsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a contact by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd.Context(), nil, func(s bootstrap.Services) error {
			return s.State.RemoveContact(cmd.Context(), args[0])
		})
	},
}

func init() {
	contactsAddCmd.Flags().StringVarP(&contactType, "type", "t", "normal", "Contact type: sos or normal")
	contactsCmd.AddCommand(contactsListCmd, contactsAddCmd, contactsRemoveCmd)
	rootCmd.AddCommand(contactsCmd)
}
