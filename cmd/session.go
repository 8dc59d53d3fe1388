package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"voiceguard/internal/bootstrap"
	"voiceguard/internal/domain"
	"voiceguard/internal/state"
)

var (
	grantMicrophone bool
	grantLocation   bool
)

// accountCmd represents the account command
var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Show the signed-in account and plan",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd.Context(), nil, func(s bootstrap.Services) error {
			session, ok := s.State.Session()
			if !ok {
				return state.ErrNoSession
			}
			writeSession(cmd.OutOrStdout(), session, s.State.MonitorPreconditions().PlanActive)
			return nil
		})
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup <email>",
	Short: "Sign up and start a one-month trial",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd.Context(), nil, func(s bootstrap.Services) error {
			session, err := s.State.Signup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Trial active until %s\n", session.TrialEndDate)
			return nil
		})
	},
}

var grantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Record microphone and location permissions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd.Context(), nil, func(s bootstrap.Services) error {
			return s.State.SetPermissions(cmd.Context(), domain.Permissions{
				Microphone: grantMicrophone,
				Location:   grantLocation,
			})
		})
	},
}

var upgradeCmd = &cobra.Command{
	Use:   "upgrade <monthly|yearly>",
	Short: "Switch to a paid plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := parsePlan(args[0])
		if err != nil {
			return err
		}
		return withServices(cmd.Context(), nil, func(s bootstrap.Services) error {
			return s.State.Upgrade(cmd.Context(), plan)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and erase all stored data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd.Context(), nil, func(s bootstrap.Services) error {
			return s.State.Logout(cmd.Context())
		})
	},
}

func parsePlan(value string) (domain.PlanType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "monthly":
		return domain.PlanMonthly, nil
	case "yearly":
		return domain.PlanYearly, nil
	default:
		return "", errors.New("plan must be monthly or yearly")
	}
}

func init() {
	grantCmd.Flags().BoolVar(&grantMicrophone, "microphone", true, "Grant microphone access")
	grantCmd.Flags().BoolVar(&grantLocation, "location", true, "Grant location access")
	accountCmd.AddCommand(signupCmd, grantCmd, upgradeCmd, logoutCmd)
	rootCmd.AddCommand(accountCmd)
}
