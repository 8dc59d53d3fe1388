package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"voiceguard/internal/bootstrap"
	"voiceguard/internal/ports"
)

var (
	cfgFile  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "voiceguard",
	Short: "Personal safety companion with voice-activated SOS.",
	Long: `voiceguard keeps an SOS contact and a small circle of trusted contacts,
listens for trigger phrases while monitoring is on, and logs the
notification cascade for every incident.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/voiceguard/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "loglevel", "l", "", "Override log level. Available: debug, info, warn, error")
}

// withServices builds the runtime graph for one command invocation.
func withServices(ctx context.Context, events ports.EventSink, run func(bootstrap.Services) error) error {
	if events == nil {
		events = discardSink{}
	}
	services, err := bootstrap.Build(ctx, bootstrap.Options{
		ConfigPath: cfgFile,
		LogLevel:   logLevel,
		Events:     events,
	})
	if err != nil {
		return err
	}
	defer services.Close()
	return run(services)
}
