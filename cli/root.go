// Package cli wires the focusflow commands.
package cli

import (
	"fmt"
	"os"

	"clementus360/focusflow/config"
	"clementus360/focusflow/sqlite"
	"clementus360/focusflow/store"
	"clementus360/focusflow/supabase"

	"github.com/spf13/cobra"
)

// Execute runs the root command and exits non-zero on failure.
func Execute(version string) {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func NewRootCmd(version string) *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "focusflow",
		Short:         "FocusFlow - tasks, focus timer, analytics and an AI task assistant",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./focusflow.yaml)")

	load := func() (*config.Settings, error) {
		return loadSettings(configFile)
	}

	rootCmd.AddCommand(serveCmd(load))
	rootCmd.AddCommand(timerCmd(load))
	rootCmd.AddCommand(tokenCmd(load))
	rootCmd.AddCommand(migrateCmd(load))
	rootCmd.AddCommand(versionCmd(version))

	return rootCmd
}

type settingsLoader func() (*config.Settings, error)

func loadSettings(configFile string) (*config.Settings, error) {
	config.LoadEnv()
	settings, err := config.LoadSettings(configFile)
	if err != nil {
		return nil, err
	}
	config.InitLogger(settings.LogLevel)
	return settings, nil
}

func openStore(settings *config.Settings) (store.Store, error) {
	switch settings.Store {
	case config.StoreSupabase:
		return supabase.New(settings.SupabaseURL, settings.SupabaseKey)
	default:
		return sqlite.Open(settings.DatabasePath)
	}
}

func versionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "focusflow %s\n", version)
		},
	}
}
