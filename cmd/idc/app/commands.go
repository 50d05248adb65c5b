// Package app provides the entry point for the idc command-line application.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:               "idc",
	DisableAutoGenTag: true,
	Short:             "idc signs you in to third-party identity providers from the terminal",
	Long: `idc drives browser-based sign-in against third-party identity providers
(OAuth2 and OpenID Connect) and keeps the resulting tokens in a local,
file-locked credential store. Configure your providers once, then log in,
inspect sessions and fetch your normalized profile from the command line.`,
	Run: func(cmd *cobra.Command, _ []string) {
		// If no subcommand is provided, print help
		if err := cmd.Help(); err != nil {
			cmd.PrintErrf("Error displaying help: %v\n", err)
		}
	},
}

// NewRootCmd creates a new root command for the idc CLI.
func NewRootCmd() *cobra.Command {
	rootCmd.PersistentFlags().String("config", "", "Path to the configuration file")
	rootCmd.PersistentFlags().String("store", "", "Path to the credential store file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	return rootCmd
}
