// Package cli implements the timetracker command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "timetracker",
	Short: "Location-gated timesheet service",
	Long: `timetracker is a multi-tenant timesheet service where clocking in
requires physical presence inside a job site's geofence. It serves a JSON
API for clock-in/clock-out, per-user and per-company hour statistics, and
job-site administration.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "Path to the TOML config file")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// defaultConfigPath returns ~/.timetracker/config.toml.
func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return home + "/.timetracker/config.toml"
}
