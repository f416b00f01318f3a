package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lunaricorn/lunaricorn/pkg/log"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var (
	logLevel string
	jsonLogs bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lunaricorn",
	Short: "Lunaricorn - cluster control plane, signaling bus and object store",
	Long: `Lunaricorn runs the backbone services of a Lunaricorn cluster:
the leader (node registry and cluster-wide id counters), the signaling
hub (persistent event bus over ZeroMQ) and the orb object store.

Each service runs as its own subcommand and announces itself to the
leader once it is up.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Init(log.Config{
			Level:      log.Level(logLevel),
			JSONOutput: jsonLogs,
		})
	},
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Lunaricorn version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", true,
		"emit logs as json")

	rootCmd.AddCommand(leaderCmd)
	rootCmd.AddCommand(signalingCmd)
	rootCmd.AddCommand(orbCmd)
}
