package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lunaricorn/lunaricorn/pkg/config"
	"github.com/lunaricorn/lunaricorn/pkg/database"
	"github.com/lunaricorn/lunaricorn/pkg/leader"
	"github.com/lunaricorn/lunaricorn/pkg/log"
)

var leaderCmd = &cobra.Command{
	Use:   "leader",
	Short: "Run the cluster leader",
	Long: `Run the cluster leader: the node registry every service beacons to,
the readiness gate over the required-node list, and the source of the
cluster-wide message and object id counters.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")

		var cfg config.Leader
		if err := config.LoadOrCreate(configPath, config.DefaultLeader(), &cfg); err != nil {
			return err
		}
		cfg.DB.ApplyEnv()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		db, err := database.Open(ctx, cfg.DB, "lunaricorn-leader")
		if err != nil {
			return fmt.Errorf("failed to connect to database: %v", err)
		}
		defer db.Close()

		l, err := leader.New(ctx, cfg, db)
		if err != nil {
			return fmt.Errorf("failed to initialize leader: %v", err)
		}

		server := leader.NewServer(l, cfg.APIPort)
		errCh := make(chan error, 1)
		go func() {
			if err := server.Start(ctx); err != nil {
				errCh <- err
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigCh:
			log.Info("shutting down")
			cancel()
		case err := <-errCh:
			return fmt.Errorf("API server error: %v", err)
		}
		return nil
	},
}

func init() {
	leaderCmd.Flags().String("config", "leader_config.yaml", "Path to the leader config file")
}
