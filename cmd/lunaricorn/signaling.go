package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lunaricorn/lunaricorn/pkg/cluster"
	"github.com/lunaricorn/lunaricorn/pkg/config"
	"github.com/lunaricorn/lunaricorn/pkg/database"
	"github.com/lunaricorn/lunaricorn/pkg/log"
	"github.com/lunaricorn/lunaricorn/pkg/signaling"
	"github.com/lunaricorn/lunaricorn/pkg/types"
)

var signalingCmd = &cobra.Command{
	Use:   "signaling",
	Short: "Run the signaling hub",
	Long: `Run the signaling hub: the ZeroMQ event bus every service pushes to
and subscribes from, backed by the persistent event history and its
HTTP browse API.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		leaderURL, _ := cmd.Flags().GetString("leader-url")

		var cfg config.Signaling
		if err := config.LoadOrCreate(configPath, config.DefaultSignaling(), &cfg); err != nil {
			return err
		}
		cfg.MessageStorage.DB.ApplyEnv()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		db, err := database.Open(ctx, cfg.MessageStorage.DB, "lunaricorn-signaling")
		if err != nil {
			return fmt.Errorf("failed to connect to database: %v", err)
		}
		defer db.Close()

		store := signaling.NewStore(db)
		if err := store.Install(ctx); err != nil {
			return fmt.Errorf("failed to install event store: %v", err)
		}

		// The sockets come up only after the node is registered with the
		// leader; the beacon loop keeps running in the background.
		registrar := cluster.New(config.LeaderURL(leaderURL))
		if err := registrar.WaitReady(ctx); err != nil {
			return fmt.Errorf("leader never became reachable: %v", err)
		}
		err = registrar.RegisterService(ctx, types.Beacon{
			NodeName:    cfg.Name,
			NodeType:    "signaling",
			InstanceKey: fmt.Sprintf("%s-%s", cfg.Name, uuid.NewString()[:8]),
			Host:        cfg.Host,
			Port:        cfg.Port,
		})
		if err != nil {
			return fmt.Errorf("failed to register with the leader: %v", err)
		}
		defer registrar.Stop()

		hub := signaling.NewHub(cfg, store)
		api := signaling.NewAPI(store, hub, cfg.APIPort)

		errCh := make(chan error, 2)
		go func() {
			if err := hub.Start(ctx); err != nil {
				errCh <- fmt.Errorf("hub error: %v", err)
			}
		}()
		go func() {
			if err := api.Start(ctx); err != nil {
				errCh <- fmt.Errorf("API server error: %v", err)
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigCh:
			log.Info("shutting down")
			cancel()
		case err := <-errCh:
			return err
		}
		return nil
	},
}

func init() {
	signalingCmd.Flags().String("config", "signaling_config.yaml", "Path to the signaling config file")
	signalingCmd.Flags().String("leader-url", "http://localhost:8001", "Leader base URL (CLUSTER_LEADER_URL overrides)")
}
