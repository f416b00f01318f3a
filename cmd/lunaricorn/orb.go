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
	"github.com/lunaricorn/lunaricorn/pkg/orb"
	"github.com/lunaricorn/lunaricorn/pkg/signaling"
	"github.com/lunaricorn/lunaricorn/pkg/types"
)

var orbCmd = &cobra.Command{
	Use:   "orb",
	Short: "Run the orb object store",
	Long: `Run the orb object store: uuid-keyed data records and serial-keyed
meta records over gRPC, with every mutation announced on the signaling
bus.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		leaderURL, _ := cmd.Flags().GetString("leader-url")

		var cfg config.Orb
		if err := config.LoadOrCreate(configPath, config.DefaultOrb(), &cfg); err != nil {
			return err
		}
		cfg.DB.ApplyEnv()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		db, err := database.Open(ctx, cfg.DB, "lunaricorn-orb")
		if err != nil {
			return fmt.Errorf("failed to connect to database: %v", err)
		}
		defer db.Close()

		instanceKey := fmt.Sprintf("orb-%s", uuid.NewString()[:8])
		bus, err := signaling.NewClient(signaling.ClientConfig{
			ClientID: instanceKey,
			PushAddr: cfg.SignalingPushAddr,
			SubAddr:  cfg.SignalingSubAddr,
		})
		if err != nil {
			return fmt.Errorf("failed to create signaling client: %v", err)
		}
		if err := bus.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to signaling hub: %v", err)
		}
		defer bus.Close()

		storage := orb.NewStorage(db, bus)
		if err := storage.Install(ctx); err != nil {
			return fmt.Errorf("failed to install storage: %v", err)
		}
		if err := storage.SelfTest(ctx); err != nil {
			return fmt.Errorf("storage self-test failed: %v", err)
		}

		// Registration with the leader comes first; the RPC and HTTP servers
		// only accept traffic once the node is part of the cluster.
		registrar := cluster.New(config.LeaderURL(leaderURL))
		if err := registrar.WaitReady(ctx); err != nil {
			return fmt.Errorf("leader never became reachable: %v", err)
		}
		err = registrar.RegisterService(ctx, types.Beacon{
			NodeName:    "orb",
			NodeType:    "storage",
			InstanceKey: instanceKey,
			Port:        cfg.RPCPort,
		})
		if err != nil {
			return fmt.Errorf("failed to register with the leader: %v", err)
		}
		defer registrar.Stop()

		rpc := orb.NewServer(storage, cfg.RPCPort)
		api := orb.NewHTTPServer(storage, cfg.APIPort)

		errCh := make(chan error, 2)
		go func() {
			if err := rpc.Start(ctx); err != nil {
				errCh <- fmt.Errorf("RPC server error: %v", err)
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
	orbCmd.Flags().String("config", "orb_config.yaml", "Path to the orb config file")
	orbCmd.Flags().String("leader-url", "http://localhost:8001", "Leader base URL (CLUSTER_LEADER_URL overrides)")
}
