package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	clientcmd "github.com/GooseXRL8/flowerlove/internal/cmd/client"
	serverrun "github.com/GooseXRL8/flowerlove/internal/cmd/server"
	cfgpkg "github.com/GooseXRL8/flowerlove/internal/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "flowerlove",
		Short:        "Relationship counter and memories server",
		Long:         "flowerlove tracks how long a couple has been together, grows a flower with it and names each anniversary.",
		SilenceUsage: true,
	}

	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the flowerlove server (HTTP and gRPC)",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return err
			}
			cfgpkg.FromEnv(&cfg)
			// Flags win over file and environment.
			flags := cmd.Flags()
			if flags.Changed("data-dir") {
				cfg.Server.DataDir, _ = flags.GetString("data-dir")
			}
			if flags.Changed("http") {
				cfg.Server.HTTPAddr, _ = flags.GetString("http")
			}
			if flags.Changed("grpc") {
				cfg.Server.GRPCAddr, _ = flags.GetString("grpc")
			}
			if flags.Changed("fsync") {
				cfg.Server.Fsync, _ = flags.GetString("fsync")
			}
			if flags.Changed("stage-scheme") {
				cfg.Counter.StageScheme, _ = flags.GetString("stage-scheme")
			}
			if flags.Changed("log-level") {
				cfg.Log.Level, _ = flags.GetString("log-level")
			}
			if flags.Changed("log-format") {
				cfg.Log.Format, _ = flags.GetString("log-format")
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			if err := serverrun.Run(ctx, serverrun.Options{Config: cfg}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	serverStartCmd.Flags().StringP("config", "c", os.Getenv(cfgpkg.EnvPrefix+"CONFIG"), "Config file (.yaml, .toml or .json)")
	serverStartCmd.Flags().String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	serverStartCmd.Flags().String("http", ":8080", "HTTP listen address")
	serverStartCmd.Flags().String("grpc", ":9090", "gRPC listen address")
	serverStartCmd.Flags().String("fsync", "always", "Fsync mode: always|interval|never")
	serverStartCmd.Flags().String("stage-scheme", "flower", "Stage thresholds: flower|rose")
	serverStartCmd.Flags().String("log-level", "info", "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", "text", "Log format: text|json")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	clientcmd.AddCommands(rootCmd, apiURL)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func apiURL() string {
	if v := os.Getenv(cfgpkg.EnvPrefix + "HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:8080"
}
