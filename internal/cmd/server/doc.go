// Package serverrun exposes the Run entrypoint used by the CLI to start the
// flowerlove runtime with its gRPC and HTTP servers and the milestone
// watcher, handling lifecycle and shutdown.
//
// Example:
//
//	cfg := config.Default()
//	cfg.Server.DataDir = "./data"
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = serverrun.Run(ctx, serverrun.Options{Config: cfg})
package serverrun
