// Package runtime wires storage, config, the clock and the activity feed
// into a single-node flowerlove instance. Services take a *Runtime.
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways, Config: cfg})
//	defer rt.Close()
//	_ = rt.CheckHealth(context.Background())
package runtime
