// Package httpserver serves the flowerlove REST API: sessions, users,
// profiles with their memories and photos, the activity feed, and the live
// counter over Server-Sent Events. Requests pass through logging, CORS and
// Prometheus middleware before reaching the ServeMux routes registered by
// the controllers package.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Config: config.Default()})
//	s := httpserver.New(rt, logger, nil)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":8080")
package httpserver
