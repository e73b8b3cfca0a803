// Package client provides the `flowerlove` command-line client.
//
// The `counter` and `milestones` commands run the elapsed-duration engine
// locally. The remaining commands talk to a running server: REST for
// profiles and memories, gRPC for health.
//
// # Address configuration
//
// The HTTP base URL comes from FLOWERLOVE_HTTP (default
// http://127.0.0.1:8080) and the gRPC address from FLOWERLOVE_GRPC
// (default 127.0.0.1:9090). Authenticated commands read the session token
// from --token or FLOWERLOVE_TOKEN.
//
// Usage
//
//	flowerlove counter --start 2024-02-29
//	flowerlove counter --start 2024-02-29T18:30:00-03:00 --scheme rose --watch
//	flowerlove milestones
//
//	eval "$(flowerlove login -u admin -p secret)"
//	flowerlove profile list
//	flowerlove profile counter --id PROFILE_ID --watch --limit 10
//	flowerlove profile activity --id PROFILE_ID --limit 5
//	flowerlove memory list --profile PROFILE_ID --filter '"praia" in memory.tags'
//
//	flowerlove health
package client
