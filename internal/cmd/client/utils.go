package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	transports "github.com/GooseXRL8/flowerlove/internal/cmd/client/transports"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// grpcAddrFromEnv returns the gRPC server address from FLOWERLOVE_GRPC or a default.
func grpcAddrFromEnv() string {
	if addr := os.Getenv("FLOWERLOVE_GRPC"); addr != "" {
		return addr
	}
	return "127.0.0.1:9090"
}

// tokenFromEnv returns the session token exported by `flowerlove login`.
func tokenFromEnv() string { return os.Getenv("FLOWERLOVE_TOKEN") }

// dialGRPCContext dials the gRPC endpoint with insecure transport for local/dev.
func dialGRPCContext(ctx context.Context) (*grpc.ClientConn, error) {
	return grpc.NewClient(grpcAddrFromEnv(), grpc.WithTransportCredentials(insecure.NewCredentials()))
}

// apiTransport builds the HTTP transport, preferring --token over the env.
func apiTransport(baseURL BaseURLFunc, token string) transports.API {
	if token == "" {
		token = tokenFromEnv()
	}
	return transports.NewHTTPTransport(baseURL(), token)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseStart accepts RFC3339, a bare date in the local zone, or Unix ms.
func parseStart(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("--start is required")
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid --start %q; expected RFC3339, YYYY-MM-DD or ms", s)
}
