package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/GooseXRL8/flowerlove/internal/observability"
	"github.com/GooseXRL8/flowerlove/internal/runtime"
	"github.com/GooseXRL8/flowerlove/internal/server/http/controllers"
	accountsvc "github.com/GooseXRL8/flowerlove/internal/services/accounts"
	memorysvc "github.com/GooseXRL8/flowerlove/internal/services/memories"
	profilesvc "github.com/GooseXRL8/flowerlove/internal/services/profiles"
	logpkg "github.com/GooseXRL8/flowerlove/pkg/log"
)

// shutdownTimeout bounds graceful shutdown; open SSE streams end with their
// request contexts.
const shutdownTimeout = 5 * time.Second

type Server struct {
	rt     *runtime.Runtime
	srv    *http.Server
	lis    net.Listener
	logger logpkg.Logger
}

// New builds the REST API. When accounts is nil a service is created from
// the runtime.
func New(rt *runtime.Runtime, logger logpkg.Logger, accounts *accountsvc.Service) *Server {
	if logger == nil {
		logger = rt.Logger()
	}
	if accounts == nil {
		accounts = accountsvc.NewWithLogger(rt, logger)
	}
	mux := http.NewServeMux()
	controllers.NewControllerRegistry(rt, controllers.Services{
		Accounts: accounts,
		Profiles: profilesvc.NewWithLogger(rt, logger),
		Memories: memorysvc.NewWithLogger(rt, logger),
	}, logger.WithComponent("api")).RegisterAllRoutes(mux)

	var h http.Handler = mux
	h = observability.RequestMetrics(h)
	h = cors(rt.Config().Server.CORSOrigins, h)
	h = observability.RequestLogger(logger)(h)
	return &Server{
		rt:     rt,
		logger: logger.WithComponent("http"),
		srv: &http.Server{
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
			ErrorLog:          logpkg.ToStdLogger(logger, logpkg.WarnLevel),
		},
	}
}

// Handler exposes the full middleware chain, mainly for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// ListenAndServe binds to addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	s.srv.BaseContext = func(net.Listener) context.Context { return ctx }
	s.logger.Info("http listening", logpkg.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.srv.Shutdown(cctx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) Close() {
	_ = s.srv.Close()
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

// cors allows the listed origins, or any origin when the list is empty or
// contains "*".
func cors(origins []string, next http.Handler) http.Handler {
	allowAll := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case allowAll:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && allowed[origin]:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
