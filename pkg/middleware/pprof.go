package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof"

	"github.com/go-chi/chi/v5"
)

// pprofRoutes maps the debug endpoints to their stdlib handlers. Index
// covers the wildcard and the per-profile pages under it.
var pprofRoutes = map[string]http.HandlerFunc{
	"/debug/pprof/*":       pprof.Index,
	"/debug/pprof/cmdline": pprof.Cmdline,
	"/debug/pprof/profile": pprof.Profile,
	"/debug/pprof/symbol":  pprof.Symbol,
	"/debug/pprof/trace":   pprof.Trace,
}

// RegisterPprof mounts the pprof debug endpoints behind a CIDR allowlist.
// With no valid CIDRs configured every request is denied, so profiling is
// opt-in per deployment.
func RegisterPprof(r chi.Router, allowedCIDRs []string, logger *slog.Logger) {
	r.Group(func(r chi.Router) {
		r.Use(IPAllowlist(allowedCIDRs, logger))
		for pattern, h := range pprofRoutes {
			r.HandleFunc(pattern, h)
		}
	})
}

// allowlist holds the parsed CIDR ranges admitted to a guarded route group.
type allowlist struct {
	nets []*net.IPNet
}

func newAllowlist(cidrs []string, logger *slog.Logger) *allowlist {
	a := &allowlist{}
	for _, cidr := range cidrs {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			logger.Warn("invalid allowlist CIDR, skipping",
				slog.String("cidr", cidr),
				slog.String("error", err.Error()),
			)
			continue
		}
		a.nets = append(a.nets, ipNet)
	}
	return a
}

// admits checks the peer address against the configured ranges. The check
// uses RemoteAddr only: proxy headers are trivially forged and must not
// open profiling endpoints.
func (a *allowlist) admits(remoteAddr string) (string, bool) {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return host, false
	}
	for _, n := range a.nets {
		if n.Contains(ip) {
			return host, true
		}
	}
	return host, false
}

// IPAllowlist restricts a route group to peers inside the configured CIDR
// ranges, answering everything else with 403. Invalid CIDRs are logged and
// skipped at construction.
func IPAllowlist(cidrs []string, logger *slog.Logger) func(http.Handler) http.Handler {
	a := newAllowlist(cidrs, logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, ok := a.admits(r.RemoteAddr)
			if !ok {
				logger.Warn("access denied by IP allowlist",
					slog.String("ip", host),
					slog.String("path", r.URL.Path),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":{"code":"FORBIDDEN","message":"access restricted by IP allowlist"}}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
