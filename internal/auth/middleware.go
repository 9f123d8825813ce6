package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/cleanline/opsdesk/internal/platform/httpx"
	"github.com/cleanline/opsdesk/internal/shared"
)

// Middleware rejects requests without a valid bearer token and stores the
// acting operator in the request context.
func (s *Service) Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := s.Verify(BearerToken(r.Header.Get("Authorization"))); err != nil {
				logger.Warn("rejected api token", slog.String("path", r.URL.Path), slog.String("remote", r.RemoteAddr))
				w.Header().Set("WWW-Authenticate", `Bearer realm="opsdesk"`)
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
				return
			}
			actor := strings.TrimSpace(r.Header.Get(ActorHeader))
			if actor == "" {
				actor = "api"
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithActor(r.Context(), actor)))
		})
	}
}
