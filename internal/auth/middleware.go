package auth

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/stewardbooks/church-finance/internal"
)

// Middleware resolves the actor from upstream headers and enforces
// capability gates on protected routes.
type Middleware struct {
	checker CapabilityChecker
	logger  *slog.Logger
}

func NewMiddleware(checker CapabilityChecker, logger *slog.Logger) *Middleware {
	return &Middleware{checker: checker, logger: logger}
}

// ActorContext extracts the authenticated actor forwarded by the gateway.
// Requests without an actor are rejected before reaching any handler.
func (m *Middleware) ActorContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actorID, err := strconv.ParseInt(r.Header.Get("X-Actor-ID"), 10, 64)
		if err != nil {
			m.logger.Warn("request rejected: missing or invalid actor header")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		actor := &Actor{
			ID:       actorID,
			TenantID: r.Header.Get("X-Tenant-ID"),
			Name:     r.Header.Get("X-Actor-Name"),
		}
		if caps := r.Header.Get("X-Capabilities"); caps != "" {
			for _, c := range strings.Split(caps, ",") {
				if c = strings.TrimSpace(c); c != "" {
					actor.Capabilities = append(actor.Capabilities, c)
				}
			}
		}

		ctx := ContextWithActor(r.Context(), actor)
		ctx = internal.ContextWithTenant(ctx, actor.TenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireCapability gates a route on a single capability.
func (m *Middleware) RequireCapability(capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				m.logger.Warn("capability check failed: actor not found in context")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !m.checker.HasCapability(r.Context(), actor, capability) {
				m.logger.WarnContext(r.Context(), "access denied: capability missing",
					"actor_id", actor.ID,
					"required_capability", capability,
					"actor_capabilities", actor.Capabilities)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
