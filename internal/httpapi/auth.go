package httpapi

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"qms/core-api/internal/identity"
	"qms/core-api/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

type AuthConfig struct {
	// AllowedAPIKeys holds plain keys or bcrypt hashes. Empty disables the check.
	AllowedAPIKeys []string
	// AllowedIPs restricts callers by address. Empty allows any address.
	AllowedIPs []string
	// TrustedProxies lists peers allowed to report the client through
	// X-Forwarded-For. Without it only the socket peer is checked.
	TrustedProxies []string
	Logger         *slog.Logger
}

type Authenticator struct {
	identity   identity.Service
	apiKeys    []string
	allowedIPs map[string]struct{}
	proxies    proxySet
	log        *slog.Logger
}

func NewAuthenticator(svc identity.Service, cfg AuthConfig) *Authenticator {
	if svc == nil {
		svc = identity.AllowAll{}
	}
	log := cfg.Logger
	if log == nil {
		log = logger.WithComponent("httpapi.auth")
	}
	ips := make(map[string]struct{}, len(cfg.AllowedIPs))
	for _, ip := range cfg.AllowedIPs {
		ips[ip] = struct{}{}
	}
	return &Authenticator{
		identity:   svc,
		apiKeys:    cfg.AllowedAPIKeys,
		allowedIPs: ips,
		proxies:    newProxySet(cfg.TrustedProxies),
		log:        log,
	}
}

type actorContextKey struct{}

// actorFromContext returns the audit name of the caller, or "" when unknown.
func actorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorContextKey{}).(string)
	return actor
}

func withActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicEndpoint(r) || !strings.HasPrefix(r.URL.Path, apiPrefix) {
			next.ServeHTTP(w, r)
			return
		}
		if !a.apiKeyAllowed(strings.TrimSpace(r.Header.Get("api_key"))) {
			writeError(w, http.StatusUnauthorized, typeUnauthorized, "Unauthorized")
			return
		}
		if !a.ipAllowed(a.proxies.clientIP(r)) {
			writeError(w, http.StatusForbidden, typeForbidden, "Forbidden")
			return
		}

		application := strings.TrimSpace(r.Header.Get("application"))
		authorization := strings.TrimSpace(r.Header.Get("authorization"))
		if application == "" || authorization == "" {
			writeError(w, http.StatusUnauthorized, typeUnauthorized, "Unauthorized")
			return
		}

		status, err := a.identity.ValidateToken(r.Context(), application, authorization, requiredScope(r))
		if err != nil {
			a.log.Error("token validation failed",
				"application", application,
				"request_id", requestIDFromContext(r.Context()),
				"error", err,
			)
			writeError(w, http.StatusInternalServerError, typeInternal, messageInternal)
			return
		}
		if !status.Valid {
			writeError(w, http.StatusUnauthorized, typeUnauthorized, "Invalid token")
			return
		}
		if !status.Authorized {
			writeError(w, http.StatusForbidden, typeForbidden, "Forbidden")
			return
		}

		ctx := r.Context()
		if r.Method != http.MethodGet {
			user, err := a.identity.GetUserBasicData(ctx, application, authorization)
			if err != nil {
				a.log.Warn("user data lookup failed, audit fields left empty",
					"application", application,
					"error", err,
				)
			}
			ctx = withActor(ctx, user.Actor())
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) apiKeyAllowed(key string) bool {
	if len(a.apiKeys) == 0 {
		return true
	}
	if key == "" {
		return false
	}
	for _, allowed := range a.apiKeys {
		if strings.HasPrefix(allowed, "$2") {
			if bcrypt.CompareHashAndPassword([]byte(allowed), []byte(key)) == nil {
				return true
			}
			continue
		}
		if subtle.ConstantTimeCompare([]byte(allowed), []byte(key)) == 1 {
			return true
		}
	}
	return false
}

func (a *Authenticator) ipAllowed(ip string) bool {
	if len(a.allowedIPs) == 0 {
		return true
	}
	_, ok := a.allowedIPs[ip]
	return ok
}

// requiredScope derives read_<resource> or write_<resource> from the request.
// Nested collections are governed by the resource they list.
func requiredScope(r *http.Request) string {
	segments := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, apiPrefix), "/"), "/")
	resource := segments[0]
	if len(segments) == 3 {
		switch {
		case resource == "services" && segments[2] == "serviceturns":
			resource = "serviceturns"
		case resource == "categories" && segments[2] == "services":
			resource = "services"
		}
	}
	if r.Method == http.MethodGet {
		return "read_" + resource
	}
	return "write_" + resource
}

func isPublicEndpoint(r *http.Request) bool {
	if r.Method == http.MethodOptions {
		return true
	}
	switch {
	case r.URL.Path == "/healthz", r.URL.Path == "/metrics":
		return true
	case r.URL.Path == "/board", strings.HasPrefix(r.URL.Path, "/board/"):
		return true
	default:
		return false
	}
}
