package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/avilesdev/storefront-backend/pkg/config"
	"github.com/avilesdev/storefront-backend/pkg/logger"
	"github.com/avilesdev/storefront-backend/pkg/session"
	"github.com/google/uuid"
)

const sessionTokenHeader = "X-Session-Token"

type sessionIDKey struct{}

// Session resolves the shopper's session id from a signed token and starts a
// fresh session when none is presented. The (possibly new) token goes back
// in the response header so the client can carry it forward.
func Session(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sessionID := ""
			if token := bearerOrHeaderToken(r); token != "" {
				claims, err := session.ParseToken(cfg, token)
				if err == nil {
					sessionID = claims.SessionID
				} else if logg != nil {
					logg.Warn(logg.WithField(ctx, "reason", err.Error()), "session token rejected, starting fresh session")
				}
			}

			if sessionID == "" {
				sessionID = uuid.NewString()
				minted, err := session.MintToken(cfg, time.Now(), sessionID)
				if err != nil {
					if logg != nil {
						logg.Error(ctx, "failed to mint session token", err)
					}
					http.Error(w, "session unavailable", http.StatusInternalServerError)
					return
				}
				w.Header().Set(sessionTokenHeader, minted)
			}

			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			ctx = context.WithValue(ctx, sessionIDKey{}, sessionID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithSessionID injects a session id directly, bypassing token resolution.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, sessionID)
}

// SessionIDFromContext returns the session id the Session middleware stored.
func SessionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey{}).(string); ok {
		return id
	}
	return ""
}

func bearerOrHeaderToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return strings.TrimSpace(r.Header.Get(sessionTokenHeader))
}
