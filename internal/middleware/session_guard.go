package middleware

import (
	"context"
	"errors"
	"net/http"

	"table-order-kiosk/internal/services"
	"table-order-kiosk/pkg/response"
)

// SessionSource reports the kiosk's active session and translates the
// rejection message; *services.Diner satisfies it.
type SessionSource interface {
	ActiveSession() (services.SessionInfo, error)
	T(key string) string
}

// SessionGuard admits requests only while a session is active. An expired
// session has already been cleared by the source when the 401 goes out.
func SessionGuard(src SessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info, err := src.ActiveSession()
			switch {
			case errors.Is(err, services.ErrSessionExpired):
				response.Error(w, http.StatusUnauthorized, "SESSION_EXPIRED", src.T("error.session_expired"))
				return
			case err != nil:
				response.Error(w, http.StatusUnauthorized, "NO_SESSION", src.T("error.no_session"))
				return
			}

			ctx := r.Context()
			if slot, ok := ctx.Value(sessionSlotKey).(*int64); ok {
				*slot = info.SessionID
			}
			ctx = context.WithValue(ctx, sessionIDKey, info.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func SessionIDFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(sessionIDKey).(int64)
	return id
}
