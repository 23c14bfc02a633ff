package middlewares

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/losol/eventuras-idp/internal/config"
	"github.com/losol/eventuras-idp/utils"

	"github.com/The127/ioc"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const SessionCookieName = "eventuras_session"

type CurrentSession struct {
	subject   uuid.UUID
	sessionId uuid.UUID
}

func (s *CurrentSession) Subject() uuid.UUID {
	return s.subject
}

func (s *CurrentSession) SessionId() uuid.UUID {
	return s.sessionId
}

type currentSessionCtxKeyType string

const currentSessionCtxKey currentSessionCtxKeyType = "currentSession"

// SessionMiddleware attaches the current session to the context when the
// request carries a valid session cookie. Requests without one pass
// through unauthenticated.
func SessionMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			scope := GetScope(ctx)

			tenant, err := GetTenant(ctx)
			if err != nil {
				utils.HandleHttpError(w, fmt.Errorf("getting tenant: %w", err))
				return
			}

			sessionCookie, err := r.Cookie(SessionCookieName)
			switch {
			case errors.Is(err, http.ErrNoCookie):
				next.ServeHTTP(w, r)
				return

			case err != nil:
				utils.HandleHttpError(w, fmt.Errorf("getting session cookie: %w", err))
				return
			}

			token, err := utils.DecodeSplitToken(sessionCookie.Value)
			if err != nil {
				// a malformed cookie is treated as no session
				next.ServeHTTP(w, r)
				return
			}

			tokenId, err := uuid.Parse(token.Id())
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			sessionService := ioc.GetDependency[SessionService](scope)
			session, err := sessionService.GetSession(ctx, tenant.Id, tokenId)
			if err != nil {
				utils.HandleHttpError(w, fmt.Errorf("getting session: %w", err))
				return
			}

			if session == nil {
				next.ServeHTTP(w, r)
				return
			}

			if utils.CheapCompareHash(token.Secret(), session.HashedSecret()) {
				currentSession := CurrentSession{
					subject:   session.Subject(),
					sessionId: tokenId,
				}
				r = r.WithContext(ContextWithSession(r.Context(), currentSession))
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ContextWithSession(ctx context.Context, session CurrentSession) context.Context {
	return context.WithValue(ctx, currentSessionCtxKey, session)
}

func GetSession(ctx context.Context) (CurrentSession, bool) {
	value, ok := ctx.Value(currentSessionCtxKey).(CurrentSession)
	return value, ok
}

func DeleteSession(w http.ResponseWriter, r *http.Request, tenantId uuid.UUID) error {
	ctx := r.Context()
	scope := GetScope(ctx)

	s, ok := GetSession(ctx)
	if !ok {
		return nil
	}

	sessionService := ioc.GetDependency[SessionService](scope)
	err := sessionService.DeleteSession(ctx, tenantId, s.SessionId())
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	SetSessionCookie(w, "", -1)

	return nil
}

func CreateSession(w http.ResponseWriter, r *http.Request, tenantId uuid.UUID, subject uuid.UUID) error {
	ctx := r.Context()
	scope := GetScope(ctx)

	sessionService := ioc.GetDependency[SessionService](scope)
	sessionToken, err := sessionService.NewSession(ctx, tenantId, subject)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	maxAge := config.C.Auth.SessionTtlSeconds
	SetSessionCookie(w, sessionToken.Encode(), maxAge)

	return nil
}

func SetSessionCookie(w http.ResponseWriter, value string, maxAge int) {
	cookie := http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   config.IsProduction(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, &cookie)
}
