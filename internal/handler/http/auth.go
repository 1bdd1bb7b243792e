package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jgivc/assetgate/internal/common"
	"github.com/jgivc/assetgate/internal/service/auth"
)

const (
	SessionCookieName = "assetgate_session"
	KeyHeader         = "X-API-Key"

	keyParam    = "key"
	secretField = "secret"
	loginPath   = "/login"

	contentTypeForm = "application/x-www-form-urlencoded"
)

type AuthService interface {
	Login(ctx context.Context, secret string) (string, error)
	Logout(ctx context.Context, sessionID string) error
	Verify(ctx context.Context, sessionID, presentedKey string) (auth.Decision, error)
}

type ctxKey int

const decisionKey ctxKey = iota

// DecisionFromContext returns the authentication decision the gate attached
// to the request, Anonymous if the request never passed the gate.
func DecisionFromContext(ctx context.Context) auth.Decision {
	if d, ok := ctx.Value(decisionKey).(auth.Decision); ok {
		return d
	}

	return auth.Anonymous
}

func withDecision(r *http.Request, d auth.Decision) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), decisionKey, d))
}

func sessionID(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}

	return c.Value
}

// presentedKey extracts the api key from header, query or an urlencoded body
// field. Multipart bodies are left untouched so uploads can stream.
func presentedKey(r *http.Request) string {
	if key := r.Header.Get(KeyHeader); key != "" {
		return key
	}

	if key := r.URL.Query().Get(keyParam); key != "" {
		return key
	}

	if r.Header.Get("Content-Type") == contentTypeForm {
		return r.PostFormValue(keyParam)
	}

	return ""
}

// RequirePage gates page-rendering routes: an authenticated session passes,
// anything else is redirected to the login prompt, never rejected.
func RequirePage(srv AuthService, log *slog.Logger, next http.Handler) http.HandlerFunc {
	log = log.With(slog.String("handler", "RequirePage"))

	return func(w http.ResponseWriter, r *http.Request) {
		decision, err := srv.Verify(r.Context(), sessionID(r), "")
		if err != nil {
			log.Error("Cannot verify caller", slog.Any("error", err))
			http.Error(w, "Cannot check session", http.StatusInternalServerError)

			return
		}

		if !decision.Authenticated() {
			http.Redirect(w, r, loginPath, http.StatusSeeOther)

			return
		}

		next.ServeHTTP(w, withDecision(r, decision))
	}
}

// RequireKeyOrSession gates mutating routes: an authenticated session or a
// valid presented key passes, anything else gets 401.
func RequireKeyOrSession(srv AuthService, log *slog.Logger, next http.Handler) http.HandlerFunc {
	log = log.With(slog.String("handler", "RequireKeyOrSession"))

	return func(w http.ResponseWriter, r *http.Request) {
		decision, err := srv.Verify(r.Context(), sessionID(r), presentedKey(r))
		if err != nil {
			log.Error("Cannot verify caller", slog.Any("error", err))
			writeJSONError(w, http.StatusInternalServerError, "cannot check credentials")

			return
		}

		if !decision.Authenticated() {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")

			return
		}

		next.ServeHTTP(w, withDecision(r, decision))
	}
}

func NewLoginPageHandler(rnd *renderer, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rnd.render(w, http.StatusOK, "login.html", struct{ Error bool }{
			Error: r.URL.Query().Get("error") != "",
		})
	}
}

func NewLoginHandler(srv AuthService, secureCookie bool, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "LoginHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := srv.Login(r.Context(), r.PostFormValue(secretField))
		if err != nil {
			if errors.Is(err, common.ErrUnauthorizedError) {
				log.Warn("Failed login attempt", slog.String("remote_addr", r.RemoteAddr))
				http.Redirect(w, r, loginPath+"?error=1", http.StatusSeeOther)

				return
			}

			http.Error(w, "Cannot login", http.StatusInternalServerError)

			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   secureCookie,
			SameSite: http.SameSiteLaxMode,
		})

		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func NewLogoutHandler(srv AuthService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "LogoutHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		if id := sessionID(r); id != "" {
			if err := srv.Logout(r.Context(), id); err != nil {
				log.Error("Cannot logout", slog.Any("error", err))
			}
		}

		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookieName,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			MaxAge:   -1,
		})

		http.Redirect(w, r, loginPath, http.StatusSeeOther)
	}
}
