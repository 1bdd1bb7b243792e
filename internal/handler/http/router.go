package httphandler

import (
	"log/slog"
	"net/http"
	"time"
)

type RouterConfig struct {
	BaseURL      string
	UploadLimit  int64
	SecureCookie bool
}

// NewRouter wires every route behind its gate category: page-rendering routes
// redirect anonymous callers to the login prompt, API and mutating routes
// answer 401 unless a session or a valid key is presented.
func NewRouter(cfg RouterConfig, assets AssetService, authSrv AuthService, notices NoticeLoader, started time.Time, log *slog.Logger) *http.ServeMux {
	rnd := newRenderer(log)
	mux := http.NewServeMux()

	mux.Handle("GET /status", NewStatusHandler(started, log))

	mux.Handle("GET /login", NewLoginPageHandler(rnd, log))
	mux.Handle("POST /login", NewLoginHandler(authSrv, cfg.SecureCookie, log))
	mux.Handle("POST /logout", NewLogoutHandler(authSrv, log))

	mux.Handle("POST /upload", RequireKeyOrSession(authSrv, log,
		NewUploadHandler(cfg.BaseURL, cfg.UploadLimit, assets, log)))
	mux.Handle("GET /api/recent", RequireKeyOrSession(authSrv, log, NewRecentHandler(assets, log)))
	mux.Handle("GET /api/search", RequireKeyOrSession(authSrv, log, NewSearchHandler(assets, log)))
	mux.Handle("GET /api/assets", RequireKeyOrSession(authSrv, log, NewListHandler(assets, log)))

	mux.Handle("GET /{$}", RequirePage(authSrv, log, NewBrowseHandler(rnd, notices, assets, log)))
	mux.Handle("GET /{name}", RequirePage(authSrv, log, NewServeHandler(rnd, cfg.BaseURL, assets, log)))
	mux.Handle("DELETE /{name}", RequireKeyOrSession(authSrv, log, NewDeleteHandler(assets, log)))

	return mux
}
