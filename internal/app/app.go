package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jgivc/assetgate/internal/adapter/notice"
	"github.com/jgivc/assetgate/internal/config"
	httphandler "github.com/jgivc/assetgate/internal/handler/http"
	assetrepo "github.com/jgivc/assetgate/internal/repository/asset"
	sessionrepo "github.com/jgivc/assetgate/internal/repository/session"
	assetsrv "github.com/jgivc/assetgate/internal/service/asset"
	authsrv "github.com/jgivc/assetgate/internal/service/auth"
	"github.com/jgivc/assetgate/internal/storage/blob"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	cfgPath string
	cfg     *config.Config
	srv     *http.Server
	log     *slog.Logger
}

func New(cfgPath string) *App {
	return &App{
		cfgPath: cfgPath,
	}
}

func (a *App) Start() {
	a.cfg = config.MustLoad(a.cfgPath)

	opt, err := redis.ParseURL(a.cfg.RedisURL)
	if err != nil {
		panic(err)
	}

	rdb := redis.NewClient(opt)
	ctx := context.Background()
	if _, err = rdb.Ping(ctx).Result(); err != nil {
		panic(err)
	}

	lo := &slog.HandlerOptions{}
	switch a.cfg.LogLevel {
	case config.LogLevelInfo:
		lo.Level = slog.LevelInfo
	case config.LogLevelWarn:
		lo.Level = slog.LevelWarn
	case config.LogLevelError:
		lo.Level = slog.LevelError
	case config.LogLevelDebug:
		lo.Level = slog.LevelDebug
	default:
		panic("unknown log level")
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, lo))
	a.log = log

	blobs, err := blob.NewStore(a.cfg.DataDir, log)
	if err != nil {
		panic(err)
	}

	arepo := assetrepo.NewAssetRepository(rdb, log)
	srepo := sessionrepo.NewSessionRepository(rdb, a.cfg.Session.TTL.Duration(), log)

	assets := assetsrv.NewAssetService(arepo, blobs, log)
	gate := authsrv.NewAuthService(a.cfg.AccessSecret, srepo, log)
	notices := notice.NewNoticeAdapter(a.cfg.NoticeFile, log)

	mux := httphandler.NewRouter(httphandler.RouterConfig{
		BaseURL:      a.cfg.URL,
		UploadLimit:  a.cfg.UploadLimit,
		SecureCookie: a.cfg.Session.SecureCookie,
	}, assets, gate, notices, time.Now(), log)

	a.srv = &http.Server{
		Addr:    a.cfg.Listen,
		Handler: mux,
	}

	go func() {
		log.Info("Start listen", slog.String("addr", a.cfg.Listen))

		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Could not serve", slog.String("listen_addr", a.cfg.Listen), slog.Any("error", err))
			os.Exit(2)
		}
	}()
}

func (a *App) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.srv.Shutdown(ctx); err != nil {
		a.log.Error("Cannot shutdown server", slog.Any("error", err))
	}
}
