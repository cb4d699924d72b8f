package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"rateboard-service/internal/application"
	"rateboard-service/internal/config"
	"rateboard-service/internal/infrastructure/cache"
	"rateboard-service/internal/infrastructure/logx"
	"rateboard-service/internal/infrastructure/pg"
	redisstore "rateboard-service/internal/infrastructure/redis"
	"rateboard-service/internal/infrastructure/render"
	"rateboard-service/internal/infrastructure/ratesync"
	"rateboard-service/internal/infrastructure/telegram"
)

const (
	dispatchTimeout = 30 * time.Second
	renderTimeout   = 20 * time.Second
)

// App holds everything cmd/api needs to serve requests.
type App struct {
	Service   *application.PublishService
	Snapshots *cache.SnapshotCache
	Ping      func(ctx context.Context) error
}

// BuildApp wires the publish pipeline from config. The returned cleanup closes
// the pg pool, the redis client and the snapshot cache.
func BuildApp(ctx context.Context, cfg config.Config) (*App, func(), error) {
	log := logx.L()

	db, closeDB, err := buildDB(ctx, cfg, log)
	if err != nil {
		return nil, func() {}, err
	}

	lock, closeLock := buildLock(cfg, log)

	snapshots, err := cache.NewSnapshotCache(cfg.SnapshotCacheSize, cfg.SnapshotCacheTTL)
	if err != nil {
		closeLock()
		closeDB()
		return nil, func() {}, err
	}

	svc := application.NewPublishService(
		pg.NewGroupRepo(db),
		pg.NewQuoteRepo(db),
		pg.NewFinalizationRepo(db),
		&pg.UnitOfWork{Pool: db.Pool},
		buildRenderer(cfg),
		telegram.New(cfg.TelegramAPIBase, cfg.TelegramToken, dispatchTimeout, log),
		ratesync.New(cfg.RateAPIURL, cfg.RateAPIKey, cfg.RateAPITimeout, log),
		application.WithLock(lock),
		application.WithRebroadcast(cfg.AllowRebroadcast),
		application.WithCaption(application.CaptionConfig{
			ContactLines: cfg.ContactLines,
			FooterNote:   cfg.FooterNote,
		}),
		application.WithButtons(buildButtons(cfg.BoardButtons)),
		application.WithLogger(log),
	)

	app := &App{
		Service:   svc,
		Snapshots: snapshots,
		Ping:      db.Ping,
	}
	cleanup := func() {
		snapshots.Close()
		closeLock()
		closeDB()
	}
	return app, cleanup, nil
}

func buildDB(ctx context.Context, cfg config.Config, log *zap.Logger) (*pg.DB, func(), error) {
	if cfg.DatabaseURL == "" {
		return nil, func() {}, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, func() {}, err
	}
	if err := pg.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, func() {}, err
	}
	cleanup := func() {
		log.Info("closing pg")
		db.Close()
	}
	return db, cleanup, nil
}

// buildLock returns the redis publish lock, or the in-process noop when
// LOCK_BACKEND is not "redis".
func buildLock(cfg config.Config, log *zap.Logger) (application.PublishLock, func()) {
	if cfg.LockBackend != "redis" {
		log.Info("publish lock disabled", zap.String("backend", cfg.LockBackend))
		return application.NoopLock{}, func() {}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return redisstore.NewPublishLock(client, cfg.PublishLockTTL), func() { _ = client.Close() }
}

// buildButtons parses "text,url" pairs into inline keyboard rows, one button
// per row. Malformed entries are dropped.
func buildButtons(raw []string) [][]application.Button {
	var rows [][]application.Button
	for _, entry := range raw {
		text, url, ok := strings.Cut(entry, ",")
		text, url = strings.TrimSpace(text), strings.TrimSpace(url)
		if !ok || text == "" || url == "" {
			continue
		}
		rows = append(rows, []application.Button{{Text: text, URL: url}})
	}
	return rows
}

func buildRenderer(cfg config.Config) application.BoardRenderer {
	switch cfg.Renderer {
	case "http":
		return render.NewHTTP(cfg.RenderAPIBase, renderTimeout)
	default:
		return render.FakeRenderer{}
	}
}
