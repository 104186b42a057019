// Package main provides the hearth binary entry point: a small household
// dashboard serving a weather forecast, upcoming garbage pickups, and
// birthdays over HTTP, backed by an encrypted SQLite store.
//
// The application flow:
//  1. Load defaults and apply environment variables.
//  2. Validate configuration.
//  3. Open the database and build the encrypted store.
//  4. Wire forecast, calendar, metrics, and the optional Matrix announcer.
//  5. Configure and start the HTTP server.
//
// It blocks until the server exits with an error (other than http.ErrServerClosed).
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"database/sql"

	"github.com/haukened/hearth/internal/app"
	"github.com/haukened/hearth/internal/config"
	"github.com/haukened/hearth/internal/crypt"
	"github.com/haukened/hearth/internal/httpx"
	"github.com/haukened/hearth/internal/ical"
	"github.com/haukened/hearth/internal/metrics"
	"github.com/haukened/hearth/internal/notify"
	"github.com/haukened/hearth/internal/store"
	"github.com/haukened/hearth/internal/store/sqlite"
	"github.com/haukened/hearth/internal/weather"
)

// realClock implements app.Clock using time.Now.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

func loadConfig() *config.AppConfig {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "err", err)
		os.Exit(2)
	}
	return cfg
}

func ensureDataDir(dir string) string {
	if st, err := os.Stat(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if mkErr := os.MkdirAll(dir, 0o700); mkErr != nil {
				slog.Error("failed to create data directory", "dir", dir, "err", mkErr)
				os.Exit(3)
			}
		} else {
			slog.Error("stat data directory", "dir", dir, "err", err)
			os.Exit(3)
		}
	} else if !st.IsDir() {
		slog.Error("data path not directory", "dir", dir)
		os.Exit(3)
	}
	return dir
}

func openDatabase(dataDir string) (*sql.DB, *sqlite.Index) {
	dbPath := filepath.Join(dataDir, "hearth.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		slog.Error("open sqlite driver", "err", err)
		os.Exit(4)
	}
	idx, err := sqlite.New(db)
	if err != nil {
		slog.Error("init sqlite schema", "err", err)
		os.Exit(4)
	}
	return db, idx
}

// buildCodec derives the field cipher from the configured secret. The secret
// is mandatory: a dashboard holding personal data never runs unencrypted.
func buildCodec(secret string) *crypt.Codec {
	key, err := crypt.KeyFromBase64(secret)
	if err != nil {
		slog.Error("invalid cipher key", "err", err)
		os.Exit(5)
	}
	codec, err := crypt.New(key)
	if err != nil {
		slog.Error("init cipher", "err", err)
		os.Exit(5)
	}
	return codec
}

func buildForecast(cfg *config.AppConfig) app.ForecastSource {
	if cfg.WeatherMock != "" {
		slog.Info("using mock forecast source", "path", cfg.WeatherMock)
		return weather.NewFileSource(cfg.WeatherMock, cfg.ForecastDays)
	}
	return weather.NewClient(cfg.WeatherClientID, cfg.WeatherClientSecret, cfg.ForecastDays)
}

func buildService(idx *sqlite.Index, cfg *config.AppConfig, clock app.Clock) *app.Service {
	st := store.New(idx, buildCodec(cfg.DBSecret))
	return &app.Service{
		Store:         st,
		Forecast:      buildForecast(cfg),
		Calendar:      ical.NewFileSource(cfg.CalendarFile),
		Clock:         clock,
		GarbageLimit:  cfg.GarbageLimit,
		BirthdayLimit: cfg.BirthdayLimit,
	}
}

func buildHandler(svc *app.Service, db *sql.DB, mgr *metrics.Manager) http.Handler {
	readiness := func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
	h := httpx.New(svc, readiness)
	h.OnRequest = func(route string) {
		switch route {
		case "dashboard":
			mgr.Inc(metrics.CounterDashboardRequests)
		case "birthday_upsert":
			mgr.Inc(metrics.CounterBirthdaysUpserted)
		case "birthday_delete":
			mgr.Inc(metrics.CounterBirthdaysDeleted)
		}
	}
	return h.Router()
}

func newServer(cfg *config.AppConfig, handler http.Handler) *http.Server {
	return &http.Server{Addr: cfg.Addr, Handler: handler, ReadTimeout: 5 * time.Second, WriteTimeout: 10 * time.Second, IdleTimeout: 120 * time.Second}
}

func run() error {
	cfg := loadConfig()
	dataDir := ensureDataDir(cfg.DataDir)
	db, idx := openDatabase(dataDir)
	defer db.Close()
	clock := realClock{}
	svc := buildService(idx, cfg, clock)

	ctx := context.Background()
	mgr := metrics.New(db, metrics.Config{FlushInterval: cfg.MetricsFlush})
	if err := mgr.Start(ctx); err != nil {
		return err
	}
	defer mgr.Stop()

	if cfg.AnnouncerEnabled() {
		announcer := notify.New(svc, notify.Config{
			Interval:      cfg.AnnounceInterval,
			HomeserverURL: cfg.MatrixURL,
			Username:      cfg.MatrixUser,
			Password:      cfg.MatrixPassword,
			RoomID:        cfg.MatrixRoom,
		})
		announcer.OnSent = func() { mgr.Inc(metrics.CounterAnnouncementsSent) }
		announcer.Start(ctx)
		defer announcer.Stop()
		slog.Info("birthday announcer enabled", "interval", cfg.AnnounceInterval)
	}

	srv := newServer(cfg, buildHandler(svc, db, mgr))
	slog.Info("starting server", "addr", cfg.Addr, "pid", os.Getpid())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}
