package main

import (
	"context"
	"io"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/abatilo/taskboard/internal/board"
	"github.com/abatilo/taskboard/internal/config"
	tberrors "github.com/abatilo/taskboard/internal/errors"
	"github.com/abatilo/taskboard/internal/output"
	"github.com/abatilo/taskboard/internal/prefs"
	"github.com/abatilo/taskboard/internal/remote"
	"github.com/abatilo/taskboard/internal/storage"
)

// app carries the state shared by all commands of one invocation.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	jsonOutput bool
	configPath string
	profile    string
	backend    string
	verbose    bool

	cfg        *config.Config
	log        *log.Logger
	formatter  output.Formatter
	collection remote.Collection
	files      *storage.Store
	kpis       remote.KPISource
	prefs      prefs.Store
	redis      *redis.Client
}

func (a *app) setup(_ context.Context) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.profile != "" {
		cfg.Profile = a.profile
	}
	if a.backend != "" {
		cfg.Backend = a.backend
		if err = cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg
	a.log = newLogger(a.errOut, cfg.Level(), a.verbose, a.jsonOutput)

	if cfg.Redis.URL != "" {
		opts, parseErr := redis.ParseURL(cfg.Redis.URL)
		if parseErr != nil {
			return parseErr
		}
		a.redis = redis.NewClient(opts)
	}

	if err = a.openCollection(); err != nil {
		return err
	}
	return a.openPrefs()
}

func (a *app) openCollection() error {
	entry := a.log.WithField("backend", a.cfg.Backend)
	switch a.cfg.Backend {
	case config.BackendFiles:
		dir := a.cfg.Files.Dir
		if dir == "" {
			var err error
			if dir, err = storage.DefaultDir(a.cfg.Profile); err != nil {
				return err
			}
		}
		a.files = storage.NewStore(dir)
		a.files.SetLogger(entry)
		a.collection = a.files
	default:
		client := remote.NewClient(a.cfg.API.BaseURL,
			remote.WithToken(a.cfg.API.Token),
			remote.WithTimeout(a.cfg.API.Timeout),
			remote.WithLogger(entry),
		)
		a.collection = client
		a.kpis = client
	}

	if a.redis != nil {
		cache := remote.NewCache(a.collection, a.redis, a.cfg.Redis.TTL, "taskboard:"+storage.ProfileName(a.cfg.Profile))
		cache.SetLogger(entry.WithField("component", "cache"))
		a.collection = cache
		if a.kpis != nil {
			a.kpis = cache
		}
	}
	return nil
}

func (a *app) openPrefs() error {
	if a.cfg.Prefs.Store == config.PrefsRedis {
		a.prefs = prefs.NewRedisStore(a.redis, storage.ProfileName(a.cfg.Profile))
		return nil
	}
	dir, err := storage.ProfileDir(a.cfg.Profile)
	if err != nil {
		return err
	}
	a.prefs = prefs.NewFileStore(dir)
	return nil
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// newBoard builds a board over the configured collection. Celebrations are
// printed only for human output so JSON stays machine-readable.
func (a *app) newBoard(q remote.Query) *board.Board {
	opts := []board.Option{board.WithLogger(a.log.WithField("component", "board"))}
	if !a.jsonOutput {
		opts = append(opts, board.WithCelebrator(newConsoleCelebrator(a.out)))
	}
	return board.New(a.collection, q, opts...)
}

func (a *app) analytics() (remote.KPISource, error) {
	if a.kpis == nil {
		return nil, tberrors.UnsupportedError{Operation: "analytics", Backend: a.cfg.Backend}
	}
	return a.kpis, nil
}

// rememberMode persists the presentation the user just switched to. A
// failure only costs the preference, so it is logged and not returned.
func (a *app) rememberMode(ctx context.Context, m prefs.Mode) {
	if err := a.prefs.Save(ctx, m); err != nil {
		a.log.WithError(err).Warn("could not save view mode")
	}
}

func newLogger(w io.Writer, level log.Level, verbose, jsonOutput bool) *log.Logger {
	l := log.New()
	l.SetOutput(w)
	l.SetLevel(level)
	if verbose {
		l.SetLevel(log.DebugLevel)
	}
	if jsonOutput {
		l.SetFormatter(&log.JSONFormatter{})
	} else {
		l.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	}
	return l
}
