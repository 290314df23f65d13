package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tessro/mewzy/internal/api"
	"github.com/tessro/mewzy/internal/auth"
	"github.com/tessro/mewzy/internal/autoplay"
	"github.com/tessro/mewzy/internal/core"
	"github.com/tessro/mewzy/internal/history"
	"github.com/tessro/mewzy/internal/mediakeys"
	"github.com/tessro/mewzy/internal/player"
	"github.com/tessro/mewzy/internal/session"
	"github.com/tessro/mewzy/internal/store"
	"github.com/tessro/mewzy/internal/urlfix"
)

const (
	noticeBuffer   = 16
	sessionExpired = "Session expired. Please login again."
)

// remote is the server connection: URL fixing, the login and the API client.
type remote struct {
	fix    *urlfix.Fixer
	tokens *auth.TokenStorage
	auth   *auth.Session
	api    *api.Client
}

func openRemote(onExpired func()) (*remote, error) {
	tokens, err := auth.NewTokenStorage(cfg.Auth.TokenFile, cfg.API.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("open token storage: %w", err)
	}
	sess, err := auth.NewSession(tokens, onExpired)
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	return &remote{
		fix:    urlfix.New(cfg.API.BaseURL, cfg.API.StaleHosts...),
		tokens: tokens,
		auth:   sess,
		api: api.New(cfg.API.BaseURL, sess,
			api.WithTimeout(cfg.API.RequestTimeout()),
			api.WithMaxRetries(cfg.API.MaxRetries),
		),
	}, nil
}

// openState opens the local state database.
func openState(fix *urlfix.Fixer) (*store.SQLite, *store.State, error) {
	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open state: %w", err)
	}
	return db, store.NewState(db, fix), nil
}

// stack is a fully wired player.
type stack struct {
	*remote
	db      *store.SQLite
	state   *store.State
	recent  *history.Recent
	engine  *player.Engine
	notices chan core.Notice
	surface *mediakeys.StatusSurface

	cancel  context.CancelFunc
	detach  []func()
	session *session.Session
}

func settingsFromConfig() (core.Settings, error) {
	repeat, err := core.ParseRepeatMode(cfg.Player.Repeat)
	if err != nil {
		return core.Settings{}, err
	}
	return core.Settings{
		Volume:  float64(cfg.Player.Volume) / 100,
		Repeat:  repeat,
		Shuffle: cfg.Player.Shuffle,
	}, nil
}

// newStack builds the engine and its collaborators and starts the event
// loop. Close releases everything.
func newStack(ctx context.Context) (*stack, error) {
	settings, err := settingsFromConfig()
	if err != nil {
		return nil, err
	}

	s := &stack{notices: make(chan core.Notice, noticeBuffer)}
	notifier := core.NotifierFunc(func(n core.Notice) {
		select {
		case s.notices <- n:
		default:
			slog.Debug("notice dropped", "message", n.Message)
		}
	})

	s.remote, err = openRemote(func() {
		notifier.Notify(core.NewNotice(core.NoticeError, sessionExpired))
	})
	if err != nil {
		return nil, err
	}
	s.db, s.state, err = openState(s.fix)
	if err != nil {
		return nil, err
	}

	s.session = session.New(session.NewDefaultHandle(&http.Client{}))
	s.recent = history.NewRecent(s.state, s.api, s.fix)
	s.engine = player.New(player.Options{
		Session:           s.session,
		State:             s.state,
		Fixer:             s.fix,
		Resumer:           history.NewResumer(s.api),
		Autoplay:          autoplay.New(s.api, s.fix, cfg.API.RadioWait()),
		Recent:            s.recent,
		Notifier:          notifier,
		Settings:          settings,
		ShuffleNavigation: cfg.Player.ShuffleNavigation,
	})

	ctx, s.cancel = context.WithCancel(ctx)
	go s.engine.Run(ctx)

	s.surface = mediakeys.NewStatusSurface()
	s.detach = append(s.detach, mediakeys.Attach(ctx, s.engine, s.surface))
	if cfg.Notify.Desktop {
		s.detach = append(s.detach, mediakeys.Attach(ctx, s.engine, mediakeys.NewDesktopSurface()))
	}

	return s, nil
}

// Close stops the engine and releases audio and storage.
func (s *stack) Close() {
	for _, detach := range s.detach {
		detach()
	}
	if s.cancel != nil {
		s.cancel()
	}
	if s.session != nil {
		if err := s.session.Close(); err != nil {
			slog.Debug("close audio session", "error", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.Debug("close state", "error", err)
		}
	}
}
