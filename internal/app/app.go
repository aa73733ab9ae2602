package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/patrol/internal/config"
	"github.com/five82/patrol/internal/logging"
	"github.com/five82/patrol/internal/poller"
	"github.com/five82/patrol/internal/prefs"
	"github.com/five82/patrol/internal/state"
	"github.com/five82/patrol/internal/triage"
	"github.com/five82/patrol/internal/ui"
	"github.com/five82/patrol/internal/view"
	"github.com/five82/patrol/internal/violations"
)

// Version is reported in the User-Agent header and by the version command.
var Version = "0.1.0"

// ErrNotFound is returned when a record is not in the newest page.
var ErrNotFound = errors.New("violation not in the latest page")

// Options configure a patrol session.
type Options struct {
	ConfigPath string
	PrefsPath  string        // empty uses default ~/.config/patrol/prefs.toml
	PollEvery  time.Duration // zero uses the configured interval
	LogOutput  io.Writer     // headless commands only; nil means stderr
}

// session holds the components shared by the TUI and the headless commands.
type session struct {
	cfg     config.Config
	log     zerolog.Logger
	client  *violations.Client
	store   *state.Store
	poller  *poller.Poller
	mutator *triage.Mutator
}

func newSession(cfg config.Config, log zerolog.Logger, pollEvery time.Duration) *session {
	interval := cfg.PollInterval
	if pollEvery > 0 {
		interval = pollEvery
	}
	client := violations.NewClient(violations.Options{
		BaseURL:   cfg.URL,
		APIKey:    cfg.APIKey,
		Timeout:   cfg.RequestTimeout,
		UserAgent: "patrol/" + Version,
	})
	store := &state.Store{}
	p := poller.New(client, store, log, interval)
	return &session{
		cfg:     cfg,
		log:     log,
		client:  client,
		store:   store,
		poller:  p,
		mutator: triage.NewMutator(client, p, log),
	}
}

// close stops automatic refreshes and tears the store down. A fetch still in
// flight finishes against the closed store and is dropped.
func (s *session) close() {
	s.poller.Stop()
	s.store.Close()
}

// Run boots the TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, closer, err := logging.NewFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "patrol: logging disabled: %v\n", err)
	}
	defer closer.Close()

	userPrefs := prefs.Load(opts.PrefsPath)

	s := newSession(cfg, log, opts.PollEvery)
	defer s.close()

	log.Info().
		Str("url", cfg.URL).
		Dur("poll_interval", s.poller.Interval()).
		Dur("request_timeout", cfg.RequestTimeout).
		Msg("patrol started")

	s.poller.Start(ctx)

	err = ui.Run(ctx, ui.Options{
		Store:        s.store,
		Poller:       s.poller,
		Mutator:      s.mutator,
		ThemeName:    userPrefs.Theme,
		StatusFilter: userPrefs.StatusFilter,
		PrefsPath:    opts.PrefsPath,
		LogFile:      cfg.LogFile,
	})
	log.Info().Msg("patrol stopped")
	return err
}

// List performs one fetch and returns the filtered records together with
// statistics over the whole page.
func List(ctx context.Context, opts Options, criteria view.Criteria) (view.DerivedView, error) {
	s, err := headless(opts)
	if err != nil {
		return view.DerivedView{}, err
	}
	defer s.close()

	if err := s.poller.Refresh(ctx); err != nil {
		return view.DerivedView{}, err
	}
	return view.Derive(s.store.Current(), criteria), nil
}

// SetStatus changes the status of one violation and returns the record as
// re-read from the collection.
func SetStatus(ctx context.Context, opts Options, id violations.ID, status violations.Status) (violations.Violation, error) {
	s, err := headless(opts)
	if err != nil {
		return violations.Violation{}, err
	}
	defer s.close()

	if err := s.mutator.SetStatus(ctx, id, status); err != nil {
		return violations.Violation{}, err
	}
	for _, v := range s.store.Current() {
		if v.ID == id {
			return v, nil
		}
	}
	return violations.Violation{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func headless(opts Options) (*session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	out := opts.LogOutput
	if out == nil {
		out = os.Stderr
	}
	return newSession(cfg, logging.NewConsole(out, cfg.LogLevel), opts.PollEvery), nil
}
