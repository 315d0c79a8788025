package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/jsgraph/internal/config"
	"github.com/roach88/jsgraph/internal/graph"
	"github.com/roach88/jsgraph/internal/jid"
	"github.com/roach88/jsgraph/internal/redisstore"
	"github.com/roach88/jsgraph/internal/schema"
	"github.com/roach88/jsgraph/internal/store"
)

// session is one command's view of the configured backend.
type session struct {
	cfg  config.Config
	hook *graph.PersistedHook
	out  *OutputFormatter
}

// loadConfig resolves configuration from file, environment and flags.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return config.Config{}, err
	}
	if opts.Database != "" {
		cfg.Backend = config.BackendSQLite
		cfg.SQLite.Path = opts.Database
	}
	if opts.User != "" {
		cfg.User = opts.User
	}
	return *cfg, nil
}

// setupLogging installs the default slog handler. --verbose forces debug.
func setupLogging(cfg config.Config, verbose bool, w io.Writer) {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))
}

// openBackend opens the backend cfg names.
func openBackend(cfg config.Config) (graph.Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return store.OpenMemory()
	case config.BackendSQLite:
		return store.Open(cfg.SQLite.Path)
	case config.BackendRedis:
		return redisstore.Open(redisstore.Options{URL: cfg.Redis.URL, Prefix: cfg.Redis.Prefix})
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// openSession loads configuration, configures logging and opens the hook.
// Callers must close the session.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	setupLogging(cfg, opts.Verbose, cmd.ErrOrStderr())

	backend, err := openBackend(cfg)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open backend", err)
	}
	slog.Debug("backend ready", "backend", cfg.Backend, "user", cfg.User)

	var hookOpts []graph.HookOption
	if cfg.Validate {
		hookOpts = append(hookOpts, graph.WithValidator(schema.Validate))
	}

	return &session{
		cfg:  cfg,
		hook: graph.NewPersistedHook(backend, cfg.User, hookOpts...),
		out: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		},
	}, nil
}

func (s *session) close() {
	if err := s.hook.Close(); err != nil {
		slog.Error("error closing backend", "error", err)
	}
}

// commit flushes the command's changes in one batch.
func (s *session) commit(ctx context.Context) error {
	if err := s.hook.Commit(ctx); err != nil {
		return graphError("commit failed", err)
	}
	s.out.VerboseLog("committed")
	return nil
}

// rootArg names the user's root node in place of an id.
const rootArg = "root"

// entity resolves an identifier argument, or "root" for the user's root node.
func (s *session) entity(ctx context.Context, arg string) (graph.Entity, error) {
	var id jid.ID
	if arg == rootArg {
		id = graph.RootID(s.cfg.User)
	} else {
		parsed, err := jid.Parse(arg)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid id", err)
		}
		id = parsed
	}
	e, err := s.hook.GetObj(ctx, id)
	if err != nil {
		return nil, graphError("lookup failed", err)
	}
	return e, nil
}

// node resolves an identifier argument that must name a node.
func (s *session) node(ctx context.Context, arg string) (*graph.Node, error) {
	e, err := s.entity(ctx, arg)
	if err != nil {
		return nil, err
	}
	n, ok := e.(*graph.Node)
	if !ok {
		return nil, WrapExitError(ExitFailure, "lookup failed",
			&graph.Error{Code: graph.ErrCodeTypeMismatch, Message: fmt.Sprintf("want node, got %s", e.Type()), ID: e.ID()})
	}
	return n, nil
}

// graphError wraps a graph error for exit code ExitFailure.
func graphError(message string, err error) error {
	return WrapExitError(ExitFailure, message, err)
}

// withSession opens a session, runs fn and closes the session.
func withSession(opts *RootOptions, cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, s)
}
