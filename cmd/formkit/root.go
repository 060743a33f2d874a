package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	json "github.com/goccy/go-json"
	formkit "github.com/reoring/formkit"
	"github.com/reoring/formkit/config"
	"github.com/reoring/formkit/draft"
	"github.com/reoring/formkit/draft/badgerstore"
	"github.com/reoring/formkit/draft/filestore"
	"github.com/reoring/formkit/draft/pgstore"
	"github.com/reoring/formkit/draft/sqlitestore"
	"github.com/reoring/formkit/i18n"
	"github.com/reoring/formkit/internal/logging"
	"github.com/reoring/formkit/remote"
	"github.com/spf13/cobra"
)

// errReported means the failure was already printed.
var errReported = errors.New("reported")

type app struct {
	configPath string
	logLevel   string

	cfg config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "formkit",
		Short:         "Schema-driven forms: lint, check, publish and collect records",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to formkit.yaml")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	root.AddCommand(
		a.lintCmd(),
		a.checkCmd(),
		a.jsonSchemaCmd(),
		a.formsCmd(),
		a.instancesCmd(),
		a.draftCmd(),
		a.mockServerCmd(),
	)
	return root
}

func (a *app) setup(stderr io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, stderr)
	if err != nil {
		return err
	}
	if cfg.Language != "" {
		i18n.SetLanguage(cfg.Language)
	}
	a.cfg, a.log = cfg, log
	return nil
}

func (a *app) client() (*remote.Client, error) {
	opts := []remote.Option{remote.WithLogger(a.log)}
	if a.cfg.Remote.Token != "" {
		opts = append(opts, remote.WithToken(a.cfg.Remote.Token))
	}
	if a.cfg.Remote.RateLimit > 0 {
		opts = append(opts, remote.WithRateLimit(a.cfg.Remote.RateLimit, a.cfg.Remote.Burst))
	}
	return remote.NewClient(a.cfg.Remote.URL, opts...)
}

// draftStore opens the configured backend. The returned func releases it.
func (a *app) draftStore(ctx context.Context) (draft.Store, func(), error) {
	d := a.cfg.Draft
	switch d.Backend {
	case config.BackendMemory:
		return draft.NewMemoryStore(), func() {}, nil
	case config.BackendFile:
		s, err := filestore.New(d.Path)
		return s, func() {}, err
	case config.BackendBadger:
		cfg := badgerstore.DefaultConfig(d.Path)
		cfg.Logger = a.log
		s, err := badgerstore.Open(cfg)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.BackendSQLite:
		s, err := sqlitestore.Open(ctx, d.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.BackendPostgres:
		s, err := pgstore.Connect(ctx, d.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown draft backend %q", d.Backend)
}

func (a *app) drafts(ctx context.Context, opts ...draft.Option) (*draft.Manager, func(), error) {
	store, release, err := a.draftStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	opts = append([]draft.Option{draft.WithWindow(a.cfg.Draft.Window), draft.WithLogger(a.log)}, opts...)
	return draft.NewManager(store, opts...), release, nil
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// reportIssues prints validation issues one per line and returns
// errReported, or returns err unchanged when it is not Issues.
func reportIssues(w io.Writer, err error) error {
	iss, ok := formkit.AsIssues(err)
	if !ok {
		return err
	}
	for _, it := range iss {
		fmt.Fprintf(w, "%s\t%s\t%s\n", it.Path, it.Code, it.Message)
	}
	return errReported
}
