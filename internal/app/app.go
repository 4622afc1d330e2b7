package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/five82/lantern/internal/config"
	"github.com/five82/lantern/internal/export"
	"github.com/five82/lantern/internal/history"
	"github.com/five82/lantern/internal/lifecycle"
	"github.com/five82/lantern/internal/prefs"
	"github.com/five82/lantern/internal/research"
	"github.com/five82/lantern/internal/ui"
)

// Options configure the lantern application.
type Options struct {
	ConfigPath string
	PrefsPath  string        // empty uses default ~/.config/lantern/prefs.toml
	BaseURL    string        // overrides api_base when set
	Timeout    time.Duration // overrides request_timeout when positive
	Verbose    bool
}

// runtime is everything one invocation needs, built once by setup.
type runtime struct {
	cfg        config.Config
	prefs      prefs.Prefs
	logger     *zap.Logger
	client     *research.Client
	controller *lifecycle.Controller
}

func (r *runtime) close() {
	r.controller.Close()
	_ = r.logger.Sync()
}

// setup loads configuration and wires the client and controller. When
// logToFile is false the logger writes to stderr.
func setup(opts Options, logToFile bool) (*runtime, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.APIBase = base
	}
	if opts.Timeout > 0 {
		cfg.RequestTimeout = opts.Timeout
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	logPath := ""
	if logToFile {
		logPath = cfg.LogFile
	}
	logger, err := newLogger(logPath, opts.Verbose)
	if err != nil {
		return nil, err
	}

	client, err := research.NewClient(cfg.APIBase, research.WithLogger(logger.Named("research")))
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("init research client: %w", err)
	}

	historyPath := cfg.HistoryFile
	controller := lifecycle.New(client, lifecycle.Options{
		Logger:  logger.Named("lifecycle"),
		Timeout: cfg.RequestTimeout,
		Settled: func(st lifecycle.State) {
			if err := history.Append(historyPath, history.FromState(st)); err != nil {
				logger.Warn("history append failed", zap.String("path", historyPath), zap.Error(err))
			}
		},
	})

	logger.Debug("lantern configured",
		zap.String("api_base", client.BaseURL()),
		zap.Duration("request_timeout", cfg.RequestTimeout),
		zap.String("history_file", historyPath))

	return &runtime{
		cfg:        cfg,
		prefs:      userPrefs,
		logger:     logger,
		client:     client,
		controller: controller,
	}, nil
}

// Run boots the lantern TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	rt, err := setup(opts, true)
	if err != nil {
		return err
	}
	defer rt.close()

	rt.logger.Info("starting interactive session")

	uiOpts := ui.Options{
		Context:    ctx,
		Controller: rt.controller,
		Config:     &rt.cfg,
		Query:      rt.prefs.Apply(rt.cfg.QueryDefaults()),
		BaseURL:    rt.client.BaseURL(),
		ThemeName:  rt.prefs.Theme,
		PrefsPath:  opts.PrefsPath,
		Logger:     rt.logger.Named("ui"),
	}
	return ui.Run(uiOpts)
}

// OnceOptions configure a single non-interactive query.
type OnceOptions struct {
	Query            string
	MaxResults       int  // zero uses config/prefs
	ExcludeWebSearch *bool // nil uses config/prefs
	DemoMode         *bool // nil uses config/prefs
	SavePath         string
}

// RunOnce submits one query, writes the markdown answer to out and, when
// SavePath is set, to that file.
func RunOnce(ctx context.Context, opts Options, once OnceOptions, out io.Writer) error {
	rt, err := setup(opts, false)
	if err != nil {
		return err
	}
	defer rt.close()

	return runOnce(ctx, rt.controller, rt.prefs.Apply(rt.cfg.QueryDefaults()), once, out)
}

func runOnce(ctx context.Context, controller *lifecycle.Controller, query research.QueryOptions, once OnceOptions, out io.Writer) error {
	query.Query = once.Query
	if once.MaxResults != 0 {
		query.MaxResults = research.ClampResults(once.MaxResults)
	}
	if once.ExcludeWebSearch != nil {
		query.ExcludeWebSearch = *once.ExcludeWebSearch
	}
	if once.DemoMode != nil {
		query.DemoMode = *once.DemoMode
	}

	done, ok := controller.Submit(ctx, query)
	if !ok {
		return fmt.Errorf("query is empty")
	}

	var st lifecycle.State
	select {
	case st = <-done:
	case <-ctx.Done():
		controller.Cancel()
		st = <-done
	}

	if st.Phase != lifecycle.Succeeded {
		return fmt.Errorf("analysis failed: %s", st.Message)
	}

	doc, _ := export.FromState(st)
	md := export.Markdown(doc)
	if _, err := io.WriteString(out, md); err != nil {
		return fmt.Errorf("write answer: %w", err)
	}
	if path := strings.TrimSpace(once.SavePath); path != "" {
		if err := export.WriteFile(path, doc); err != nil {
			return err
		}
	}
	return nil
}

// History writes the newest settled requests to out, oldest first.
func History(opts Options, limit int, out io.Writer) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	entries, err := history.Read(cfg.HistoryFile, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintln(out, "no history yet")
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintln(out, history.Format(e)); err != nil {
			return err
		}
	}
	return nil
}
