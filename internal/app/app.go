package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/dinotail/dinotail/internal/config"
	"github.com/dinotail/dinotail/internal/dinosaur"
	"github.com/dinotail/dinotail/internal/feed"
	"github.com/dinotail/dinotail/internal/filter"
	"github.com/dinotail/dinotail/internal/logging"
	"github.com/dinotail/dinotail/internal/logtail"
	"github.com/dinotail/dinotail/internal/metrics"
	"github.com/dinotail/dinotail/internal/pager"
	"github.com/dinotail/dinotail/internal/prefs"
	"github.com/dinotail/dinotail/internal/querylog"
	"github.com/dinotail/dinotail/internal/state"
	"github.com/dinotail/dinotail/internal/ui"
)

// Options configure the dinotail application. Zero values defer to the
// config file, then to preferences, then to built-in defaults.
type Options struct {
	ConfigPath  string
	PrefsPath   string // empty uses default ~/.config/dinotail/prefs.toml
	APIBind     string
	Capacity    int
	Window      int
	Refresh     time.Duration
	MetricsAddr string
	LogLevel    string
	Filter      filter.Options
	ReplayPath  string // non-empty reads a capture instead of the live feed
	Plain       bool   // print matching records instead of opening the TUI
	Out         io.Writer
	Version     string
}

// Run boots dinotail until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	userPrefs := prefs.Load(opts.PrefsPath)
	window, filterOpts := initialView(opts, cfg, userPrefs)

	session, err := pager.NewSession(cfg.BufferCapacity, window)
	if err != nil {
		return fmt.Errorf("init session: %w", err)
	}
	if err := session.SetFilter(filterOpts); err != nil {
		return fmt.Errorf("init filter: %w", err)
	}

	var collector *metrics.Collector
	if cfg.MetricsAddr != "" {
		collector = metrics.New()
		collector.SetBuildInfo(versionOr(opts.Version), runtime.Version())
		if _, err := serveMetrics(ctx, cfg.MetricsAddr, collector, logger); err != nil {
			return err
		}
		go sampleSession(ctx, session, collector, cfg.Refresh)
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	logger.Info("dinotail starting",
		"version", versionOr(opts.Version),
		"api", cfg.APIBind,
		"capacity", cfg.BufferCapacity,
		"window", window,
		"filter", filterOpts.Summary(),
		"replay", opts.ReplayPath,
		"plain", opts.Plain,
	)

	store := &state.Store{}
	source := "live " + cfg.APIBind

	if opts.ReplayPath != "" {
		if err := replay(opts.ReplayPath, cfg.BufferCapacity, session, collector, logger); err != nil {
			return err
		}
		if opts.Plain {
			return printRecords(out, session)
		}
		source = "replay " + opts.ReplayPath
	} else {
		client, err := dinosaur.NewClient(cfg.APIBind)
		if err != nil {
			return fmt.Errorf("init proxy client: %w", err)
		}

		var sink feed.Sink = session
		if opts.Plain {
			sink = newPrintSink(session, out)
		}
		adapter := feed.New(client, sink, feed.Options{
			Store:   store,
			Metrics: collector,
			Logger:  logger,
		})

		if opts.Plain {
			if err := adapter.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		}

		go func() { _ = adapter.Run(ctx) }()

		// Start background poller
		StartPoller(ctx, store, client, cfg.StatusPoll, collector, logger)
	}

	uiOpts := ui.Options{
		Context:   ctx,
		Session:   session,
		Store:     store,
		Refresh:   cfg.Refresh,
		ThemeName: userPrefs.Theme,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
		Source:    source,
		Logger:    logger,
		LogFile:   cfg.LogFile,
	}
	return ui.Run(uiOpts)
}

// resolveConfig loads the config file and applies command-line overrides.
func resolveConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(opts.APIBind); v != "" {
		cfg.APIBind = v
	}
	if opts.Capacity != 0 {
		cfg.BufferCapacity = opts.Capacity
	}
	if opts.Window != 0 {
		cfg.WindowSize = opts.Window
	}
	if opts.Refresh != 0 {
		cfg.Refresh = opts.Refresh
	}
	if v := strings.TrimSpace(opts.MetricsAddr); v != "" {
		cfg.MetricsAddr = v
	}
	if v := strings.TrimSpace(opts.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

// initialView picks the window size and filter the session starts with.
// Flags win over remembered preferences, which win over the config file.
func initialView(opts Options, cfg config.Config, p prefs.Prefs) (int, filter.Options) {
	window := cfg.WindowSize
	if opts.Window == 0 && p.WindowSize > 0 {
		window = p.WindowSize
	}

	filterOpts := cfg.Filter
	switch {
	case !opts.Filter.IsZero():
		filterOpts = opts.Filter
	case !p.Filter.IsZero():
		filterOpts = p.Filter
	}
	return window, filterOpts
}

// replay loads the tail of a captured stream into the session.
func replay(path string, capacity int, session *pager.Session, collector *metrics.Collector, logger *logging.Logger) error {
	resolved, err := config.ExpandPath(path)
	if err != nil {
		return fmt.Errorf("replay path: %w", err)
	}
	result, err := logtail.ReadRecords(resolved, capacity)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	for _, rec := range result.Records {
		session.Push(rec)
		collector.IncAccepted()
	}
	for i := 0; i < result.Skipped; i++ {
		collector.IncDropped(metrics.ReasonMalformed)
	}
	logger.Info("replay loaded",
		"path", resolved,
		"records", len(result.Records),
		"lines", result.Lines,
		"skipped", result.Skipped,
	)
	return nil
}

// printSink pushes into the session and prints records that pass the
// session's filter.
type printSink struct {
	session *pager.Session
	pred    filter.Predicate
	mu      sync.Mutex
	out     io.Writer
}

func newPrintSink(session *pager.Session, out io.Writer) *printSink {
	pred, err := filter.Compile(session.Filter())
	if err != nil {
		pred = filter.AcceptAll()
	}
	return &printSink{session: session, pred: pred, out: out}
}

func (p *printSink) Push(rec querylog.Record) {
	p.session.Push(rec)
	if !p.pred.Match(rec) {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, rec.Line())
}

// printRecords writes every retained record that passes the filter, oldest
// first.
func printRecords(out io.Writer, session *pager.Session) error {
	pred, err := filter.Compile(session.Filter())
	if err != nil {
		return err
	}
	for _, rec := range session.Records() {
		if !pred.Match(rec) {
			continue
		}
		if _, err := fmt.Fprintln(out, rec.Line()); err != nil {
			return err
		}
	}
	return nil
}

// sampleSession mirrors buffer occupancy into the metrics gauges.
func sampleSession(ctx context.Context, session *pager.Session, collector *metrics.Collector, every time.Duration) {
	if every < time.Second {
		every = time.Second
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	reported := 0
	for {
		st := session.Stats()
		collector.SetBuffer(st.Length, st.Capacity)
		if st.Resumes > reported {
			collector.AddAutoResumes(st.Resumes - reported)
			reported = st.Resumes
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func versionOr(v string) string {
	if strings.TrimSpace(v) == "" {
		return "dev"
	}
	return v
}
