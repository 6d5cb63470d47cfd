package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dinotail/dinotail/internal/app"
	"github.com/dinotail/dinotail/internal/filter"
)

// rootFlags holds the persistent flags shared by every command.
type rootFlags struct {
	configPath  string
	prefsPath   string
	apiBind     string
	capacity    int
	window      int
	refresh     time.Duration
	metricsAddr string
	logLevel    string
	plain       bool
	filter      filter.Options
}

var flags rootFlags

// isTerminal reports whether stdout is a terminal. Tests replace it.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.config/dinotail/config.toml)")
	pf.StringVar(&flags.prefsPath, "prefs", "", "preferences file (default ~/.config/dinotail/prefs.toml)")
	pf.StringVar(&flags.apiBind, "api", "", "proxy API address, host:port or URL (default 127.0.0.1:8553)")
	pf.IntVar(&flags.capacity, "capacity", 0, "records kept in the ring buffer (default 1000)")
	pf.IntVar(&flags.window, "window", 0, "records shown per page (default 20)")
	pf.DurationVar(&flags.refresh, "refresh", 0, "UI refresh interval (default 100ms)")
	pf.StringVar(&flags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error (default info)")
	pf.BoolVar(&flags.plain, "plain", false, "print matching records as lines instead of the TUI")

	pf.StringVar(&flags.filter.Date, "date", "", "filter: date pattern")
	pf.StringVar(&flags.filter.Client, "client", "", "filter: client address pattern")
	pf.StringVar(&flags.filter.QName, "qname", "", "filter: query name pattern")
	pf.StringVar(&flags.filter.QType, "qtype", "", "filter: query type pattern, case-insensitive")
	pf.StringVar(&flags.filter.RCode, "rcode", "", "filter: response code pattern, case-insensitive")
	pf.StringVar(&flags.filter.Status, "status", "", "filter: status label pattern")
}

// options turns the parsed flags into app options. Output goes to the
// command's writer so tests can capture it.
func (f rootFlags) options(cmd *cobra.Command) app.Options {
	return app.Options{
		ConfigPath:  f.configPath,
		PrefsPath:   f.prefsPath,
		APIBind:     f.apiBind,
		Capacity:    f.capacity,
		Window:      f.window,
		Refresh:     f.refresh,
		MetricsAddr: f.metricsAddr,
		LogLevel:    f.logLevel,
		Filter:      f.filter,
		Plain:       f.plain || !isTerminal(),
		Out:         cmd.OutOrStdout(),
		Version:     version,
	}
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func runLive(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()
	return app.Run(ctx, flags.options(cmd))
}
