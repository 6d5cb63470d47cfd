package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dinotail/dinotail/internal/dinosaur"
	"github.com/dinotail/dinotail/internal/state"
)

const statusTimeout = 5 * time.Second

// Status prints a one-shot report of the proxy's configuration, cache and
// blocklist to w. It fails when the proxy cannot be reached.
func Status(ctx context.Context, opts Options, w io.Writer) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}
	client, err := dinosaur.NewClient(cfg.APIBind)
	if err != nil {
		return fmt.Errorf("init proxy client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", client.BaseURL(), err)
	}
	store := &state.Store{}
	if err := refresh(ctx, store, client); err != nil {
		return err
	}
	return writeStatus(w, client.BaseURL(), store.Snapshot())
}

func writeStatus(w io.Writer, baseURL string, snap state.Snapshot) error {
	var b strings.Builder
	row := func(label, value string) {
		fmt.Fprintf(&b, "%-12s %s\n", label, value)
	}
	list := func(items []string) string {
		if len(items) == 0 {
			return "-"
		}
		return strings.Join(items, ", ")
	}

	row("proxy", baseURL)
	if snap.HasConfig {
		c := snap.Config
		row("listen", list(c.Listen))
		row("upstream", list(c.Upstream))
		row("acl", list(c.ACL))
		row("blocklists", list(c.Blocklist))
		row("localzone", list(c.Localzone))
		row("dns64", fmt.Sprintf("%t", c.DNS64))
		row("api-bind", c.APIBind)
	}
	row("blocked", fmt.Sprintf("%d names", snap.BlockListCount))
	row("cache", fmt.Sprintf("%d entries", len(snap.CacheEntries)))
	for _, entry := range snap.CacheEntries {
		b.WriteString("  ")
		b.WriteString(entry)
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
