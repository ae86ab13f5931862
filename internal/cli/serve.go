package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linevis/internal/server"
)

type serveOpts struct {
	addr       string
	settings   string
	allowAll   bool
	dataDir    string
	namespace  string
	dataLabels bool
	sessionTTL time.Duration
	noCache    bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve interactive charts over HTTP",
		Long: `Serve hosts charts over HTTP. Clients create a visual, upload data, fetch
the interactive SVG and post the events it emits back; the server answers
with the resulting selection.

Selections are persisted in the cache under the visual id. Set ` + redisEnv + `
to share them between server instances.`,
		Example: `  linevis serve --addr :8080
  ` + redisEnv + `=localhost:6379 linevis serve --session-ttl 1h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVarP(&opts.settings, "settings", "s", "", "settings file (TOML)")
	cmd.Flags().BoolVar(&opts.allowAll, "allow-all-origins", false, "allow every CORS origin")
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "directory of datasets clients may load by name")
	cmd.Flags().StringVar(&opts.namespace, "namespace", "", "prefix for persisted selection keys")
	cmd.Flags().BoolVar(&opts.dataLabels, "data-labels", false, "draw values above points")
	cmd.Flags().DurationVar(&opts.sessionTTL, "session-ttl", 30*time.Minute, "drop visuals idle for this long (0 keeps them)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "do not persist selections")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	s, err := loadSettings(opts.settings)
	if err != nil {
		return err
	}
	store, err := c.newCache(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := server.New(server.Config{
		Addr:       opts.addr,
		AllowAll:   opts.allowAll,
		DataDir:    opts.dataDir,
		Namespace:  opts.namespace,
		Settings:   s,
		DataLabels: opts.dataLabels,
		SessionTTL: opts.sessionTTL,
	}, store, logger)

	if opts.sessionTTL > 0 {
		go evictLoop(ctx, srv, opts.sessionTTL)
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()
	printSuccess("Serving on %s", StyleLink.Render("http://localhost"+opts.addr))
	printNextStep("Create a visual", "curl -X POST localhost"+opts.addr+"/api/visuals/")

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func evictLoop(ctx context.Context, srv *server.Server, ttl time.Duration) {
	ticker := time.NewTicker(max(ttl/4, time.Second))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			srv.Evict(ctx, now)
		}
	}
}
