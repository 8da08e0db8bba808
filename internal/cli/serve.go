package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartpipe/internal/api"
	"github.com/matzehuels/chartpipe/pkg/cache"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr      string // listen address
	redisAddr string // optional Redis cache backend
	noCache   bool   // disable caching entirely
}

// newServeCmd creates the serve command running the HTTP rendering API.
func newServeCmd() *cobra.Command {
	opts := serveOpts{addr: ":8080"}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP rendering API",
		Long: `Serve exposes the rendering pipeline over HTTP. POST a TOML chart spec
to /render to receive SVG or JSON frames. With --redis, rendered frames are
cached in Redis so multiple instances share one cache.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "redis address for shared frame caching (host:port)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable frame caching")

	return cmd
}

func runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	c, err := serveCache(ctx, opts)
	if err != nil {
		return err
	}
	defer c.Close()

	server := api.NewServer(c, logger)

	httpServer := &http.Server{
		Addr:              opts.addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", opts.addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// serveCache picks the cache backend: Redis when configured, otherwise the
// local file cache.
func serveCache(ctx context.Context, opts *serveOpts) (cache.Cache, error) {
	if opts.noCache {
		return cache.NewNullCache(), nil
	}
	if opts.redisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: opts.redisAddr})
		if err != nil {
			return nil, err
		}
		// Redis marks network failures retryable; a blip should not cost a
		// whole render pass its cache.
		return cache.WithRetry(rc), nil
	}
	return newCache(false), nil
}
