package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/recera/nodeflow/cmd/nodeflow/internal/config"
	"github.com/recera/nodeflow/pkg/live"
	"github.com/recera/nodeflow/pkg/server"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(root *rootOptions) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the editor to the browser",
		Long: `Starts an HTTP server hosting the editor page. Each browser tab gets its own
editor session over a websocket. Editor settings in the config file are
reloaded on change and apply to sessions opened afterwards; wire and spawn
settings also apply to open editors.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := root.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			log, err := newLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, path, log, nil)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "host to bind (overrides config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides config)")
	return cmd
}

// serve runs the HTTP server, the live sessions and, when the config came from
// a file, the config watcher until ctx is done. ready, if set, receives the
// bound address.
func serve(ctx context.Context, cfg *config.Config, path string, log *zap.Logger, ready func(addr string)) error {
	editorOpts := cfg.EditorOptions()
	editorOpts.Logger = log.Named("editor")

	ls := live.NewServer(&live.Options{
		Editor:         editorOpts,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         log.Named("live"),
	})
	srv := &http.Server{
		Handler:           server.NewHandler(ls, &server.Options{Logger: log.Named("http")}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr(), err)
	}
	addr := ln.Addr().String()
	log.Info("Serving editor", zap.String("url", "http://"+addr))
	if ready != nil {
		ready(addr)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if path != "" {
		g.Go(func() error {
			return config.Watch(gctx, path, log.Named("config"), func(c *config.Config) {
				o := c.EditorOptions()
				o.Logger = editorOpts.Logger
				ls.SetEditorOptions(o)
			})
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// sessions first: hijacked connections are invisible to srv.Shutdown
		err := ls.Shutdown(sctx)
		if serr := srv.Shutdown(sctx); err == nil {
			err = serr
		}
		return err
	})
	return g.Wait()
}
