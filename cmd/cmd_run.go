package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/internal/config"
	"github.com/gaze-network/pool-portal/internal/portal"
	"github.com/gaze-network/pool-portal/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/do/v2"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type runCmdOptions struct {
	Views []string
}

func NewRunCommand() *cobra.Command {
	opts := &runCmdOptions{}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Start the portal API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHandler(opts, cmd, args)
		},
	}

	// Add local flags
	flags := runCmd.Flags()
	flags.Int("port", 0, "portal API port")
	flags.StringSliceVar(&opts.Views, "views", nil, "views to refresh from startup, E.g. `pools`")

	// Bind flags to configuration
	config.BindPFlag("http_server.port", flags.Lookup("port"))

	return runCmd
}

const (
	shutdownTimeout = 60 * time.Second
)

func runHandler(opts *runCmdOptions, cmd *cobra.Command, _ []string) error {
	conf := config.Load()

	// Initialize application process context
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	injector := newInjector(conf)
	do.Provide(injector, newHTTPServer)

	httpServer, err := do.Invoke[*fiber.App](injector)
	if err != nil {
		return errors.Wrap(err, "can't init portal api")
	}

	p := do.MustInvoke[*portal.Portal](injector)
	for _, view := range lo.Uniq(opts.Views) {
		if err := p.MountView(portal.View(view)); err != nil {
			return errors.Wrapf(err, "can't mount view %q", view)
		}
	}

	group, gctx := errgroup.WithContext(ctx)

	// Run API server
	group.Go(func() error {
		logger.InfoContext(ctx, "Started HTTP server",
			slog.Int("port", conf.HTTPServer.Port),
			slog.Bool("mock_data", conf.ControlAPI.MockData),
		)
		if err := httpServer.Listen(fmt.Sprintf(":%d", conf.HTTPServer.Port)); err != nil {
			return errors.Wrap(err, "error during running HTTP server")
		}
		return nil
	})

	// Gracefully stop everything once a signal arrives or the server stops
	group.Go(func() error {
		<-gctx.Done()
		logger.InfoContext(ctx, "Shutting down Pool Portal...")

		// Force shutdown if timeout exceeded or got signal again
		go func() {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			select {
			case <-ctx.Done():
				logger.FatalContext(ctx, "Received exit signal again. Force shutdown...")
			case <-time.After(shutdownTimeout):
				logger.FatalContext(ctx, "Shutdown timeout exceeded. Force shutdown...")
			}
		}()

		if err := injector.Shutdown(); err != nil {
			return errors.Wrap(err, "failed while gracefully shutting down")
		}
		return nil
	})

	logger.InfoContext(ctx, "Pool Portal started")
	return errors.WithStack(group.Wait())
}
