package cmd

import (
	"log/slog"
	"net/http"
	"runtime"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/common/errs"
	"github.com/gaze-network/pool-portal/internal/actions"
	"github.com/gaze-network/pool-portal/internal/backend"
	"github.com/gaze-network/pool-portal/internal/config"
	"github.com/gaze-network/pool-portal/internal/entity"
	"github.com/gaze-network/pool-portal/internal/poller"
	"github.com/gaze-network/pool-portal/internal/portal"
	"github.com/gaze-network/pool-portal/internal/portal/api/httphandler"
	"github.com/gaze-network/pool-portal/internal/provisioning"
	"github.com/gaze-network/pool-portal/internal/state"
	"github.com/gaze-network/pool-portal/internal/txwait"
	"github.com/gaze-network/pool-portal/pkg/errorhandler"
	"github.com/gaze-network/pool-portal/pkg/logger"
	"github.com/gaze-network/pool-portal/pkg/logger/slogx"
	"github.com/gaze-network/pool-portal/pkg/middleware/requestcontext"
	"github.com/gaze-network/pool-portal/pkg/middleware/requestlogger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/samber/do/v2"
)

// Services wires the session services shared by every command.
var Services = do.Package(
	do.Lazy(func(i do.Injector) (backend.ControlAPI, error) {
		conf := do.MustInvoke[config.Config](i)
		api, err := backend.New(conf.ControlAPI)
		if err != nil {
			if errors.Is(err, errs.InvalidArgument) || errors.Is(err, errs.ArgumentRequired) {
				return nil, errors.Wrap(err, "invalid control API configuration")
			}
			return nil, errors.WithStack(err)
		}
		return api, nil
	}),
	do.Lazy(func(i do.Injector) (*state.Store, error) {
		conf := do.MustInvoke[config.Config](i)
		initial := state.Initial()
		initial.Wallet.BalanceType = utils.Default(conf.Wallet.BalanceType, entity.DefaultBalanceType)
		return state.NewStoreWithState(initial), nil
	}),
	do.Lazy(func(i do.Injector) (*actions.Dispatcher, error) {
		return actions.New(do.MustInvoke[*state.Store](i), do.MustInvoke[backend.ControlAPI](i)), nil
	}),
	do.Lazy(func(i do.Injector) (*txwait.Waiter, error) {
		conf := do.MustInvoke[config.Config](i)
		return txwait.New(do.MustInvoke[*actions.Dispatcher](i), conf.Transaction), nil
	}),
	do.Lazy(func(i do.Injector) (*provisioning.Workflow, error) {
		return provisioning.New(do.MustInvoke[*actions.Dispatcher](i), do.MustInvoke[*txwait.Waiter](i)), nil
	}),
	do.Lazy(func(i do.Injector) (*poller.Poller, error) {
		return poller.New(), nil
	}),
	do.Lazy(func(i do.Injector) (*portal.Portal, error) {
		conf := do.MustInvoke[config.Config](i)
		return portal.New(
			do.MustInvoke[*actions.Dispatcher](i),
			do.MustInvoke[*provisioning.Workflow](i),
			do.MustInvoke[*poller.Poller](i),
			portal.Config{
				PoolsInterval:        conf.Polling.PoolsInterval,
				TransactionsInterval: conf.Polling.TransactionsInterval,
			},
		), nil
	}),
)

func newInjector(conf config.Config) *do.RootScope {
	injector := do.New(Services)
	do.ProvideValue(injector, conf)
	return injector
}

// newHTTPServer builds the portal API server.
func newHTTPServer(i do.Injector) (*fiber.App, error) {
	conf := do.MustInvoke[config.Config](i)

	withClientIP, err := requestcontext.WithClientIP(conf.HTTPServer.RequestIP)
	if err != nil {
		return nil, errors.Wrap(err, "invalid request ip configuration")
	}

	app := fiber.New(fiber.Config{
		AppName:               "Pool Portal",
		ErrorHandler:          errorhandler.NewHTTPErrorHandler(),
		DisableStartupMessage: true,
	})
	app.
		Use(favicon.New()).
		Use(cors.New()).
		Use(requestid.New()).
		Use(requestcontext.New(
			requestcontext.WithRequestID(),
			withClientIP,
		)).
		Use(requestlogger.New(conf.HTTPServer.Logger)).
		Use(fiberrecover.New(fiberrecover.Config{
			EnableStackTrace: true,
			StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
				buf := make([]byte, 1024)
				buf = buf[:runtime.Stack(buf, false)]
				logger.ErrorContext(c.UserContext(), "Something went wrong, panic in http handler", errors.Newf("panic: %v", e), slog.String("stacktrace", string(buf)))
			},
		})).
		Use(compress.New(compress.Config{
			Level: compress.LevelDefault,
			Next: func(c *fiber.Ctx) bool {
				// compressed event streams are buffered until the connection closes
				return c.Path() == "/v1/events"
			},
		}))

	// Health check
	app.Get("/", func(c *fiber.Ctx) error {
		return errors.WithStack(c.SendStatus(http.StatusOK))
	})

	if err := httphandler.New(do.MustInvoke[*portal.Portal](i)).Mount(app); err != nil {
		return nil, errors.Wrap(err, "can't mount portal api")
	}

	logger.Debug("Portal API routes mounted", slogx.Int("routes", len(app.GetRoutes())))
	return app, nil
}
