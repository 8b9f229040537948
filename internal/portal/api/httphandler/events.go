package httphandler

import (
	"bufio"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/internal/state"
	"github.com/gaze-network/pool-portal/pkg/logger"
	"github.com/gaze-network/pool-portal/pkg/logger/slogx"
	"github.com/gofiber/fiber/v2"
)

const (
	eventsBuffer    = 64
	eventsKeepalive = 15 * time.Second
)

// Events streams state changes as server-sent events. The first event carries
// the current state; each following one is named after the action applied.
func (h *HttpHandler) Events(ctx *fiber.Ctx) error {
	ctx.Set(fiber.HeaderContentType, "text/event-stream")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set(fiber.HeaderConnection, "keep-alive")

	var (
		encode  = ctx.App().Config().JSONEncoder
		store   = h.portal.Store()
		changes = make(chan state.Change, eventsBuffer)
		sub     = store.Subscribe(changes)
		initial = store.GetState()
		userCtx = ctx.UserContext()
	)

	write := func(w *bufio.Writer, event string, s state.State) error {
		data, err := encode(h.stateResult(s))
		if err != nil {
			return errors.Wrap(err, "can't encode state")
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
			return errors.WithStack(err)
		}
		return errors.WithStack(w.Flush())
	}

	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer sub.Unsubscribe()

		if err := write(w, "state", initial); err != nil {
			return
		}

		keepalive := time.NewTicker(eventsKeepalive)
		defer keepalive.Stop()
		for {
			select {
			case <-sub.Done():
				return
			case change := <-changes:
				if err := write(w, change.Action.ActionName(), change.State); err != nil {
					logger.DebugContext(userCtx, "Event stream closed", slogx.Error(err))
					return
				}
			case <-keepalive.C:
				if _, err := w.WriteString(": keepalive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})
	return nil
}
