package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1")

	r.Get("/state", h.GetState)
	r.Delete("/state", h.ResetSession)

	r.Get("/pools", h.GetPools)
	r.Put("/pools/filters", h.SetPoolFilters)
	r.Post("/pools/sort/:column", h.SortPools)

	r.Get("/transactions", h.GetTransactions)
	r.Put("/transactions/filter", h.SetTransactionFilter)

	r.Post("/views/:view/mount", h.MountView)
	r.Post("/views/:view/unmount", h.UnmountView)

	r.Post("/signup/identity", h.SetIdentity)
	r.Post("/signup/expected-usage", h.SetExpectedUsage)
	r.Post("/signup/passphrase", h.SetPassphrase)
	r.Post("/signup/account", h.CreateAccount)

	r.Post("/applications", h.CreateApplications)
	r.Post("/wallet/balance", h.RefreshBalance)

	r.Get("/toasts", h.GetToasts)
	r.Delete("/toasts/:id", h.DismissToast)

	r.Get("/events", h.Events)
	return nil
}
