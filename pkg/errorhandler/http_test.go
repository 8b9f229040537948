package errorhandler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/common"
	"github.com/gaze-network/pool-portal/common/errs"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPErrorHandler(t *testing.T) {
	testCases := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedMessage string
	}{
		{name: "public error", err: errs.NewPublicError("invalid email"), expectedStatus: http.StatusBadRequest, expectedMessage: "invalid email"},
		{name: "not found", err: errors.Wrap(errs.NotFound, "view not found"), expectedStatus: http.StatusNotFound, expectedMessage: "view not found: Not Found"},
		{name: "conflict", err: errors.Wrap(errs.Conflict, "busy"), expectedStatus: http.StatusConflict, expectedMessage: "busy: Conflict"},
		{name: "invalid argument", err: errors.Wrap(errs.InvalidArgument, "bad column"), expectedStatus: http.StatusBadRequest, expectedMessage: "bad column: Invalid Argument"},
		{name: "fiber error", err: fiber.ErrMethodNotAllowed, expectedStatus: http.StatusMethodNotAllowed, expectedMessage: "Method Not Allowed"},
		{name: "unhandled", err: errors.New("boom"), expectedStatus: http.StatusInternalServerError, expectedMessage: "Internal Server Error"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: NewHTTPErrorHandler()})
			app.Get("/", func(*fiber.Ctx) error { return tc.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode)
			var body common.HttpResponse[any]
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			require.NotNil(t, body.Error)
			assert.Equal(t, tc.expectedMessage, *body.Error)
		})
	}
}
