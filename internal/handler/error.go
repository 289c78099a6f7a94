package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-checkout/internal/apperr"
)

// writeError maps a service error onto the response. Upstream failures pass
// the gateway/carrier status and body through verbatim when the body is
// JSON; everything else gets the {error, message?, details?} shape.
func writeError(c echo.Context, err error) error {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": string(apperr.Internal)})
	}

	status := ae.HTTPStatus()

	if ae.Code == apperr.Upstream && ae.UpstreamBody != "" {
		if json.Valid([]byte(ae.UpstreamBody)) {
			return c.JSONBlob(status, []byte(ae.UpstreamBody))
		}
		// Non-JSON carrier/gateway bodies still reach the caller as detail.
		return c.JSON(status, echo.Map{"error": string(ae.Code), "message": ae.UpstreamBody})
	}

	body := echo.Map{"error": string(ae.Code)}
	if ae.Message != "" {
		body["message"] = ae.Message
	}
	if len(ae.Details) > 0 {
		body["details"] = ae.Details
	}

	return c.JSON(status, body)
}
