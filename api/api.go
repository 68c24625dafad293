package api

import (
	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/mercato-io/mercato/auth"
)

// RouteRegistrar captures the router methods the controllers use.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field-to-message map for JSON responses.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	if verrs, ok := err.(validation.Errors); ok {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	out["payload"] = err.Error()
	return out
}

// respondError maps rich errors to HTTP statuses. Anything that is not a
// rich error is an internal failure and says nothing about its cause.
func respondError(ctx router.Context, logger auth.Logger, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		logger.Error("unexpected error", "error", err)
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}

	status := router.StatusInternalServerError
	switch richErr.Category {
	case goerrors.CategoryAuth:
		status = router.StatusUnauthorized
	case goerrors.CategoryAuthz:
		status = router.StatusForbidden
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		status = router.StatusBadRequest
	case goerrors.CategoryNotFound:
		status = router.StatusNotFound
	case goerrors.CategoryConflict:
		status = router.StatusConflict
	case goerrors.CategoryRateLimit:
		status = router.StatusTooManyRequests
	}

	body := map[string]string{"error": richErr.Message}
	if richErr.TextCode != "" {
		body["code"] = richErr.TextCode
	}

	return ctx.JSON(status, body)
}

func claimsFromRequest(ctx router.Context, key string) (auth.AuthClaims, bool) {
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}

	claims, ok := raw.(auth.AuthClaims)
	return claims, ok
}
