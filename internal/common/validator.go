package common

import (
	"net/http"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// RequestValidator plugs go-playground/validator into echo so bound request
// structs are checked against their validate tags. Failures surface as 400
// responses.
type RequestValidator struct {
	Validator *validator.Validate
}

func (rv *RequestValidator) Validate(i interface{}) error {
	if rv.Validator == nil {
		rv.Validator = validator.New()
	}
	if err := rv.Validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request: "+err.Error())
	}
	return nil
}
