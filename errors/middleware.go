package errors

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

func CustomHTTPErrorHandler(err error, c echo.Context) {
	e := HttpError{}
	if errors.As(err, &e) {
		c.Echo().DefaultHTTPErrorHandler(echo.NewHTTPError(e.Code, err.Error()), c)
		return
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.Echo().DefaultHTTPErrorHandler(echo.NewHTTPError(http.StatusBadRequest, validationErrs.Error()), c)
		return
	}

	c.Echo().DefaultHTTPErrorHandler(err, c)
}
