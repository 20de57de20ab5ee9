package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dengueguard/monitor/vitals"
)

// SubmitVitals stores a reading for the patient. Alerting failures never fail the request.
func (h *Handler) SubmitVitals(ec echo.Context) error {
	submission := vitals.Submission{}
	if err := bind(ec, &submission); err != nil {
		return err
	}
	submission.PatientUserId = ec.Param("userId")
	if err := ec.Validate(&submission); err != nil {
		return err
	}

	reading, err := h.vitals.Submit(ec.Request().Context(), submission)
	if err != nil {
		return mapError(err)
	}

	return ec.JSON(http.StatusCreated, reading)
}

func (h *Handler) ListVitals(ec echo.Context) error {
	page, err := pagination(ec)
	if err != nil {
		return err
	}

	list, err := h.vitals.List(ec.Request().Context(), ec.Param("userId"), page)
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, list)
}

func (h *Handler) GetLatestVitals(ec echo.Context) error {
	reading, err := h.vitals.Latest(ec.Request().Context(), ec.Param("userId"))
	if err != nil {
		return mapError(err)
	}

	return ec.JSON(http.StatusOK, reading)
}
