package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dengueguard/monitor/errors"
	"github.com/dengueguard/monitor/notifications"
)

// ListNotifications lets dashboards recover notifications they missed while disconnected
func (h *Handler) ListNotifications(ec echo.Context) error {
	page, err := pagination(ec)
	if err != nil {
		return err
	}

	filter := notifications.Filter{}
	if patientUserId := ec.QueryParam("patientUserId"); patientUserId != "" {
		filter.PatientUserId = &patientUserId
	}
	if ec.QueryParam("since") != "" {
		var since time.Time
		if err := echo.QueryParamsBinder(ec).Time("since", &since, time.RFC3339).BindError(); err != nil {
			return fmt.Errorf("%w: %w", errors.BadRequest, err)
		}
		filter.Since = &since
	}

	list, err := h.notifications.List(ec.Request().Context(), filter, page)
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, list)
}

func (h *Handler) ListAttention(ec echo.Context) error {
	page, err := pagination(ec)
	if err != nil {
		return err
	}

	list, err := h.attention.List(ec.Request().Context(), page)
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, list)
}
