package api

import (
	errs "errors"
	"fmt"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/dengueguard/monitor/attention"
	"github.com/dengueguard/monitor/errors"
	"github.com/dengueguard/monitor/events"
	"github.com/dengueguard/monitor/notifications"
	"github.com/dengueguard/monitor/patients"
	"github.com/dengueguard/monitor/store"
	"github.com/dengueguard/monitor/vitals"
)

type Handler struct {
	vitals        vitals.Service
	patients      patients.Repository
	directory     patients.Directory
	notifications notifications.Repository
	attention     attention.Repository
	websocket     *events.WebsocketHandler
	logger        *zap.SugaredLogger
}

type Params struct {
	fx.In

	Vitals        vitals.Service
	Patients      patients.Repository
	Directory     patients.Directory
	Notifications notifications.Repository
	Attention     attention.Repository
	Websocket     *events.WebsocketHandler
	Logger        *zap.SugaredLogger
}

func NewHandler(p Params) *Handler {
	return &Handler{
		vitals:        p.Vitals,
		patients:      p.Patients,
		directory:     p.Directory,
		notifications: p.Notifications,
		attention:     p.Attention,
		websocket:     p.Websocket,
		logger:        p.Logger,
	}
}

func RegisterHandlers(e *echo.Echo, h *Handler) {
	v1 := e.Group("/v1")

	v1.POST("/patients", h.AdmitPatient)
	v1.GET("/patients", h.ListAdmittedPatients)
	v1.GET("/patients/:userId", h.GetPatient)
	v1.POST("/patients/:userId/discharge", h.DischargePatient)

	v1.POST("/patients/:userId/vitals", h.SubmitVitals)
	v1.GET("/patients/:userId/vitals", h.ListVitals)
	v1.GET("/patients/:userId/vitals/latest", h.GetLatestVitals)

	v1.GET("/notifications", h.ListNotifications)
	v1.GET("/attention", h.ListAttention)

	v1.GET("/ws", h.websocket.Connect)
}

func pagination(ec echo.Context) (store.Pagination, error) {
	page := store.DefaultPagination()
	err := echo.QueryParamsBinder(ec).
		Int("offset", &page.Offset).
		Int("limit", &page.Limit).
		BindError()
	if err != nil {
		return page, fmt.Errorf("%w: %w", errors.BadRequest, err)
	}
	return page.Normalize(), nil
}

func bind(ec echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(ec, dst); err != nil {
		return fmt.Errorf("%w: %w", errors.BadRequest, err)
	}
	return nil
}

// bindAndValidate binds the request body and runs the struct validations
func bindAndValidate(ec echo.Context, dst any) error {
	if err := bind(ec, dst); err != nil {
		return err
	}
	return ec.Validate(dst)
}

func mapError(err error) error {
	switch {
	case errs.Is(err, patients.ErrNotFound), errs.Is(err, vitals.ErrNotFound), errs.Is(err, attention.ErrNotFound):
		return fmt.Errorf("%w: %w", errors.NotFound, err)
	case errs.Is(err, patients.ErrDuplicate):
		return fmt.Errorf("%w: %w", errors.Duplicate, err)
	case errs.Is(err, vitals.ErrFutureTimestamp):
		return fmt.Errorf("%w: %w", errors.BadRequest, err)
	}
	return err
}
