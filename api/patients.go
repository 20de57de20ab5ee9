package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dengueguard/monitor/patients"
)

func (h *Handler) AdmitPatient(ec echo.Context) error {
	patient := patients.Patient{}
	if err := bindAndValidate(ec, &patient); err != nil {
		return err
	}
	patient.DischargeDate = nil

	created, err := h.patients.Create(ec.Request().Context(), patient)
	if err != nil {
		return mapError(err)
	}

	return ec.JSON(http.StatusCreated, created)
}

func (h *Handler) ListAdmittedPatients(ec echo.Context) error {
	list, err := h.patients.ListAdmitted(ec.Request().Context())
	if err != nil {
		return err
	}

	return ec.JSON(http.StatusOK, list)
}

func (h *Handler) GetPatient(ec echo.Context) error {
	patient, err := h.patients.Get(ec.Request().Context(), ec.Param("userId"))
	if err != nil {
		return mapError(err)
	}

	return ec.JSON(http.StatusOK, patient)
}

func (h *Handler) DischargePatient(ec echo.Context) error {
	userId := ec.Param("userId")
	patient, err := h.patients.Discharge(ec.Request().Context(), userId, time.Now())
	if err != nil {
		return mapError(err)
	}
	h.directory.Invalidate(userId)

	return ec.JSON(http.StatusOK, patient)
}
