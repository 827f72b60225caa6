package registry

import (
	apiErrors "aligner-lab/internal/errors"
	"aligner-lab/internal/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListDoctors(c *gin.Context) {
	page, perPage := utils.GetPaginationParams(c)

	doctors, err := h.service.ListDoctors(c.Request.Context(), page, perPage)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, doctors)
}

func (h *Handler) ShowDoctor(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.Error(apiErrors.NotFound("Invalid id", err))
		return
	}

	doctor, err := h.service.GetDoctorByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, doctor)
}

func (h *Handler) ListDoctorPatients(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.Error(apiErrors.NotFound("Invalid id", err))
		return
	}

	patients, err := h.service.ListPatients(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, patients)
}

func (h *Handler) ShowPatient(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.Error(apiErrors.NotFound("Invalid id", err))
		return
	}

	patient, err := h.service.GetPatientByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, patient)
}

func (h *Handler) ListPatientWorks(c *gin.Context) {
	id, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.Error(apiErrors.NotFound("Invalid id", err))
		return
	}

	works, err := h.service.ListWorksForPatient(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, works)
}
