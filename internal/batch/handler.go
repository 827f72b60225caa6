package batch

import (
	"aligner-lab/internal/errors"
	"aligner-lab/internal/utils"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// BatchForm is shared by create and update; the owning set comes from the
// route, never the body. End sequences are not accepted here at all.
type BatchForm struct {
	Sequence        uint       `json:"sequence" binding:"required"`
	UpperCount      uint       `json:"upper_count"`
	LowerCount      uint       `json:"lower_count"`
	UpperStart      uint       `json:"upper_start"`
	LowerStart      uint       `json:"lower_start"`
	ManufactureDate *time.Time `json:"manufacture_date"`
	DaysPerAligner  uint       `json:"days_per_aligner"`
	Remarks         string     `json:"remarks"`
	IsActive        *bool      `json:"is_active"`
	IsLast          bool       `json:"is_last"`
}

func (f *BatchForm) toInput() *BatchInput {
	return &BatchInput{
		Sequence:        f.Sequence,
		UpperCount:      f.UpperCount,
		LowerCount:      f.LowerCount,
		UpperStart:      f.UpperStart,
		LowerStart:      f.LowerStart,
		ManufactureDate: f.ManufactureDate,
		DaysPerAligner:  f.DaysPerAligner,
		Remarks:         f.Remarks,
		IsActive:        f.IsActive,
		IsLast:          f.IsLast,
	}
}

func (h *Handler) Create(c *gin.Context) {
	setID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.Error(errors.NotFound("Invalid set id", err))
		return
	}

	var form BatchForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	b, err := h.service.CreateBatch(c.Request.Context(), setID, form.toInput())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

func (h *Handler) Update(c *gin.Context) {
	batchID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.Error(errors.NotFound("Invalid batch id", err))
		return
	}

	var form BatchForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	b, err := h.service.UpdateBatch(c.Request.Context(), batchID, form.toInput())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, b)
}

func (h *Handler) MarkDelivered(c *gin.Context) {
	batchID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.Error(errors.NotFound("Invalid batch id", err))
		return
	}

	b, err := h.service.MarkDelivered(c.Request.Context(), batchID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, b)
}

func (h *Handler) Delete(c *gin.Context) {
	batchID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.Error(errors.NotFound("Invalid batch id", err))
		return
	}

	if err := h.service.DeleteBatch(c.Request.Context(), batchID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListForSet(c *gin.Context) {
	setID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.Error(errors.NotFound("Invalid set id", err))
		return
	}

	batches, err := h.service.ListBySet(c.Request.Context(), setID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, batches)
}
