package alignerset

import (
	"aligner-lab/internal/domain"
	"aligner-lab/internal/errors"
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

type CreateSetForm struct {
	WorkID             uint64  `json:"work_id" binding:"required"`
	DoctorID           uint64  `json:"doctor_id" binding:"required"`
	Sequence           uint    `json:"sequence"`
	Type               string  `json:"type" binding:"required,oneof=initial refinement revision"`
	UpperAlignersCount uint    `json:"upper_aligners_count"`
	LowerAlignersCount uint    `json:"lower_aligners_count"`
	TreatmentDays      uint    `json:"treatment_days"`
	Cost               float64 `json:"cost"`
	Currency           string  `json:"currency"`
	Remarks            string  `json:"remarks"`
	SetURL             string  `json:"set_url"`
	DocumentURL        string  `json:"document_url"`
}

func (h *Handler) Create(c *gin.Context) {
	var form CreateSetForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	set := &domain.AlignerSet{
		WorkID:             form.WorkID,
		DoctorID:           form.DoctorID,
		Sequence:           form.Sequence,
		Type:               form.Type,
		UpperAlignersCount: form.UpperAlignersCount,
		LowerAlignersCount: form.LowerAlignersCount,
		TreatmentDays:      form.TreatmentDays,
		Cost:               form.Cost,
		Currency:           form.Currency,
		Remarks:            form.Remarks,
		SetURL:             form.SetURL,
		DocumentURL:        form.DocumentURL,
	}

	if err := h.service.CreateSet(c.Request.Context(), set); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, set)
}

type UpdateSetForm struct {
	DoctorID           uint64  `json:"doctor_id" binding:"required"`
	Sequence           uint    `json:"sequence" binding:"required"`
	Type               string  `json:"type" binding:"required,oneof=initial refinement revision"`
	UpperAlignersCount uint    `json:"upper_aligners_count"`
	LowerAlignersCount uint    `json:"lower_aligners_count"`
	TreatmentDays      uint    `json:"treatment_days"`
	IsActive           *bool   `json:"is_active"`
	Cost               float64 `json:"cost"`
	Currency           string  `json:"currency"`
	Remarks            string  `json:"remarks"`
	SetURL             string  `json:"set_url"`
	DocumentURL        string  `json:"document_url"`
}

func (h *Handler) Update(c *gin.Context) {
	setID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.Error(errors.NotFound("Invalid set id", err))
		return
	}

	var form UpdateSetForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	set, err := h.service.UpdateSet(c.Request.Context(), setID, &SetInput{
		DoctorID:           form.DoctorID,
		Sequence:           form.Sequence,
		Type:               form.Type,
		UpperAlignersCount: form.UpperAlignersCount,
		LowerAlignersCount: form.LowerAlignersCount,
		TreatmentDays:      form.TreatmentDays,
		IsActive:           form.IsActive,
		Cost:               form.Cost,
		Currency:           form.Currency,
		Remarks:            form.Remarks,
		SetURL:             form.SetURL,
		DocumentURL:        form.DocumentURL,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, set)
}

func (h *Handler) Delete(c *gin.Context) {
	setID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.Error(errors.NotFound("Invalid set id", err))
		return
	}

	if err := h.service.DeleteSet(c.Request.Context(), setID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) Show(c *gin.Context) {
	setID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.Error(errors.NotFound("Invalid set id", err))
		return
	}

	detail, err := h.service.GetSet(c.Request.Context(), setID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

type SetDocumentForm struct {
	URL string `json:"url"`
}

// SetDocument is invoked by the document store after an upload (or purge);
// an empty URL clears the reference.
func (h *Handler) SetDocument(c *gin.Context) {
	setID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.Error(errors.NotFound("Invalid set id", err))
		return
	}

	var form SetDocumentForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	set, err := h.service.SetDocumentURL(c.Request.Context(), setID, form.URL)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, set)
}

func (h *Handler) ShowDocument(c *gin.Context) {
	setID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.Error(errors.NotFound("Invalid set id", err))
		return
	}

	info, err := h.service.GetDocumentInfo(c.Request.Context(), setID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, info)
}

func (h *Handler) ListForWork(c *gin.Context) {
	workID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.Error(errors.NotFound("Invalid work id", err))
		return
	}

	summaries, err := h.service.ListSetsForWork(c.Request.Context(), workID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, summaries)
}
