package payment

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

type RecordPaymentForm struct {
	Amount      float64    `json:"amount" binding:"required"`
	PaymentDate *time.Time `json:"payment_date"`
	Currency    string     `json:"currency"`
}

func (h *Handler) Record(c *gin.Context) {
	setID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.Error(errors.NotFound("Invalid set id", err))
		return
	}

	var form RecordPaymentForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	date := time.Now().UTC()
	if form.PaymentDate != nil {
		date = *form.PaymentDate
	}

	result, err := h.service.RecordPayment(c.Request.Context(), setID, form.Amount, date, form.Currency)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *Handler) ShowLedger(c *gin.Context) {
	setID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.Error(errors.NotFound("Invalid set id", err))
		return
	}

	ledger, err := h.service.GetLedger(c.Request.Context(), setID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ledger)
}
