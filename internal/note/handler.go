package note

import (
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

type AddNoteForm struct {
	Author string `json:"author" binding:"required,oneof=lab doctor"`
	Text   string `json:"text" binding:"required"`
}

func (h *Handler) Add(c *gin.Context) {
	setID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.Error(errors.NotFound("Invalid set id", err))
		return
	}

	var form AddNoteForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	n, err := h.service.AddNote(c.Request.Context(), setID, form.Author, form.Text)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, n)
}

type EditNoteForm struct {
	Text string `json:"text" binding:"required"`
}

func (h *Handler) Edit(c *gin.Context) {
	noteID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.Error(errors.NotFound("Invalid note id", err))
		return
	}

	var form EditNoteForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	n, err := h.service.EditNote(c.Request.Context(), noteID, form.Text)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, n)
}

func (h *Handler) ToggleRead(c *gin.Context) {
	noteID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.Error(errors.NotFound("Invalid note id", err))
		return
	}

	n, err := h.service.ToggleRead(c.Request.Context(), noteID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, n)
}

type MarkThreadReadForm struct {
	ViewerRole string `json:"viewer_role" binding:"required,oneof=lab doctor"`
}

// MarkThreadRead is the auto-mark hook: the viewer opened the thread, so
// every unread note from the other side becomes read.
func (h *Handler) MarkThreadRead(c *gin.Context) {
	setID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.Error(errors.NotFound("Invalid set id", err))
		return
	}

	var form MarkThreadReadForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	marked, err := h.service.AutoMarkRead(c.Request.Context(), setID, form.ViewerRole)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"marked": marked})
}

func (h *Handler) UnreadCount(c *gin.Context) {
	setID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.Error(errors.NotFound("Invalid set id", err))
		return
	}

	role := c.DefaultQuery("for_role", "lab")
	count, err := h.service.UnreadCountForSet(c.Request.Context(), setID, role)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread": count})
}

func (h *Handler) Delete(c *gin.Context) {
	noteID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.Error(errors.NotFound("Invalid note id", err))
		return
	}

	if err := h.service.DeleteNote(c.Request.Context(), noteID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ShowThread(c *gin.Context) {
	setID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.Error(errors.NotFound("Invalid set id", err))
		return
	}

	notes, err := h.service.GetThread(c.Request.Context(), setID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, notes)
}

func (h *Handler) ListActivity(c *gin.Context) {
	page, perPage := utils.GetPaginationParams(c)

	flags, err := h.service.ListActivity(c.Request.Context(), page, perPage)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, flags)
}

func (h *Handler) MarkActivityRead(c *gin.Context) {
	flagID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.Error(errors.NotFound("Invalid flag id", err))
		return
	}

	if err := h.service.MarkActivityRead(c.Request.Context(), flagID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) MarkSetActivityRead(c *gin.Context) {
	setID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		c.Error(errors.NotFound("Invalid set id", err))
		return
	}

	if err := h.service.MarkSetActivityRead(c.Request.Context(), setID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
