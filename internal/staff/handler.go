package staff

import (
	"aligner-lab/auth"
	"aligner-lab/internal/domain"
	"aligner-lab/internal/errors"
	"aligner-lab/redis"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for staff accounts
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// FormLogin represents login form data
type FormLogin struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// FormRegister represents registration form data
type FormRegister struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func (h *Handler) Register(c *gin.Context) {
	var form FormRegister
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	account := &domain.Staff{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
		IsActive: true,
	}

	if err := h.service.Register(account); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"staff": account.ToSafeStaff()})
}

func (h *Handler) Login(c *gin.Context) {
	var form FormLogin
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	account, err := h.service.Login(form.Email, form.Password)
	if err != nil {
		c.Error(err)
		return
	}

	token, err := auth.GenerateJWT(account.ID)
	if err != nil {
		c.Error(errors.Internal(err))
		return
	}

	// token liveness tracked in redis so logout can revoke it
	if redis.RedisClient != nil {
		redis.RedisClient.Set(redis.Ctx, token, account.ID, 3*24*time.Hour)
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"staff":        account.ToSafeStaff(),
	})
}

func (h *Handler) Logout(c *gin.Context) {
	token, _ := c.Get("jwt_token")
	if redis.RedisClient != nil {
		redis.RedisClient.Del(redis.Ctx, token.(string))
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetProfile(c *gin.Context) {
	staffID, _ := c.Get("staff_id")

	account, err := h.service.GetByID(staffID.(uint64))
	if err != nil {
		c.Error(errors.NotFound("Account not found", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"staff": account.ToSafeStaff()})
}
