package gate

import (
	"github.com/gin-gonic/gin"

	"github.com/Dahbi-Dev/Excel-easy/internal/middleware"
	"github.com/Dahbi-Dev/Excel-easy/pkg/errors"
	"github.com/Dahbi-Dev/Excel-easy/pkg/httputil"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	gate := r.Group("/gate")
	{
		gate.POST("/login", h.Login)
		gate.POST("/logout", h.Logout)
		gate.GET("/status", h.Status)
	}
}

type loginRequest struct {
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	if ws == nil {
		httputil.RespondWithError(c, errors.Internal(nil))
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid request body", err))
		return
	}
	if err := ws.Login(c.Request.Context(), req.Password); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"open": true})
}

func (h *Handler) Logout(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	if ws == nil {
		httputil.RespondWithError(c, errors.Internal(nil))
		return
	}
	ws.Logout(c.Request.Context())
	httputil.RespondWithSuccess(c, gin.H{"open": false})
}

func (h *Handler) Status(c *gin.Context) {
	ws := middleware.CurrentWorkspace(c)
	if ws == nil {
		httputil.RespondWithError(c, errors.Internal(nil))
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"open": ws.GateOpen(c.Request.Context())})
}
