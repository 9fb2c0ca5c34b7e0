package entry

import (
	"github.com/gin-gonic/gin"

	"github.com/Dahbi-Dev/Excel-easy/internal/middleware"
	"github.com/Dahbi-Dev/Excel-easy/internal/workspace"
	"github.com/Dahbi-Dev/Excel-easy/pkg/errors"
	"github.com/Dahbi-Dev/Excel-easy/pkg/httputil"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	entry := r.Group("/entry")
	{
		entry.GET("/draft", h.PeekDraft)
		entry.GET("/existing", h.ListExisting)
		entry.POST("/open", h.Open)
		entry.PATCH("/fields", h.ChangeField)
		entry.POST("/prefill", h.Prefill)
		entry.POST("/submit", h.Submit)
		entry.POST("/close", h.Close)
	}
}

type openRequest struct {
	UseDraft bool `json:"use_draft"`
}

type fieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// prefillRequest names the patient by list index or by identity.
type prefillRequest struct {
	Index     *int   `json:"index"`
	LastName  string `json:"nom"`
	FirstName string `json:"prenom"`
	BirthDate string `json:"date_naissance"`
}

type closeRequest struct {
	SaveDraft bool `json:"save_draft"`
}

func (h *Handler) PeekDraft(c *gin.Context) {
	ws, ok := current(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"available": ws.DraftAvailable(c.Request.Context())})
}

func (h *Handler) ListExisting(c *gin.Context) {
	ws, ok := current(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, ws.ExistingPatients())
}

func (h *Handler) Open(c *gin.Context) {
	ws, ok := current(c)
	if !ok {
		return
	}
	var req openRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.RespondWithError(c, errors.BadRequest("invalid request body", err))
			return
		}
	}
	httputil.RespondWithSuccess(c, ws.OpenForm(c.Request.Context(), req.UseDraft))
}

func (h *Handler) ChangeField(c *gin.Context) {
	ws, ok := current(c)
	if !ok {
		return
	}
	var req fieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid request body", err))
		return
	}
	state, err := ws.ChangeField(req.Field, req.Value)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, state)
}

func (h *Handler) Prefill(c *gin.Context) {
	ws, ok := current(c)
	if !ok {
		return
	}
	var req prefillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid request body", err))
		return
	}
	if req.Index != nil {
		state, err := ws.Prefill(*req.Index)
		if err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		httputil.RespondWithSuccess(c, state)
		return
	}

	if req.LastName == "" && req.FirstName == "" && req.BirthDate == "" {
		httputil.RespondWithError(c, errors.BadRequest("index or patient identity is required", nil))
		return
	}
	index, state, err := ws.PrefillPatient(req.LastName, req.FirstName, req.BirthDate)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"index": index, "form": state})
}

func (h *Handler) Submit(c *gin.Context) {
	ws, ok := current(c)
	if !ok {
		return
	}
	index, rec, err := ws.SubmitForm(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, gin.H{"index": index, "record": rec})
}

func (h *Handler) Close(c *gin.Context) {
	ws, ok := current(c)
	if !ok {
		return
	}
	var req closeRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.RespondWithError(c, errors.BadRequest("invalid request body", err))
			return
		}
	}
	ws.CloseForm(c.Request.Context(), req.SaveDraft)
	httputil.RespondWithSuccess(c, gin.H{"draft_available": ws.DraftAvailable(c.Request.Context())})
}

func current(c *gin.Context) (*workspace.Workspace, bool) {
	ws := middleware.CurrentWorkspace(c)
	if ws == nil {
		httputil.RespondWithError(c, errors.Internal(nil))
		return nil, false
	}
	return ws, true
}
