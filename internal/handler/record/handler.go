package record

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Dahbi-Dev/Excel-easy/internal/middleware"
	"github.com/Dahbi-Dev/Excel-easy/internal/model"
	"github.com/Dahbi-Dev/Excel-easy/internal/workspace"
	"github.com/Dahbi-Dev/Excel-easy/pkg/errors"
	"github.com/Dahbi-Dev/Excel-easy/pkg/httputil"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/state", h.GetState)

	records := r.Group("/records")
	{
		records.POST("/import", h.Import)
		records.DELETE("/import", h.ResetUpload)
		records.GET("", h.ListRecords)
		records.GET("/columns", h.ListColumns)
		records.POST("/columns", h.AddColumn)
		records.POST("/:index/edit", h.BeginEdit)
		records.PUT("/:index/fields", h.UpdateField)
		records.POST("/:index/save", h.SaveRecord)
		records.DELETE("/:index", h.DeleteRecord)
	}

	search := r.Group("/search")
	{
		search.GET("", h.Search)
		search.PUT("/query", h.SetQuery)
		search.POST("/filters/toggle", h.ToggleFilter)
		search.PUT("/ranges", h.SetRange)
		search.DELETE("", h.ResetSearch)
	}
}

type fieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

type columnRequest struct {
	Name string `json:"name" binding:"required"`
}

type queryRequest struct {
	Query string `json:"query"`
}

type rangeRequest struct {
	Field string `json:"field" binding:"required"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type listQuery struct {
	model.Pagination
	Raw bool `form:"raw"`
}

func (h *Handler) GetState(c *gin.Context) {
	ws, ok := current(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, ws.State(c.Request.Context()))
}

func (h *Handler) Import(c *gin.Context) {
	ws, ok := current(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("a spreadsheet file is required", err))
		return
	}
	file, err := header.Open()
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("unable to open upload", err))
		return
	}
	defer file.Close()

	n, err := ws.Import(c.Request.Context(), header.Filename, file)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{
		"file_name": header.Filename,
		"records":   n,
		"status":    model.UploadSuccess,
	})
}

func (h *Handler) ResetUpload(c *gin.Context) {
	ws, ok := current(c)
	if !ok {
		return
	}
	ws.ResetUpload()
	httputil.RespondWithSuccess(c, ws.State(c.Request.Context()))
}

func (h *Handler) ListRecords(c *gin.Context) {
	ws, ok := current(c)
	if !ok {
		return
	}
	q, ok := bindList(c)
	if !ok {
		return
	}
	page := ws.Rows(q.Pagination, q.Raw)
	httputil.RespondWithPagination(c, page, page.Page, page.PageSize, page.Total)
}

func (h *Handler) Search(c *gin.Context) {
	ws, ok := current(c)
	if !ok {
		return
	}
	q, ok := bindList(c)
	if !ok {
		return
	}
	page := ws.Search(q.Pagination, q.Raw)
	httputil.RespondWithPagination(c, page, page.Page, page.PageSize, page.Total)
}

func (h *Handler) ListColumns(c *gin.Context) {
	ws, ok := current(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, ws.Columns())
}

func (h *Handler) AddColumn(c *gin.Context) {
	ws, ok := current(c)
	if !ok {
		return
	}
	var req columnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid request body", err))
		return
	}
	if err := ws.AddColumn(c.Request.Context(), req.Name); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, ws.Columns())
}

func (h *Handler) BeginEdit(c *gin.Context) {
	ws, i, ok := currentRow(c)
	if !ok {
		return
	}
	if err := ws.BeginEdit(c.Request.Context(), i); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"index": i, "editing": true})
}

func (h *Handler) UpdateField(c *gin.Context) {
	ws, i, ok := currentRow(c)
	if !ok {
		return
	}
	var req fieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid request body", err))
		return
	}
	if err := ws.UpdateField(i, req.Field, req.Value); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"index": i, "field": req.Field, "value": req.Value})
}

func (h *Handler) SaveRecord(c *gin.Context) {
	ws, i, ok := currentRow(c)
	if !ok {
		return
	}
	if err := ws.SaveRow(c.Request.Context(), i); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"index": i, "editing": false})
}

func (h *Handler) DeleteRecord(c *gin.Context) {
	ws, i, ok := currentRow(c)
	if !ok {
		return
	}
	if err := ws.DeleteRow(c.Request.Context(), i); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, ws.State(c.Request.Context()))
}

func (h *Handler) SetQuery(c *gin.Context) {
	ws, ok := current(c)
	if !ok {
		return
	}
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid request body", err))
		return
	}
	httputil.RespondWithSuccess(c, ws.SetQuery(req.Query))
}

func (h *Handler) ToggleFilter(c *gin.Context) {
	ws, ok := current(c)
	if !ok {
		return
	}
	var req fieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid request body", err))
		return
	}
	state, err := ws.ToggleFilter(req.Field, req.Value)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, state)
}

func (h *Handler) SetRange(c *gin.Context) {
	ws, ok := current(c)
	if !ok {
		return
	}
	var req rangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid request body", err))
		return
	}
	state, err := ws.SetRange(req.Field, model.DateRange{Start: req.Start, End: req.End})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, state)
}

func (h *Handler) ResetSearch(c *gin.Context) {
	ws, ok := current(c)
	if !ok {
		return
	}
	ws.ResetFilter()
	httputil.RespondWithSuccess(c, model.FilterState{})
}

func bindList(c *gin.Context) (listQuery, bool) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid query parameters", err))
		return q, false
	}
	return q, true
}

func current(c *gin.Context) (*workspace.Workspace, bool) {
	ws := middleware.CurrentWorkspace(c)
	if ws == nil {
		httputil.RespondWithError(c, errors.Internal(nil))
		return nil, false
	}
	return ws, true
}

func currentRow(c *gin.Context) (*workspace.Workspace, int, bool) {
	ws, ok := current(c)
	if !ok {
		return nil, 0, false
	}
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid row index", err))
		return nil, 0, false
	}
	return ws, i, true
}
