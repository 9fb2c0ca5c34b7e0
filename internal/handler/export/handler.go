package export

import (
	"github.com/gin-gonic/gin"

	"github.com/Dahbi-Dev/Excel-easy/internal/middleware"
	"github.com/Dahbi-Dev/Excel-easy/internal/service/export"
	"github.com/Dahbi-Dev/Excel-easy/pkg/errors"
	"github.com/Dahbi-Dev/Excel-easy/pkg/httputil"
	"github.com/Dahbi-Dev/Excel-easy/pkg/logger"
	"github.com/Dahbi-Dev/Excel-easy/pkg/metrics"
)

type Handler struct {
	mailer  *export.Mailer
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewHandler serves downloads; mailer may be nil when mail is disabled.
func NewHandler(mailer *export.Mailer, log *logger.Logger, m *metrics.Metrics) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{mailer: mailer, log: log, metrics: m}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	exports := r.Group("/export")
	{
		exports.GET("/xlsx", h.download(export.FormatXLSX))
		exports.GET("/pdf", h.download(export.FormatPDF))
		exports.POST("/mail", h.Mail)
	}
}

type mailRequest struct {
	To     string `json:"to" binding:"required,email"`
	Format string `json:"format" binding:"required"`
}

func (h *Handler) download(format export.Format) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws := middleware.CurrentWorkspace(c)
		if ws == nil {
			httputil.RespondWithError(c, errors.Internal(nil))
			return
		}

		list := ws.ExportList()
		data, err := export.Render(format, list)
		if err != nil {
			h.count(format, "error")
			h.log.Error(err, "export failed", "format", string(format))
			httputil.RespondWithError(c, errors.Internal(err))
			return
		}

		h.count(format, "downloaded")
		httputil.RespondWithFile(c, format.FileName(), format.ContentType(), data)
	}
}

func (h *Handler) Mail(c *gin.Context) {
	if h.mailer == nil {
		httputil.RespondWithError(c, errors.NotFound("mail delivery", nil))
		return
	}
	ws := middleware.CurrentWorkspace(c)
	if ws == nil {
		httputil.RespondWithError(c, errors.Internal(nil))
		return
	}

	var req mailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid request body", err))
		return
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error(), err))
		return
	}

	list := ws.ExportList()
	if err := h.mailer.Send(c.Request.Context(), req.To, format, list); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"to": req.To, "format": format, "records": len(list)})
}

func (h *Handler) count(format export.Format, status string) {
	if h.metrics != nil {
		h.metrics.ExportsTotal.WithLabelValues(string(format), status).Inc()
	}
}
