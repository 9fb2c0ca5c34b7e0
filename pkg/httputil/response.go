package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dahbi-Dev/Excel-easy/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code     int               `json:"code"`
	Message  string            `json:"message"`
	Fields   map[string]string `json:"fields,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
	TraceID  string            `json:"trace_id,omitempty"`
}

// Pagination represents pagination metadata
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"page_size"`
	Total     int `json:"total"`
	TotalPage int `json:"total_pages"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithCreated sends a 201 success response
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError sends an error response. Errors that are not an AppError
// are reported as internal errors without their message.
func RespondWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(ErrorBody(c, err))
}

// ErrorBody builds the status and envelope RespondWithError would send.
func ErrorBody(c *gin.Context, err error) (int, Response) {
	body := &Error{
		Code:    http.StatusInternalServerError,
		Message: "Internal server error",
		TraceID: c.GetString("request_id"),
	}

	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		body.Code = appErr.StatusCode()
		body.Message = appErr.Message
		body.Fields = appErr.Fields
	}
	return body.Code, Response{Success: false, Error: body}
}

// RespondWithRedirect sends an error that tells the client where to go.
func RespondWithRedirect(c *gin.Context, status int, message, location string) {
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error: &Error{
			Code:     status,
			Message:  message,
			Redirect: location,
			TraceID:  c.GetString("request_id"),
		},
	})
}

// RespondWithPagination sends a paginated response
func RespondWithPagination(c *gin.Context, data interface{}, page, pageSize, total int) {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"pagination": Pagination{
			Page:      page,
			PageSize:  pageSize,
			Total:     total,
			TotalPage: totalPages,
		},
	})
}

// RespondWithFile sends an attachment.
func RespondWithFile(c *gin.Context, name, contentType string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, contentType, data)
}
