package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	entryHandler "github.com/Dahbi-Dev/Excel-easy/internal/handler/entry"
	exportHandler "github.com/Dahbi-Dev/Excel-easy/internal/handler/export"
	gateHandler "github.com/Dahbi-Dev/Excel-easy/internal/handler/gate"
	"github.com/Dahbi-Dev/Excel-easy/internal/handler/health"
	"github.com/Dahbi-Dev/Excel-easy/internal/handler/record"
	"github.com/Dahbi-Dev/Excel-easy/internal/middleware"
	"github.com/Dahbi-Dev/Excel-easy/internal/model"
	"github.com/Dahbi-Dev/Excel-easy/internal/repository/memory"
	"github.com/Dahbi-Dev/Excel-easy/internal/router"
	"github.com/Dahbi-Dev/Excel-easy/internal/service/export"
	"github.com/Dahbi-Dev/Excel-easy/internal/service/gate"
	"github.com/Dahbi-Dev/Excel-easy/internal/service/importer"
	"github.com/Dahbi-Dev/Excel-easy/internal/workspace"
	"github.com/Dahbi-Dev/Excel-easy/pkg/auth"
	"github.com/Dahbi-Dev/Excel-easy/pkg/logger"
	"github.com/Dahbi-Dev/Excel-easy/pkg/metrics"
	"github.com/Dahbi-Dev/Excel-easy/pkg/security"
)

const gatePassword = "cabinet-2025"

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code     int               `json:"code"`
		Message  string            `json:"message"`
		Fields   map[string]string `json:"fields"`
		Redirect string            `json:"redirect"`
	} `json:"error"`
	Pagination *struct {
		Total int `json:"total"`
	} `json:"pagination"`
}

type client struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func (c *client) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, "/api/v1"+path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.engine.ServeHTTP(w, req)
	if tok := w.Header().Get(middleware.HeaderWorkspace); tok != "" {
		c.token = tok
	}
	return w
}

func (c *client) json(method, path string, payload any) (*httptest.ResponseRecorder, apiResponse) {
	c.t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(c.t, err)
		body = bytes.NewReader(data)
	}
	w := c.do(method, path, body, "application/json")

	var resp apiResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func (c *client) upload(path, name string, data []byte) (*httptest.ResponseRecorder, apiResponse) {
	c.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(c.t, err)
	_, err = part.Write(data)
	require.NoError(c.t, err)
	require.NoError(c.t, mw.Close())

	w := c.do(http.MethodPost, path, &buf, mw.FormDataContentType())
	var resp apiResponse
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func newServer(t *testing.T) *gin.Engine {
	t.Helper()
	log := logger.Nop()
	registry := prometheus.NewRegistry()
	m := metrics.New("test")
	require.NoError(t, m.Register(registry))

	store := memory.NewStore()
	tokens, err := auth.NewJWTService("secret", time.Hour)
	require.NoError(t, err)

	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash(gatePassword)
	require.NoError(t, err)

	mgr := workspace.NewManager(store, importer.NewService(log, m), gate.NewService(hasher, hash, log),
		workspace.Options{AutosaveDelay: time.Hour}, log, m)
	session := middleware.NewSessionMiddleware(tokens, mgr, middleware.SessionConfig{Expiry: time.Hour})

	r, err := router.NewRouter(session, health.NewHandler(store, registry), gateHandler.NewHandler(),
		[]router.Handler{
			record.NewHandler(),
			entryHandler.NewHandler(),
			exportHandler.NewHandler(nil, log, m),
		},
		router.RouterConfig{
			Mode:          gin.TestMode,
			CORSConfig:    middleware.CORSConfig{AllowOrigins: []string{"*"}},
			SizeLimit:     middleware.DefaultSizeLimitConfig(),
			Security:      middleware.DefaultSecurityConfig(),
			MetricsPrefix: "test_http",
			Registerer:    registry,
		})
	require.NoError(t, err)
	return r.Engine()
}

func patientsWorkbook(t *testing.T) []byte {
	t.Helper()
	data, err := export.Workbook(model.RecordList{
		{IPP: "1", LastName: "Alaoui", FirstName: "Sara", Sex: "F", BirthDate: "1990-01-01"},
		{IPP: "2", LastName: "Bennani", FirstName: "Omar", Sex: "M", BirthDate: "2000-06-15"},
		{IPP: "3", LastName: "Chraibi", FirstName: "Lina", Sex: "F", BirthDate: "2010-12-31"},
	})
	require.NoError(t, err)
	return data
}

func TestHealth(t *testing.T) {
	c := &client{t: t, engine: newServer(t)}

	w, _ := c.json(http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, c.token)

	w, _ = c.json(http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = c.do(http.MethodGet, "/health/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_http_requests_total")
}

func TestGateProtectsRecords(t *testing.T) {
	c := &client{t: t, engine: newServer(t)}

	w, resp := c.json(http.MethodGet, "/records", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "/login", resp.Error.Redirect)
	require.NotEmpty(t, c.token)

	w, _ = c.json(http.MethodPost, "/gate/login", map[string]string{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = c.json(http.MethodPost, "/gate/login", map[string]string{"password": gatePassword})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = c.json(http.MethodGet, "/records", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Another client has its own, closed gate.
	other := &client{t: t, engine: c.engine}
	w, _ = other.json(http.MethodGet, "/records", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = c.json(http.MethodPost, "/gate/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = c.json(http.MethodGet, "/records", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecordFlow(t *testing.T) {
	c := &client{t: t, engine: newServer(t)}
	c.json(http.MethodPost, "/gate/login", map[string]string{"password": gatePassword})

	// Import
	w, resp := c.upload("/records/import", "patients.xlsx", patientsWorkbook(t))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(resp.Data), `"records":3`)

	w, resp = c.upload("/records/import", "broken.xlsx", []byte("garbage"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, resp.Success)

	// List
	w, resp = c.json(http.MethodGet, "/records?page=1&page_size=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, 3, resp.Pagination.Total)

	// Edit a row
	w, _ = c.json(http.MethodPut, "/records/1/fields", map[string]string{"field": "Prenom", "value": "x"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w, _ = c.json(http.MethodPost, "/records/1/edit", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = c.json(http.MethodPut, "/records/1/fields", map[string]string{"field": "Prenom", "value": "Omar Jr"})
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = c.json(http.MethodPost, "/records/1/save", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = c.json(http.MethodPost, "/records/abc/edit", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = c.json(http.MethodPost, "/records/9/edit", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Search
	w, _ = c.json(http.MethodPut, "/search/query", map[string]string{"query": "omar"})
	assert.Equal(t, http.StatusOK, w.Code)
	w, resp = c.json(http.MethodGet, "/search", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, resp.Pagination.Total)
	assert.Contains(t, string(resp.Data), "Omar Jr")

	w, _ = c.json(http.MethodPost, "/search/filters/toggle", map[string]string{"field": "Nom", "value": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Export follows the filtered view
	w = c.do(http.MethodGet, "/export/xlsx", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "data.xlsx")
	exported, err := importer.NewService(nil, nil).Import(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	require.Len(t, exported, 1)
	assert.Equal(t, "Bennani", exported[0].LastName)

	w = c.do(http.MethodGet, "/export/pdf", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w, _ = c.json(http.MethodPost, "/export/mail", map[string]string{"to": "doc@example.com", "format": "pdf"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Delete
	w, _ = c.json(http.MethodDelete, "/search", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = c.json(http.MethodDelete, "/records/0", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	_, resp = c.json(http.MethodGet, "/records", nil)
	assert.Equal(t, 2, resp.Pagination.Total)
}

func TestEntryFlow(t *testing.T) {
	c := &client{t: t, engine: newServer(t)}
	c.json(http.MethodPost, "/gate/login", map[string]string{"password": gatePassword})
	c.upload("/records/import", "patients.xlsx", patientsWorkbook(t))

	w, resp := c.json(http.MethodPost, "/entry/open", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(resp.Data), `"N° IPP":"4"`)

	w, resp = c.json(http.MethodPost, "/entry/submit", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Le nom est requis", resp.Error.Fields["Nom"])

	w, _ = c.json(http.MethodPost, "/entry/prefill", map[string]int{"index": 0})
	assert.Equal(t, http.StatusOK, w.Code)
	for field, value := range map[string]string{
		"TYPE DE PIECE ID":      "CIN",
		"N° PIECE ID":           "AB123",
		"COMPAGNIE D'ASSURANCE": "CNOPS",
	} {
		w, _ = c.json(http.MethodPatch, "/entry/fields", map[string]string{"field": field, "value": value})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w, resp = c.json(http.MethodPost, "/entry/submit", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, string(resp.Data), `"index":3`)

	_, resp = c.json(http.MethodGet, "/entry/existing", nil)
	assert.Contains(t, string(resp.Data), "Alaoui Sara (AB123)")

	// Draft survives a close with save_draft.
	c.json(http.MethodPost, "/entry/open", nil)
	c.json(http.MethodPatch, "/entry/fields", map[string]string{"field": "Nom", "value": "Draft"})
	w, resp = c.json(http.MethodPost, "/entry/close", map[string]bool{"save_draft": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(resp.Data), `"draft_available":true`)

	_, resp = c.json(http.MethodGet, "/state", nil)
	assert.Contains(t, string(resp.Data), `"records":4`)
	assert.Contains(t, string(resp.Data), `"draft_available":true`)
}
