package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Dahbi-Dev/Excel-easy/internal/service/gate"
	"github.com/Dahbi-Dev/Excel-easy/internal/workspace"
	"github.com/Dahbi-Dev/Excel-easy/pkg/auth"
	"github.com/Dahbi-Dev/Excel-easy/pkg/httputil"
)

const (
	ContextWorkspace = "workspace"
	HeaderWorkspace  = "X-Workspace-Token"
)

type SessionConfig struct {
	CookieName string
	Expiry     time.Duration
	Secure     bool
}

// SessionMiddleware binds each request to a workspace.
type SessionMiddleware struct {
	tokens     auth.JWTService
	workspaces *workspace.Manager
	config     SessionConfig
}

func NewSessionMiddleware(tokens auth.JWTService, workspaces *workspace.Manager, config SessionConfig) *SessionMiddleware {
	if config.CookieName == "" {
		config.CookieName = "workspace"
	}
	return &SessionMiddleware{tokens: tokens, workspaces: workspaces, config: config}
}

// Workspace reads the workspace token from a bearer header, the
// X-Workspace-Token header or the cookie, in that order. A missing or invalid
// token starts a new workspace and sets a fresh token.
func (m *SessionMiddleware) Workspace() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := m.identify(c)
		if !ok {
			id = uuid.New()
			token, err := m.tokens.GenerateWorkspaceToken(id)
			if err != nil {
				log.Error().Err(err).Msg("failed to issue workspace token")
				c.AbortWithStatusJSON(http.StatusInternalServerError, httputil.Response{
					Error: &httputil.Error{Code: http.StatusInternalServerError, Message: "Internal server error"},
				})
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(m.config.CookieName, token, int(m.config.Expiry.Seconds()), "/", "", m.config.Secure, true)
			c.Header(HeaderWorkspace, token)
		}

		c.Set(ContextWorkspace, m.workspaces.Get(c.Request.Context(), id.String()))
		c.Next()
	}
}

func (m *SessionMiddleware) identify(c *gin.Context) (uuid.UUID, bool) {
	token := ""
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		token = strings.TrimPrefix(h, "Bearer ")
	} else if h := c.GetHeader(HeaderWorkspace); h != "" {
		token = h
	} else if cookie, err := c.Cookie(m.config.CookieName); err == nil {
		token = cookie
	}
	if token == "" {
		return uuid.Nil, false
	}

	id, err := m.tokens.ValidateWorkspaceToken(token)
	if err != nil {
		log.Debug().Err(err).Msg("discarding workspace token")
		return uuid.Nil, false
	}
	return id, true
}

// RequireGate sends clients with a closed gate to the login view.
func RequireGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws := CurrentWorkspace(c)
		if ws == nil || !ws.GateOpen(c.Request.Context()) {
			httputil.RespondWithRedirect(c, http.StatusUnauthorized, "login required", gate.LoginPath)
			return
		}
		c.Next()
	}
}

// CurrentWorkspace returns the workspace bound by Workspace.
func CurrentWorkspace(c *gin.Context) *workspace.Workspace {
	v, ok := c.Get(ContextWorkspace)
	if !ok {
		return nil
	}
	ws, _ := v.(*workspace.Workspace)
	return ws
}
