package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookworm/internal/config"
)

// ContextKeyAuthType holds how the current request was authenticated.
const ContextKeyAuthType = "auth_type"

// AuthType indicates how the owner was authenticated
type AuthType string

const (
	AuthTypeNone    AuthType = "none"    // auth disabled or public path
	AuthTypeSession AuthType = "session" // browser cookie
	AuthTypeBearer  AuthType = "bearer"  // API token
)

// Middleware guards routes when local auth is enabled.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	config         config.Auth
	publicPaths    map[string]bool
}

func NewMiddleware(service *Service, sessionManager *SessionManager, cfg config.Auth) *Middleware {
	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		config:         cfg,
		publicPaths: map[string]bool{
			"/health":      true,
			"/ping":        true,
			"/login":       true,
			"/setup":       true,
			"/api/session": true,
		},
	}
}

// Handler returns a Gin middleware handler that authenticates requests.
func (m *Middleware) Handler() gin.HandlerFunc {
	if m.config.Mode != config.AuthModeLocal {
		return func(c *gin.Context) {
			c.Set(ContextKeyAuthType, AuthTypeNone)
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if m.publicPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		if m.bearerValid(c) {
			c.Set(ContextKeyAuthType, AuthTypeBearer)
			c.Next()
			return
		}

		if m.sessionManager != nil && m.sessionManager.IsAuthenticated(c.Request) {
			c.Set(ContextKeyAuthType, AuthTypeSession)
			c.Next()
			return
		}

		status := http.StatusUnauthorized
		message := ErrAuthRequired.Error()
		if !m.service.IsSetUp() {
			message = "owner password not set, POST /setup first"
		}
		c.AbortWithStatusJSON(status, gin.H{"error": message})
	}
}

func (m *Middleware) bearerValid(c *gin.Context) bool {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok {
		return false
	}
	return m.service.ValidateToken(token) == nil
}

// bearerToken extracts the token from "Bearer <token>".
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetAuthType retrieves the authentication method used.
func GetAuthType(c *gin.Context) AuthType {
	if t, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}
