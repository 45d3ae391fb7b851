package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// AuditLogger records authentication events.
type AuditLogger interface {
	LogAuth(action, ipAddr string, success bool)
}

// isLocalPath reports whether path is safe to hand back as a post-login redirect.
func isLocalPath(path string) bool {
	switch {
	case path == "", !strings.HasPrefix(path, "/"):
		return false
	case strings.HasPrefix(path, "//"), strings.Contains(path, "://"), strings.Contains(path, "\\"):
		return false
	}
	return true
}

// sanitizeRedirectPath returns a safe redirect path, defaulting to "/" if invalid.
func sanitizeRedirectPath(path string) string {
	if isLocalPath(path) {
		return path
	}
	return "/"
}

type setupRequest struct {
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

type loginRequest struct {
	Password string `form:"password" json:"password"`
	Next     string `form:"next" json:"next"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AuthController serves the owner login endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	rateLimiter    *RateLimiter
	audit          AuditLogger
}

// NewAuthController wires the controller; sessionManager, rateLimiter and audit may be nil.
func NewAuthController(service *Service, sessionManager *SessionManager, rateLimiter *RateLimiter, audit AuditLogger) *AuthController {
	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		rateLimiter:    rateLimiter,
		audit:          audit,
	}
}

// RegisterRoutes registers authentication routes on the router.
// Without local auth only the session probe is exposed.
func (ac *AuthController) RegisterRoutes(router gin.IRouter) {
	router.GET("/api/session", ac.Session)
	if !ac.service.IsAuthEnabled() {
		return
	}

	router.POST("/setup", ac.Setup)
	router.POST("/login", ac.Login)
	router.POST("/logout", ac.Logout)

	router.POST("/api/auth/password", ac.ChangePassword)
	router.POST("/api/auth/token", ac.GenerateToken)
	router.DELETE("/api/auth/token", ac.RevokeToken)
}

func (ac *AuthController) logAuth(action, ip string, success bool) {
	if ac.audit != nil {
		ac.audit.LogAuth(action, ip, success)
	}
}

func (ac *AuthController) authenticated(c *gin.Context) bool {
	if !ac.service.IsAuthEnabled() {
		return true
	}
	if token, ok := bearerToken(c.GetHeader("Authorization")); ok && ac.service.ValidateToken(token) == nil {
		return true
	}
	return ac.sessionManager != nil && ac.sessionManager.IsAuthenticated(c.Request)
}

// Session describes the caller's auth state. Browser clients also read the
// CSRF token from here.
func (ac *AuthController) Session(c *gin.Context) {
	resp := gin.H{
		"mode":           ac.service.Mode(),
		"authenticated":  ac.authenticated(c),
		"setup_required": ac.service.IsAuthEnabled() && !ac.service.IsSetUp(),
	}
	if token := GetCSRFToken(c); token != "" {
		resp["csrf_token"] = token
	}
	if ac.sessionManager != nil {
		if loginAt := ac.sessionManager.LoginAt(c.Request); !loginAt.IsZero() {
			resp["login_at"] = loginAt.Format(time.RFC3339)
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Setup stores the first owner password and logs the owner in.
func (ac *AuthController) Setup(c *gin.Context) {
	var req setupRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := ac.service.Setup(req.Password, req.ConfirmPassword); err != nil {
		ac.logAuth("setup", c.ClientIP(), false)
		switch {
		case errors.Is(err, ErrAlreadySetUp):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, ErrPasswordRequired), errors.Is(err, ErrPasswordMismatch),
			errors.Is(err, ErrPasswordTooShort), errors.Is(err, ErrPasswordTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			slog.Error("Owner setup failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save owner password"})
		}
		return
	}
	ac.logAuth("setup", c.ClientIP(), true)

	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request); err != nil {
			slog.Error("Failed to create session after setup", "error", err)
		}
	}
	c.JSON(http.StatusCreated, gin.H{"authenticated": true})
}

// Login checks the owner password, subject to the per-IP rate limit.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	ip := c.ClientIP()

	if ac.rateLimiter != nil {
		if allowed, retryAfter := ac.rateLimiter.Allow(ip); !allowed {
			c.Header("Retry-After", retryAfterSeconds(retryAfter))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "too many login attempts",
				"retry_after": retryAfter.Round(time.Second).String(),
			})
			return
		}
	}

	if err := ac.service.Authenticate(req.Password); err != nil {
		ac.logAuth("login", ip, false)
		if errors.Is(err, ErrNotSetUp) {
			c.JSON(http.StatusConflict, gin.H{"error": "owner password not set, POST /setup first"})
			return
		}
		if ac.rateLimiter != nil {
			ac.rateLimiter.RecordFailure(ip)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
		return
	}

	if ac.rateLimiter != nil {
		ac.rateLimiter.RecordSuccess(ip)
	}
	ac.logAuth("login", ip, true)

	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request); err != nil {
			slog.Error("Failed to create session", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"redirect":      sanitizeRedirectPath(req.Next),
	})
}

func (ac *AuthController) Logout(c *gin.Context) {
	if ac.sessionManager != nil {
		_ = ac.sessionManager.DestroySession(c.Request)
	}
	ac.logAuth("logout", c.ClientIP(), true)
	c.JSON(http.StatusOK, gin.H{"authenticated": false})
}

func (ac *AuthController) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := ac.service.ChangePassword(req.CurrentPassword, req.NewPassword)
	ac.logAuth("change_password", c.ClientIP(), err == nil)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "password changed"})
	case errors.Is(err, ErrInvalidPassword), errors.Is(err, ErrPasswordRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "current password is incorrect"})
	case errors.Is(err, ErrPasswordTooShort), errors.Is(err, ErrPasswordTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotSetUp):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		slog.Error("Password change failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change password"})
	}
}

// GenerateToken issues an API token for scripts and the CLI.
func (ac *AuthController) GenerateToken(c *gin.Context) {
	token, err := ac.service.GenerateToken()
	if err != nil {
		slog.Error("Token generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	ac.logAuth("generate_token", c.ClientIP(), true)

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"message": "Store this token securely - it will not be shown again",
	})
}

func (ac *AuthController) RevokeToken(c *gin.Context) {
	if err := ac.service.RevokeToken(); err != nil {
		slog.Error("Token revocation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}
	ac.logAuth("revoke_token", c.ClientIP(), true)
	c.JSON(http.StatusOK, gin.H{"message": "token revoked"})
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
