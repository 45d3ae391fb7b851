package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// CSRFTokenHeader is the header clients echo the token back in.
const CSRFTokenHeader = "X-CSRF-Token"

const contextKeyCSRFToken = "csrf_token"

// CSRFMiddleware protects unsafe methods with gorilla/csrf.
// Requests carrying a valid owner API token skip the check: they are not
// driven by a browser cookie.
func CSRFMiddleware(secret []byte, secure bool, service *Service) gin.HandlerFunc {
	protect := csrf.Protect(
		secret,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.Path("/"),
		csrf.RequestHeader(CSRFTokenHeader),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		if hasValidBearer(c, service) {
			c.Next()
			return
		}

		// gorilla/csrf rejects plain-HTTP requests without a Referer/Origin
		// match unless told the request is not TLS.
		req := c.Request
		if !secure {
			req = csrf.PlaintextHTTPRequest(req)
		}

		passed := false
		protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Set(contextKeyCSRFToken, csrf.Token(r))
			c.Request = r
			c.Next()
		})).ServeHTTP(c.Writer, req)

		// the error handler already responded
		if !passed {
			c.Abort()
		}
	}
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"error":"CSRF token invalid or missing"}`))
}

func hasValidBearer(c *gin.Context, service *Service) bool {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok || service == nil {
		return false
	}
	return service.ValidateToken(token) == nil
}

// GetCSRFToken returns the token for the current request, or "".
func GetCSRFToken(c *gin.Context) string {
	return c.GetString(contextKeyCSRFToken)
}
