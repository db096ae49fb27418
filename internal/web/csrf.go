package web

import (
	"crypto/sha256"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

const contextKeyCSRFField = "csrf_field"

// CSRFKey derives the 32-byte key gorilla/csrf needs from a secret of any length.
func CSRFKey(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

// CSRFMiddleware protects every unsafe form submission. With secure unset
// requests are marked as plaintext so local http:// use works.
func CSRFMiddleware(key []byte, secure bool) gin.HandlerFunc {
	csrfProtect := csrf.Protect(
		key,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		passed := false
		handler := csrfProtect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Set(contextKeyCSRFField, csrf.TemplateField(r))
			// Session middleware runs after this, on top of the CSRF context.
			c.Request = r
			c.Next()
		}))

		req := c.Request
		if !secure {
			req = csrf.PlaintextHTTPRequest(req)
		}
		handler.ServeHTTP(c.Writer, req)
		if !passed {
			c.Abort()
		}
	}
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Session Expired</title></head>
<body style="font-family: system-ui; max-width: 400px; margin: 100px auto; text-align: center;">
<h1>Session Expired</h1>
<p>Your session has expired or the form submission was invalid.</p>
<p><a href="/">Back to your library</a></p>
</body>
</html>`))
}

// csrfField returns the hidden input for forms, empty when CSRF is off.
func csrfField(c *gin.Context) template.HTML {
	if field, ok := c.Get(contextKeyCSRFField); ok {
		if html, ok := field.(template.HTML); ok {
			return html
		}
	}
	return ""
}
