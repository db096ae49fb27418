package web

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
)

// LoadSession does for gin what scs's LoadAndSave does for net/http.
// The session is committed right before the first header or body write,
// because gin handlers write the status line themselves.
func (sm *SessionManager) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, err := sm.Load(c.Request.Context(), sm.requestToken(c.Request))
		if err != nil {
			log.Printf("Failed to load session: %v", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Request = c.Request.WithContext(ctx)

		w := &committingWriter{ResponseWriter: c.Writer}
		w.commit = func() { sm.commit(ctx, w.ResponseWriter) }
		c.Writer = w

		c.Next()

		// Handlers that wrote nothing still owe the cookie.
		w.commitOnce()
	}
}

func (sm *SessionManager) requestToken(r *http.Request) string {
	cookie, err := r.Cookie(sm.Cookie.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// commit persists a modified session and sets its cookie, or expires the
// cookie of a destroyed one. Unmodified sessions send nothing.
func (sm *SessionManager) commit(ctx context.Context, w http.ResponseWriter) {
	switch sm.Status(ctx) {
	case scs.Modified:
		token, expiry, err := sm.Commit(ctx)
		if err != nil {
			log.Printf("Failed to commit session: %v", err)
			return
		}
		sm.WriteSessionCookie(ctx, w, token, expiry)
	case scs.Destroyed:
		sm.WriteSessionCookie(ctx, w, "", time.Time{})
	}
}

type committingWriter struct {
	gin.ResponseWriter
	commit func()
	once   sync.Once
}

func (w *committingWriter) commitOnce() {
	w.once.Do(w.commit)
}

func (w *committingWriter) WriteHeader(code int) {
	w.commitOnce()
	w.ResponseWriter.WriteHeader(code)
}

func (w *committingWriter) WriteHeaderNow() {
	w.commitOnce()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *committingWriter) Write(b []byte) (int, error) {
	w.commitOnce()
	return w.ResponseWriter.Write(b)
}

func (w *committingWriter) WriteString(s string) (int, error) {
	w.commitOnce()
	return w.ResponseWriter.WriteString(s)
}
