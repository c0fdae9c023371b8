package auth

import (
	"bufio"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// sessionWriter commits the session and sets its cookie right before the
// first byte of the response goes out. Gin handlers write headers early
// (redirects, HTML rendering), so committing after c.Next() would be too late.
type sessionWriter struct {
	gin.ResponseWriter
	sm      *SessionManager
	request *http.Request
	once    sync.Once
}

func (w *sessionWriter) commit() {
	w.once.Do(func() {
		ctx := w.request.Context()
		switch w.sm.Status(ctx) {
		case scs.Modified:
			token, expiry, err := w.sm.Commit(ctx)
			if err != nil {
				log.Error().Err(err).Msg("failed to commit session")
				return
			}
			w.sm.WriteSessionCookie(ctx, w.ResponseWriter, token, expiry)
		case scs.Destroyed:
			w.sm.WriteSessionCookie(ctx, w.ResponseWriter, "", time.Time{})
		}
	})
}

func (w *sessionWriter) WriteHeader(code int) {
	w.commit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) WriteHeaderNow() {
	w.commit()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) WriteString(s string) (int, error) {
	w.commit()
	return w.ResponseWriter.WriteString(s)
}

func (w *sessionWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.Hijack()
}

// SessionLoadSave is the gin equivalent of scs LoadAndSave. It must run
// before anything reads or writes the session.
func (sm *SessionManager) SessionLoadSave() gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		if cookie, err := c.Request.Cookie(sm.Cookie.Name); err == nil {
			token = cookie.Value
		}

		ctx, err := sm.Load(c.Request.Context(), token)
		if err != nil {
			log.Error().Err(err).Msg("failed to load session")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Request = c.Request.WithContext(ctx)

		w := &sessionWriter{ResponseWriter: c.Writer, sm: sm, request: c.Request}
		c.Writer = w

		c.Next()

		// Handlers that never wrote a body still need their cookie.
		w.commit()
	}
}
