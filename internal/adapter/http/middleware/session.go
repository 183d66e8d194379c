package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionKey = "session_id"

type SessionOptions struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Session guarantees every request carries a visitor session id, issuing a
// new cookie when the client has none (or sends something that is not a uuid).
func Session(opts SessionOptions) gin.HandlerFunc {
	if opts.CookieName == "" {
		opts.CookieName = "sid"
	}
	return func(c *gin.Context) {
		sid, err := c.Cookie(opts.CookieName)
		if err != nil || uuid.Validate(sid) != nil {
			sid = uuid.NewString()
		}
		// refresh on every request so an active cart never expires under the user
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(opts.CookieName, sid, int(opts.TTL.Seconds()), "/", "", opts.Secure, true)
		c.Set(sessionKey, sid)
		c.Next()
	}
}

// SessionID returns the id set by Session, or "" outside it.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}
