package http

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
)

// timeouts bounds the usecase call made by each handler.
type timeouts struct{ d time.Duration }

func (t timeouts) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	d := t.d
	if d <= 0 {
		d = 5 * time.Second
	}
	return context.WithTimeout(c.Request.Context(), d)
}

// flexString accepts a JSON string or number; browsers post ids either way.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
