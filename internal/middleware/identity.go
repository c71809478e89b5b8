package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// UserID returns the authenticated subject, or "anon" when the request
// carried no token.  Rate limit keys use it to separate callers.
func UserID(c echo.Context) string {
	if s, ok := c.Get(ContextUserID).(string); ok && s != "" {
		return s
	}
	return "anon"
}

// NumericUserID parses the subject as an unsigned id.  ok is false for
// anonymous requests and non-numeric subjects.
func NumericUserID(c echo.Context) (id uint64, ok bool) {
	s, _ := c.Get(ContextUserID).(string)
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
