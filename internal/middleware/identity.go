package middleware

// identity.go defines helper functions shared across middleware
// files.  The holder identifier is whatever opaque string the
// external identity service put in the token's subject claim; this
// service never interprets it.

import "github.com/labstack/echo/v4"

// currentUserID extracts the authenticated user's identifier from
// the Echo context.  It returns "anon" when no user is authenticated,
// which keeps rate-limit keys well formed for guest traffic.
func currentUserID(c echo.Context) string {
    if v := c.Get("user_id"); v != nil {
        if s, ok := v.(string); ok && s != "" {
            return s
        }
    }
    return "anon"
}
