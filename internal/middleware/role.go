package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// Roles carried in the JWT "role" claim.  Organizers publish trips
// and read passenger lists; passengers hold and book seats.
const (
    RoleOrganizer = "organizer"
    RolePassenger = "passenger"
)

// RequireRole returns a middleware that enforces that the
// authenticated user has one of the specified roles.  It assumes
// JWTAuth already extracted the role into the context under "role";
// a missing or unknown role is rejected with 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            v := c.Get("role")
            role, ok := v.(string)
            if !ok || !allowed[role] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
