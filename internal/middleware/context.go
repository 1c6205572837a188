package middleware

import "github.com/labstack/echo/v4"

// Context keys set by the auth middlewares
const (
	ActorIDKey    = "actorID"
	ActorEmailKey = "actorEmail"
)

// ActorID returns the authenticated caller's identifier, or "" when unauthenticated
func ActorID(c echo.Context) string {
	id, _ := c.Get(ActorIDKey).(string)
	return id
}

// ActorEmail returns the authenticated caller's email when the token carried one
func ActorEmail(c echo.Context) string {
	email, _ := c.Get(ActorEmailKey).(string)
	return email
}
