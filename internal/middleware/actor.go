package middleware

import (
	"github.com/gin-gonic/gin"
)

const (
	// ActorIDHeader names the request header carrying the acting user's ID.
	ActorIDHeader = "X-Actor-ID"

	userIDKey = "userID"

	// defaultActorID is recorded when the caller does not identify itself.
	defaultActorID = "system"
)

// ActorMiddleware resolves the acting user for audit trails. The actor is
// taken from the X-Actor-ID header, defaulting to "system".
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetHeader(ActorIDHeader)
		if actorID == "" {
			actorID = defaultActorID
		}
		c.Set(userIDKey, actorID)
		c.Next()
	}
}

// GetUserIDFromContext retrieves the acting user's ID set by ActorMiddleware.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, ok := c.Get(userIDKey)
	if !ok {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok && id != ""
}
