package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-auth-service/pkg/response"
)

const identityKey = "identity"

// Identity is what the auth gate resolved a bearer token to.
type Identity struct {
	UserID string
}

// Authenticator resolves a session token to a user id.
type Authenticator interface {
	Authenticate(token string) (string, error)
}

// IdentityHandler is a protected handler that receives the caller explicitly.
type IdentityHandler func(c *gin.Context, id Identity)

// Auth verifies the Authorization: Bearer token and stores the resolved
// Identity on the context. It never touches the store.
func Auth(auth Authenticator, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		userID, err := auth.Authenticate(token)
		if err != nil {
			logger.WithError(err).WithField("request_id", c.GetString(RequestIDKey)).Debug("bearer token rejected")
			response.Error(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		c.Set(identityKey, Identity{UserID: userID})
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok && id.UserID != ""
}

// WithIdentity adapts h to a gin handler. Requests that did not pass the
// gate are rejected with 401.
func WithIdentity(h IdentityHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		h(c, id)
	}
}
