package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ZiyadBin/rain-system/internal/domain"
)

const (
	identityKey = "identity"
	roleKey     = "userRole"
)

// TokenVerifier turns a bearer token into an identity.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
	LookupName(name string) (domain.Identity, bool)
}

// Identity resolves the caller from "Authorization: Bearer <jwt>" or, failing that,
// from the User-Name header the desk frontend sends. A bad token is rejected;
// a missing one is not.
func Identity(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := bearerToken(c.GetHeader("Authorization")); raw != "" && v != nil {
			who, err := v.Verify(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"success":    false,
					"error":      err.Error(),
					"request_id": GetRequestID(c),
				})
				return
			}
			setIdentity(c, who)
			c.Next()
			return
		}

		if name := strings.TrimSpace(c.GetHeader("User-Name")); name != "" {
			who := domain.Identity{Name: name}
			if v != nil {
				if known, ok := v.LookupName(name); ok {
					// Header callers never get a role; only tokens carry one.
					who = domain.Identity{Username: known.Username, Name: known.Name}
				}
			}
			setIdentity(c, who)
		}
		c.Next()
	}
}

func setIdentity(c *gin.Context, who domain.Identity) {
	c.Set(identityKey, who)
	if who.Role != "" {
		c.Set(roleKey, who.Role)
	}
}

// GetIdentity returns the resolved caller, or the zero Identity when anonymous.
func GetIdentity(c *gin.Context) domain.Identity {
	if v, ok := c.Get(identityKey); ok {
		if who, ok := v.(domain.Identity); ok {
			return who
		}
	}
	return domain.Identity{}
}

func bearerToken(h string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
