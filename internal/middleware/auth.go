package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"catalog-service/internal/models"
)

const userIDKey = "user_id"

// DevelopmentUserID is used when AUTH_DISABLED is set and no X-User-ID header is sent.
var DevelopmentUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// Claims represents the JWT claims
type Claims struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates HMAC-signed bearer tokens and stores the caller's user id.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "MISSING_TOKEN", "Authorization header is required")
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			unauthorized(c, "INVALID_TOKEN_FORMAT", "Authorization header must be in format: Bearer <token>")
			return
		}

		token, err := jwt.ParseWithClaims(tokenParts[1], &Claims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			unauthorized(c, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		claims, ok := token.Claims.(*Claims)
		if !ok || !token.Valid {
			unauthorized(c, "INVALID_CLAIMS", "Invalid token claims")
			return
		}
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			unauthorized(c, "INVALID_CLAIMS", "Token user_id must be a UUID")
			return
		}

		c.Set(userIDKey, userID)
		c.Set("user_email", claims.Email)
		c.Set("user_roles", claims.Roles)
		c.Next()
	}
}

// DevelopmentAuthMiddleware trusts the X-User-ID header. Local use only.
func DevelopmentAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := DevelopmentUserID
		if header := c.GetHeader("X-User-ID"); header != "" {
			parsed, err := uuid.Parse(header)
			if err != nil {
				unauthorized(c, "INVALID_USER", "X-User-ID must be a UUID")
				return
			}
			userID = parsed
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// CurrentUserID returns the id stored by one of the auth middlewares.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func unauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.Response{
		ResultStatus: models.ResultUnauthorized,
		Success:      false,
		Message:      message,
		ErrorType:    code,
	})
}
