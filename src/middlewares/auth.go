package middlewares

import (
	"artbook/src/models"
	"artbook/src/types"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

const userIDKey = "uid"

// UserHook is told about every authenticated user.
type UserHook func(ctx context.Context, u models.User)

// Authenticate validates the HS256 bearer token and stores its subject as
// the current user id.
func Authenticate(secret []byte, hook UserHook) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		bearerToken := ctx.Request.Header.Get("Authorization")
		reqToken, ok := strings.CutPrefix(bearerToken, "Bearer ")
		if !ok || reqToken == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		claims := &types.Claims{}
		tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !tkn.Valid || claims.Subject == "" {
			if err != nil {
				zap.S().Debugf("token error: %s", err.Error())
			}
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		ctx.Set(userIDKey, claims.Subject)
		if hook != nil {
			hook(ctx.Request.Context(), models.User{ID: claims.Subject, Email: claims.Email, Name: claims.Name})
		}
		ctx.Next()
	}
}

// CurrentUserID returns the authenticated user id, or "" when the request
// is anonymous.
func CurrentUserID(ctx *gin.Context) string {
	return ctx.GetString(userIDKey)
}
