package auth

import (
	"aligner-lab/redis"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func AuthMiddleWare() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization is not found!"})
			return
		}

		// verify token
		token := strings.TrimPrefix(authHeader, "Bearer ")
		jwtToken, err := VerifyJWT(token)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		staffID, err := StaffIDFromToken(jwtToken)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		// check on redis
		if redis.RedisClient != nil {
			exists, err := redis.RedisClient.Exists(redis.Ctx, token).Result()
			if err != nil || exists == 0 {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired or not found"})
				return
			}
		}

		ctx.Set("jwt_token", token)
		ctx.Set("staff_id", staffID)
		ctx.Next()
	}
}

// InternalAuthMiddleware guards internal routes shared with collaborating
// services (the document store callback) using a static secret header.
func InternalAuthMiddleware(secret string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.GetHeader("X-Internal-Secret") != secret {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx.Next()
	}
}
