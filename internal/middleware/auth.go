package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"meeting_qa/internal/utils"
)

// AuthMiddleware 是一個 Gin 中間件，用於驗證主持人的 JWT token
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 從請求頭中獲取 Authorization 字段
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "Missing token"})
			c.Abort()
			return
		}

		// 檢查 Authorization 頭的格式
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "Authorization header format must be Bearer {token}"})
			c.Abort()
			return
		}

		// 解析 JWT token
		claims, err := utils.ParseToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// 將主持人信息設置到上下文中
		c.Set("email", claims.Email)
		c.Next()
	}
}
