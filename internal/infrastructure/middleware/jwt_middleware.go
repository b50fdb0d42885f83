package middleware

import (
	"net/http"
	"strings"

	"kama_chat_mirror/pkg/errorx"
	"kama_chat_mirror/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

// JWTAuth JWT 认证中间件
// 验证 Access Token 并将账户标识存入上下文
// 浏览器 WebSocket 无法自定义 Header，允许 token 从 query 参数传入
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 从 Header 或 query 获取 Token
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"code": errorx.CodeUnauthorized,
					"msg":  "Token 格式错误，请使用 Bearer Token",
				})
				return
			}
			tokenString = parts[1]
		} else {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "请先打开账户会话",
			})
			return
		}

		// 2. 验证 Token
		claims, err := jwt.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "Token 已过期或无效，请重新打开会话",
			})
			return
		}

		// 3. 验证是否为 Access Token
		if claims.Subject != "access_token" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "请使用 Access Token 访问此接口",
			})
			return
		}

		// 4. 将账户标识存入上下文，供后续 Handler 使用
		c.Set("account_id", claims.AccountID)
		c.Next()
	}
}
