// Package router 提供本地 API 的路由注册
// 本文件定义账户会话相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterSessionRoutes 注册会话路由（无需认证）
func (rt *Router) RegisterSessionRoutes(r *gin.Engine) {
	sessionGroup := r.Group("/auth")
	{
		sessionGroup.POST("/session", rt.handlers.Session.OpenSession) // 打开账户会话，换取 Access Token
	}
}
