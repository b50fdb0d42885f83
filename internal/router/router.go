// Package router 提供本地 API 的路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"kama_chat_mirror/internal/handler"
	"kama_chat_mirror/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// Router 路由管理器，持有 Handler 聚合对象
type Router struct {
	handlers *handler.Handlers
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes 注册所有路由
// 会话接口无需认证，其余接口都在 JWT 认证组内
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	rt.RegisterSessionRoutes(r)

	authed := r.Group("/", middleware.JWTAuth())
	rt.RegisterChatRoutes(authed)
	rt.RegisterWsRoutes(authed)
}
