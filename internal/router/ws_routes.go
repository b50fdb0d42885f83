// Package router 提供本地 API 的路由注册
// 本文件定义本地推送的 WebSocket 路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterWsRoutes 注册本地推送路由（需要认证，token 可经 query 传入）
func (rt *Router) RegisterWsRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws", rt.handlers.Ws.Subscribe) // 派生查询快照推送
}
