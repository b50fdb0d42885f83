// Package router 提供本地 API 的路由注册
// 本文件定义聊天镜像读写的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterChatRoutes 注册聊天镜像路由（需要认证）
func (rt *Router) RegisterChatRoutes(rg *gin.RouterGroup) {
	chatGroup := rg.Group("/chat")
	{
		chatGroup.GET("/getActiveChats", rt.handlers.Chat.GetActiveChats)     // 活跃会话列表
		chatGroup.GET("/getRequests", rt.handlers.Chat.GetRequests)           // 待处理请求列表
		chatGroup.GET("/getRequestsCount", rt.handlers.Chat.GetRequestsCount) // 待处理请求数量
		chatGroup.GET("/getUnreadGlobal", rt.handlers.Chat.GetUnreadGlobal)   // 全局未读标志
		chatGroup.GET("/getRoomMessages", rt.handlers.Chat.GetRoomMessages)   // 某条消息流的消息
		chatGroup.POST("/markRead", rt.handlers.Chat.MarkRead)                // 标记会话已读
		chatGroup.POST("/setBlocked", rt.handlers.Chat.SetBlocked)            // 拉黑/取消拉黑
		chatGroup.POST("/acceptRequest", rt.handlers.Chat.AcceptRequest)      // 接受会话请求
		chatGroup.POST("/sendMessage", rt.handlers.Chat.SendMessage)          // 发送消息
	}
}
