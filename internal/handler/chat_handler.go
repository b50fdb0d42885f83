package handler

import (
	"kama_chat_mirror/internal/dao/sqlite"
	"kama_chat_mirror/internal/dto/request"
	"kama_chat_mirror/internal/gateway/remote"
	"kama_chat_mirror/internal/notify"
	"kama_chat_mirror/internal/query"
	syncservice "kama_chat_mirror/internal/service/sync"
	"kama_chat_mirror/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// ChatHandler 聊天镜像读写接口
// 读路径走派生查询层，写路径走同步服务
type ChatHandler struct {
	stores   *sqlite.Manager
	notifier *notify.Notifier
	syncSvc  *syncservice.Service
	signals  *remote.SignalManager
}

// queries 取出当前请求账户的派生查询入口
// 账户标识由 JWT 中间件写入上下文
func (h *ChatHandler) queries(c *gin.Context) (*query.Queries, string, bool) {
	accountID := c.GetString("account_id")
	store, err := h.stores.Open(accountID)
	if err != nil {
		HandleError(c, err)
		return nil, "", false
	}
	return query.New(store, h.notifier), accountID, true
}

// GetActiveChats 获取活跃会话列表
func (h *ChatHandler) GetActiveChats(c *gin.Context) {
	q, _, ok := h.queries(c)
	if !ok {
		return
	}
	HandleSuccess(c, q.ActiveChats())
}

// GetRequests 获取待处理请求列表
func (h *ChatHandler) GetRequests(c *gin.Context) {
	q, _, ok := h.queries(c)
	if !ok {
		return
	}
	HandleSuccess(c, q.Requests())
}

// GetRequestsCount 获取待处理请求数量
func (h *ChatHandler) GetRequestsCount(c *gin.Context) {
	q, _, ok := h.queries(c)
	if !ok {
		return
	}
	HandleSuccess(c, gin.H{"count": q.RequestsCount()})
}

// GetUnreadGlobal 获取全局未读标志
func (h *ChatHandler) GetUnreadGlobal(c *gin.Context) {
	q, _, ok := h.queries(c)
	if !ok {
		return
	}
	HandleSuccess(c, gin.H{"unread": q.UnreadGlobal()})
}

// GetRoomMessages 获取某条消息流的全部消息
// query 参数：room（必填）、type（必填）
func (h *ChatHandler) GetRoomMessages(c *gin.Context) {
	room := c.Query("room")
	subscriptionType := c.Query("type")
	if room == "" || subscriptionType == "" {
		HandleError(c, errorx.New(errorx.CodeInvalidParam, "room 和 type 不能为空"))
		return
	}
	q, _, ok := h.queries(c)
	if !ok {
		return
	}
	HandleSuccess(c, q.RoomMessages(room, subscriptionType))
}

// MarkRead 标记会话已读
func (h *ChatHandler) MarkRead(c *gin.Context) {
	var req request.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	accountID := c.GetString("account_id")
	if err := h.syncSvc.MarkRead(accountID, req.RemoteUserId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// SetBlocked 拉黑/取消拉黑
func (h *ChatHandler) SetBlocked(c *gin.Context) {
	var req request.SetBlockedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	accountID := c.GetString("account_id")
	if err := h.syncSvc.SetBlocked(accountID, req.RemoteUserId, *req.Blocked); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// AcceptRequest 接受对端发来的会话请求
func (h *ChatHandler) AcceptRequest(c *gin.Context) {
	var req request.AcceptRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	accountID := c.GetString("account_id")
	if err := h.syncSvc.AcceptFriendRequest(accountID, req.RemoteUserId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// SendMessage 发送消息
// 先写本地镜像（触发派生查询重算），再经信令通道转发远端
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req request.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	accountID := c.GetString("account_id")
	msg, err := h.syncSvc.RecordOutgoing(accountID,
		req.Room, req.Type, req.MessageKind, req.Message, req.RemoteUserId)
	if err != nil {
		HandleError(c, err)
		return
	}
	h.signals.Send(accountID, msg)
	HandleSuccess(c, gin.H{"client_generated_uuid": msg.ClientGeneratedUuid})
}
