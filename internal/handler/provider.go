// Package handler 提供本地 API 的 Gin Handler 层
package handler

import (
	"kama_chat_mirror/internal/dao/sqlite"
	"kama_chat_mirror/internal/gateway/remote"
	"kama_chat_mirror/internal/notify"
	syncservice "kama_chat_mirror/internal/service/sync"
)

// Handlers 聚合所有 Handler 实例
// 作为依赖注入的入口，路由层通过此结构注册处理函数
type Handlers struct {
	Session *SessionHandler
	Chat    *ChatHandler
	Ws      *WsHandler
}

// NewHandlers 创建所有 Handler 实例
func NewHandlers(
	stores *sqlite.Manager,
	notifier *notify.Notifier,
	syncSvc *syncservice.Service,
	signals *remote.SignalManager,
) *Handlers {
	return &Handlers{
		Session: &SessionHandler{stores: stores, signals: signals},
		Chat:    &ChatHandler{stores: stores, notifier: notifier, syncSvc: syncSvc, signals: signals},
		Ws:      &WsHandler{stores: stores, notifier: notifier},
	}
}
