package handler

import (
	"net/http"
	"time"

	"kama_chat_mirror/internal/dao/sqlite"
	"kama_chat_mirror/internal/notify"
	"kama_chat_mirror/internal/query"
	"kama_chat_mirror/pkg/constants"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WsHandler 本地推送接口
// 前端通过 WebSocket 订阅若干派生查询，之后持续收到最新快照
type WsHandler struct {
	stores   *sqlite.Manager
	notifier *notify.Notifier
}

// upgrader 本地 API 只在环回地址监听，不做 Origin 校验
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// 可订阅的派生查询名
const (
	QueryActiveChats   = "activeChats"
	QueryRequests      = "requests"
	QueryRequestsCount = "requestsCount"
	QueryUnreadGlobal  = "unreadGlobal"
)

// wsSubscribeRequest 订阅帧，连接建立后客户端发送一次
type wsSubscribeRequest struct {
	Queries []string `json:"queries"` // 收件箱类查询名
	Rooms   []struct {
		Room string `json:"room"`
		Type string `json:"type"`
	} `json:"rooms"` // 额外订阅的消息流
}

// wsSnapshot 推送帧，每次派生查询重算后下发
type wsSnapshot struct {
	Query string `json:"query"`
	Room  string `json:"room,omitempty"`
	Type  string `json:"type,omitempty"`
	Data  any    `json:"data"`
}

// Subscribe 建立推送连接
func (h *WsHandler) Subscribe(c *gin.Context) {
	accountID := c.GetString("account_id")
	store, err := h.stores.Open(accountID)
	if err != nil {
		HandleError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error("本地推送连接升级失败", zap.Error(err))
		return
	}
	defer conn.Close()

	// 等待订阅帧
	conn.SetReadDeadline(time.Now().Add(constants.WS_WRITE_WAIT_SEC * time.Second))
	var req wsSubscribeRequest
	if err := conn.ReadJSON(&req); err != nil {
		zap.L().Warn("读取订阅帧失败", zap.String("account", accountID), zap.Error(err))
		return
	}
	conn.SetReadDeadline(time.Time{})

	q := query.New(store, h.notifier)
	out := make(chan wsSnapshot, constants.CHANNEL_SIZE)
	done := make(chan struct{})
	var stops []func()

	for _, name := range req.Queries {
		switch name {
		case QueryActiveChats:
			live := q.WatchActiveChats()
			stops = append(stops, live.Stop)
			go forward(live.C, out, done, wsSnapshot{Query: QueryActiveChats})
		case QueryRequests:
			live := q.WatchRequests()
			stops = append(stops, live.Stop)
			go forward(live.C, out, done, wsSnapshot{Query: QueryRequests})
		case QueryRequestsCount:
			live := q.WatchRequestsCount()
			stops = append(stops, live.Stop)
			go forward(live.C, out, done, wsSnapshot{Query: QueryRequestsCount})
		case QueryUnreadGlobal:
			live := q.WatchUnreadGlobal()
			stops = append(stops, live.Stop)
			go forward(live.C, out, done, wsSnapshot{Query: QueryUnreadGlobal})
		default:
			zap.L().Warn("忽略未知查询名", zap.String("query", name))
		}
	}
	for _, room := range req.Rooms {
		live := q.WatchRoomMessages(room.Room, room.Type)
		stops = append(stops, live.Stop)
		go forward(live.C, out, done,
			wsSnapshot{Query: "roomMessages", Room: room.Room, Type: room.Type})
	}
	// 退订即停止后续重算
	defer func() {
		for _, stop := range stops {
			stop()
		}
	}()

	// 读取循环只用于感知客户端断开
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// 写入循环
	for {
		select {
		case <-done:
			return
		case snap := <-out:
			conn.SetWriteDeadline(time.Now().Add(constants.WS_WRITE_WAIT_SEC * time.Second))
			if err := conn.WriteJSON(snap); err != nil {
				zap.L().Warn("推送快照失败", zap.String("account", accountID), zap.Error(err))
				return
			}
		}
	}
}

// forward 把一条派生查询的快照转为推送帧写入出站通道
func forward[T any](in <-chan T, out chan<- wsSnapshot, done <-chan struct{}, template wsSnapshot) {
	for v := range in {
		snap := template
		snap.Data = v
		select {
		case out <- snap:
		case <-done:
			return
		}
	}
}
