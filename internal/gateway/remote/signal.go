package remote

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"kama_chat_mirror/internal/config"
	"kama_chat_mirror/internal/model"
	syncservice "kama_chat_mirror/internal/service/sync"
	"kama_chat_mirror/pkg/constants"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// EventSink 信令事件的落地接口，由 sync.Service 实现
// 接口化便于测试时用假实现替换
type EventSink interface {
	ReceiveMessage(accountID string, in syncservice.IncomingMessage) error
	ApplyFriendRequest(accountID, fromUserId string) error
	ApplyFriendshipUpdate(accountID, remoteUserId string, areFriends, blocked int8) error
	MarkRead(accountID, remoteUserId string) error
}

// SignalClient 单个账户的远端信令连接
// 断线自动重连，指数退避封顶；收到的事件交给 EventSink 落地
type SignalClient struct {
	accountID string
	deviceID  string
	wsURL     string
	authToken string
	sink      EventSink

	mu   sync.Mutex
	conn *websocket.Conn

	done      chan struct{}
	closeOnce sync.Once
}

// NewSignalClient 创建信令连接
func NewSignalClient(cfg *config.RemoteConfig, accountID, deviceID string, sink EventSink) *SignalClient {
	return &SignalClient{
		accountID: accountID,
		deviceID:  deviceID,
		wsURL:     cfg.WsURL,
		authToken: cfg.AuthToken,
		sink:      sink,
		done:      make(chan struct{}),
	}
}

// Start 启动连接与读取循环
// 在独立 goroutine 中运行，Close 之前一直维持连接
func (c *SignalClient) Start() {
	go c.run()
}

func (c *SignalClient) run() {
	backoff := constants.RECONNECT_MIN_SEC * time.Second
	for {
		select {
		case <-c.done:
			return
		default:
		}

		header := http.Header{}
		if c.authToken != "" {
			header.Set("Authorization", "Bearer "+c.authToken)
		}
		header.Set("X-Account-Id", c.accountID)
		header.Set("X-Device-Id", c.deviceID)

		conn, _, err := websocket.DefaultDialer.Dial(c.wsURL, header)
		if err != nil {
			zap.L().Warn("信令连接失败，稍后重试",
				zap.String("account", c.accountID),
				zap.Duration("backoff", backoff),
				zap.Error(err))
			select {
			case <-c.done:
				return
			case <-time.After(backoff):
			}
			if backoff *= 2; backoff > constants.RECONNECT_MAX_SEC*time.Second {
				backoff = constants.RECONNECT_MAX_SEC * time.Second
			}
			continue
		}

		zap.L().Info("信令连接已建立", zap.String("account", c.accountID))
		backoff = constants.RECONNECT_MIN_SEC * time.Second

		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()

		c.readLoop(conn)

		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		conn.Close()
	}
}

// readLoop 读取并分发事件，连接断开时返回
func (c *SignalClient) readLoop(conn *websocket.Conn) {
	for {
		select {
		case <-c.done:
			return
		default:
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			zap.L().Warn("信令连接断开", zap.String("account", c.accountID), zap.Error(err))
			return
		}
		c.dispatch(data)
	}
}

// dispatch 解码事件信封并调用对应的落地方法
// 单个事件处理失败只记日志，不中断连接
func (c *SignalClient) dispatch(data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		zap.L().Warn("非法信令事件", zap.String("account", c.accountID), zap.Error(err))
		return
	}

	var err error
	switch env.Type {
	case EventChatMessage:
		var p ChatMessagePayload
		if err = json.Unmarshal(env.Payload, &p); err == nil {
			err = c.sink.ReceiveMessage(c.accountID, syncservice.IncomingMessage{
				ClientGeneratedUuid: p.ClientGeneratedUuid,
				SenderUuid:          p.Uuid,
				Room:                p.Room,
				Type:                p.Type,
				MessageKind:         p.MessageKind,
				Message:             p.Message,
				CreatedAt:           p.CreatedAt,
			})
		}
	case EventFriendRequest:
		var p FriendRequestPayload
		if err = json.Unmarshal(env.Payload, &p); err == nil {
			err = c.sink.ApplyFriendRequest(c.accountID, p.From)
		}
	case EventFriendshipUpdate:
		var p FriendshipUpdatePayload
		if err = json.Unmarshal(env.Payload, &p); err == nil {
			err = c.sink.ApplyFriendshipUpdate(c.accountID, p.RemoteUserId, p.AreFriends, p.Blocked)
		}
	case EventMarkRead:
		var p MarkReadPayload
		if err = json.Unmarshal(env.Payload, &p); err == nil {
			err = c.sink.MarkRead(c.accountID, p.RemoteUserId)
		}
	default:
		zap.L().Debug("忽略未知信令事件", zap.String("type", env.Type))
		return
	}

	if err != nil {
		zap.L().Warn("信令事件落地失败",
			zap.String("account", c.accountID),
			zap.String("type", env.Type),
			zap.Error(err))
	}
}

// SendMessage 将本方发出的消息经信令通道转发远端
// 未连接时返回错误，本地写入不受影响（远端靠重连后的补推对齐）
func (c *SignalClient) SendMessage(msg *model.Message) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return websocket.ErrCloseSent
	}

	payload, err := json.Marshal(ChatMessagePayload{
		ClientGeneratedUuid: msg.ClientGeneratedUuid,
		Uuid:                msg.Uuid,
		Room:                msg.Room,
		Type:                msg.Type,
		MessageKind:         msg.MessageKind,
		Message:             msg.Message,
		CreatedAt:           msg.CreatedAtMs,
	})
	if err != nil {
		return err
	}
	env, err := json.Marshal(Envelope{Type: EventSendMessage, Payload: payload})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return websocket.ErrCloseSent
	}
	c.conn.SetWriteDeadline(time.Now().Add(constants.WS_WRITE_WAIT_SEC * time.Second))
	return c.conn.WriteMessage(websocket.TextMessage, env)
}

// Close 关闭信令连接并停止重连，幂等
func (c *SignalClient) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		if c.conn != nil {
			c.conn.Close()
		}
		c.mu.Unlock()
	})
}
