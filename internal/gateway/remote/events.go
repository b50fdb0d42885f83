package remote

import "encoding/json"

// 信令事件类型
// 远端服务通过 WebSocket 推送同步事件，本地只改标志位和追加消息
const (
	EventChatMessage      = "chat_message"      // 新消息（含离线补推）
	EventFriendRequest    = "friend_request"    // 对端发起会话请求
	EventFriendshipUpdate = "friendship_update" // 好友关系/拉黑状态变更
	EventMarkRead         = "mark_read"         // 其他设备已读回执

	// 出站事件
	EventSendMessage = "send_message"
)

// Envelope 信令事件信封
// Payload 按 Type 再行解码
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ChatMessagePayload 新消息事件负载
type ChatMessagePayload struct {
	ClientGeneratedUuid string `json:"client_generated_uuid"`
	Uuid                string `json:"uuid"` // 发送者 uuid
	Room                string `json:"room"`
	Type                string `json:"type"`
	MessageKind         string `json:"message_kind"`
	Message             string `json:"message"`
	CreatedAt           int64  `json:"created_at"`
}

// FriendRequestPayload 会话请求事件负载
type FriendRequestPayload struct {
	From string `json:"from"` // 发起方用户 uuid
}

// FriendshipUpdatePayload 关系变更事件负载
type FriendshipUpdatePayload struct {
	RemoteUserId string `json:"remoteUserId"`
	AreFriends   int8   `json:"areFriends"`
	Blocked      int8   `json:"blocked"`
}

// MarkReadPayload 已读回执事件负载
type MarkReadPayload struct {
	RemoteUserId string `json:"remoteUserId"`
}
