package request

// SendMessageRequest 发送消息请求
type SendMessageRequest struct {
	Room         string `json:"room" binding:"required"`    // 房间标识
	Type         string `json:"type" binding:"required"`    // 订阅通道类型
	MessageKind  string `json:"messageKind"`                // 消息体裁，默认 text
	Message      string `json:"message" binding:"required"` // 消息内容
	RemoteUserId string `json:"remoteUserId"`               // 私聊时的对端用户 uuid，用于更新收件箱
}
