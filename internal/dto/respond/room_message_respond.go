package respond

// RoomMessageRespond 消息与发送者资料左连接后的展示结构
// 发送者资料缺失时 Username/Image/Color 回退为空字符串
type RoomMessageRespond struct {
	ClientGeneratedUuid string `json:"client_generated_uuid"`
	Uuid                string `json:"uuid"` // 发送者 uuid
	Room                string `json:"room"`
	Type                string `json:"type"`
	MessageKind         string `json:"message_kind"`
	Message             string `json:"message"`
	CreatedAt           int64  `json:"created_at"` // 远端时间戳（毫秒）
	Username            string `json:"username"`
	Image               string `json:"image"`
	Color               string `json:"color"`
}
