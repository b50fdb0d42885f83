package respond

// ChatRespond 收件箱条目与用户资料左连接后的展示结构
// 活跃会话和待处理请求共用此结构
// 对端资料尚未镜像到本地时，RemoteUsername/RemoteUserImage 回退为空字符串
type ChatRespond struct {
	RemoteUserId         string `json:"remoteUserId"`
	Blocked              int8   `json:"blocked"`
	Interacted           int8   `json:"interacted"`
	RemoteInteracted     int8   `json:"remoteInteracted"`
	AreFriends           int8   `json:"areFriends"`
	Unread               int8   `json:"unread"`
	LastMessage          string `json:"lastMessage"`
	LastMessageTimestamp int64  `json:"lastMessageTimestamp"`
	RemoteUsername       string `json:"remoteUsername"`
	RemoteUserImage      string `json:"remoteUserImage"`
	RemoteUserColor      string `json:"remoteUserColor"`
}
