package request

// MarkReadRequest 标记会话已读请求
type MarkReadRequest struct {
	RemoteUserId string `json:"remoteUserId" binding:"required"` // 对端用户 uuid
}
