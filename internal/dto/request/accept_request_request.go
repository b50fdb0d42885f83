package request

// AcceptRequestRequest 接受对端发来的会话请求
type AcceptRequestRequest struct {
	RemoteUserId string `json:"remoteUserId" binding:"required"` // 对端用户 uuid
}
