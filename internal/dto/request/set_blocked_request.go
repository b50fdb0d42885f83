package request

// SetBlockedRequest 拉黑/取消拉黑请求
type SetBlockedRequest struct {
	RemoteUserId string `json:"remoteUserId" binding:"required"` // 对端用户 uuid
	Blocked      *int8  `json:"blocked" binding:"required"`      // 1.拉黑 0.取消，指针以区分缺省
}
