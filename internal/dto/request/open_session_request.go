package request

// OpenSessionRequest 打开账户会话请求
// 前端解锁钱包后调用，镜像进程据此打开账户库并建立远端信令连接
type OpenSessionRequest struct {
	AccountID string `json:"accountId" binding:"required"` // 账户命名空间标识
}
