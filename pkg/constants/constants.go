package constants

// 本地镜像库的表名，订阅通知按表名维度分发
const (
	TABLE_USERS    = "users"
	TABLE_INBOX    = "inbox"
	TABLE_MESSAGES = "messages"
)

const (
	CHANNEL_SIZE          = 100 // 通道大小
	REFRESH_BATCH_MAX     = 50  // 单次用户资料拉取的最大 uuid 数
	REMOTE_TIMEOUT_SEC    = 10  // 远端 HTTP 请求默认超时（秒）
	RECONNECT_MIN_SEC     = 1   // 信令连接重连最小间隔（秒）
	RECONNECT_MAX_SEC     = 30  // 信令连接重连最大间隔（秒）
	WS_WRITE_WAIT_SEC     = 10  // 本地推送连接写超时（秒）
	ACCESS_TOKEN_EXPIRY_M = 720 // 本地会话 Token 有效期（分钟）
)
