package respond

// OpenSessionRespond 打开账户会话响应
type OpenSessionRespond struct {
	AccountID   string `json:"accountId"`
	AccessToken string `json:"accessToken"` // 后续本地 API 调用的 Bearer Token
}
