// Package remote 封装与远端聊天服务的两条通道：
// 用户资料查询 HTTP API 和信令 WebSocket
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"kama_chat_mirror/internal/config"
	"kama_chat_mirror/internal/model"
	"kama_chat_mirror/pkg/constants"
	"kama_chat_mirror/pkg/errorx"
)

// Client 远端用户资料查询客户端
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// NewClient 创建用户资料查询客户端
func NewClient(cfg *config.RemoteConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if cfg.TimeoutSec <= 0 {
		timeout = constants.REMOTE_TIMEOUT_SEC * time.Second
	}
	return &Client{
		baseURL:   cfg.APIBaseURL,
		authToken: cfg.AuthToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// fetchUsersRequest 用户资料查询请求体
type fetchUsersRequest struct {
	Uuids []string `json:"uuids"`
}

// fetchUsersResponse 用户资料查询响应体
// 允许部分结果：未能解析的 uuid 不出现在 Users 中
type fetchUsersResponse struct {
	Users []struct {
		Uuid     string `json:"uuid"`
		Username string `json:"username"`
		Image    string `json:"image"`
		Color    string `json:"color"`
	} `json:"users"`
}

// FetchUsers 按 uuid 批量查询远端用户资料
// 返回远端能解析出的子集，缺失的 uuid 静默丢弃
func (c *Client) FetchUsers(ctx context.Context, uuids []string) ([]model.User, error) {
	if len(uuids) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(fetchUsersRequest{Uuids: uuids})
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeRefreshFailed, "序列化用户查询请求失败")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/users/metadata", bytes.NewReader(body))
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeRefreshFailed, "构造用户查询请求失败")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeRefreshFailed, "用户查询请求失败")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errorx.Wrap(fmt.Errorf("status %d", resp.StatusCode),
			errorx.CodeRefreshFailed, "用户查询返回异常状态")
	}

	var parsed fetchUsersResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errorx.Wrap(err, errorx.CodeRefreshFailed, "解析用户查询响应失败")
	}

	users := make([]model.User, 0, len(parsed.Users))
	for _, u := range parsed.Users {
		if u.Uuid == "" {
			continue
		}
		users = append(users, model.User{
			Uuid:     u.Uuid,
			Username: u.Username,
			Image:    u.Image,
			Color:    u.Color,
		})
	}
	return users, nil
}
