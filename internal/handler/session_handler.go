package handler

import (
	"kama_chat_mirror/internal/dao/sqlite"
	"kama_chat_mirror/internal/dto/request"
	"kama_chat_mirror/internal/dto/respond"
	"kama_chat_mirror/internal/gateway/remote"
	"kama_chat_mirror/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionHandler 账户会话相关接口
type SessionHandler struct {
	stores  *sqlite.Manager
	signals *remote.SignalManager
}

// OpenSession 打开账户会话
// 打开（或复用）账户库，建立远端信令连接，签发本地 Access Token
func (h *SessionHandler) OpenSession(c *gin.Context) {
	var req request.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}

	if _, err := h.stores.Open(req.AccountID); err != nil {
		HandleError(c, err)
		return
	}
	h.signals.EnsureStarted(req.AccountID)

	token, err := jwt.GenerateAccessToken(req.AccountID)
	if err != nil {
		zap.L().Error("签发 Access Token 失败", zap.Error(err))
		HandleError(c, err)
		return
	}

	HandleSuccess(c, respond.OpenSessionRespond{
		AccountID:   req.AccountID,
		AccessToken: token,
	})
}
