// Package sync 实现远端同步事件到本地镜像库的落地
// 收件箱条目只创建和置位，从不删除；消息按客户端 id 幂等写入
package sync

import (
	"errors"
	"time"

	"kama_chat_mirror/internal/dao/sqlite"
	"kama_chat_mirror/internal/model"
	"kama_chat_mirror/pkg/errorx"
	"kama_chat_mirror/pkg/util/snowflake"

	"go.uber.org/zap"
)

// Service 同步业务逻辑
// 入站路径由信令网关调用，出站路径由本地 API Handler 调用
type Service struct {
	stores *sqlite.Manager
}

// NewService 创建同步服务
func NewService(stores *sqlite.Manager) *Service {
	return &Service{stores: stores}
}

// IncomingMessage 入站消息参数
type IncomingMessage struct {
	ClientGeneratedUuid string
	SenderUuid          string
	Room                string
	Type                string
	MessageKind         string
	Message             string
	CreatedAt           int64
}

// ensureInboxEntry 确保收件箱条目存在，不存在则以默认标志位创建
func (s *Service) ensureInboxEntry(store *sqlite.Store, remoteUserId string) error {
	_, err := store.Repos.Inbox.FindByRemoteUserId(remoteUserId)
	if err == nil {
		return nil
	}
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) && codeErr.Code == errorx.CodeNotFound {
		return store.Repos.Inbox.Upsert(&model.InboxEntry{RemoteUserId: remoteUserId})
	}
	return err
}

// ApplyFriendRequest 落地对端发起的会话请求
// 条目不存在则创建，置 remote_interacted=1
func (s *Service) ApplyFriendRequest(accountID, fromUserId string) error {
	store, err := s.stores.Open(accountID)
	if err != nil {
		return err
	}
	if err := s.ensureInboxEntry(store, fromUserId); err != nil {
		return err
	}
	return store.Repos.Inbox.Patch(fromUserId, map[string]interface{}{
		"remote_interacted": 1,
	})
}

// AcceptFriendRequest 本方接受会话请求
// 置 interacted=1 并建立好友关系
func (s *Service) AcceptFriendRequest(accountID, remoteUserId string) error {
	store, err := s.stores.Open(accountID)
	if err != nil {
		return err
	}
	if err := s.ensureInboxEntry(store, remoteUserId); err != nil {
		return err
	}
	return store.Repos.Inbox.Patch(remoteUserId, map[string]interface{}{
		"interacted":  1,
		"are_friends": 1,
	})
}

// ApplyFriendshipUpdate 落地远端推送的关系变更
func (s *Service) ApplyFriendshipUpdate(accountID, remoteUserId string, areFriends, blocked int8) error {
	store, err := s.stores.Open(accountID)
	if err != nil {
		return err
	}
	if err := s.ensureInboxEntry(store, remoteUserId); err != nil {
		return err
	}
	return store.Repos.Inbox.Patch(remoteUserId, map[string]interface{}{
		"are_friends": areFriends,
		"blocked":     blocked,
	})
}

// SetBlocked 本方拉黑/取消拉黑
// 拉黑只置位，条目保留
func (s *Service) SetBlocked(accountID, remoteUserId string, blocked int8) error {
	store, err := s.stores.Open(accountID)
	if err != nil {
		return err
	}
	if err := s.ensureInboxEntry(store, remoteUserId); err != nil {
		return err
	}
	return store.Repos.Inbox.Patch(remoteUserId, map[string]interface{}{
		"blocked": blocked,
	})
}

// MarkRead 标记与某对端用户的会话已读
func (s *Service) MarkRead(accountID, remoteUserId string) error {
	store, err := s.stores.Open(accountID)
	if err != nil {
		return err
	}
	return store.Repos.Inbox.Patch(remoteUserId, map[string]interface{}{
		"unread": 0,
	})
}

// ReceiveMessage 落地一条入站消息
// 消息幂等写入；发送者的收件箱条目置 remote_interacted=1、unread=1 并刷新摘要
func (s *Service) ReceiveMessage(accountID string, in IncomingMessage) error {
	store, err := s.stores.Open(accountID)
	if err != nil {
		return err
	}

	msg := &model.Message{
		ClientGeneratedUuid: in.ClientGeneratedUuid,
		Uuid:                in.SenderUuid,
		Room:                in.Room,
		Type:                in.Type,
		MessageKind:         in.MessageKind,
		Message:             in.Message,
		CreatedAtMs:         in.CreatedAt,
	}
	if err := store.Repos.Message.Upsert(msg); err != nil {
		return err
	}

	// 本账户自己从其他设备发出的消息不动收件箱的未读位
	if in.SenderUuid == accountID {
		return nil
	}
	if err := s.ensureInboxEntry(store, in.SenderUuid); err != nil {
		return err
	}
	return store.Repos.Inbox.Patch(in.SenderUuid, map[string]interface{}{
		"remote_interacted":      1,
		"unread":                 1,
		"last_message":           in.Message,
		"last_message_timestamp": in.CreatedAt,
	})
}

// RecordOutgoing 记录一条本方发出的消息
// 客户端 id 由雪花算法生成；私聊时同时把对端条目置 interacted=1
// 返回写入的消息，调用方负责经信令通道转发远端
func (s *Service) RecordOutgoing(accountID, room, subscriptionType, messageKind, text, remoteUserId string) (*model.Message, error) {
	store, err := s.stores.Open(accountID)
	if err != nil {
		return nil, err
	}

	if messageKind == "" {
		messageKind = "text"
	}
	msg := &model.Message{
		ClientGeneratedUuid: snowflake.GenerateIDString(),
		Uuid:                accountID,
		Room:                room,
		Type:                subscriptionType,
		MessageKind:         messageKind,
		Message:             text,
		CreatedAtMs:         time.Now().UnixMilli(),
	}
	if err := store.Repos.Message.Upsert(msg); err != nil {
		return nil, err
	}

	if remoteUserId != "" {
		if err := s.ensureInboxEntry(store, remoteUserId); err != nil {
			zap.L().Warn("更新收件箱条目失败", zap.String("account", accountID), zap.Error(err))
			return msg, nil
		}
		if err := store.Repos.Inbox.Patch(remoteUserId, map[string]interface{}{
			"interacted":             1,
			"unread":                 0,
			"last_message":           text,
			"last_message_timestamp": msg.CreatedAtMs,
		}); err != nil {
			zap.L().Warn("更新收件箱条目失败", zap.String("account", accountID), zap.Error(err))
		}
	}
	return msg, nil
}
