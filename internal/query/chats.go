package query

import (
	"kama_chat_mirror/internal/dao/sqlite"
	"kama_chat_mirror/internal/dto/respond"
	"kama_chat_mirror/internal/model"
	"kama_chat_mirror/internal/notify"
	"kama_chat_mirror/pkg/constants"

	"go.uber.org/zap"
)

// UserRefresher 用户资料回填接口，由 refresh.Service 实现
type UserRefresher interface {
	RefreshUsers(accountID string, userIds []string)
}

// refresher 全局回填实现，main 中注入（依赖倒置: query → refresh）
var refresher UserRefresher

// SetRefresher 注入 UserRefresher 接口实现
func SetRefresher(r UserRefresher) {
	refresher = r
}

// Queries 单个账户库上的派生查询入口
type Queries struct {
	store    *sqlite.Store
	notifier *notify.Notifier
}

// New 创建派生查询入口
func New(store *sqlite.Store, notifier *notify.Notifier) *Queries {
	return &Queries{store: store, notifier: notifier}
}

// ==================== 一次性查询 ====================
// 存储读取失败一律回退为空结果并记日志，响应式读路径不向上抛错

// ActiveChats 活跃会话：blocked=0 且 interacted=1，左连接用户资料
func (q *Queries) ActiveChats() []respond.ChatRespond {
	entries, err := q.store.Repos.Inbox.FindActive()
	if err != nil {
		zap.L().Warn("查询活跃会话失败", zap.String("account", q.store.AccountID), zap.Error(err))
		return []respond.ChatRespond{}
	}
	return q.joinInbox(entries)
}

// Requests 待处理请求：are_friends=0 且 interacted=0 且 remote_interacted=1
func (q *Queries) Requests() []respond.ChatRespond {
	entries, err := q.store.Repos.Inbox.FindRequests()
	if err != nil {
		zap.L().Warn("查询待处理请求失败", zap.String("account", q.store.AccountID), zap.Error(err))
		return []respond.ChatRespond{}
	}
	return q.joinInbox(entries)
}

// RequestsCount 待处理请求数量
func (q *Queries) RequestsCount() int64 {
	count, err := q.store.Repos.Inbox.CountRequests()
	if err != nil {
		zap.L().Warn("统计待处理请求失败", zap.String("account", q.store.AccountID), zap.Error(err))
		return 0
	}
	return count
}

// UnreadGlobal 全局未读标志：存在 unread=1 且 blocked=0 且 interacted=1 的条目即为 true
func (q *Queries) UnreadGlobal() bool {
	count, err := q.store.Repos.Inbox.CountUnreadActive()
	if err != nil {
		zap.L().Warn("统计未读会话失败", zap.String("account", q.store.AccountID), zap.Error(err))
		return false
	}
	return count > 0
}

// RoomMessages 某条消息流的全部消息，按远端时间戳升序，左连接发送者资料
func (q *Queries) RoomMessages(room, subscriptionType string) []respond.RoomMessageRespond {
	messages, err := q.store.Repos.Message.FindByRoomAndType(room, subscriptionType)
	if err != nil {
		zap.L().Warn("查询消息流失败",
			zap.String("account", q.store.AccountID),
			zap.String("room", room),
			zap.Error(err))
		return []respond.RoomMessageRespond{}
	}
	return q.joinMessages(messages)
}

// ==================== Watch 形式 ====================

// WatchActiveChats 订阅活跃会话
func (q *Queries) WatchActiveChats() *Live[[]respond.ChatRespond] {
	return watch(q.notifier, q.store.AccountID,
		[]string{constants.TABLE_INBOX, constants.TABLE_USERS},
		q.ActiveChats)
}

// WatchRequests 订阅待处理请求
func (q *Queries) WatchRequests() *Live[[]respond.ChatRespond] {
	return watch(q.notifier, q.store.AccountID,
		[]string{constants.TABLE_INBOX, constants.TABLE_USERS},
		q.Requests)
}

// WatchRequestsCount 订阅待处理请求数量
func (q *Queries) WatchRequestsCount() *Live[int64] {
	return watch(q.notifier, q.store.AccountID,
		[]string{constants.TABLE_INBOX},
		q.RequestsCount)
}

// WatchUnreadGlobal 订阅全局未读标志
func (q *Queries) WatchUnreadGlobal() *Live[bool] {
	return watch(q.notifier, q.store.AccountID,
		[]string{constants.TABLE_INBOX},
		q.UnreadGlobal)
}

// WatchRoomMessages 订阅某条消息流
func (q *Queries) WatchRoomMessages(room, subscriptionType string) *Live[[]respond.RoomMessageRespond] {
	return watch(q.notifier, q.store.AccountID,
		[]string{constants.TABLE_MESSAGES, constants.TABLE_USERS},
		func() []respond.RoomMessageRespond {
			return q.RoomMessages(room, subscriptionType)
		})
}

// ==================== 连接与回填 ====================

// joinInbox 收件箱条目左连接用户资料，并触发缺失资料的回填
func (q *Queries) joinInbox(entries []model.InboxEntry) []respond.ChatRespond {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.RemoteUserId)
	}
	users := q.lookupUsers(ids)

	out := make([]respond.ChatRespond, 0, len(entries))
	for _, e := range entries {
		item := respond.ChatRespond{
			RemoteUserId:         e.RemoteUserId,
			Blocked:              e.Blocked,
			Interacted:           e.Interacted,
			RemoteInteracted:     e.RemoteInteracted,
			AreFriends:           e.AreFriends,
			Unread:               e.Unread,
			LastMessage:          e.LastMessage,
			LastMessageTimestamp: e.LastMessageTimestamp,
		}
		if u, ok := users[e.RemoteUserId]; ok {
			item.RemoteUsername = u.Username
			item.RemoteUserImage = u.Image
			item.RemoteUserColor = u.Color
		}
		out = append(out, item)
	}
	return out
}

// joinMessages 消息左连接发送者资料，并触发缺失资料的回填
func (q *Queries) joinMessages(messages []model.Message) []respond.RoomMessageRespond {
	ids := make([]string, 0, len(messages))
	for _, m := range messages {
		ids = append(ids, m.Uuid)
	}
	users := q.lookupUsers(ids)

	out := make([]respond.RoomMessageRespond, 0, len(messages))
	for _, m := range messages {
		item := respond.RoomMessageRespond{
			ClientGeneratedUuid: m.ClientGeneratedUuid,
			Uuid:                m.Uuid,
			Room:                m.Room,
			Type:                m.Type,
			MessageKind:         m.MessageKind,
			Message:             m.Message,
			CreatedAt:           m.CreatedAtMs,
		}
		if u, ok := users[m.Uuid]; ok {
			item.Username = u.Username
			item.Image = u.Image
			item.Color = u.Color
		}
		out = append(out, item)
	}
	return out
}

// lookupUsers 读取本地用户资料并触发缺失 uuid 的异步回填
// 这是在没有服务端资料推送通道的前提下保持展示数据最终一致的机制
func (q *Queries) lookupUsers(ids []string) map[string]model.User {
	users, err := q.store.Repos.User.FindByUuids(ids)
	if err != nil {
		zap.L().Warn("查询用户资料失败", zap.String("account", q.store.AccountID), zap.Error(err))
		users = nil
	}
	byUuid := make(map[string]model.User, len(users))
	for _, u := range users {
		byUuid[u.Uuid] = u
	}
	if refresher != nil {
		refresher.RefreshUsers(q.store.AccountID, ids)
	}
	return byUuid
}
