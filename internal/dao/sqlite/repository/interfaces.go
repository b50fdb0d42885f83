// Package repository 定义本地镜像库的数据访问层
// 所有接口在本文件定义，具体实现在各自的文件中
// 每个写入方法成功后都会向变更通知器发布对应表的变更事件
package repository

import (
	"kama_chat_mirror/internal/model"
)

// ==================== Repository 接口定义 ====================

// UserRepository 用户资料镜像数据访问接口
type UserRepository interface {
	// FindByUuid 根据 uuid 查找用户
	FindByUuid(uuid string) (*model.User, error)
	// FindByUuids 批量根据 uuid 查找用户
	FindByUuids(uuids []string) ([]model.User, error)
	// MissingUuids 返回本地尚无记录的 uuid 子集，资料刷新的判定依据
	MissingUuids(uuids []string) ([]string, error)
	// Upsert 按 uuid 插入或更新用户资料，幂等
	Upsert(user *model.User) error
	// Count 统计用户记录数
	Count() (int64, error)
}

// InboxRepository 收件箱数据访问接口
// 每个远端用户在账户库内至多一条记录
type InboxRepository interface {
	// FindByRemoteUserId 根据对端用户 uuid 查找条目
	FindByRemoteUserId(remoteUserId string) (*model.InboxEntry, error)
	// FindActive 查找活跃会话：blocked=0 且 interacted=1
	FindActive() ([]model.InboxEntry, error)
	// FindRequests 查找待处理请求：are_friends=0 且 interacted=0 且 remote_interacted=1
	FindRequests() ([]model.InboxEntry, error)
	// CountRequests 统计待处理请求数量
	CountRequests() (int64, error)
	// CountUnreadActive 统计未读的活跃会话数量：unread=1 且 blocked=0 且 interacted=1
	CountUnreadActive() (int64, error)
	// Upsert 按对端用户 uuid 插入或更新条目，幂等
	Upsert(entry *model.InboxEntry) error
	// Patch 按对端用户 uuid 更新部分字段
	Patch(remoteUserId string, updates map[string]interface{}) error
}

// MessageRepository 消息数据访问接口
// 消息按房间追加，按远端时间戳升序读取
type MessageRepository interface {
	// FindByRoomAndType 查找某条消息流的全部消息，按 created_at_ms 升序
	FindByRoomAndType(room, subscriptionType string) ([]model.Message, error)
	// CountByRoomAndType 统计某条消息流的消息数量
	CountByRoomAndType(room, subscriptionType string) (int64, error)
	// Upsert 按客户端生成 id 插入或更新消息，幂等
	Upsert(message *model.Message) error
}
