// Package model 定义本地镜像库的实体模型
// 本文件定义收件箱条目，表示本账户与某个远端用户之间的会话关系状态
package model

import (
	"gorm.io/gorm"
)

// InboxEntry 收件箱条目
// 对应本地 inbox 表，每个远端用户在一个账户库内至多一条
// 生命周期：首次互动或收到请求时创建；之后只改标志位，从不硬删除（拉黑也只置位）
type InboxEntry struct {
	gorm.Model

	// RemoteUserId 对端用户 uuid，账户库内唯一
	RemoteUserId string `gorm:"column:remote_user_id;uniqueIndex;type:char(36);not null;comment:对端用户uuid"`

	// Blocked 是否已拉黑，0.否，1.是
	Blocked int8 `gorm:"column:blocked;not null;default:0;comment:是否拉黑"`

	// Interacted 本方是否已发送消息或接受请求，0.否，1.是
	Interacted int8 `gorm:"column:interacted;not null;default:0;comment:本方是否已互动"`

	// RemoteInteracted 对端是否已发起互动，0.否，1.是
	RemoteInteracted int8 `gorm:"column:remote_interacted;not null;default:0;comment:对端是否已互动"`

	// AreFriends 双方是否已成为好友，0.否，1.是
	AreFriends int8 `gorm:"column:are_friends;not null;default:0;comment:是否好友"`

	// Unread 是否有未读消息，0.否，1.是
	Unread int8 `gorm:"column:unread;not null;default:0;comment:是否未读"`

	// LastMessage 最近一条消息的内容摘要，会话列表展示用
	LastMessage string `gorm:"column:last_message;type:TEXT;comment:最近消息"`

	// LastMessageTimestamp 最近一条消息的时间戳（毫秒）
	LastMessageTimestamp int64 `gorm:"column:last_message_timestamp;comment:最近消息时间戳"`
}

// TableName 指定表名
func (InboxEntry) TableName() string {
	return "inbox"
}
