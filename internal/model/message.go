// Package model 定义本地镜像库的实体模型
// 本文件定义消息镜像，按房间追加存储
package model

import (
	"gorm.io/gorm"
)

// Message 消息镜像
// 对应本地 messages 表
// room + type 标识一条消息流，流内按 created_at 升序排列
type Message struct {
	gorm.Model

	// ClientGeneratedUuid 消息的客户端生成 id，upsert 去重键
	ClientGeneratedUuid string `gorm:"column:client_generated_uuid;uniqueIndex;type:char(36);not null;comment:消息客户端id"`

	// Uuid 发送者用户 uuid
	Uuid string `gorm:"column:uuid;index;type:char(36);not null;comment:发送者uuid"`

	// Room 房间标识
	Room string `gorm:"column:room;index:idx_room_type;type:varchar(100);not null;comment:房间"`

	// Type 订阅通道类型，区分投递渠道（如 individual / collection）
	Type string `gorm:"column:type;index:idx_room_type;type:char(20);not null;comment:通道类型"`

	// MessageKind 消息体裁，如 text / gif / secure-transfer
	MessageKind string `gorm:"column:message_kind;type:char(20);comment:消息体裁"`

	// Message 消息内容
	Message string `gorm:"column:message;type:TEXT;comment:消息内容"`

	// CreatedAt 远端赋予的消息时间戳（毫秒），排序键
	// 与 gorm.Model 的 CreatedAt 无关，后者记录的是本地入库时间
	CreatedAtMs int64 `gorm:"column:created_at_ms;index;not null;comment:消息时间戳"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "messages"
}
