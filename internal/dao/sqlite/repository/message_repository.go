package repository

import (
	"kama_chat_mirror/internal/model"
	"kama_chat_mirror/pkg/constants"

	"gorm.io/gorm/clause"
)

type messageRepository struct {
	base *Repositories
}

// FindByRoomAndType 查找某条消息流的全部消息
// 无论写入顺序如何，结果严格按远端时间戳升序
func (r *messageRepository) FindByRoomAndType(room, subscriptionType string) ([]model.Message, error) {
	var messages []model.Message
	if err := r.base.db.Where("room = ? AND type = ?", room, subscriptionType).
		Order("created_at_ms ASC").
		Find(&messages).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息流 room=%s type=%s", room, subscriptionType)
	}
	return messages, nil
}

// CountByRoomAndType 统计某条消息流的消息数量
func (r *messageRepository) CountByRoomAndType(room, subscriptionType string) (int64, error) {
	var count int64
	if err := r.base.db.Model(&model.Message{}).
		Where("room = ? AND type = ?", room, subscriptionType).
		Count(&count).Error; err != nil {
		return 0, wrapDBErrorf(err, "统计消息流 room=%s type=%s", room, subscriptionType)
	}
	return count, nil
}

// Upsert 按客户端生成 id 插入或更新消息
// 重复投递同一条消息是幂等的
func (r *messageRepository) Upsert(message *model.Message) error {
	err := r.base.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "client_generated_uuid"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"uuid", "room", "type", "message_kind", "message", "created_at_ms", "updated_at",
		}),
	}).Create(message).Error
	if err != nil {
		return wrapDBErrorf(err, "写入消息 client_generated_uuid=%s", message.ClientGeneratedUuid)
	}
	r.base.publish(constants.TABLE_MESSAGES)
	return nil
}
