package repository

import (
	"kama_chat_mirror/internal/model"
	"kama_chat_mirror/pkg/constants"

	"gorm.io/gorm/clause"
)

type inboxRepository struct {
	base *Repositories
}

// FindByRemoteUserId 按对端用户 uuid 查找条目
func (r *inboxRepository) FindByRemoteUserId(remoteUserId string) (*model.InboxEntry, error) {
	var entry model.InboxEntry
	if err := r.base.db.First(&entry, "remote_user_id = ?", remoteUserId).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询收件箱条目 remote_user_id=%s", remoteUserId)
	}
	return &entry, nil
}

// FindActive 查找活跃会话
func (r *inboxRepository) FindActive() ([]model.InboxEntry, error) {
	var entries []model.InboxEntry
	if err := r.base.db.Where("blocked = ? AND interacted = ?", 0, 1).
		Find(&entries).Error; err != nil {
		return nil, wrapDBError(err, "查询活跃会话")
	}
	return entries, nil
}

// FindRequests 查找待处理请求
func (r *inboxRepository) FindRequests() ([]model.InboxEntry, error) {
	var entries []model.InboxEntry
	if err := r.base.db.Where("are_friends = ? AND interacted = ? AND remote_interacted = ?", 0, 0, 1).
		Find(&entries).Error; err != nil {
		return nil, wrapDBError(err, "查询待处理请求")
	}
	return entries, nil
}

// CountRequests 统计待处理请求数量
func (r *inboxRepository) CountRequests() (int64, error) {
	var count int64
	if err := r.base.db.Model(&model.InboxEntry{}).
		Where("are_friends = ? AND interacted = ? AND remote_interacted = ?", 0, 0, 1).
		Count(&count).Error; err != nil {
		return 0, wrapDBError(err, "统计待处理请求")
	}
	return count, nil
}

// CountUnreadActive 统计未读的活跃会话数量
func (r *inboxRepository) CountUnreadActive() (int64, error) {
	var count int64
	if err := r.base.db.Model(&model.InboxEntry{}).
		Where("unread = ? AND blocked = ? AND interacted = ?", 1, 0, 1).
		Count(&count).Error; err != nil {
		return 0, wrapDBError(err, "统计未读会话")
	}
	return count, nil
}

// Upsert 按对端用户 uuid 插入或更新条目
func (r *inboxRepository) Upsert(entry *model.InboxEntry) error {
	err := r.base.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "remote_user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"blocked", "interacted", "remote_interacted", "are_friends",
			"unread", "last_message", "last_message_timestamp", "updated_at",
		}),
	}).Create(entry).Error
	if err != nil {
		return wrapDBErrorf(err, "写入收件箱条目 remote_user_id=%s", entry.RemoteUserId)
	}
	r.base.publish(constants.TABLE_INBOX)
	return nil
}

// Patch 按对端用户 uuid 更新部分字段
// 条目不存在时不报错，影响行数为 0，调用方按需先 Upsert
func (r *inboxRepository) Patch(remoteUserId string, updates map[string]interface{}) error {
	err := r.base.db.Model(&model.InboxEntry{}).
		Where("remote_user_id = ?", remoteUserId).
		Updates(updates).Error
	if err != nil {
		return wrapDBErrorf(err, "更新收件箱条目 remote_user_id=%s", remoteUserId)
	}
	r.base.publish(constants.TABLE_INBOX)
	return nil
}
