package repository

import (
	"kama_chat_mirror/internal/model"
	"kama_chat_mirror/pkg/constants"

	"gorm.io/gorm/clause"
)

type userRepository struct {
	base *Repositories
}

// FindByUuid 按 uuid 查找用户
func (r *userRepository) FindByUuid(uuid string) (*model.User, error) {
	var user model.User
	if err := r.base.db.First(&user, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 uuid=%s", uuid)
	}
	return &user, nil
}

// FindByUuids 按 uuid 列表查找用户
func (r *userRepository) FindByUuids(uuids []string) ([]model.User, error) {
	if len(uuids) == 0 {
		return nil, nil
	}
	var users []model.User
	if err := r.base.db.Where("uuid IN ?", uuids).Find(&users).Error; err != nil {
		return nil, wrapDBError(err, "批量查询用户")
	}
	return users, nil
}

// MissingUuids 返回本地尚无记录的 uuid 子集
// 刷新策略"本地缺失才拉取"的判定依据
func (r *userRepository) MissingUuids(uuids []string) ([]string, error) {
	if len(uuids) == 0 {
		return nil, nil
	}
	var present []string
	if err := r.base.db.Model(&model.User{}).Where("uuid IN ?", uuids).
		Pluck("uuid", &present).Error; err != nil {
		return nil, wrapDBError(err, "查询已缓存用户")
	}
	presentSet := make(map[string]struct{}, len(present))
	for _, uuid := range present {
		presentSet[uuid] = struct{}{}
	}
	var missing []string
	for _, uuid := range uuids {
		if _, ok := presentSet[uuid]; !ok {
			missing = append(missing, uuid)
		}
	}
	return missing, nil
}

// Upsert 按 uuid 插入或更新用户资料
func (r *userRepository) Upsert(user *model.User) error {
	err := r.base.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "uuid"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "image", "color", "updated_at"}),
	}).Create(user).Error
	if err != nil {
		return wrapDBErrorf(err, "写入用户 uuid=%s", user.Uuid)
	}
	r.base.publish(constants.TABLE_USERS)
	return nil
}

// Count 统计用户记录数
func (r *userRepository) Count() (int64, error) {
	var count int64
	if err := r.base.db.Model(&model.User{}).Count(&count).Error; err != nil {
		return 0, wrapDBError(err, "统计用户数量")
	}
	return count, nil
}
