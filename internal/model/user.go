// Package model 定义本地镜像库的实体模型
// 本文件定义远端用户资料镜像，由资料刷新服务写入
package model

import (
	"gorm.io/gorm"
)

// User 远端用户资料镜像
// 对应本地 users 表，按账户命名空间各存一份
// 只通过 upsert 写入，本地不做其他修改；展示层对缺失记录回退为空字符串
type User struct {
	gorm.Model

	// Uuid 远端用户唯一标识，每个账户库内唯一
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(36);not null;comment:远端用户uuid"`

	// Username 用户名
	Username string `gorm:"column:username;type:varchar(50);comment:用户名"`

	// Image 头像 URL
	Image string `gorm:"column:image;type:varchar(255);comment:头像url"`

	// Color 前端展示用的用户配色
	Color string `gorm:"column:color;type:char(20);comment:展示颜色"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
