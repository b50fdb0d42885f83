// Package repository 提供 Repository 层聚合与构造
package repository

import (
	"kama_chat_mirror/internal/notify"

	"gorm.io/gorm"
)

// Repositories 聚合一个账户库的所有 Repository 实例
// 作为依赖注入的入口，查询层和同步层通过此结构访问数据
type Repositories struct {
	db        *gorm.DB
	accountID string
	notifier  *notify.Notifier

	User    UserRepository    // 用户资料 Repository
	Inbox   InboxRepository   // 收件箱 Repository
	Message MessageRepository // 消息 Repository
}

// NewRepositories 创建某个账户库的 Repository 实例集合
// db: 该账户的 GORM 实例；notifier: 写入后发布表变更
func NewRepositories(db *gorm.DB, accountID string, notifier *notify.Notifier) *Repositories {
	r := &Repositories{
		db:        db,
		accountID: accountID,
		notifier:  notifier,
	}
	r.User = &userRepository{base: r}
	r.Inbox = &inboxRepository{base: r}
	r.Message = &messageRepository{base: r}
	return r
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
// 事务内的写入不发布变更通知，由调用方在提交后自行发布
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx, r.accountID, r.notifier))
	})
}

// publish 发布一次表变更事件
// notifier 为 nil 时（部分测试场景）静默跳过
func (r *Repositories) publish(table string) {
	if r.notifier != nil {
		r.notifier.Publish(r.accountID, table)
	}
}
