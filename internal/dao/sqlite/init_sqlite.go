// Package sqlite 提供本地镜像库的打开与句柄管理
// 每个账户一个独立的 SQLite 数据库文件，互不可见；
// Manager 缓存已打开的句柄，同一账户重复打开得到同一份数据
package sqlite

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"kama_chat_mirror/internal/dao/sqlite/repository"
	"kama_chat_mirror/internal/model"
	"kama_chat_mirror/internal/notify"
	"kama_chat_mirror/pkg/errorx"

	"go.uber.org/zap"
	sqlitedriver "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store 单个账户的本地镜像库句柄
type Store struct {
	AccountID string
	DB        *gorm.DB
	Repos     *repository.Repositories
}

// Manager 账户库管理器
// 进程内共享一个实例，按账户缓存已打开的 Store
type Manager struct {
	mu       sync.Mutex
	dataPath string
	notifier *notify.Notifier
	stores   map[string]*Store
}

// NewManager 创建账户库管理器
// dataPath: 数据库文件目录；notifier: 写入后发布表变更
func NewManager(dataPath string, notifier *notify.Notifier) *Manager {
	return &Manager{
		dataPath: dataPath,
		notifier: notifier,
		stores:   make(map[string]*Store),
	}
}

// Open 打开（或复用）指定账户的本地库
// 首次打开时建库建表；任何失败都包装为 CodeStoreUnavailable
func (m *Manager) Open(accountID string) (*Store, error) {
	if !validAccountID(accountID) {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "非法账户标识 %q", accountID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[accountID]; ok {
		return store, nil
	}

	if err := os.MkdirAll(m.dataPath, 0o755); err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeStoreUnavailable, "创建数据目录 %s 失败", m.dataPath)
	}

	dbPath := filepath.Join(m.dataPath, accountID+".db")
	db, err := gorm.Open(sqlitedriver.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeStoreUnavailable, "打开账户库 %s 失败", accountID)
	}

	// AutoMigrate 自动迁移表结构，表不存在则创建
	err = db.AutoMigrate(
		&model.User{},       // 用户资料镜像表
		&model.InboxEntry{}, // 收件箱表
		&model.Message{},    // 消息表
	)
	if err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeStoreUnavailable, "迁移账户库 %s 失败", accountID)
	}

	store := &Store{
		AccountID: accountID,
		DB:        db,
		Repos:     repository.NewRepositories(db, accountID, m.notifier),
	}
	m.stores[accountID] = store
	zap.L().Info("账户库已打开", zap.String("account", accountID), zap.String("path", dbPath))
	return store, nil
}

// Get 返回已打开的账户库，未打开时返回 nil
func (m *Manager) Get(accountID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stores[accountID]
}

// validAccountID 校验账户标识可以安全用作文件名
func validAccountID(accountID string) bool {
	if accountID == "" {
		return false
	}
	return !strings.ContainsAny(accountID, `/\.`)
}
