// Package notify 实现本地镜像库的变更通知
// 订阅登记表按 账户 -> 表名 -> 订阅者集合 组织，写入方按表名发布，
// 派生查询层按自身依赖的表集合订阅，收到信号后重算
package notify

import (
	"sync"
)

// Subscription 一次表变更订阅
// C 为合并信号通道：缓冲大小 1，已有未消费信号时新信号直接丢弃，
// 订阅者每收到一次信号做一次全量重算即可覆盖期间的全部写入
type Subscription struct {
	C chan struct{}

	notifier *Notifier
	account  string
	tables   []string

	closeOnce sync.Once
}

// Close 取消订阅并移除登记，幂等
// 关闭后不再收到新信号，通道同时关闭以便 range 退出
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.notifier.remove(s)
		close(s.C)
	})
}

// Notifier 变更通知器，进程内唯一实例即可服务所有账户
type Notifier struct {
	mu sync.RWMutex
	// subs: account -> table -> 订阅者集合
	subs map[string]map[string]map[*Subscription]struct{}
}

// NewNotifier 创建变更通知器
func NewNotifier() *Notifier {
	return &Notifier{
		subs: make(map[string]map[string]map[*Subscription]struct{}),
	}
}

// Subscribe 订阅指定账户下若干表的变更
// 返回的订阅在任一表发生写入时收到信号
func (n *Notifier) Subscribe(accountID string, tables ...string) *Subscription {
	sub := &Subscription{
		C:        make(chan struct{}, 1),
		notifier: n,
		account:  accountID,
		tables:   tables,
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	byTable, ok := n.subs[accountID]
	if !ok {
		byTable = make(map[string]map[*Subscription]struct{})
		n.subs[accountID] = byTable
	}
	for _, table := range tables {
		set, ok := byTable[table]
		if !ok {
			set = make(map[*Subscription]struct{})
			byTable[table] = set
		}
		set[sub] = struct{}{}
	}
	return sub
}

// Publish 发布一次表变更
// 对写入方永不阻塞：订阅者已有待处理信号时直接跳过
func (n *Notifier) Publish(accountID, table string) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	byTable, ok := n.subs[accountID]
	if !ok {
		return
	}
	for sub := range byTable[table] {
		select {
		case sub.C <- struct{}{}:
		default:
		}
	}
}

// remove 从登记表中移除订阅
func (n *Notifier) remove(sub *Subscription) {
	n.mu.Lock()
	defer n.mu.Unlock()
	byTable, ok := n.subs[sub.account]
	if !ok {
		return
	}
	for _, table := range sub.tables {
		if set, ok := byTable[table]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(byTable, table)
			}
		}
	}
	if len(byTable) == 0 {
		delete(n.subs, sub.account)
	}
}

// SubscriberCount 返回指定账户和表的当前订阅者数量，测试与诊断用
func (n *Notifier) SubscriberCount(accountID, table string) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs[accountID][table])
}
