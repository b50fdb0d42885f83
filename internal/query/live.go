// Package query 实现本地镜像库上的派生查询
// 一次性查询同步读库返回快照；Watch 形式订阅依赖表的变更，
// 每次收到信号全量重算并推送新快照（数据量小，不做增量维护）
package query

import (
	"kama_chat_mirror/internal/notify"
)

// Live 一条活跃的派生查询
// C 持续收到快照，首个快照在订阅建立后立即送达；Stop 后通道关闭
type Live[T any] struct {
	C <-chan T

	sub *notify.Subscription
}

// Stop 终止派生查询
// 取消依赖表订阅并停止后续重算，底层存储不受影响
func (l *Live[T]) Stop() {
	l.sub.Close()
}

// watch 建立一条派生查询
// eval 在依赖表每次写入后被重新调用；求值错误已在 eval 内部处理，
// 这里只负责调度与快照投递
func watch[T any](notifier *notify.Notifier, accountID string, tables []string, eval func() T) *Live[T] {
	sub := notifier.Subscribe(accountID, tables...)
	out := make(chan T, 1)

	// push 投递快照：订阅者尚未消费上一个快照时，用新快照替换它
	push := func(v T) {
		for {
			select {
			case out <- v:
				return
			default:
				select {
				case <-out:
				default:
				}
			}
		}
	}

	go func() {
		defer close(out)
		push(eval())
		for range sub.C {
			push(eval())
		}
	}()

	return &Live[T]{C: out, sub: sub}
}
