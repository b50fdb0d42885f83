package query

import (
	"sync"
	"testing"
	"time"

	"kama_chat_mirror/internal/dao/sqlite"
	"kama_chat_mirror/internal/dto/respond"
	"kama_chat_mirror/internal/model"
	"kama_chat_mirror/internal/notify"
)

// recordingRefresher 记录回填请求的假实现
type recordingRefresher struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recordingRefresher) RefreshUsers(accountID string, userIds []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, userIds)
}

func (r *recordingRefresher) sawUuid(uuid string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, call := range r.calls {
		for _, id := range call {
			if id == uuid {
				return true
			}
		}
	}
	return false
}

// newTestQueries 创建临时账户库上的查询入口
func newTestQueries(t *testing.T, accountID string) (*Queries, *sqlite.Store, *recordingRefresher) {
	t.Helper()
	notifier := notify.NewNotifier()
	m := sqlite.NewManager(t.TempDir(), notifier)
	store, err := m.Open(accountID)
	if err != nil {
		t.Fatal(err)
	}
	refresher := &recordingRefresher{}
	SetRefresher(refresher)
	t.Cleanup(func() { SetRefresher(nil) })
	return New(store, notifier), store, refresher
}

// waitSnapshot 带超时等待一次快照
func waitSnapshot[T any](t *testing.T, live *Live[T]) T {
	t.Helper()
	select {
	case v, ok := <-live.C:
		if !ok {
			t.Fatal("live query channel closed unexpectedly")
		}
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		panic("unreachable")
	}
}

func TestActiveChatsFallbackThenJoinAfterRefresh(t *testing.T) {
	q, store, refresher := newTestQueries(t, "acct-1")

	if err := store.Repos.Inbox.Upsert(&model.InboxEntry{
		RemoteUserId: "u1", Interacted: 1, Unread: 1,
	}); err != nil {
		t.Fatal(err)
	}

	// 资料未镜像：回退空串，并触发 u1 的回填
	chats := q.ActiveChats()
	if len(chats) != 1 {
		t.Fatalf("expected 1 active chat, got %d", len(chats))
	}
	if chats[0].RemoteUsername != "" || chats[0].RemoteUserImage != "" {
		t.Fatalf("expected empty fallback values, got %+v", chats[0])
	}
	if !refresher.sawUuid("u1") {
		t.Fatal("expected a refresh request for u1")
	}

	// 回填落地后重查得到完整资料
	if err := store.Repos.User.Upsert(&model.User{Uuid: "u1", Username: "alice", Image: "img.png"}); err != nil {
		t.Fatal(err)
	}
	chats = q.ActiveChats()
	if chats[0].RemoteUsername != "alice" || chats[0].RemoteUserImage != "img.png" {
		t.Fatalf("expected joined profile data, got %+v", chats[0])
	}
}

func TestActiveChatsPredicate(t *testing.T) {
	q, store, _ := newTestQueries(t, "acct-1")

	entries := []model.InboxEntry{
		{RemoteUserId: "in", Interacted: 1},
		{RemoteUserId: "blocked", Blocked: 1, Interacted: 1},
		{RemoteUserId: "noInteraction", RemoteInteracted: 1},
	}
	for i := range entries {
		if err := store.Repos.Inbox.Upsert(&entries[i]); err != nil {
			t.Fatal(err)
		}
	}

	chats := q.ActiveChats()
	if len(chats) != 1 || chats[0].RemoteUserId != "in" {
		t.Fatalf("expected only blocked=0 interacted=1 entries, got %+v", chats)
	}
}

func TestRequestsPredicateAndCount(t *testing.T) {
	q, store, _ := newTestQueries(t, "acct-1")

	entries := []model.InboxEntry{
		{RemoteUserId: "pending", RemoteInteracted: 1},
		{RemoteUserId: "accepted", RemoteInteracted: 1, Interacted: 1},
		{RemoteUserId: "friend", RemoteInteracted: 1, AreFriends: 1},
		{RemoteUserId: "silent"},
	}
	for i := range entries {
		if err := store.Repos.Inbox.Upsert(&entries[i]); err != nil {
			t.Fatal(err)
		}
	}

	requests := q.Requests()
	if len(requests) != 1 || requests[0].RemoteUserId != "pending" {
		t.Fatalf("unexpected requests: %+v", requests)
	}
	if count := q.RequestsCount(); count != int64(len(requests)) {
		t.Fatalf("requests count %d does not match result set size %d", count, len(requests))
	}
}

func TestUnreadGlobal(t *testing.T) {
	q, store, _ := newTestQueries(t, "acct-1")

	// 空收件箱为 false
	if q.UnreadGlobal() {
		t.Fatal("expected false on empty inbox")
	}

	// 拉黑条目的未读不算
	if err := store.Repos.Inbox.Upsert(&model.InboxEntry{RemoteUserId: "blocked", Blocked: 1, Interacted: 1, Unread: 1}); err != nil {
		t.Fatal(err)
	}
	if q.UnreadGlobal() {
		t.Fatal("expected false when the only unread entry is blocked")
	}

	if err := store.Repos.Inbox.Upsert(&model.InboxEntry{RemoteUserId: "active", Interacted: 1, Unread: 1}); err != nil {
		t.Fatal(err)
	}
	if !q.UnreadGlobal() {
		t.Fatal("expected true with an unread active entry")
	}
}

func TestRoomMessagesOrderingAndSenderJoin(t *testing.T) {
	q, store, refresher := newTestQueries(t, "acct-1")

	messages := []model.Message{
		{ClientGeneratedUuid: "m2", Uuid: "u1", Room: "r1", Type: "dm", Message: "second", CreatedAtMs: 2},
		{ClientGeneratedUuid: "m1", Uuid: "u1", Room: "r1", Type: "dm", Message: "first", CreatedAtMs: 1},
	}
	for i := range messages {
		if err := store.Repos.Message.Upsert(&messages[i]); err != nil {
			t.Fatal(err)
		}
	}

	got := q.RoomMessages("r1", "dm")
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	if got[0].CreatedAt != 1 || got[1].CreatedAt != 2 {
		t.Fatalf("expected ascending order regardless of insertion order, got %+v", got)
	}
	if got[0].Username != "" {
		t.Fatal("expected empty fallback for unknown sender")
	}
	if !refresher.sawUuid("u1") {
		t.Fatal("expected a refresh request for the sender")
	}

	if err := store.Repos.User.Upsert(&model.User{Uuid: "u1", Username: "alice", Color: "#abc"}); err != nil {
		t.Fatal(err)
	}
	got = q.RoomMessages("r1", "dm")
	if got[0].Username != "alice" || got[0].Color != "#abc" {
		t.Fatalf("expected sender profile joined, got %+v", got[0])
	}
}

func TestDuplicateUpsertLeavesResultsUnchanged(t *testing.T) {
	q, store, _ := newTestQueries(t, "acct-1")

	if err := store.Repos.Inbox.Upsert(&model.InboxEntry{RemoteUserId: "u1", Interacted: 1}); err != nil {
		t.Fatal(err)
	}
	user := model.User{Uuid: "u1", Username: "alice", Image: "img.png"}
	if err := store.Repos.User.Upsert(&user); err != nil {
		t.Fatal(err)
	}

	before := q.ActiveChats()

	dup := model.User{Uuid: "u1", Username: "alice", Image: "img.png"}
	if err := store.Repos.User.Upsert(&dup); err != nil {
		t.Fatal(err)
	}

	after := q.ActiveChats()
	if len(before) != len(after) {
		t.Fatalf("expected no duplicate joins, got %d then %d rows", len(before), len(after))
	}
	if before[0] != after[0] {
		t.Fatalf("expected identical snapshot, got %+v then %+v", before[0], after[0])
	}
}

func TestWatchActiveChatsDeliversUpdatedSnapshotWithoutResubscribe(t *testing.T) {
	q, store, _ := newTestQueries(t, "acct-1")

	if err := store.Repos.Inbox.Upsert(&model.InboxEntry{RemoteUserId: "u1", Interacted: 1, Unread: 1}); err != nil {
		t.Fatal(err)
	}

	live := q.WatchActiveChats()
	defer live.Stop()

	first := waitSnapshot(t, live)
	if len(first) != 1 || first[0].RemoteUsername != "" {
		t.Fatalf("expected initial snapshot with fallback values, got %+v", first)
	}

	// 模拟回填落地，同一订阅应收到更新后的快照
	if err := store.Repos.User.Upsert(&model.User{Uuid: "u1", Username: "alice", Image: "img.png"}); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for {
		var snapshot []respond.ChatRespond
		select {
		case snapshot = <-live.C:
		case <-deadline:
			t.Fatal("timed out waiting for updated snapshot")
		}
		if len(snapshot) == 1 && snapshot[0].RemoteUsername == "alice" &&
			snapshot[0].RemoteUserImage == "img.png" {
			return
		}
	}
}

func TestWatchStopEndsDelivery(t *testing.T) {
	q, store, _ := newTestQueries(t, "acct-1")

	live := q.WatchRequestsCount()
	waitSnapshot(t, live)
	live.Stop()

	// 通道最终关闭；之后的写入不再送达
	deadline := time.After(2 * time.Second)
drain:
	for {
		select {
		case _, ok := <-live.C:
			if !ok {
				break drain
			}
		case <-deadline:
			t.Fatal("expected channel to close after Stop")
		}
	}
	if err := store.Repos.Inbox.Upsert(&model.InboxEntry{RemoteUserId: "u1", RemoteInteracted: 1}); err != nil {
		t.Fatal(err)
	}
}

func TestIndependentLiveQueriesRecomputeSeparately(t *testing.T) {
	q, store, _ := newTestQueries(t, "acct-1")

	unread := q.WatchUnreadGlobal()
	defer unread.Stop()
	count := q.WatchRequestsCount()
	defer count.Stop()

	waitSnapshot(t, unread)
	waitSnapshot(t, count)

	if err := store.Repos.Inbox.Upsert(&model.InboxEntry{RemoteUserId: "u1", RemoteInteracted: 1}); err != nil {
		t.Fatal(err)
	}

	if got := waitSnapshot(t, count); got != 1 {
		t.Fatalf("expected requests count 1, got %d", got)
	}
	if got := waitSnapshot(t, unread); got {
		t.Fatal("expected unread flag to stay false")
	}
}
