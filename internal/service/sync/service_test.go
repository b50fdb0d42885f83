package sync

import (
	"testing"
	"time"

	"kama_chat_mirror/internal/dao/sqlite"
	"kama_chat_mirror/internal/notify"
	"kama_chat_mirror/pkg/errorx"
)

func newTestSync(t *testing.T) (*Service, *sqlite.Store) {
	t.Helper()
	m := sqlite.NewManager(t.TempDir(), notify.NewNotifier())
	store, err := m.Open("acct-1")
	if err != nil {
		t.Fatal(err)
	}
	return NewService(m), store
}

func TestApplyFriendRequestCreatesPendingEntry(t *testing.T) {
	svc, store := newTestSync(t)

	if err := svc.ApplyFriendRequest("acct-1", "u1"); err != nil {
		t.Fatal(err)
	}

	entry, err := store.Repos.Inbox.FindByRemoteUserId("u1")
	if err != nil {
		t.Fatal(err)
	}
	// 请求态：对端有动作、本方还没有
	if entry.RemoteInteracted != 1 || entry.Interacted != 0 || entry.AreFriends != 0 {
		t.Fatalf("unexpected flags %+v", entry)
	}

	requests, err := store.Repos.Inbox.FindRequests()
	if err != nil {
		t.Fatal(err)
	}
	if len(requests) != 1 || requests[0].RemoteUserId != "u1" {
		t.Fatalf("expected entry in requests, got %+v", requests)
	}
}

func TestApplyFriendRequestIsIdempotent(t *testing.T) {
	svc, store := newTestSync(t)

	if err := svc.ApplyFriendRequest("acct-1", "u1"); err != nil {
		t.Fatal(err)
	}
	if err := svc.ApplyFriendRequest("acct-1", "u1"); err != nil {
		t.Fatal(err)
	}

	requests, err := store.Repos.Inbox.FindRequests()
	if err != nil {
		t.Fatal(err)
	}
	if len(requests) != 1 {
		t.Fatalf("expected a single entry, got %d", len(requests))
	}
}

func TestAcceptFriendRequestMovesEntryToActive(t *testing.T) {
	svc, store := newTestSync(t)

	if err := svc.ApplyFriendRequest("acct-1", "u1"); err != nil {
		t.Fatal(err)
	}
	if err := svc.AcceptFriendRequest("acct-1", "u1"); err != nil {
		t.Fatal(err)
	}

	requests, err := store.Repos.Inbox.FindRequests()
	if err != nil {
		t.Fatal(err)
	}
	if len(requests) != 0 {
		t.Fatalf("expected no pending requests, got %+v", requests)
	}

	active, err := store.Repos.Inbox.FindActive()
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 || active[0].AreFriends != 1 {
		t.Fatalf("expected accepted entry in active chats, got %+v", active)
	}
}

func TestApplyFriendshipUpdate(t *testing.T) {
	svc, store := newTestSync(t)

	if err := svc.ApplyFriendshipUpdate("acct-1", "u1", 1, 0); err != nil {
		t.Fatal(err)
	}
	entry, err := store.Repos.Inbox.FindByRemoteUserId("u1")
	if err != nil {
		t.Fatal(err)
	}
	if entry.AreFriends != 1 || entry.Blocked != 0 {
		t.Fatalf("unexpected flags %+v", entry)
	}

	if err := svc.ApplyFriendshipUpdate("acct-1", "u1", 0, 1); err != nil {
		t.Fatal(err)
	}
	entry, err = store.Repos.Inbox.FindByRemoteUserId("u1")
	if err != nil {
		t.Fatal(err)
	}
	if entry.AreFriends != 0 || entry.Blocked != 1 {
		t.Fatalf("unexpected flags after update %+v", entry)
	}
}

func TestSetBlockedKeepsEntry(t *testing.T) {
	svc, store := newTestSync(t)

	if err := svc.ApplyFriendRequest("acct-1", "u1"); err != nil {
		t.Fatal(err)
	}
	if err := svc.AcceptFriendRequest("acct-1", "u1"); err != nil {
		t.Fatal(err)
	}
	if err := svc.SetBlocked("acct-1", "u1", 1); err != nil {
		t.Fatal(err)
	}

	entry, err := store.Repos.Inbox.FindByRemoteUserId("u1")
	if err != nil {
		t.Fatal(err)
	}
	if entry.Blocked != 1 {
		t.Fatalf("expected blocked=1, got %+v", entry)
	}

	// 拉黑后从活跃会话消失，但条目仍在
	active, err := store.Repos.Inbox.FindActive()
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active chats, got %+v", active)
	}

	if err := svc.SetBlocked("acct-1", "u1", 0); err != nil {
		t.Fatal(err)
	}
	active, err = store.Repos.Inbox.FindActive()
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 {
		t.Fatalf("expected entry back in active chats, got %+v", active)
	}
}

func TestReceiveMessageStoresAndFlagsInbox(t *testing.T) {
	svc, store := newTestSync(t)

	in := IncomingMessage{
		ClientGeneratedUuid: "m1",
		SenderUuid:          "u1",
		Room:                "r1",
		Type:                "dm",
		MessageKind:         "text",
		Message:             "hello",
		CreatedAt:           1234,
	}
	if err := svc.ReceiveMessage("acct-1", in); err != nil {
		t.Fatal(err)
	}

	msgs, err := store.Repos.Message.FindByRoomAndType("r1", "dm")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0].Message != "hello" {
		t.Fatalf("unexpected messages %+v", msgs)
	}

	entry, err := store.Repos.Inbox.FindByRemoteUserId("u1")
	if err != nil {
		t.Fatal(err)
	}
	if entry.RemoteInteracted != 1 || entry.Unread != 1 {
		t.Fatalf("unexpected flags %+v", entry)
	}
	if entry.LastMessage != "hello" || entry.LastMessageTimestamp != 1234 {
		t.Fatalf("unexpected summary %+v", entry)
	}
}

func TestReceiveMessageIsIdempotent(t *testing.T) {
	svc, store := newTestSync(t)

	in := IncomingMessage{
		ClientGeneratedUuid: "m1",
		SenderUuid:          "u1",
		Room:                "r1",
		Type:                "dm",
		Message:             "hello",
		CreatedAt:           1234,
	}
	if err := svc.ReceiveMessage("acct-1", in); err != nil {
		t.Fatal(err)
	}
	if err := svc.ReceiveMessage("acct-1", in); err != nil {
		t.Fatal(err)
	}

	count, err := store.Repos.Message.CountByRoomAndType("r1", "dm")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected deduplicated message, got %d", count)
	}
}

func TestReceiveOwnDeviceMessageSkipsInbox(t *testing.T) {
	svc, store := newTestSync(t)

	in := IncomingMessage{
		ClientGeneratedUuid: "m1",
		SenderUuid:          "acct-1",
		Room:                "r1",
		Type:                "dm",
		Message:             "from my other device",
		CreatedAt:           1234,
	}
	if err := svc.ReceiveMessage("acct-1", in); err != nil {
		t.Fatal(err)
	}

	count, err := store.Repos.Message.CountByRoomAndType("r1", "dm")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected message stored, got %d", count)
	}
	if _, err := store.Repos.Inbox.FindByRemoteUserId("acct-1"); !errorx.IsNotFound(err) {
		t.Fatalf("expected no inbox entry for own account, got %v", err)
	}
}

func TestMarkReadClearsUnread(t *testing.T) {
	svc, store := newTestSync(t)

	in := IncomingMessage{
		ClientGeneratedUuid: "m1",
		SenderUuid:          "u1",
		Room:                "r1",
		Type:                "dm",
		Message:             "hello",
		CreatedAt:           1234,
	}
	if err := svc.ReceiveMessage("acct-1", in); err != nil {
		t.Fatal(err)
	}
	if err := svc.MarkRead("acct-1", "u1"); err != nil {
		t.Fatal(err)
	}

	entry, err := store.Repos.Inbox.FindByRemoteUserId("u1")
	if err != nil {
		t.Fatal(err)
	}
	if entry.Unread != 0 {
		t.Fatalf("expected unread cleared, got %+v", entry)
	}
}

func TestRecordOutgoing(t *testing.T) {
	svc, store := newTestSync(t)
	before := time.Now().UnixMilli()

	msg, err := svc.RecordOutgoing("acct-1", "r1", "dm", "", "hi there", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if msg.ClientGeneratedUuid == "" {
		t.Fatal("expected generated client id")
	}
	if msg.Uuid != "acct-1" {
		t.Fatalf("expected sender to be own account, got %q", msg.Uuid)
	}
	if msg.MessageKind != "text" {
		t.Fatalf("expected default message kind, got %q", msg.MessageKind)
	}
	if msg.CreatedAtMs < before {
		t.Fatalf("unexpected timestamp %d", msg.CreatedAtMs)
	}

	msgs, err := store.Repos.Message.FindByRoomAndType("r1", "dm")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected stored message, got %d", len(msgs))
	}

	entry, err := store.Repos.Inbox.FindByRemoteUserId("u1")
	if err != nil {
		t.Fatal(err)
	}
	if entry.Interacted != 1 || entry.Unread != 0 {
		t.Fatalf("unexpected flags %+v", entry)
	}
	if entry.LastMessage != "hi there" || entry.LastMessageTimestamp != msg.CreatedAtMs {
		t.Fatalf("unexpected summary %+v", entry)
	}
}

func TestRecordOutgoingWithoutPeerSkipsInbox(t *testing.T) {
	svc, store := newTestSync(t)

	if _, err := svc.RecordOutgoing("acct-1", "g1", "group", "text", "hello all", ""); err != nil {
		t.Fatal(err)
	}

	count, err := store.Repos.Message.CountByRoomAndType("g1", "group")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected stored message, got %d", count)
	}
}
