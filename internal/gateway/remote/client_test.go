package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"kama_chat_mirror/internal/config"
	"kama_chat_mirror/pkg/errorx"
)

func newTestClient(serverURL string) *Client {
	return NewClient(&config.RemoteConfig{
		APIBaseURL: serverURL,
		AuthToken:  "test-token",
		TimeoutSec: 2,
	})
}

func TestFetchUsersParsesResponse(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody fetchUsersRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"users":[
			{"uuid":"u1","username":"alice","image":"img.png","color":"#abc"},
			{"uuid":"","username":"ghost"},
			{"uuid":"u2","username":"bob"}
		]}`))
	}))
	defer srv.Close()

	users, err := newTestClient(srv.URL).FetchUsers(context.Background(), []string{"u1", "u2", "u3"})
	if err != nil {
		t.Fatal(err)
	}

	if gotPath != "/users/metadata" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if len(gotBody.Uuids) != 3 {
		t.Fatalf("unexpected request uuids %v", gotBody.Uuids)
	}

	// 空 uuid 条目被丢弃，u3 远端未返回属正常部分结果
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].Uuid != "u1" || users[0].Username != "alice" ||
		users[0].Image != "img.png" || users[0].Color != "#abc" {
		t.Fatalf("unexpected first user %+v", users[0])
	}
	if users[1].Uuid != "u2" || users[1].Username != "bob" {
		t.Fatalf("unexpected second user %+v", users[1])
	}
}

func TestFetchUsersEmptyInputSkipsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected remote call")
	}))
	defer srv.Close()

	users, err := newTestClient(srv.URL).FetchUsers(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if users != nil {
		t.Fatalf("expected nil result, got %v", users)
	}
}

func TestFetchUsersNon200Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchUsers(context.Background(), []string{"u1"})
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
	if errorx.GetCode(err) != errorx.CodeRefreshFailed {
		t.Fatalf("expected CodeRefreshFailed, got %d", errorx.GetCode(err))
	}
}

func TestFetchUsersMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchUsers(context.Background(), []string{"u1"})
	if err == nil {
		t.Fatal("expected error for malformed body")
	}
	if errorx.GetCode(err) != errorx.CodeRefreshFailed {
		t.Fatalf("expected CodeRefreshFailed, got %d", errorx.GetCode(err))
	}
}

func TestFetchUsersContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestClient(srv.URL).FetchUsers(ctx, []string{"u1"}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
