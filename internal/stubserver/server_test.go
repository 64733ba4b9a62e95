package stubserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	"aqua_chat_client/internal/dto/respond"
	"aqua_chat_client/internal/model"
	"aqua_chat_client/pkg/errorx"
	"aqua_chat_client/pkg/util/jwt"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	jwt.Init("test-secret", 60)
	os.Exit(m.Run())
}

func seededServer(t *testing.T) (*Server, *Store) {
	t.Helper()
	store := NewStore()
	seed := []struct {
		user     model.User
		password string
	}{
		{model.User{ID: "u-admin", Username: "admin", Email: "quang.tran@aquawatch.local", FirstName: "Quang", LastName: "Tran", Role: model.RoleAdmin}, "admin123"},
		{model.User{ID: "u-an", Username: "an.nguyen", Email: "an.nguyen@aquawatch.local", FirstName: "An", LastName: "Nguyen", Role: model.RoleOfficer}, "an123"},
		{model.User{ID: "u-binh", Username: "binh.le", Email: "binh.le@aquawatch.local", FirstName: "Binh", LastName: "Le", Role: model.RoleOfficer}, "binh123"},
	}
	for _, s := range seed {
		if _, err := store.AddUser(s.user, s.password); err != nil {
			t.Fatalf("seed user %s: %v", s.user.Username, err)
		}
	}
	srv, err := New(store)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv, store
}

type env struct {
	Code int             `json:"code"`
	Msg  any             `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// serve runs one request through the engine and decodes the envelope.
func serve(t *testing.T, s *Server, method, target, token string, body any) (int, env) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	var e env
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
			t.Fatalf("decode envelope from %s %s: %v (%s)", method, target, err, w.Body.String())
		}
	}
	return w.Code, e
}

func login(t *testing.T, s *Server, username, password string) (model.User, string) {
	t.Helper()
	status, e := serve(t, s, http.MethodPost, "/login", "",
		map[string]string{"username": username, "password": password})
	if status != http.StatusOK || e.Code != errorx.CodeSuccess {
		t.Fatalf("login %s: status %d code %d msg %v", username, status, e.Code, e.Msg)
	}
	var rsp respond.LoginRespond
	if err := json.Unmarshal(e.Data, &rsp); err != nil {
		t.Fatalf("decode login data: %v", err)
	}
	return rsp.User, rsp.AccessToken
}

func TestLogin(t *testing.T) {
	s, _ := seededServer(t)

	user, token := login(t, s, "admin", "admin123")
	if user.ID != "u-admin" || user.Role != model.RoleAdmin {
		t.Fatalf("login user = %+v", user)
	}
	if token == "" {
		t.Fatalf("empty access token")
	}
	claims, err := jwt.ParseToken(token)
	if err != nil || claims.UserID != "u-admin" {
		t.Fatalf("token claims = %+v, err %v", claims, err)
	}

	_, e := serve(t, s, http.MethodPost, "/login", "",
		map[string]string{"username": "admin", "password": "wrong"})
	if e.Code != errorx.CodeInvalidPassword {
		t.Fatalf("wrong password code = %d, want %d", e.Code, errorx.CodeInvalidPassword)
	}

	_, e = serve(t, s, http.MethodPost, "/login", "",
		map[string]string{"username": "nobody", "password": "x"})
	if e.Code != errorx.CodeUserNotExist {
		t.Fatalf("unknown user code = %d, want %d", e.Code, errorx.CodeUserNotExist)
	}

	_, e = serve(t, s, http.MethodPost, "/login", "", map[string]string{"username": "admin"})
	if e.Code != errorx.CodeInvalidParam {
		t.Fatalf("missing password code = %d, want %d", e.Code, errorx.CodeInvalidParam)
	}
}

func TestAuthRequired(t *testing.T) {
	s, _ := seededServer(t)

	status, _ := serve(t, s, http.MethodGet, "/users", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("no token: status %d, want 401", status)
	}
	status, _ = serve(t, s, http.MethodGet, "/users", "not-a-jwt", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("garbage token: status %d, want 401", status)
	}
}

func TestUserEndpoints(t *testing.T) {
	s, _ := seededServer(t)
	_, token := login(t, s, "admin", "admin123")

	_, e := serve(t, s, http.MethodGet, "/users?limit=2&offset=1", token, nil)
	if e.Code != errorx.CodeSuccess {
		t.Fatalf("list users code = %d msg %v", e.Code, e.Msg)
	}
	var page respond.UserListRespond
	if err := json.Unmarshal(e.Data, &page); err != nil {
		t.Fatalf("decode user page: %v", err)
	}
	if page.PaginationInfo.Total != 3 || len(page.Users) != 2 {
		t.Fatalf("page = %+v", page)
	}
	if page.Users[0].ID != "u-an" {
		t.Fatalf("offset ignored, first user %s", page.Users[0].ID)
	}

	_, e = serve(t, s, http.MethodGet, "/users/search?email=binh.le%40aquawatch", token, nil)
	if err := json.Unmarshal(e.Data, &page); err != nil {
		t.Fatalf("decode search page: %v", err)
	}
	if len(page.Users) != 1 || page.Users[0].ID != "u-binh" {
		t.Fatalf("search results = %+v", page.Users)
	}

	_, e = serve(t, s, http.MethodGet, "/users/u-an", token, nil)
	var u model.User
	if err := json.Unmarshal(e.Data, &u); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if u.Username != "an.nguyen" {
		t.Fatalf("user = %+v", u)
	}

	_, e = serve(t, s, http.MethodGet, "/users/u-missing", token, nil)
	if e.Code != errorx.CodeNotFound {
		t.Fatalf("missing user code = %d, want %d", e.Code, errorx.CodeNotFound)
	}
}

func TestMessageFlow(t *testing.T) {
	s, _ := seededServer(t)
	_, anToken := login(t, s, "an.nguyen", "an123")
	_, binhToken := login(t, s, "binh.le", "binh123")

	// an -> binh
	_, e := serve(t, s, http.MethodPost, "/messages", anToken,
		map[string]string{"message": "hello binh", "receiverId": "u-binh"})
	if e.Code != errorx.CodeSuccess {
		t.Fatalf("send code = %d msg %v", e.Code, e.Msg)
	}
	var sent model.Message
	if err := json.Unmarshal(e.Data, &sent); err != nil {
		t.Fatalf("decode sent message: %v", err)
	}
	if sent.ID == "" || sent.SenderID != "u-an" || sent.ReceiverID != "u-binh" || sent.Read {
		t.Fatalf("sent = %+v", sent)
	}

	// binh sees it unseen; an does not.
	var unseen []model.Message
	_, e = serve(t, s, http.MethodGet, "/messages/unseen", binhToken, nil)
	if err := json.Unmarshal(e.Data, &unseen); err != nil {
		t.Fatalf("decode unseen: %v", err)
	}
	if len(unseen) != 1 || unseen[0].ID != sent.ID {
		t.Fatalf("binh unseen = %+v", unseen)
	}
	_, e = serve(t, s, http.MethodGet, "/messages/unseen", anToken, nil)
	unseen = nil
	if len(e.Data) > 0 {
		if err := json.Unmarshal(e.Data, &unseen); err != nil {
			t.Fatalf("decode unseen: %v", err)
		}
	}
	if len(unseen) != 0 {
		t.Fatalf("an unseen = %+v", unseen)
	}

	// Sender cannot mark the message read; receiver can, idempotently.
	serve(t, s, http.MethodPost, "/messages/markRead", anToken,
		map[string]any{"messageIds": []string{sent.ID}})
	_, e = serve(t, s, http.MethodGet, "/messages/unseen", binhToken, nil)
	if err := json.Unmarshal(e.Data, &unseen); err != nil {
		t.Fatalf("decode unseen: %v", err)
	}
	if len(unseen) != 1 {
		t.Fatalf("sender-side markRead took effect: %+v", unseen)
	}

	for i := 0; i < 2; i++ {
		_, e = serve(t, s, http.MethodPost, "/messages/markRead", binhToken,
			map[string]any{"messageIds": []string{sent.ID}})
		if e.Code != errorx.CodeSuccess {
			t.Fatalf("markRead round %d code = %d", i, e.Code)
		}
	}
	_, e = serve(t, s, http.MethodGet, "/messages/unseen", binhToken, nil)
	unseen = nil
	if len(e.Data) > 0 {
		if err := json.Unmarshal(e.Data, &unseen); err != nil {
			t.Fatalf("decode unseen: %v", err)
		}
	}
	if len(unseen) != 0 {
		t.Fatalf("unseen after markRead = %+v", unseen)
	}

	// binh replies; the pair conversation is newest first and covers
	// both directions.
	serve(t, s, http.MethodPost, "/messages", binhToken,
		map[string]string{"message": "hello an", "receiverId": "u-an"})
	_, e = serve(t, s, http.MethodGet, "/messages?senderId=u-an&receiverId=u-binh&limit=40&sortBy=created_at&sortDesc=true", anToken, nil)
	var conv []model.Message
	if err := json.Unmarshal(e.Data, &conv); err != nil {
		t.Fatalf("decode conversation: %v", err)
	}
	if len(conv) != 2 {
		t.Fatalf("conversation = %+v", conv)
	}
	if conv[0].Body != "hello an" || conv[1].Body != "hello binh" {
		t.Fatalf("conversation not newest first: %q then %q", conv[0].Body, conv[1].Body)
	}

	// A third party is rejected from the pair.
	_, adminToken := login(t, s, "admin", "admin123")
	_, e = serve(t, s, http.MethodGet, "/messages?senderId=u-an&receiverId=u-binh", adminToken, nil)
	if e.Code != errorx.CodeUnauthorized {
		t.Fatalf("outsider list code = %d, want %d", e.Code, errorx.CodeUnauthorized)
	}

	// Unknown receiver is rejected.
	_, e = serve(t, s, http.MethodPost, "/messages", anToken,
		map[string]string{"message": "hi", "receiverId": "u-ghost"})
	if e.Code != errorx.CodeNotFound {
		t.Fatalf("unknown receiver code = %d, want %d", e.Code, errorx.CodeNotFound)
	}
}

func TestStore_ConversationLimit(t *testing.T) {
	store := NewStore()
	for i := 0; i < 5; i++ {
		store.CreateMessage("u-a", "u-b", "body")
	}
	if got := len(store.Conversation("u-a", "u-b", 3)); got != 3 {
		t.Fatalf("limited conversation = %d messages, want 3", got)
	}
	if got := len(store.Conversation("u-b", "u-a", 0)); got != 5 {
		t.Fatalf("unlimited conversation = %d messages, want 5", got)
	}
}

func TestStore_DuplicateUsername(t *testing.T) {
	store := NewStore()
	if _, err := store.AddUser(model.User{Username: "dup"}, "pw"); err != nil {
		t.Fatalf("first AddUser: %v", err)
	}
	_, err := store.AddUser(model.User{Username: "dup"}, "pw")
	if errorx.GetCode(err) != errorx.CodeUserExist {
		t.Fatalf("duplicate username error = %v", err)
	}
}
