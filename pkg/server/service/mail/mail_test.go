package mail

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KyleBrandon/synapse/pkg/directory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMail struct {
	users    []directory.User
	usersErr error
	messages map[string][]directory.Message
	failures map[string]error

	mu       sync.Mutex
	inFlight int32
	maxSeen  int32
}

func (f *fakeMail) ListUsers(ctx context.Context) ([]directory.User, error) {
	return f.users, f.usersErr
}

func (f *fakeMail) ListMessages(ctx context.Context, userID string) ([]directory.Message, error) {
	current := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)

	f.mu.Lock()
	if current > f.maxSeen {
		f.maxSeen = current
	}
	f.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	if err, ok := f.failures[userID]; ok {
		return nil, err
	}
	return f.messages[userID], nil
}

type messagesBody struct {
	Messages []directory.Message `json:"messages"`
	Error    string              `json:"error"`
}

func serve(t *testing.T, reader MailReader, concurrency int, path string) (*httptest.ResponseRecorder, messagesBody) {
	t.Helper()

	mux := http.NewServeMux()
	NewHandler(mux, reader, concurrency, time.Second)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var body messagesBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	return w, body
}

func TestAllMessagesDropsFailingMailboxes(t *testing.T) {
	reader := &fakeMail{
		users: []directory.User{{ID: "u1"}, {ID: "u2"}, {ID: "u3"}},
		messages: map[string][]directory.Message{
			"u1": {{ID: "m1", UserID: "u1"}},
			"u3": {{ID: "m3", UserID: "u3"}, {ID: "m4", UserID: "u3"}},
		},
		failures: map[string]error{"u2": errors.New("mailbox not enabled")},
	}

	w, body := serve(t, reader, 2, "/mail/messages/all")
	assert.Equal(t, http.StatusOK, w.Code)

	ids := make([]string, 0, len(body.Messages))
	for _, m := range body.Messages {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"m1", "m3", "m4"}, ids)
}

func TestAllMessagesBoundsConcurrency(t *testing.T) {
	reader := &fakeMail{messages: map[string][]directory.Message{}}
	for i := 0; i < 10; i++ {
		reader.users = append(reader.users, directory.User{ID: string(rune('a' + i))})
	}

	w, _ := serve(t, reader, 3, "/mail/messages/all")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.LessOrEqual(t, reader.maxSeen, int32(3))
}

func TestAllMessagesUserListingFails(t *testing.T) {
	reader := &fakeMail{usersErr: directory.NewStatusError(http.StatusTooManyRequests, "failed to list users", nil)}

	w, body := serve(t, reader, 2, "/mail/messages/all")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, body.Error)
}

func TestUserMessages(t *testing.T) {
	reader := &fakeMail{
		messages: map[string][]directory.Message{"u1": {{ID: "m1", Subject: "Hello"}}},
		failures: map[string]error{"gone": directory.NewError(directory.ErrNotFound, "user not found", nil)},
	}

	w, body := serve(t, reader, 1, "/mail/messages/u1")
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, body.Messages, 1)
	assert.Equal(t, "Hello", body.Messages[0].Subject)

	w, _ = serve(t, reader, 1, "/mail/messages/gone")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = serve(t, reader, 1, "/mail/messages/empty")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body.Messages)
}
