package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetscribe/internal/assistant"
	"meetscribe/internal/auth"
	"meetscribe/internal/config"
	"meetscribe/internal/model"
	"meetscribe/internal/store"
	"meetscribe/internal/transcript"
	"meetscribe/internal/video"
)

const testSecret = "test-secret"

type fakeCompleter struct {
	reply string
	calls int
}

func (f *fakeCompleter) Complete(context.Context, []openai.ChatCompletionMessage, float32) (string, error) {
	f.calls++
	return f.reply, nil
}

type testEnv struct {
	router    *gin.Engine
	store     store.Store
	completer *fakeCompleter
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithVideo(t, video.NewClient("", "", "", nil))
}

func newTestEnvWithVideo(t *testing.T, videoClient *video.Client) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	completer := &fakeCompleter{reply: "model reply"}
	svc := assistant.NewService(st, transcript.NewFetcher(nil), completer, nil)
	srv := NewServer(st, svc, videoClient, &config.Config{
		AuthSecret:    testSecret,
		PublicBaseURL: "https://meet.example.com",
	})

	r := gin.New()
	srv.RegisterRoutes(r)
	return &testEnv{router: r, store: st, completer: completer}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func userToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.SignToken(userID, testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func createRecordingBody(uniqueID string) gin.H {
	return gin.H{
		"uniqueId":          uniqueID,
		"sessionId":         "sess-1",
		"recordingFilename": "weekly.mp4",
		"recordingUrl":      "https://cdn.example.com/weekly.mp4",
		"transcriptUrl":     "",
	}
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestCreateRecordingIdempotent(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/recordings/create", createRecordingBody("rec-1"), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Recording created successfully", decode(t, w)["message"])

	// Same uniqueId again: same success shape, existing record untouched.
	again := createRecordingBody("rec-1")
	again["recordingFilename"] = "other.mp4"
	w = env.do(t, http.MethodPost, "/api/recordings/create", again, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Recording already exists", body["message"])
	rec := body["recording"].(map[string]interface{})
	assert.Equal(t, "weekly.mp4", rec["recordingFilename"], "first writer wins")
}

func TestCreateRecordingMissingFields(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/recordings/create", gin.H{"uniqueId": "rec-1"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "Missing required fields")
}

func TestCreateRecordingDefaultsTranscriptFilename(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/recordings/create", createRecordingBody("rec-1"), "")
	require.Equal(t, http.StatusOK, w.Code)

	rec, err := env.store.GetRecording(context.Background(), "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "transcript_weekly.mp4", rec.TranscriptFilename)
}

func TestCheckRecording(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/recordings/rec-1/check", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["exists"])
	assert.Equal(t, "Recording not found", body["message"])

	env.do(t, http.MethodPost, "/api/recordings/create", createRecordingBody("rec-1"), "")

	w = env.do(t, http.MethodGet, "/api/recordings/rec-1/check", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, true, body["exists"])
	meta := body["metadata"].(map[string]interface{})
	assert.Equal(t, "rec-1", meta["uniqueId"])
	assert.Equal(t, false, meta["hasTranscript"])
}

func TestChatRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/chat", gin.H{"message": "hi", "uniqueId": "rec-1"}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Not authenticated", decode(t, w)["error"])
	assert.Zero(t, env.completer.calls)
}

func TestChatMissingRecording(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/chat",
		gin.H{"message": "hi", "uniqueId": "rec-missing"}, userToken(t, "user-a"))
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Recording not found", decode(t, w)["error"])
	assert.Zero(t, env.completer.calls)
}

func TestChatMissingFields(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/chat", gin.H{"uniqueId": "rec-1"}, userToken(t, "user-a"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/chat", gin.H{"message": "  "}, userToken(t, "user-a"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatReturnsReplyAndPersists(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/recordings/create", createRecordingBody("rec-1"), "")

	w := env.do(t, http.MethodPost, "/api/chat",
		gin.H{"message": "what was decided?", "uniqueId": "rec-1"}, userToken(t, "user-a"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "model reply", decode(t, w)["reply"])

	chat, err := env.store.GetChat(context.Background(), "rec-1", "user-a")
	require.NoError(t, err)
	assert.Len(t, chat.Messages, 2)
}

func TestChatHistory(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/recordings/create", createRecordingBody("rec-1"), "")
	token := userToken(t, "user-a")

	w := env.do(t, http.MethodGet, "/api/chat/rec-1", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "rec-1", body["recordingId"])
	assert.Equal(t, "user-a", body["userId"])
	assert.Empty(t, body["messages"], "absent conversation is an empty list")

	env.do(t, http.MethodPost, "/api/chat", gin.H{"message": "hi", "uniqueId": "rec-1"}, token)

	w = env.do(t, http.MethodGet, "/api/chat/rec-1", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Len(t, body["messages"], 2)
	meta := body["recordingMetadata"].(map[string]interface{})
	assert.Equal(t, "weekly.mp4", meta["recordingFilename"])

	// Another user sees their own empty history, not user-a's.
	w = env.do(t, http.MethodGet, "/api/chat/rec-1", nil, userToken(t, "user-b"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["messages"])
}

func TestSummarizeIdempotentOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/api/recordings/create", createRecordingBody("rec-1"), "")

	req := gin.H{"transcript": "alice: ship friday", "uniqueId": "rec-1", "sessionId": "sess-1"}
	w := env.do(t, http.MethodPost, "/api/summarize", req, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "model reply", decode(t, w)["summary"])
	assert.Equal(t, 1, env.completer.calls)

	w = env.do(t, http.MethodPost, "/api/summarize", req, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "model reply", decode(t, w)["summary"])
	assert.Equal(t, 1, env.completer.calls, "repeat request must not re-invoke the model")
}

func TestSummarizeValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/summarize", gin.H{"uniqueId": "rec-1"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/summarize",
		gin.H{"transcript": "text", "uniqueId": "rec-missing"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSummary(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/summary/rec-1", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Summary not found", decode(t, w)["error"])

	_, err := env.store.CreateSummary(context.Background(), &model.Summary{
		RecordingID: "rec-1",
		Content:     "### Meeting Summary:\n- shipped",
	})
	require.NoError(t, err)

	w = env.do(t, http.MethodGet, "/api/summary/rec-1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "rec-1", body["recordingId"])
	assert.Contains(t, body["content"], "Meeting Summary")
}

func TestFAQLifecycle(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/faq", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var faqs []model.FAQ
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &faqs))
	assert.Empty(t, faqs)

	w = env.do(t, http.MethodPost, "/api/faq",
		gin.H{"question": "How do I share a recording?", "answer": "Copy the link."}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)
	id := created["_id"].(string)
	require.NotEmpty(t, id)

	w = env.do(t, http.MethodGet, "/api/faq", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	faqs = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &faqs))
	require.Len(t, faqs, 1)
	assert.Equal(t, "How do I share a recording?", faqs[0].Question)

	w = env.do(t, http.MethodPut, "/api/faq",
		gin.H{"_id": id, "question": "How do I share?", "answer": "Use the share button."}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "How do I share?", decode(t, w)["question"])

	w = env.do(t, http.MethodDelete, "/api/faq", gin.H{"_id": id}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "FAQ deleted successfully", decode(t, w)["message"])

	w = env.do(t, http.MethodDelete, "/api/faq", gin.H{"_id": id}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFAQValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/faq", gin.H{"question": "orphan"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/api/faq",
		gin.H{"_id": "not-an-objectid", "question": "q", "answer": "a"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/api/faq",
		gin.H{"_id": "00000000000000000000dead", "question": "q", "answer": "a"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTrackParticipantUnconfiguredProvider(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/meeting/track-participant",
		gin.H{"call_id": "c1", "call_type": "default", "action": "join",
			"participant": gin.H{"user_id": "u1"}}, userToken(t, "user-a"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestListMeetingsRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/meetings", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClientConfig(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/config", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["skipEndCallConfirmation"])
}

func TestCreateMeeting(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var req struct {
			Data map[string]interface{} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "user-a", req.Data["created_by_id"])

		id := r.URL.Path[len("/video/call/default/"):]
		json.NewEncoder(w).Encode(gin.H{"call": gin.H{"id": id, "type": "default"}})
	}))
	defer provider.Close()

	env := newTestEnvWithVideo(t, video.NewClient("key", "secret", provider.URL, provider.Client()))

	w := env.do(t, http.MethodPost, "/api/meetings",
		gin.H{"description": "standup"}, userToken(t, "user-a"))
	require.Equal(t, http.StatusCreated, w.Code)

	body := decode(t, w)
	call := body["call"].(map[string]interface{})
	id := call["id"].(string)
	assert.NotEmpty(t, id)
	assert.Equal(t, "https://meet.example.com/meeting/"+id, body["joinUrl"])
}
