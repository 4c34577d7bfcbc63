package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/adapter/adaptertest"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/broadcast"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/config"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/database"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/auth"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/bot"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/ingest"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/scheduler"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/session"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/webhook"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/storage"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/utils"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type api struct {
	t       *testing.T
	handler http.Handler
}

func (a api) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func (a api) token(email string) string {
	w := a.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"email": email, "password": "hunter22", "name": "Tester"})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func TestAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		utils.NewCustomValidator(v)
	}

	cfg := &config.Config{
		App:     config.App{Name: "test", JWTSecret: "secret"},
		Media:   config.Media{Dir: t.TempDir(), BaseURL: "/media"},
		Webhook: config.Webhook{Workers: 1, QueueSize: 16, Timeout: time.Second},
	}
	db := database.OpenTestDB(t)
	media, err := storage.NewLocal(cfg.Media.Dir, cfg.Media.BaseURL)
	require.NoError(t, err)

	hub := broadcast.NewHub(zerolog.Nop())
	dispatcher := webhook.NewDispatcher(webhook.NewRepo(db), cfg.Webhook, hub, nil, zerolog.Nop())
	botRepo := bot.NewRepo(db)
	ingestRepo := ingest.NewRepo(db)
	pipeline := ingest.NewPipeline(ingestRepo, media, dispatcher, bot.NewEngine(botRepo, nil, zerolog.Nop()), nil, zerolog.Nop())
	factory := adaptertest.NewFactory()
	sessionRepo := session.NewRepo(db)
	registry := session.NewRegistry(session.Deps{
		Repo:       sessionRepo,
		BotConfigs: botRepo,
		Factory:    factory,
		Pipeline:   pipeline,
		Notifier:   dispatcher,
		Log:        zerolog.Nop(),
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		registry.Shutdown(ctx)
	})

	sessions := session.NewService(registry, sessionRepo, ingestRepo, media)
	a := api{t: t, handler: NewRouter(cfg, Services{
		Auth:      auth.NewService(auth.NewRepo(db), cfg.App.JWTSecret),
		Sessions:  sessions,
		Bot:       bot.NewService(botRepo),
		Schedules: scheduler.NewService(scheduler.NewRepo(db), sessions),
		Webhooks:  webhook.NewService(webhook.NewRepo(db)),
		Hub:       hub,
	}, zerolog.Nop())}

	owner := a.token("owner@example.com")
	other := a.token("other@example.com")

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/v1/sessions", "", nil).Code)

	w := a.do(http.MethodPost, "/api/v1/sessions", owner, gin.H{"name": "main", "session_id": "s1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/api/v1/sessions", owner, gin.H{"name": "x", "session_id": "../bad"}).Code)
	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, "/api/v1/sessions", owner, gin.H{"name": "again", "session_id": "s1"}).Code)

	require.Eventually(t, func() bool {
		return a.do(http.MethodGet, "/api/v1/sessions/s1/qr", owner, nil).Code == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)
	qr := a.do(http.MethodGet, "/api/v1/sessions/s1/qr", owner, nil)
	assert.Equal(t, "image/png", qr.Header().Get("Content-Type"))

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/v1/sessions/s1", other, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/v1/sessions/s1/bot", other, nil).Code)

	send := a.do(http.MethodPost, "/api/v1/sessions/s1/messages", owner, gin.H{"to": "628111", "text": "hi"})
	assert.Equal(t, http.StatusServiceUnavailable, send.Code)

	factory.Latest("s1").Pair()
	require.Eventually(t, func() bool {
		inst, ok := registry.Get("s1")
		return ok && inst.IsConnected()
	}, 2*time.Second, 10*time.Millisecond)
	send = a.do(http.MethodPost, "/api/v1/sessions/s1/messages", owner, gin.H{"to": "628111", "text": "hi"})
	require.Equal(t, http.StatusOK, send.Code, send.Body.String())

	msgs := a.do(http.MethodGet, "/api/v1/sessions/s1/messages", owner, nil)
	require.Equal(t, http.StatusOK, msgs.Code)
	var listed struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msgs.Body.Bytes(), &listed))
	assert.Len(t, listed.Data, 1)

	bad := a.do(http.MethodPost, "/api/v1/sessions/s1/autoreplies", owner, gin.H{"keyword": "hi", "match_type": "fuzzy", "response": "x"})
	assert.Equal(t, http.StatusBadRequest, bad.Code)
	rule := a.do(http.MethodPost, "/api/v1/sessions/s1/autoreplies", owner, gin.H{"keyword": "hi", "match_type": "EXACT", "response": "hello"})
	assert.Equal(t, http.StatusCreated, rule.Code, rule.Body.String())

	hook := a.do(http.MethodPost, "/api/v1/webhooks", owner, gin.H{"url": "http://127.0.0.1:1/hook", "events": []string{"message.received"}})
	assert.Equal(t, http.StatusCreated, hook.Code, hook.Body.String())
	foreign := a.do(http.MethodPost, "/api/v1/webhooks", other, gin.H{"url": "http://127.0.0.1:1/hook", "events": []string{"message.received"}, "session_id": "s1"})
	assert.Equal(t, http.StatusNotFound, foreign.Code)

	sched := a.do(http.MethodPost, "/api/v1/sessions/s1/schedules", owner, gin.H{"to": "628111", "content": "later", "send_at": time.Now().Add(time.Hour)})
	assert.Equal(t, http.StatusCreated, sched.Code, sched.Body.String())

	assert.Equal(t, http.StatusOK, a.do(http.MethodDelete, "/api/v1/sessions/s1", owner, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/v1/sessions/s1", owner, nil).Code)
	assert.False(t, factory.Creds.Has("s1"))

	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/health", "", nil).Code)
}
