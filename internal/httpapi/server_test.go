package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizmentor/internal/engine"
	"github.com/abhisek/quizmentor/internal/i18n"
	"github.com/abhisek/quizmentor/internal/logging"
	"github.com/abhisek/quizmentor/internal/notify"
	"github.com/abhisek/quizmentor/internal/question"
	"github.com/abhisek/quizmentor/internal/session"
	"github.com/abhisek/quizmentor/internal/store"
)

const secret = "test-secret"

func newTestServer(t *testing.T, jwtSecret string) http.Handler {
	t.Helper()
	qs := make([]question.Question, 8)
	for i := range qs {
		qs[i] = question.Question{
			ID:           fmt.Sprintf("q%d", i),
			Prompt:       fmt.Sprintf("prompt %d", i),
			Options:      []string{"w", "x", "y", "z"},
			CorrectIndex: 1,
			Topic:        "grammar",
		}
	}
	profiles := store.NewMemoryProfileRepo()
	tr := i18n.NewLocalizer(i18n.MustLoadCatalog(), i18n.ProfileLanguage(profiles))
	out := notify.NewOutbox(notify.NewRenderer(tr), 0)

	eng, err := engine.New(engine.Deps{
		Questions:  question.New("v1.0.0", nil, qs),
		Profiles:   profiles,
		Sessions:   session.NewMemoryRepository(),
		Results:    session.NewMemoryResultRepository(),
		Notifier:   out,
		Translator: tr,
		Log:        logging.Discard(),
		Clock:      func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) },
		Rand:       rand.New(rand.NewPCG(1, 2)),
	}, engine.Settings{})
	require.NoError(t, err)

	return New(Options{Engine: eng, Outbox: out, Log: logging.Discard(), JWTSecret: jwtSecret})
}

func token(t *testing.T, subject string, ttl time.Duration, key string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

type response struct {
	Outcome struct {
		Kind          string `json:"kind"`
		QuestionIndex int    `json:"questionIndex"`
		Result        *struct {
			Score int `json:"score"`
		} `json:"result"`
	} `json:"outcome"`
	Messages []notify.Message `json:"messages"`
}

func post(t *testing.T, h http.Handler, path, body, bearer string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp response
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestConcurrentTriggersKeepTheirMessages(t *testing.T) {
	h := newTestServer(t, "")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/v1/users/9/triggers", strings.NewReader(`{"type":"topic","topic":"mixed"}`))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if !assert.Equal(t, http.StatusOK, rec.Code) {
				return
			}
			var resp response
			if assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)) {
				assert.Equal(t, "topic-set", resp.Outcome.Kind)
				assert.Len(t, resp.Messages, 1, "each request gets exactly its own notice")
			}
		}()
	}
	wg.Wait()
}

func TestTriggerFlow(t *testing.T) {
	h := newTestServer(t, "")

	rec, resp := post(t, h, "/v1/users/42/triggers", `{"type":"start"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "question", resp.Outcome.Kind)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, notify.MessageQuestion, resp.Messages[0].Kind)
	assert.Len(t, resp.Messages[0].Options, 4)

	for i := 0; i < 5; i++ {
		body := fmt.Sprintf(`{"type":"answer","index":%d,"option":1}`, i)
		rec, resp = post(t, h, "/v1/users/42/triggers", body, "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, "result", resp.Outcome.Kind)
	require.NotNil(t, resp.Outcome.Result)
	assert.Equal(t, 5, resp.Outcome.Result.Score)
	require.NotEmpty(t, resp.Messages)
	assert.Equal(t, notify.MessageResult, resp.Messages[0].Kind)

	rec, resp = post(t, h, "/v1/users/42/triggers", `{"type":"start"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "quota-exceeded", resp.Outcome.Kind)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, notify.MessageNotice, resp.Messages[0].Kind)

	req := httptest.NewRequest(http.MethodGet, "/v1/users/42/result", nil)
	got := httptest.NewRecorder()
	h.ServeHTTP(got, req)
	require.Equal(t, http.StatusOK, got.Code)
	var r session.Result
	require.NoError(t, json.Unmarshal(got.Body.Bytes(), &r))
	assert.Equal(t, 5, r.Score)

	req = httptest.NewRequest(http.MethodGet, "/v1/users/42/profile", nil)
	got = httptest.NewRecorder()
	h.ServeHTTP(got, req)
	require.Equal(t, http.StatusOK, got.Code)
	var p struct {
		Profile struct {
			BestScore int `json:"bestScore"`
		} `json:"profile"`
		FreeRemaining int `json:"freeRemaining"`
	}
	require.NoError(t, json.Unmarshal(got.Body.Bytes(), &p))
	assert.Equal(t, 5, p.Profile.BestScore)
	assert.Equal(t, 0, p.FreeRemaining)
}

func TestTriggerErrors(t *testing.T) {
	h := newTestServer(t, "")
	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"bad json", "/v1/users/1/triggers", `{`, http.StatusBadRequest},
		{"missing field", "/v1/users/1/triggers", `{"type":"answer"}`, http.StatusBadRequest},
		{"unknown type", "/v1/users/1/triggers", `{"type":"dance"}`, http.StatusUnprocessableEntity},
		{"bad user", "/v1/users/abc/triggers", `{"type":"start"}`, http.StatusBadRequest},
		{"zero user", "/v1/users/0/triggers", `{"type":"start"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := post(t, h, tt.path, tt.body, "")
			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestNoResultYet(t *testing.T) {
	h := newTestServer(t, "")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/users/5/result", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBearerAuth(t *testing.T) {
	h := newTestServer(t, secret)
	tests := []struct {
		name   string
		bearer string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "not-a-token", http.StatusUnauthorized},
		{"wrong key", token(t, "7", time.Hour, "other"), http.StatusUnauthorized},
		{"expired", token(t, "7", -time.Minute, secret), http.StatusUnauthorized},
		{"other user", token(t, "8", time.Hour, secret), http.StatusForbidden},
		{"valid", token(t, "7", time.Hour, secret), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := post(t, h, "/v1/users/7/triggers", `{"type":"review"}`, tt.bearer)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHealthzIsOpen(t *testing.T) {
	h := newTestServer(t, secret)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestLambdaHandler(t *testing.T) {
	fn := LambdaHandler(newTestServer(t, ""))
	resp, err := fn(context.Background(), events.APIGatewayV2HTTPRequest{
		RawPath: "/healthz",
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method: http.MethodGet,
				Path:   "/healthz",
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Body, "ok")
}
