package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/linguapersonal/backend/config"
	"github.com/linguapersonal/backend/middleware/ratelimit"
	"github.com/linguapersonal/backend/services/auth"
	"github.com/linguapersonal/backend/services/jwt"
	"github.com/linguapersonal/backend/services/lesson"
	"github.com/linguapersonal/backend/services/progress"
	"github.com/linguapersonal/backend/testutils"
)

const lessonPayload = `{
	"vocabulary": [{"native": "coffee", "target": "Kaffee"}],
	"grammar_notes": "Nouns are capitalized.",
	"quiz": {
		"vocab_matching": [{"native": "coffee", "target": "Kaffee"}],
		"mini_translations": [{"native": "One coffee, please.", "target": "Einen Kaffee, bitte."}]
	}
}`

type recordingSender struct {
	codes []string
}

func (r *recordingSender) SendVerificationCode(to, code string, expiry time.Duration) error {
	r.codes = append(r.codes, code)
	return nil
}

type testEnv struct {
	echo   *echo.Echo
	db     *gorm.DB
	cfg    *config.Config
	auth   *auth.Service
	sender *recordingSender
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := testutils.GetTestConfig()
	cfg.RateLimit.Enabled = false

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": lessonPayload}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}))
	t.Cleanup(provider.Close)
	cfg.Lesson = config.LessonConfig{
		APIKey:  "test-key",
		APIURL:  provider.URL,
		Model:   "gpt-3.5-turbo",
		Timeout: 5 * time.Second,
	}

	var models []any
	models = append(models, auth.Models()...)
	models = append(models, lesson.Models()...)
	models = append(models, progress.Models()...)
	db := testutils.SetupTestDB(t, models...)

	jwtSvc := jwt.NewService(cfg, nil)
	authSvc := auth.NewService(cfg, db, jwtSvc, nil)
	sender := &recordingSender{}
	authSvc.SetCodeSender(sender)

	lessonSvc := lesson.NewService(&cfg.Lesson, db, nil)
	progressSvc := progress.NewService(db, lessonSvc, nil)

	e := echo.New()
	h := NewHandler(authSvc, lessonSvc, progressSvc, nil)
	RegisterRoutes(e, h, jwtSvc, authSvc, ratelimit.NewMemoryStore(), cfg)

	return &testEnv{echo: e, db: db, cfg: cfg, auth: authSvc, sender: sender}
}

func (env *testEnv) request(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)

	var decoded map[string]any
	if body := bytes.TrimSpace(rec.Body.Bytes()); len(body) > 0 && body[0] == '{' {
		require.NoError(t, json.Unmarshal(body, &decoded))
	}
	return rec, decoded
}

// register creates an account and returns a bearer token for it.
func (env *testEnv) register(t *testing.T, email, password string) string {
	t.Helper()

	rec, body := env.request(t, http.MethodPost, "/register", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	return body["access_token"].(string)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestRegister_ReturnsToken(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.request(t, http.MethodPost, "/register", "", map[string]string{
		"email":    "a@b.com",
		"password": "pw123456",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, body["access_token"])
	assert.Equal(t, "bearer", body["token_type"])
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@b.com", "pw123456")

	rec, body := env.request(t, http.MethodPost, "/register", "", map[string]string{
		"email":    "a@b.com",
		"password": "other",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already registered", body["message"])
}

func TestRegister_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.request(t, http.MethodPost, "/register", "", map[string]string{"email": "a@b.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginStep1_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@b.com", "pw123456")

	rec, body := env.request(t, http.MethodPost, "/login-step1", "", map[string]string{
		"email":    "a@b.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", body["message"])
}

func TestLoginStep1_TwoFAEnabled(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@b.com", "pw123456")

	rec, body := env.request(t, http.MethodPost, "/login-step1", "", map[string]string{
		"email":    "a@b.com",
		"password": "pw123456",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["requires_2fa"])
	assert.NotContains(t, body, "access_token")
	require.Len(t, env.sender.codes, 1)

	var unused int64
	require.NoError(t, env.db.Model(&auth.VerificationCode{}).
		Where("used = ?", false).Count(&unused).Error)
	assert.Equal(t, int64(1), unused)
}

func TestLoginFlow_TwoSteps(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@b.com", "pw123456")

	rec, _ := env.request(t, http.MethodPost, "/login-step1", "", map[string]string{
		"email":    "a@b.com",
		"password": "pw123456",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.sender.codes, 1)

	rec, body := env.request(t, http.MethodPost, "/login-step2", "", map[string]string{
		"email": "a@b.com",
		"code":  env.sender.codes[0],
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, body["access_token"])

	// The same code is rejected on replay.
	rec, body = env.request(t, http.MethodPost, "/login-step2", "", map[string]string{
		"email": "a@b.com",
		"code":  env.sender.codes[0],
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired verification code", body["message"])
}

func TestLoginStep2_UnknownUser(t *testing.T) {
	env := newTestEnv(t)

	rec, body := env.request(t, http.MethodPost, "/login-step2", "", map[string]string{
		"email": "nobody@b.com",
		"code":  "123456",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid request", body["message"])
}

func TestLegacyLogin_AliasesStep1(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@b.com", "pw123456")

	rec, body := env.request(t, http.MethodPost, "/login", "", map[string]string{
		"email":    "a@b.com",
		"password": "pw123456",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["requires_2fa"])
}

func TestResendVerificationCode(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@b.com", "pw123456")

	rec, body := env.request(t, http.MethodPost, "/resend-verification-code", "", map[string]string{
		"email": "a@b.com",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "New verification code sent", body["message"])

	rec, body = env.request(t, http.MethodPost, "/resend-verification-code", "", map[string]string{
		"email": "nobody@b.com",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", body["message"])

	rec, _ = env.request(t, http.MethodPost, "/resend-verification-code", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestToggleTwoFactor(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "a@b.com", "pw123456")

	rec, body := env.request(t, http.MethodPost, "/toggle-2fa", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["two_fa_enabled"])
	assert.Equal(t, "2FA disabled", body["message"])

	// With 2FA off, step 1 completes the login directly.
	rec, body = env.request(t, http.MethodPost, "/login-step1", "", map[string]string{
		"email":    "a@b.com",
		"password": "pw123456",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["requires_2fa"])
	assert.NotEmpty(t, body["access_token"])
}

func TestToggleTwoFactor_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	rec, _ := env.request(t, http.MethodPost, "/toggle-2fa", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCleanupExpiredCodes(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "a@b.com", "pw123456")

	user, err := env.auth.GetUserByEmail("a@b.com")
	require.NoError(t, err)
	_, err = auth.NewCodeStore(env.db).Issue(user.ID, "123456", time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)

	rec, body := env.request(t, http.MethodPost, "/cleanup-expired-codes", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cleaned up 1 expired codes", body["message"])
}

func TestGenerateLesson(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "a@b.com", "pw123456")

	rec, body := env.request(t, http.MethodPost, "/generate-lesson", token, map[string]string{
		"user_prompt": "ordering coffee",
		"target_lang": "German",
		"native_lang": "English",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotZero(t, body["session_id"])
	assert.Equal(t, "Nouns are capitalized.", body["grammar_notes"])

	rec, _ = env.request(t, http.MethodPost, "/generate-lesson", token, map[string]string{
		"user_prompt": "ordering coffee",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.request(t, http.MethodPost, "/generate-lesson", "", map[string]string{
		"user_prompt": "ordering coffee",
		"target_lang": "German",
		"native_lang": "English",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestQuizFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "a@b.com", "pw123456")

	rec, body := env.request(t, http.MethodPost, "/generate-lesson", token, map[string]string{
		"user_prompt": "ordering coffee",
		"target_lang": "German",
		"native_lang": "English",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	sessionID := uint(body["session_id"].(float64))

	rec, body = env.request(t, http.MethodPost, "/submit-quiz-attempt", token, map[string]any{
		"session_id":     sessionID,
		"question_text":  "coffee",
		"user_answer":    "Tee",
		"correct_answer": "Kaffee",
		"is_correct":     false,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Attempt recorded", body["message"])
	assert.Equal(t, false, body["is_correct"])

	rec, _ = env.request(t, http.MethodPost, "/submit-quiz-attempt", token, map[string]any{
		"session_id":    9999,
		"question_text": "coffee",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var progressRows []map[string]any
	rec, _ = env.request(t, http.MethodGet, "/user-progress", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &progressRows))
	require.Len(t, progressRows, 1)
	assert.Equal(t, "German", progressRows[0]["language"])
	assert.Equal(t, float64(1), progressRows[0]["total_questions"])
	assert.Equal(t, float64(0), progressRows[0]["correct_answers"])

	var mistakes []map[string]any
	rec, _ = env.request(t, http.MethodGet, "/user-mistakes?language=German", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mistakes))
	require.Len(t, mistakes, 1)
	assert.Equal(t, "coffee", mistakes[0]["question_text"])

	rec, _ = env.request(t, http.MethodGet, "/user-mistakes?language=Spanish", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String()[:2])
}

func TestRateLimit_AppliesToCredentialEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.RateLimit.Enabled = true
	env.cfg.RateLimit.Rate = 2

	// Rebuild the router with limiting on.
	e := echo.New()
	jwtSvc := jwt.NewService(env.cfg, nil)
	h := NewHandler(env.auth, nil, nil, nil)
	RegisterRoutes(e, h, jwtSvc, env.auth, ratelimit.NewMemoryStore(), env.cfg)
	env.echo = e

	for i := 0; i < 2; i++ {
		rec, _ := env.request(t, http.MethodPost, "/login-step1", "", map[string]string{
			"email":    "nobody@b.com",
			"password": "pw",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec, _ := env.request(t, http.MethodPost, "/login-step1", "", map[string]string{
		"email":    "nobody@b.com",
		"password": "pw",
	})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
