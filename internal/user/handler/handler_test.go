package handler

import (
	"context"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-directory/internal/logger"
	"store-directory/internal/middleware"
	"store-directory/internal/user/model"
	"store-directory/internal/user/service"
	appErrors "store-directory/pkg/errors"
	"store-directory/pkg/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := logger.Init("development"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

const testTemplates = `
{{define "login.html"}}login{{end}}
{{define "register.html"}}register{{end}}
{{define "reset.html"}}reset {{.token}}{{end}}
`

// fakeUserRepo mirrors the repository contract in memory.
type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	user.ID = uuid.New()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, appErrors.ErrUserNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, appErrors.ErrUserNotFound
}

func (f *fakeUserRepo) SetResetToken(ctx context.Context, userID uuid.UUID, token string, expires time.Time) error {
	u, ok := f.users[userID]
	if !ok {
		return appErrors.ErrUserNotFound
	}
	u.ResetPasswordToken = &token
	u.ResetPasswordExpires = &expires
	return nil
}

func (f *fakeUserRepo) GetByValidResetToken(ctx context.Context, token string, now time.Time) (*model.User, error) {
	for _, u := range f.users {
		if u.ResetPasswordToken != nil && *u.ResetPasswordToken == token &&
			u.ResetPasswordExpires != nil && u.ResetPasswordExpires.After(now) {
			return u, nil
		}
	}
	return nil, appErrors.ErrResetTokenInvalid
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	u, ok := f.users[userID]
	if !ok {
		return appErrors.ErrUserNotFound
	}
	u.PasswordHashed = passwordHash
	u.ResetPasswordToken = nil
	u.ResetPasswordExpires = nil
	return nil
}

type fakeMailer struct {
	sent    int
	lastURL string
}

func (f *fakeMailer) SendPasswordReset(ctx context.Context, to, name, resetURL string) error {
	f.sent++
	f.lastURL = resetURL
	return nil
}

func newTestRouter(t *testing.T, repo *fakeUserRepo, mail *fakeMailer) *gin.Engine {
	t.Helper()

	svc := service.NewService(repo, mail)
	h := NewHandler(svc, "")

	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("test").Parse(testTemplates)))
	r.Use(sessions.Sessions("session", cookie.NewStore([]byte("test-secret"))))
	r.Use(middleware.CurrentUser(svc))
	h.RegisterRoutes(r.Group(""))

	// Probe route to observe the session from the outside.
	r.GET("/whoami", func(c *gin.Context) {
		if u, ok := middleware.GetCurrentUser(c); ok {
			c.String(http.StatusOK, u.Email)
			return
		}
		c.String(http.StatusUnauthorized, "anonymous")
	})

	return r
}

func seedUser(t *testing.T, repo *fakeUserRepo, email, password string) *model.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	u := &model.User{Name: "Test User", Email: email, PasswordHashed: hash}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func postForm(r *gin.Engine, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLogin_Failure(t *testing.T) {
	repo := newFakeUserRepo()
	r := newTestRouter(t, repo, &fakeMailer{})
	seedUser(t, repo, "alice@example.com", "password123")

	w := postForm(r, "/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"wrong-password"},
	}, nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestLogin_Success(t *testing.T) {
	repo := newFakeUserRepo()
	r := newTestRouter(t, repo, &fakeMailer{})
	seedUser(t, repo, "alice@example.com", "password123")

	w := postForm(r, "/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"password123"},
	}, nil)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	// The session cookie authenticates subsequent requests.
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	probe := httptest.NewRecorder()
	r.ServeHTTP(probe, req)
	assert.Equal(t, http.StatusOK, probe.Code)
	assert.Equal(t, "alice@example.com", probe.Body.String())
}

func TestLogout(t *testing.T) {
	repo := newFakeUserRepo()
	r := newTestRouter(t, repo, &fakeMailer{})
	seedUser(t, repo, "alice@example.com", "password123")

	login := postForm(r, "/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"password123"},
	}, nil)
	cookies := login.Result().Cookies()

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	probe := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for _, c := range w.Result().Cookies() {
		probe.AddCookie(c)
	}
	out := httptest.NewRecorder()
	r.ServeHTTP(out, probe)
	assert.Equal(t, http.StatusUnauthorized, out.Code)
}

func TestForgot_UnknownEmail(t *testing.T) {
	repo := newFakeUserRepo()
	mail := &fakeMailer{}
	r := newTestRouter(t, repo, mail)

	w := postForm(r, "/account/forgot", url.Values{
		"email": {"nobody@example.com"},
	}, nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Zero(t, mail.sent)
}

func TestForgot_KnownEmail(t *testing.T) {
	repo := newFakeUserRepo()
	mail := &fakeMailer{}
	r := newTestRouter(t, repo, mail)
	user := seedUser(t, repo, "bob@example.com", "password123")

	w := postForm(r, "/account/forgot", url.Values{
		"email": {"bob@example.com"},
	}, nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Equal(t, 1, mail.sent)
	require.NotNil(t, user.ResetPasswordToken)
	assert.Contains(t, mail.lastURL, "/account/reset/"+*user.ResetPasswordToken)
}

func TestResetForm_InvalidToken(t *testing.T) {
	repo := newFakeUserRepo()
	r := newTestRouter(t, repo, &fakeMailer{})

	req := httptest.NewRequest(http.MethodGet, "/account/reset/"+strings.Repeat("00", 20), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestReset_PasswordMismatch(t *testing.T) {
	repo := newFakeUserRepo()
	r := newTestRouter(t, repo, &fakeMailer{})
	user := seedUser(t, repo, "carol@example.com", "oldpassword1")

	token := strings.Repeat("ab", 20)
	expires := time.Now().Add(time.Hour)
	user.ResetPasswordToken = &token
	user.ResetPasswordExpires = &expires
	oldHash := user.PasswordHashed

	w := postForm(r, "/account/reset/"+token, url.Values{
		"password":         {"newpassword1"},
		"password-confirm": {"different123"},
	}, nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/account/reset/"+token, w.Header().Get("Location"))
	assert.Equal(t, oldHash, user.PasswordHashed, "mismatch must not mutate state")
	assert.NotNil(t, user.ResetPasswordToken)
}

func TestReset_Success(t *testing.T) {
	repo := newFakeUserRepo()
	r := newTestRouter(t, repo, &fakeMailer{})
	user := seedUser(t, repo, "dave@example.com", "oldpassword1")

	token := strings.Repeat("cd", 20)
	expires := time.Now().Add(time.Hour)
	user.ResetPasswordToken = &token
	user.ResetPasswordExpires = &expires

	w := postForm(r, "/account/reset/"+token, url.Values{
		"password":         {"newpassword1"},
		"password-confirm": {"newpassword1"},
	}, nil)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	assert.Nil(t, user.ResetPasswordToken)
	assert.Nil(t, user.ResetPasswordExpires)
	assert.True(t, utils.CheckPassword(user.PasswordHashed, "newpassword1"))

	// Auto-login: the reset response carries an authenticated session.
	probe := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for _, c := range w.Result().Cookies() {
		probe.AddCookie(c)
	}
	out := httptest.NewRecorder()
	r.ServeHTTP(out, probe)
	assert.Equal(t, http.StatusOK, out.Code)
	assert.Equal(t, "dave@example.com", out.Body.String())

	// The consumed token is rejected on a second attempt.
	again := httptest.NewRequest(http.MethodGet, "/account/reset/"+token, nil)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, again)
	assert.Equal(t, http.StatusFound, w2.Code)
	assert.Equal(t, "/login", w2.Header().Get("Location"))
}

func TestRegister_Success(t *testing.T) {
	repo := newFakeUserRepo()
	r := newTestRouter(t, repo, &fakeMailer{})

	w := postForm(r, "/register", url.Values{
		"name":             {"Eve"},
		"email":            {"eve@example.com"},
		"password":         {"password123"},
		"password-confirm": {"password123"},
	}, nil)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	_, err := repo.GetByEmail(context.Background(), "eve@example.com")
	assert.NoError(t, err)
}
