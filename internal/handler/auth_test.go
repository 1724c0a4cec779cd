package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/theatre-booking/internal/config"
	"github.com/iliyamo/theatre-booking/internal/model"
	"github.com/iliyamo/theatre-booking/internal/repository"
	"github.com/iliyamo/theatre-booking/internal/utils"
)

type memUsers struct {
	byEmail map[string]model.User
	nextID  uint64
}

func newMemUsers() *memUsers { return &memUsers{byEmail: map[string]model.User{}} }

func (m *memUsers) Create(_ context.Context, name, email, password, role string, cost int) (uint64, error) {
	if _, ok := m.byEmail[email]; ok {
		return 0, repository.ErrEmailExists
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	m.nextID++
	m.byEmail[email] = model.User{ID: m.nextID, Name: name, Email: email, PasswordHash: hash, Role: role, IsActive: true}
	return m.nextID, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func authServer(users UserStore) (*echo.Echo, config.Config) {
	cfg := config.Config{JWTSecret: "s3cret", AccessTTLMin: 5, BcryptCost: bcrypt.MinCost}
	log, _ := test.NewNullLogger()
	h := NewAuthHandler(cfg, users, log)
	e := echo.New()
	e.POST("/v1/auth/register", h.Register)
	e.POST("/v1/auth/login", h.Login)
	e.GET("/v1/me", h.Me, asUser(1))
	return e, cfg
}

func TestRegisterAndLogin(t *testing.T) {
	users := newMemUsers()
	e, cfg := authServer(users)

	rec := send(e, http.MethodPost, "/v1/auth/register", `{"name":"Asha","email":" Asha@Example.com ","password":"longenough"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	user := body["user"].(map[string]any)
	assert.Equal(t, "asha@example.com", user["email"])
	assert.Equal(t, model.RoleCustomer, user["role"])

	token := body["access"].(map[string]any)["token"].(string)
	id, err := utils.ParseAccessToken(cfg.JWTSecret, token)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id.UserID)

	rec = send(e, http.MethodPost, "/v1/auth/register", `{"name":"Asha","email":"asha@example.com","password":"longenough"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = send(e, http.MethodPost, "/v1/auth/login", `{"email":"asha@example.com","password":"longenough"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = send(e, http.MethodPost, "/v1/auth/login", `{"email":"asha@example.com","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = send(e, http.MethodPost, "/v1/auth/login", `{"email":"nobody@example.com","password":"whatever1"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = send(e, http.MethodGet, "/v1/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Asha", decode(t, rec)["name"])
}

func TestRegisterValidation(t *testing.T) {
	e, _ := authServer(newMemUsers())

	for _, body := range []string{
		`{"email":"a@b.co","password":"longenough"}`,
		`{"name":"A","email":"not-an-email","password":"longenough"}`,
		`{"name":"A","email":"a@b.co","password":"short"}`,
	} {
		rec := send(e, http.MethodPost, "/v1/auth/register", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestLoginInactiveUser(t *testing.T) {
	users := newMemUsers()
	e, _ := authServer(users)
	_, err := users.Create(context.Background(), "Old", "old@example.com", "longenough", model.RoleCustomer, bcrypt.MinCost)
	require.NoError(t, err)
	u := users.byEmail["old@example.com"]
	u.IsActive = false
	users.byEmail["old@example.com"] = u

	rec := send(e, http.MethodPost, "/v1/auth/login", `{"email":"old@example.com","password":"longenough"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
