package service

import (
	"context"
	"testing"
	"time"

	"questionnaire_backend/internal/config"
	"questionnaire_backend/internal/model"
	"questionnaire_backend/internal/session"
	"questionnaire_backend/internal/util"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type authFixture struct {
	svc      *AuthService
	users    *MockUserStore
	roles    *MockRoleStore
	sessions *session.RedisStore
	redis    *miniredis.Miniredis
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	users := new(MockUserStore)
	roles := new(MockRoleStore)
	sessions := session.NewRedisStore(client)
	svc := NewAuthService(users, NewRoleService(roles), sessions, config.JWTConfig{
		Secret:     testSecret,
		ExpireTime: time.Hour,
	})
	return &authFixture{svc: svc, users: users, roles: roles, sessions: sessions, redis: mr}
}

func hashedUser(t *testing.T, id uint, email, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{Email: email, Password: string(hash)}
	u.ID = id
	return u
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.users.On("FindByEmail", mock.Anything, "admin@example.com").
		Return(hashedUser(t, 1, "admin@example.com", "secret123"), nil)
	f.roles.On("FindByUserID", mock.Anything, uint(1)).
		Return(&model.UserRoles{UserID: 1, Roles: model.Roles{"user", "admin"}}, nil)

	res, err := f.svc.Login(ctx, "admin@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, util.PathAdmin, res.RedirectPath)

	claims, err := util.ParseJWT(res.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)

	stored, err := f.sessions.Get(ctx, claims.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"user", "admin"}, stored.Roles)
	assert.Equal(t, time.Hour, f.redis.TTL("session:"+claims.ID))
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)
	f.users.On("FindByEmail", mock.Anything, "user@example.com").
		Return(hashedUser(t, 2, "user@example.com", "right-password"), nil)

	_, err := f.svc.Login(ctx, "nobody@example.com", "x")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, "user@example.com", "wrong-password")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	f.roles.AssertNotCalled(t, "FindByUserID", mock.Anything, mock.Anything)
}

func TestAuthService_Login_NoValidRole(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.users.On("FindByEmail", mock.Anything, "guest@example.com").
		Return(hashedUser(t, 3, "guest@example.com", "pw"), nil)
	f.roles.On("FindByUserID", mock.Anything, uint(3)).Return(nil, gorm.ErrRecordNotFound)

	_, err := f.svc.Login(ctx, "guest@example.com", "pw")
	require.ErrorIs(t, err, util.ErrNoValidRole)
	assert.Equal(t, "User has no valid role assigned", err.Error())
	assert.Empty(t, f.redis.Keys())
}

func TestAuthService_Register(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.users.On("FindByEmail", mock.Anything, "taken@example.com").Return(&model.User{Email: "taken@example.com"}, nil)
	_, err := f.svc.Register(ctx, "taken@example.com", "pw")
	assert.ErrorIs(t, err, util.ErrEmailRegistered)

	f.users.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, gorm.ErrRecordNotFound)
	f.users.On("CreateWithRoles", mock.Anything,
		mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "new@example.com" &&
				bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("pw")) == nil
		}),
		model.Roles{model.RoleUser},
	).Return(nil)

	user, err := f.svc.Register(ctx, "new@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	f.users.AssertExpectations(t)
}

func TestAuthService_RefreshAndLogout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	sess := &session.Session{ID: "s1", UserID: 5, Email: "u@example.com", Roles: []string{"user"}}
	require.NoError(t, f.sessions.Save(ctx, sess, time.Hour))
	ctx = session.WithSession(ctx, sess)

	f.roles.On("FindByUserID", mock.Anything, uint(5)).
		Return(&model.UserRoles{UserID: 5, Roles: model.Roles{"user", "admin"}}, nil)

	updated, err := f.svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"user", "admin"}, updated.Roles)

	stored, err := f.sessions.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"user", "admin"}, stored.Roles)

	require.NoError(t, f.svc.Logout(ctx))
	_, err = f.sessions.Get(ctx, "s1")
	assert.ErrorIs(t, err, session.ErrNotFound)

	_, err = f.svc.Refresh(ctx)
	assert.ErrorIs(t, err, util.ErrSessionExpired)
}

func TestCurrentSessionView(t *testing.T) {
	_, err := CurrentSessionView(context.Background())
	assert.ErrorIs(t, err, util.ErrNoAuthenticatedUser)

	view, err := CurrentSessionView(userCtx(1, model.RoleUser))
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", view.Email)
	require.Len(t, view.Groups, 1)
	assert.Equal(t, "Tasks", view.Groups[0].Name)
}
