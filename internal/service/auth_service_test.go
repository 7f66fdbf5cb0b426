package service

import (
	"testing"
	"time"

	"pyland_backend/internal/config"
	"pyland_backend/internal/model"
	"pyland_backend/internal/repository"
	"pyland_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(db *gorm.DB) *AuthService {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-for-unit-tests-only-0123456789"
	cfg.JWT.ExpireTime = time.Hour
	return NewAuthService(repository.NewUserRepository(db), cfg)
}

func TestRegisterAndLogin(t *testing.T) {
	db := openTestDB(t)
	svc := newAuthService(db)

	user := &model.User{
		Name:     "Grace",
		Email:    "grace@test.dev",
		Password: "correct horse battery",
		Role:     model.Admin, // 注册入口不接受自封角色
	}
	require.NoError(t, svc.Register(user))
	assert.Equal(t, model.Student, user.Role)
	assert.NotEqual(t, "correct horse battery", user.Password)

	token, err := svc.Login("grace@test.dev", "correct horse battery")
	require.NoError(t, err)

	claims, err := util.ParseJWT(token, "test-secret-for-unit-tests-only-0123456789")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.Student, claims.Role)

	_, err = svc.Login("grace@test.dev", "wrong password")
	assert.Error(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := openTestDB(t)
	svc := newAuthService(db)

	require.NoError(t, svc.Register(&model.User{Name: "A", Email: "dup@test.dev", Password: "p@ssw0rd-one"}))

	err := svc.Register(&model.User{Name: "B", Email: "dup@test.dev", Password: "p@ssw0rd-two"})
	assert.ErrorIs(t, err, util.ErrEmailRegistered)
}

func TestLoginDisabledAccount(t *testing.T) {
	db := openTestDB(t)
	svc := newAuthService(db)

	user := &model.User{Name: "Off", Email: "off@test.dev", Password: "p@ssw0rd-off"}
	require.NoError(t, svc.Register(user))
	require.NoError(t, db.Model(user).Update("disabled", true).Error)

	_, err := svc.Login("off@test.dev", "p@ssw0rd-off")
	assert.EqualError(t, err, "account disabled")
}
