package auth

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/database"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/dtos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) Service {
	return NewService(NewRepo(database.OpenTestDB(t)), "secret")
}

func subject(t *testing.T, token string) uint {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	return uint(claims["id"].(float64))
}

func TestRegisterAndLogin(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	token, err := s.Register(ctx, dtos.DTOForUserCreate{Email: "a@b.co", Password: "hunter22", Name: "A"})
	require.NoError(t, err)
	id := subject(t, token)
	assert.NotZero(t, id)

	_, err = s.Register(ctx, dtos.DTOForUserCreate{Email: "a@b.co", Password: "hunter22", Name: "A"})
	assert.Error(t, err)

	token, err = s.Login(ctx, dtos.DTOForUserLogin{Email: "a@b.co", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, id, subject(t, token))

	_, err = s.Login(ctx, dtos.DTOForUserLogin{Email: "a@b.co", Password: "wrong"})
	assert.Error(t, err)
	_, err = s.Login(ctx, dtos.DTOForUserLogin{Email: "x@b.co", Password: "hunter22"})
	assert.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	token, err := s.Register(ctx, dtos.DTOForUserCreate{Email: "a@b.co", Password: "hunter22", Name: "A"})
	require.NoError(t, err)
	id := subject(t, token)

	assert.Error(t, s.ChangePassword(ctx, id, dtos.ChangePasswordDTO{OldPassword: "nope", NewPassword: "secret99"}))
	require.NoError(t, s.ChangePassword(ctx, id, dtos.ChangePasswordDTO{OldPassword: "hunter22", NewPassword: "secret99"}))

	_, err = s.Login(ctx, dtos.DTOForUserLogin{Email: "a@b.co", Password: "secret99"})
	assert.NoError(t, err)

	user, err := s.Profile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", user.Email)
}
