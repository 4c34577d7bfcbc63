package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/constant"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/dtos"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/entities"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenTTL = 24 * time.Hour

type Service interface {
	Register(ctx context.Context, req dtos.DTOForUserCreate) (string, error)
	Login(ctx context.Context, req dtos.DTOForUserLogin) (string, error)
	Profile(ctx context.Context, userID uint) (entities.User, error)
	ChangePassword(ctx context.Context, userID uint, req dtos.ChangePasswordDTO) error
}

type service struct {
	repository Repository
	secret     []byte
}

func NewService(r Repository, secret string) Service {
	return &service{
		repository: r,
		secret:     []byte(secret),
	}
}

func (s *service) Register(ctx context.Context, req dtos.DTOForUserCreate) (string, error) {
	existingUser, err := s.repository.FindUserByEmailOrPhone(ctx, req.Email, req.Phone)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", errors.New(constant.SOMETHING_WENT_WRONG)
	}
	if existingUser.ID != 0 {
		return "", fmt.Errorf(constant.ALREADY_EXISTS, "User")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	user := entities.User{
		Email:    req.Email,
		Password: string(passwordHash),
		Name:     req.Name,
		Phone:    req.Phone,
	}
	if err := s.repository.CreateUser(ctx, &user); err != nil {
		return "", err
	}
	return s.issue(user.ID)
}

func (s *service) Login(ctx context.Context, req dtos.DTOForUserLogin) (string, error) {
	user, err := s.repository.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errors.New(constant.EMAIL_OR_PHONE)
		}
		return "", errors.New(constant.SOMETHING_WENT_WRONG)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return "", errors.New(constant.UNAUTHORIZED_ACCESS)
	}
	return s.issue(user.ID)
}

func (s *service) Profile(ctx context.Context, userID uint) (entities.User, error) {
	user, err := s.repository.FindUserByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, fmt.Errorf(constant.CANT_FIND, "User")
	}
	return user, err
}

func (s *service) ChangePassword(ctx context.Context, userID uint, req dtos.ChangePasswordDTO) error {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return errors.New(constant.UNAUTHORIZED_ACCESS)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.New(constant.SOMETHING_WENT_WRONG)
	}
	user.Password = string(hashedPassword)
	return s.repository.UpdateUser(ctx, user)
}

// issue signs a token the auth middleware accepts.
func (s *service) issue(userID uint) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  userID,
		"exp": time.Now().Add(tokenTTL).Unix(),
	})
	return token.SignedString(s.secret)
}
