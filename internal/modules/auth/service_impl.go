package auth

import (
	"context"
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type service struct {
	jwtKey       []byte
	passwordHash string
}

// NewService creates the admin auth service. passwordHash is a bcrypt hash
// of the administrative password.
func NewService(jwtKey []byte, passwordHash string) Service {
	return &service{jwtKey: jwtKey, passwordHash: passwordHash}
}

func (s *service) Login(ctx context.Context, password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	expirationTime := time.Now().Add(24 * time.Hour)
	claims := &jwt.StandardClaims{
		Subject:   "admin",
		Id:        uuid.NewString(),
		ExpiresAt: expirationTime.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtKey)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

func (s *service) Verify(tokenString string) error {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtKey, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidCredentials
	}
	if claims.Subject != "admin" {
		return ErrInvalidCredentials
	}
	return nil
}
