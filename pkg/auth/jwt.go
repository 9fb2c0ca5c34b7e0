package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid workspace token")
	ErrEmptySecret  = errors.New("token secret is empty")
)

const issuer = "excel-easy"

// JWTService issues and checks the token that names a client's workspace.
type JWTService interface {
	GenerateWorkspaceToken(workspaceID uuid.UUID) (string, error)
	ValidateWorkspaceToken(token string) (uuid.UUID, error)
}

type jwtService struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewJWTService signs with HS256. expiry <= 0 issues tokens without expiry.
func NewJWTService(secret string, expiry time.Duration) (JWTService, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &jwtService{secret: []byte(secret), expiry: expiry, now: time.Now}, nil
}

func (s *jwtService) GenerateWorkspaceToken(workspaceID uuid.UUID) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:   issuer,
		Subject:  workspaceID.String(),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if s.expiry > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.expiry))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign workspace token: %w", err)
	}
	return token, nil
}

func (s *jwtService) ValidateWorkspaceToken(token string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, nil
}
