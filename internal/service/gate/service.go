// Package gate keeps the per-workspace admin flag. It decides what the client
// is shown, nothing more: the flag is not an authorisation boundary.
package gate

import (
	"context"
	"errors"

	"github.com/Dahbi-Dev/Excel-easy/internal/storage"
	apperrors "github.com/Dahbi-Dev/Excel-easy/pkg/errors"
	"github.com/Dahbi-Dev/Excel-easy/pkg/logger"
	"github.com/Dahbi-Dev/Excel-easy/pkg/security"
)

// LoginPath is where a closed gate sends the client.
const LoginPath = "/login"

var ErrInvalidPassword = errors.New("invalid password")

type Service struct {
	hasher       security.PasswordHasher
	passwordHash string
	log          *logger.Logger
}

// NewService checks logins against passwordHash. An empty hash opens the gate
// for any password.
func NewService(hasher security.PasswordHasher, passwordHash string, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if passwordHash == "" {
		log.Warn("gate password hash is empty, any password opens the gate")
	}
	return &Service{hasher: hasher, passwordHash: passwordHash, log: log}
}

// Login sets the flag when password matches.
func (s *Service) Login(ctx context.Context, store *storage.Adapter, password string) error {
	if s.passwordHash != "" {
		if err := s.hasher.Compare(s.passwordHash, password); err != nil {
			if !errors.Is(err, security.ErrMismatch) {
				s.log.Error(err, "gate password hash is unusable")
			}
			return apperrors.Unauthorized(ErrInvalidPassword)
		}
	}
	store.Save(ctx, storage.KeyAdminGate, true)
	return nil
}

// Logout clears the flag.
func (s *Service) Logout(ctx context.Context, store *storage.Adapter) {
	store.Remove(ctx, storage.KeyAdminGate)
}

// IsOpen reports the flag; absence means closed.
func (s *Service) IsOpen(ctx context.Context, store *storage.Adapter) bool {
	var open bool
	return store.Load(ctx, storage.KeyAdminGate, &open) && open
}
