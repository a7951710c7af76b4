package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinica/clinica/internal/platform/httperr"
	"github.com/clinica/clinica/internal/platform/session"
)

// TxRunner runs fn atomically. The production runner wraps a database
// transaction; tests run fn directly.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	repo     Repository
	sessions session.Store
	codes    session.CodeStore
	logger   zerolog.Logger
	runTx    TxRunner
	now      func() time.Time
}

func NewService(repo Repository, sessions session.Store, codes session.CodeStore, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		codes:    codes,
		logger:   logger,
		runTx:    func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) },
		now:      time.Now,
	}
}

// SetTxRunner attaches the transactional runner used by Promote.
func (s *Service) SetTxRunner(run TxRunner) {
	s.runTx = run
}

// Register creates a new account. Admin-only at the HTTP layer. An
// omitted role defaults to doctor.
func (s *Service) Register(ctx context.Context, email, name, password, role string) (*Account, error) {
	if role == "" {
		role = RoleDoctor
	}
	if !validRole(role) {
		return nil, fmt.Errorf("unknown role %q: %w", role, httperr.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	acc := &Account{
		Email:        strings.TrimSpace(email),
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.repo.Create(ctx, acc); err != nil {
		return nil, err
	}

	s.logger.Info().Str("email", acc.Email).Str("role", acc.Role).Msg("account registered")
	return acc, nil
}

// Authenticate verifies the credentials and opens a session. With
// remember the session is stored with a 30-day expiry; without it the
// session has no stored expiry and lives until logout.
func (s *Service) Authenticate(ctx context.Context, email, password string, remember bool) (*Account, string, error) {
	acc, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, "", httperr.ErrInvalidCredentials
	}

	token, err := session.NewToken()
	if err != nil {
		return nil, "", err
	}

	var ttl time.Duration
	if remember {
		ttl = session.RememberDuration
	}
	if err := s.sessions.Save(ctx, token, identityOf(acc), ttl); err != nil {
		return nil, "", fmt.Errorf("open session: %w", err)
	}

	s.logger.Info().Str("email", acc.Email).Bool("remember", remember).Msg("login")
	return acc, token, nil
}

// Logout destroys the session. Destroying an already-invalid token
// still succeeds.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile applies the supplied fields to the caller's own account
// and refreshes the live session so later requests see the new identity.
func (s *Service) UpdateProfile(ctx context.Context, token string, id uuid.UUID, email, name *string) (*Account, error) {
	// A supplied blank counts as absent, same as the request-field gate.
	if email != nil && strings.TrimSpace(*email) == "" {
		email = nil
	}
	if name != nil && strings.TrimSpace(*name) == "" {
		name = nil
	}
	if email == nil && name == nil {
		return nil, fmt.Errorf("nothing to update: %w", httperr.ErrValidation)
	}

	if email != nil {
		inUse, err := s.repo.EmailInUseByOther(ctx, *email, id)
		if err != nil {
			return nil, err
		}
		if inUse {
			return nil, fmt.Errorf("email %s already registered: %w", *email, httperr.ErrConflict)
		}
	}

	if err := s.repo.UpdateProfile(ctx, id, email, name); err != nil {
		return nil, err
	}

	acc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if token != "" {
		if err := s.sessions.Refresh(ctx, token, identityOf(acc)); err != nil {
			return nil, fmt.Errorf("refresh session: %w", err)
		}
	}
	return acc, nil
}

// ChangePassword verifies the current password before storing the new
// hash.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, current, updated string) error {
	acc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(current)); err != nil {
		return fmt.Errorf("current password does not match: %w", httperr.ErrInvalidCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(updated), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, id, string(hash))
}

// IssueRecoveryCode generates a 6-digit code valid for 15 minutes and
// stores it keyed by email, replacing any pending code. Delivery is a
// log line; no mail is sent.
func (s *Service) IssueRecoveryCode(ctx context.Context, email string) error {
	acc, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := session.NewCode()
	if err != nil {
		return err
	}

	rc := session.RecoveryCode{Code: code, ExpiresAt: s.now().Add(session.CodeTTL)}
	if err := s.codes.Put(ctx, acc.Email, rc); err != nil {
		return fmt.Errorf("store recovery code: %w", err)
	}

	s.logger.Info().
		Str("email", acc.Email).
		Str("code", code).
		Time("expires_at", rc.ExpiresAt).
		Msg("recovery code issued")
	return nil
}

// ResetWithCode redeems a pending recovery code and sets the new
// password. Codes are single use: a successful redemption deletes the
// code, an expired one is discarded, a wrong code stays pending.
func (s *Service) ResetWithCode(ctx context.Context, email, code, newPassword string) error {
	acc, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	rc, err := s.codes.Get(ctx, acc.Email)
	if err != nil {
		return fmt.Errorf("load recovery code: %w", err)
	}
	if rc == nil {
		return fmt.Errorf("no recovery code requested: %w", httperr.ErrValidation)
	}
	if s.now().After(rc.ExpiresAt) {
		_ = s.codes.Delete(ctx, acc.Email)
		return fmt.Errorf("recovery code expired: %w", httperr.ErrValidation)
	}
	if rc.Code != code {
		return fmt.Errorf("incorrect recovery code: %w", httperr.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, acc.ID, string(hash)); err != nil {
		return err
	}

	if err := s.codes.Delete(ctx, acc.Email); err != nil {
		return fmt.Errorf("discard recovery code: %w", err)
	}

	s.logger.Info().Str("email", acc.Email).Msg("password reset via recovery code")
	return nil
}

// ListAccounts returns the active accounts, ordered by name.
func (s *Service) ListAccounts(ctx context.Context) ([]*Account, error) {
	return s.repo.List(ctx)
}

// Promote raises an account to admin. The read and the write run in
// one transaction so two concurrent promotions cannot lose an update.
func (s *Service) Promote(ctx context.Context, id uuid.UUID) (*Account, error) {
	var acc *Account
	err := s.runTx(ctx, func(ctx context.Context) error {
		var err error
		acc, err = s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if acc.Role == RoleAdmin {
			return nil
		}
		if err := s.repo.UpdateRole(ctx, id, RoleAdmin); err != nil {
			return err
		}
		acc.Role = RoleAdmin
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("email", acc.Email).Msg("account promoted to admin")
	return acc, nil
}

func identityOf(acc *Account) session.Identity {
	return session.Identity{
		AccountID: acc.ID,
		Email:     acc.Email,
		Name:      acc.Name,
		Role:      acc.Role,
	}
}
