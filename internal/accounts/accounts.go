package accounts

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/PolarWolf314/formvault/internal/configs"
	kerrors "github.com/PolarWolf314/formvault/internal/errors"
	logger "github.com/PolarWolf314/formvault/internal/logging"
	"github.com/PolarWolf314/formvault/internal/records"
	"github.com/PolarWolf314/formvault/internal/vault"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// ResetTokenBytes is the number of random bytes in a reset token.
const ResetTokenBytes = 16

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var validate = validator.New()

// Options configures a Service.
type Options struct {
	Settings *configs.Settings
	Store    *records.Store
	Logger   logger.Logger

	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// Service registers users and rotates their credentials.
type Service struct {
	settings *configs.Settings
	store    *records.Store
	log      logger.Logger
	cost     int
	now      func() time.Time
}

// NewService returns a Service configured by opts.
func NewService(opts Options) *Service {
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		settings: opts.Settings,
		store:    opts.Store,
		log:      opts.Logger,
		cost:     cost,
		now:      time.Now,
	}
}

// ValidateUsername checks that username is safe to use as a directory name.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: %q", kerrors.ErrInvalidUsername, username)
	}
	return nil
}

// Register creates a user with a bcrypt hash of password.
func (s *Service) Register(username, password, email string) (*configs.UserConfig, error) {
	email = strings.TrimSpace(email)
	if username == "" || password == "" || email == "" {
		return nil, errors.New("username, password and email are required")
	}
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validate.Var(email, "email"); err != nil {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrInvalidEmail, email)
	}

	if _, err := os.Stat(s.settings.UserDir(username)); err == nil {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrUserExists, username)
	}
	if owner, err := s.FindByEmail(email); err != nil {
		return nil, err
	} else if owner != "" {
		return nil, kerrors.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	cfg := &configs.UserConfig{User: configs.User{
		Username:     username,
		UUID:         configs.GenerateUserUUID(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC().Truncate(time.Second),
	}}
	if err := s.settings.SaveUserConfig(cfg); err != nil {
		return nil, err
	}

	s.log.Debugf("Registered user %s (%s)", username, cfg.User.UUID)
	return cfg, nil
}

// FindByEmail returns the username registered with email, or "" when none is.
// Emails are compared case-insensitively.
func (s *Service) FindByEmail(email string) (string, error) {
	names, err := s.settings.ListUsernames()
	if err != nil {
		return "", err
	}
	for _, name := range names {
		cfg, err := s.settings.LoadUserConfig(name)
		if err != nil {
			s.log.Warnf("Skipping unreadable user %s: %v", name, err)
			continue
		}
		if strings.EqualFold(cfg.User.Email, email) {
			return name, nil
		}
	}
	return "", nil
}

// Load returns the credential file of username.
func (s *Service) Load(username string) (*configs.UserConfig, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	cfg, err := s.settings.LoadUserConfig(username)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrUserNotFound, username)
	}
	return cfg, err
}

// Authenticate checks password against the stored hash of username.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Authenticate(username, password string) (*configs.UserConfig, error) {
	cfg, err := s.Load(username)
	if err != nil {
		if errors.Is(err, kerrors.ErrUserNotFound) || errors.Is(err, kerrors.ErrInvalidUsername) {
			return nil, kerrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cfg.User.PasswordHash), []byte(password)); err != nil {
		return nil, kerrors.ErrInvalidCredentials
	}
	return cfg, nil
}

// Key derives the record key of username from the stored hash.
func (s *Service) Key(username string) (vault.Key, error) {
	cfg, err := s.Load(username)
	if err != nil {
		return vault.Key{}, err
	}
	if vault.IsFallback(cfg.User.PasswordHash) {
		s.log.Warnf("User %s has no credential hash, records use a weak fallback key", username)
	}
	return vault.DeriveKey(username, cfg.User.PasswordHash), nil
}

// ChangePassword verifies currentPassword, re-keys every record file of
// username and then stores the hash of newPassword.
func (s *Service) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) (*records.RekeyReport, error) {
	cfg, err := s.Authenticate(username, currentPassword)
	if err != nil {
		return nil, err
	}
	return s.rotate(ctx, cfg, newPassword)
}

// GenerateResetToken issues a reset token for username valid for the
// configured lifetime, replacing any pending one.
func (s *Service) GenerateResetToken(username string) (string, time.Time, error) {
	cfg, err := s.Load(username)
	if err != nil {
		return "", time.Time{}, err
	}

	ttl, err := s.settings.TokenTTL()
	if err != nil {
		return "", time.Time{}, err
	}

	buf := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, fmt.Errorf("generating reset token: %w", err)
	}

	cfg.Reset = configs.ResetToken{
		Token:     hex.EncodeToString(buf),
		ExpiresAt: s.now().UTC().Add(ttl).Truncate(time.Second),
	}
	if err := s.settings.SaveUserConfig(cfg); err != nil {
		return "", time.Time{}, err
	}
	return cfg.Reset.Token, cfg.Reset.ExpiresAt, nil
}

// VerifyResetToken reports whether token is the pending, unexpired token of username.
func (s *Service) VerifyResetToken(username, token string) bool {
	cfg, err := s.Load(username)
	if err != nil {
		return false
	}
	return s.tokenValid(cfg, token)
}

func (s *Service) tokenValid(cfg *configs.UserConfig, token string) bool {
	if cfg.Reset.Token == "" || token == "" {
		return false
	}
	if !s.now().Before(cfg.Reset.ExpiresAt) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cfg.Reset.Token), []byte(token)) == 1
}

// ResetPassword sets a new password for username using a reset token.
// The token is consumed when the password changes.
func (s *Service) ResetPassword(ctx context.Context, username, token, newPassword string) (*records.RekeyReport, error) {
	cfg, err := s.Load(username)
	if err != nil {
		return nil, err
	}
	if !s.tokenValid(cfg, token) {
		return nil, kerrors.ErrInvalidResetToken
	}
	cfg.Reset = configs.ResetToken{}
	return s.rotate(ctx, cfg, newPassword)
}

// rotate re-keys the user's records to a hash of newPassword and saves it.
func (s *Service) rotate(ctx context.Context, cfg *configs.UserConfig, newPassword string) (*records.RekeyReport, error) {
	if newPassword == "" {
		return nil, errors.New("new password is required")
	}

	username := cfg.User.Username
	oldHash := cfg.User.PasswordHash

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	formsDir := s.settings.FormsDir(username)
	report, err := s.store.RekeyAllForms(ctx, formsDir, username, oldHash, string(newHash))
	if err == nil && report != nil {
		err = report.Err()
	}
	if err != nil {
		s.rollback(report, username, oldHash, string(newHash))
		return report, fmt.Errorf("re-encrypting records of %s, password unchanged: %w", username, err)
	}

	cfg.User.PasswordHash = string(newHash)
	if err := s.settings.SaveUserConfig(cfg); err != nil {
		s.rollback(report, username, oldHash, string(newHash))
		return report, err
	}

	s.log.Infof("Password changed for %s, %d record files re-encrypted", username, len(report.Rekeyed()))
	return report, nil
}

// rollback moves files the cascade already rewrote back to the old key.
func (s *Service) rollback(report *records.RekeyReport, username, oldHash, newHash string) {
	if report == nil {
		return
	}

	oldKey := vault.DeriveKey(username, oldHash)
	newKey := vault.DeriveKey(username, newHash)
	defer oldKey.Wipe()
	defer newKey.Wipe()

	for _, path := range report.Rekeyed() {
		if _, err := s.store.RekeyFile(path, newKey, oldKey); err != nil {
			s.log.Errorf("Failed to restore %s to the previous key: %v", path, err)
		}
	}
}
