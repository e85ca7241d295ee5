package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/sidhilynx/internal/common"
	"github.com/dmitrijs2005/sidhilynx/internal/server/models"
	"github.com/dmitrijs2005/sidhilynx/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

var (
	handleDisallowed = regexp.MustCompile(`[^a-z0-9._]`)
	whitespace       = regexp.MustCompile(`\s+`)
)

// NormalizeHandleName lowercases name and drops everything outside
// [a-z0-9._]; the result is the local part of an identity handle.
func NormalizeHandleName(name string) string {
	return handleDisallowed.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "")
}

// NormalizeUsername lowercases name and removes whitespace only.
func NormalizeUsername(name string) string {
	return strings.ToLower(whitespace.ReplaceAllString(name, ""))
}

// NewUserID returns "SIDHI_" followed by 12 upper-case hex characters.
func NewUserID() string {
	u := uuid.New()
	return "SIDHI_" + strings.ToUpper(strings.ReplaceAll(u.String(), "-", "")[:12])
}

// UserService provisions accounts. It stands in for the registration flow,
// which lives outside this service.
type UserService struct {
	repomanager  repomanager.RepositoryManager
	handleDomain string
	now          func() time.Time
}

func NewUserService(m repomanager.RepositoryManager, handleDomain string, now func() time.Time) *UserService {
	if now == nil {
		now = time.Now
	}
	return &UserService{repomanager: m, handleDomain: handleDomain, now: now}
}

// Register creates an active user with handle "<name>@<domain>". Taken
// emails and handles yield common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	name := NormalizeHandleName(username)
	email = strings.TrimSpace(email)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: username has no usable characters", common.ErrMalformedInput)
	case !strings.Contains(email, "@"):
		return nil, fmt.Errorf("%w: invalid email", common.ErrMalformedInput)
	case password == "":
		return nil, fmt.Errorf("%w: empty password", common.ErrMalformedInput)
	}

	handle := name + "@" + s.handleDomain
	repo := s.repomanager.Repositories().Users

	if err := s.ensureFree(repo.GetByEmail(ctx, email)); err != nil {
		return nil, fmt.Errorf("email %s: %w", email, err)
	}
	if err := s.ensureFree(repo.GetByHandle(ctx, handle)); err != nil {
		return nil, fmt.Errorf("identity handle %s: %w", handle, err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return repo.Create(ctx, &models.User{
		ID:             NewUserID(),
		IdentityHandle: handle,
		UserName:       NormalizeUsername(username),
		Email:          email,
		PasswordHash:   hash,
		IsActive:       true,
		CreatedAt:      s.now().UTC(),
	})
}

func (s *UserService) ensureFree(_ *models.User, err error) error {
	if err == nil {
		return common.ErrorAlreadyExists
	}
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	return err
}
