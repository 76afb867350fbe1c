package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Flamchu/Slack-like-backend/internal/auth/activity"
	"github.com/Flamchu/Slack-like-backend/internal/auth/domain"
	"github.com/Flamchu/Slack-like-backend/internal/auth/store"
	"github.com/Flamchu/Slack-like-backend/pkg/cryptox"
	"github.com/Flamchu/Slack-like-backend/pkg/idx"
	"github.com/Flamchu/Slack-like-backend/pkg/slogx"
)

type UserService struct {
	Store    store.Store
	Hasher   *cryptox.Hasher
	Recorder activity.Recorder
	Now      func() time.Time
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Register creates an active account with the default role.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	now := s.now()
	email := NormalizeEmail(in.Email)

	_, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err == nil {
		return domain.User{}, ErrEmailTaken
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, fmt.Errorf("register: %w", err)
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("register: hash password: %w", err)
	}

	first, last := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	u := domain.User{
		ID:           idx.NewAt(now).String(),
		Email:        email,
		Name:         strings.TrimSpace(first + " " + last),
		FirstName:    first,
		LastName:     last,
		PasswordHash: hash,
		Role:         domain.UserRoleUser,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("register: %w", err)
	}

	slogx.FromContext(ctx).Info("user registered", slog.String("user_id", u.ID))
	s.recorder().Record(ctx, domain.ActivityEntry{
		Action:      domain.ActivityUserRegistered,
		Description: "User registered successfully",
		UserID:      u.ID,
	})
	return u, nil
}

// Login checks credentials. Unknown email and wrong password are reported
// the same way.
func (s *UserService) Login(ctx context.Context, email, password string) (domain.User, error) {
	now := s.now()
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("login: %w", err)
	}

	if err := s.Hasher.Verify(password, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Info("login failed", slog.String("user_id", u.ID))
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, fmt.Errorf("login: verify password: %w", err)
	}
	if !u.Active {
		return domain.User{}, ErrUserInactive
	}

	if err := s.Store.Users().TouchLastLogin(ctx, u.ID, now); err != nil {
		l.Warn("failed to record last login", slog.String("user_id", u.ID), slog.Any("err", err))
	} else {
		u.LastLoginAt = &now
	}

	s.recorder().Record(ctx, domain.ActivityEntry{
		Action:      domain.ActivityUserLogin,
		Description: "User logged in successfully",
		UserID:      u.ID,
	})
	return u, nil
}

// Profile fetches a user by id.
func (s *UserService) Profile(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("profile: %w", err)
	}
	return u, nil
}

func (s *UserService) recorder() activity.Recorder {
	if s.Recorder == nil {
		return activity.Nop{}
	}
	return s.Recorder
}

func (s *UserService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}
