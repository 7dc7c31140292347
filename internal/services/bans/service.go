package bans

import (
	"context"
	"errors"
	"fmt"

	"github.com/neverluckskr/TSObukhivBot/internal/domain/model"
	pgrepo "github.com/neverluckskr/TSObukhivBot/internal/repo/postgres"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepo interface {
	GetByID(ctx context.Context, userID int64) (model.User, error)
	SetBanned(ctx context.Context, userID int64, banned bool) error
}

type PostCounter interface {
	CountByUser(ctx context.Context, userID int64) (int, error)
}

// Card is the per-author profile shown to moderators: the account plus
// how many submissions it has made.
type Card struct {
	User      model.User
	PostCount int
}

// Service gates submissions on the author's ban flag and drives the
// moderator-facing ban toggle.
type Service struct {
	users UserRepo
	posts PostCounter
}

func NewService(users UserRepo, posts PostCounter) *Service {
	return &Service{users: users, posts: posts}
}

// IsBanned reports whether the author may submit. Unknown users are not
// banned: the first contact creates the account.
func (s *Service) IsBanned(ctx context.Context, userID int64) (bool, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get user %d: %w", userID, err)
	}
	return user.IsBanned, nil
}

func (s *Service) Ban(ctx context.Context, userID int64) error {
	return s.setBanned(ctx, userID, true)
}

func (s *Service) Unban(ctx context.Context, userID int64) error {
	return s.setBanned(ctx, userID, false)
}

func (s *Service) setBanned(ctx context.Context, userID int64, banned bool) error {
	if err := s.users.SetBanned(ctx, userID, banned); err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("set banned=%v for user %d: %w", banned, userID, err)
	}
	return nil
}

// UserCard loads the moderator-facing profile for an author.
func (s *Service) UserCard(ctx context.Context, userID int64) (Card, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return Card{}, ErrUserNotFound
		}
		return Card{}, fmt.Errorf("get user %d: %w", userID, err)
	}
	count, err := s.posts.CountByUser(ctx, userID)
	if err != nil {
		return Card{}, fmt.Errorf("count posts for user %d: %w", userID, err)
	}
	return Card{User: user, PostCount: count}, nil
}
