package bans

import (
	"context"
	"errors"
	"testing"

	"github.com/neverluckskr/TSObukhivBot/internal/domain/model"
	pgrepo "github.com/neverluckskr/TSObukhivBot/internal/repo/postgres"
)

type userRepoStub struct {
	users map[int64]*model.User
}

func newUserRepoStub(users ...model.User) *userRepoStub {
	stub := &userRepoStub{users: make(map[int64]*model.User)}
	for i := range users {
		u := users[i]
		stub.users[u.UserID] = &u
	}
	return stub
}

func (r *userRepoStub) GetByID(_ context.Context, userID int64) (model.User, error) {
	user, ok := r.users[userID]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return *user, nil
}

func (r *userRepoStub) SetBanned(_ context.Context, userID int64, banned bool) error {
	user, ok := r.users[userID]
	if !ok {
		return pgrepo.ErrUserNotFound
	}
	user.IsBanned = banned
	return nil
}

type postCounterStub struct {
	counts map[int64]int
	err    error
}

func (r *postCounterStub) CountByUser(_ context.Context, userID int64) (int, error) {
	return r.counts[userID], r.err
}

func TestIsBannedUnknownUser(t *testing.T) {
	svc := NewService(newUserRepoStub(), &postCounterStub{})

	banned, err := svc.IsBanned(context.Background(), 1)
	if err != nil {
		t.Fatalf("IsBanned: %v", err)
	}
	if banned {
		t.Fatal("unknown user must not be banned")
	}
}

func TestBanUnbanRoundTrip(t *testing.T) {
	users := newUserRepoStub(model.User{UserID: 7, Username: "author"})
	svc := NewService(users, &postCounterStub{})
	ctx := context.Background()

	if err := svc.Ban(ctx, 7); err != nil {
		t.Fatalf("Ban: %v", err)
	}
	banned, err := svc.IsBanned(ctx, 7)
	if err != nil || !banned {
		t.Fatalf("after Ban: banned=%v err=%v", banned, err)
	}

	if err := svc.Unban(ctx, 7); err != nil {
		t.Fatalf("Unban: %v", err)
	}
	banned, err = svc.IsBanned(ctx, 7)
	if err != nil || banned {
		t.Fatalf("after Unban: banned=%v err=%v", banned, err)
	}
}

func TestBanMissingUser(t *testing.T) {
	svc := NewService(newUserRepoStub(), &postCounterStub{})

	if err := svc.Ban(context.Background(), 404); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestUserCard(t *testing.T) {
	users := newUserRepoStub(model.User{UserID: 7, Username: "author", FirstName: "A"})
	svc := NewService(users, &postCounterStub{counts: map[int64]int{7: 3}})

	card, err := svc.UserCard(context.Background(), 7)
	if err != nil {
		t.Fatalf("UserCard: %v", err)
	}
	if card.User.UserID != 7 || card.PostCount != 3 {
		t.Fatalf("card = %+v", card)
	}
}

func TestUserCardMissing(t *testing.T) {
	svc := NewService(newUserRepoStub(), &postCounterStub{})

	if _, err := svc.UserCard(context.Background(), 404); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}
