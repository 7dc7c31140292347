package roles

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neverluckskr/TSObukhivBot/internal/domain/enums"
	"github.com/neverluckskr/TSObukhivBot/internal/domain/model"
)

type repoStub struct {
	moderators map[int64]model.Moderator
	listErr    error
}

func newRepoStub() *repoStub {
	return &repoStub{moderators: make(map[int64]model.Moderator)}
}

func (s *repoStub) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := s.moderators[id]
	return ok, nil
}

func (s *repoStub) Add(_ context.Context, id int64, username string) (model.Moderator, error) {
	moderator := model.Moderator{ModeratorID: id, Username: username, AddedAt: time.Now().UTC()}
	s.moderators[id] = moderator
	return moderator, nil
}

func (s *repoStub) List(context.Context) ([]model.Moderator, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]model.Moderator, 0, len(s.moderators))
	for _, moderator := range s.moderators {
		out = append(out, moderator)
	}
	return out, nil
}

func (s *repoStub) UpdateUsername(_ context.Context, id int64, username string) error {
	moderator, ok := s.moderators[id]
	if !ok {
		return errors.New("moderator not found")
	}
	moderator.Username = username
	s.moderators[id] = moderator
	return nil
}

type userStoreStub struct {
	created []int64
}

func (s *userStoreStub) GetOrCreate(_ context.Context, userID int64, username, firstName string) (model.User, error) {
	s.created = append(s.created, userID)
	return model.User{UserID: userID, Username: username, FirstName: firstName}, nil
}

func TestResolveRole(t *testing.T) {
	repo := newRepoStub()
	repo.moderators[300] = model.Moderator{ModeratorID: 300}
	svc := NewService([]int64{200}, []int64{100}, repo, &userStoreStub{})

	tests := []struct {
		name    string
		actorID int64
		want    enums.Role
	}{
		{name: "owner", actorID: 100, want: enums.RoleOwner},
		{name: "static moderator", actorID: 200, want: enums.RoleModerator},
		{name: "dynamic moderator", actorID: 300, want: enums.RoleModerator},
		{name: "stranger", actorID: 999, want: enums.RoleNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ResolveRole(context.Background(), tt.actorID)
			if err != nil {
				t.Fatalf("resolve role: %v", err)
			}
			if got != tt.want {
				t.Fatalf("unexpected role for %d: got %s want %s", tt.actorID, got, tt.want)
			}
		})
	}
}

func TestAddModeratorVisibleImmediately(t *testing.T) {
	repo := newRepoStub()
	users := &userStoreStub{}
	svc := NewService(nil, []int64{100}, repo, users)
	ctx := context.Background()

	if ok, _ := svc.IsModerator(ctx, 555); ok {
		t.Fatal("555 must not be a moderator before being added")
	}

	if _, err := svc.AddModerator(ctx, 100, 555, "new_mod"); err != nil {
		t.Fatalf("add moderator: %v", err)
	}

	ok, err := svc.IsModerator(ctx, 555)
	if err != nil {
		t.Fatalf("is moderator: %v", err)
	}
	if !ok {
		t.Fatal("555 must be recognized on the very next check")
	}

	if len(users.created) != 1 || users.created[0] != 555 {
		t.Fatalf("expected shadow user for 555, got %v", users.created)
	}
}

func TestAddModeratorPrivileges(t *testing.T) {
	repo := newRepoStub()
	repo.moderators[200] = model.Moderator{ModeratorID: 200}
	svc := NewService(nil, []int64{100}, repo, &userStoreStub{})
	ctx := context.Background()

	_, err := svc.AddModerator(ctx, 200, 556, "")
	if !errors.Is(err, ErrOwnerOnly) {
		t.Fatalf("moderator adding a moderator: expected ErrOwnerOnly, got %v", err)
	}

	_, err = svc.AddModerator(ctx, 999, 556, "")
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("stranger adding a moderator: expected ErrAccessDenied, got %v", err)
	}
}

func TestRecipientsUnionDeduplicated(t *testing.T) {
	repo := newRepoStub()
	repo.moderators[200] = model.Moderator{ModeratorID: 200}
	repo.moderators[300] = model.Moderator{ModeratorID: 300}
	// 200 is both static and dynamic, 100 is owner.
	svc := NewService([]int64{200}, []int64{100}, repo, &userStoreStub{})

	recipients, err := svc.Recipients(context.Background())
	if err != nil {
		t.Fatalf("recipients: %v", err)
	}

	seen := make(map[int64]int)
	for _, id := range recipients {
		seen[id]++
	}
	for _, id := range []int64{100, 200, 300} {
		if seen[id] != 1 {
			t.Fatalf("expected %d exactly once, got %d", id, seen[id])
		}
	}
	if len(recipients) != 3 {
		t.Fatalf("expected 3 recipients, got %d", len(recipients))
	}
}
