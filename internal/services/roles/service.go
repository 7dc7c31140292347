package roles

import (
	"context"
	"errors"

	"github.com/neverluckskr/TSObukhivBot/internal/domain/enums"
	"github.com/neverluckskr/TSObukhivBot/internal/domain/model"
)

var (
	// ErrAccessDenied means the actor has no moderation rights at all.
	ErrAccessDenied = errors.New("access denied")

	// ErrOwnerOnly means the actor is a moderator but the action is
	// reserved for owners. The two are distinguished so the bot can show
	// the right message.
	ErrOwnerOnly = errors.New("owner-only action")
)

type Repo interface {
	Exists(context.Context, int64) (bool, error)
	Add(context.Context, int64, string) (model.Moderator, error)
	List(context.Context) ([]model.Moderator, error)
	UpdateUsername(context.Context, int64, string) error
}

type UserStore interface {
	GetOrCreate(ctx context.Context, userID int64, username, firstName string) (model.User, error)
}

// Service is the role registry: the static owner and moderator sets fixed
// at process start, unioned with moderators added at runtime through the
// store. Dynamic membership is read fresh on every check so a freshly
// added moderator is recognized without a restart.
type Service struct {
	staticModerators map[int64]struct{}
	owners           map[int64]struct{}
	ownerList        []int64
	repo             Repo
	users            UserStore
}

func NewService(staticModerators, owners []int64, repo Repo, users UserStore) *Service {
	s := &Service{
		staticModerators: make(map[int64]struct{}, len(staticModerators)),
		owners:           make(map[int64]struct{}, len(owners)),
		repo:             repo,
		users:            users,
	}
	for _, id := range staticModerators {
		s.staticModerators[id] = struct{}{}
	}
	for _, id := range owners {
		if _, seen := s.owners[id]; seen {
			continue
		}
		s.owners[id] = struct{}{}
		s.ownerList = append(s.ownerList, id)
	}
	return s
}

func (s *Service) ResolveRole(ctx context.Context, actorID int64) (enums.Role, error) {
	if _, ok := s.owners[actorID]; ok {
		return enums.RoleOwner, nil
	}
	if _, ok := s.staticModerators[actorID]; ok {
		return enums.RoleModerator, nil
	}

	if s.repo != nil {
		exists, err := s.repo.Exists(ctx, actorID)
		if err != nil {
			return enums.RoleNone, err
		}
		if exists {
			return enums.RoleModerator, nil
		}
	}

	return enums.RoleNone, nil
}

func (s *Service) IsModerator(ctx context.Context, actorID int64) (bool, error) {
	role, err := s.ResolveRole(ctx, actorID)
	if err != nil {
		return false, err
	}
	return role == enums.RoleModerator || role == enums.RoleOwner, nil
}

// IsOwner checks the static owner set only. Owners are not demotable at
// runtime.
func (s *Service) IsOwner(actorID int64) bool {
	_, ok := s.owners[actorID]
	return ok
}

// Recipients is the fan-out set: owners, static moderators and dynamic
// moderators, deduplicated, order unspecified.
func (s *Service) Recipients(ctx context.Context) ([]int64, error) {
	seen := make(map[int64]struct{}, len(s.owners)+len(s.staticModerators))
	recipients := make([]int64, 0, len(s.owners)+len(s.staticModerators))

	add := func(id int64) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		recipients = append(recipients, id)
	}

	for _, id := range s.ownerList {
		add(id)
	}
	for id := range s.staticModerators {
		add(id)
	}

	if s.repo != nil {
		moderators, err := s.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, moderator := range moderators {
			add(moderator.ModeratorID)
		}
	}

	return recipients, nil
}

// AddModerator grants the moderator role. Owner-only. A shadow user record
// is created so statistics and info lookups never miss the foreign key.
func (s *Service) AddModerator(ctx context.Context, actorID, targetID int64, username string) (model.Moderator, error) {
	if err := s.requireOwner(ctx, actorID); err != nil {
		return model.Moderator{}, err
	}

	if s.users != nil {
		if _, err := s.users.GetOrCreate(ctx, targetID, username, ""); err != nil {
			return model.Moderator{}, err
		}
	}

	return s.repo.Add(ctx, targetID, username)
}

// RenameModerator updates the display name snapshot. Owner-only.
func (s *Service) RenameModerator(ctx context.Context, actorID, targetID int64, username string) error {
	if err := s.requireOwner(ctx, actorID); err != nil {
		return err
	}
	return s.repo.UpdateUsername(ctx, targetID, username)
}

func (s *Service) ListModerators(ctx context.Context) ([]model.Moderator, error) {
	if s.repo == nil {
		return []model.Moderator{}, nil
	}
	return s.repo.List(ctx)
}

func (s *Service) requireOwner(ctx context.Context, actorID int64) error {
	if s.IsOwner(actorID) {
		return nil
	}

	isModerator, err := s.IsModerator(ctx, actorID)
	if err != nil {
		return err
	}
	if isModerator {
		return ErrOwnerOnly
	}
	return ErrAccessDenied
}
