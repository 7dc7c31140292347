package stats

import (
	"context"
	"fmt"

	pgrepo "github.com/neverluckskr/TSObukhivBot/internal/repo/postgres"
)

type Repo interface {
	CountByStatus(ctx context.Context) (pgrepo.StatusCounts, error)
}

// Summary is the moderation queue digest shown to moderators.
type Summary struct {
	Total    int
	Pending  int
	Approved int
	Rejected int
}

type Service struct {
	repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("count posts by status: %w", err)
	}
	return Summary{
		Total:    counts.Total,
		Pending:  counts.Pending,
		Approved: counts.Approved,
		Rejected: counts.Rejected,
	}, nil
}
