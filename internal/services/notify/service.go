package notify

import (
	"context"

	"go.uber.org/zap"
)

// DeliverFunc sends one rendered notification to one recipient. Rendering
// stays with the caller; the service only owns the fan-out discipline.
// fallback is set when the resolved recipient set was empty and the static
// owners are being notified instead, so the payload can carry the
// unassigned warning.
type DeliverFunc func(ctx context.Context, recipientID int64, fallback bool) error

// Report lists per-recipient outcomes of one fan-out. The caller decides
// whether aggregate failure is actionable.
type Report struct {
	Delivered []int64
	Failed    map[int64]error

	// UsedFallback is set when the resolved recipient set was empty and
	// the static owner set was notified instead.
	UsedFallback bool
}

func (r Report) AllFailed() bool {
	return len(r.Delivered) == 0 && len(r.Failed) > 0
}

type Service struct {
	owners []int64
	logger *zap.Logger
}

func NewService(owners []int64, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{owners: owners, logger: logger}
}

// FanOut delivers to every recipient independently. A failure for one
// recipient never aborts delivery to the rest. An empty recipient set
// falls back to the static owners, also best-effort.
func (s *Service) FanOut(ctx context.Context, recipients []int64, deliver DeliverFunc) Report {
	report := Report{Failed: make(map[int64]error)}

	if len(recipients) == 0 {
		recipients = s.owners
		report.UsedFallback = true
		s.logger.Warn("fan-out recipient set is empty, falling back to owners",
			zap.Int("owner_count", len(s.owners)))
	}

	for _, recipientID := range recipients {
		if err := deliver(ctx, recipientID, report.UsedFallback); err != nil {
			report.Failed[recipientID] = err
			s.logger.Warn("notification delivery failed",
				zap.Int64("recipient_id", recipientID),
				zap.Error(err))
			continue
		}
		report.Delivered = append(report.Delivered, recipientID)
	}

	return report
}
