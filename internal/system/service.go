package system

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/system/entity"
	logrepo "github.com/ovaphlow/pitchfork/service-barangay/internal/system/repo"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/pagination"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/utilities"
)

// Counter reports one figure of the statistics summary.
type Counter func(ctx context.Context) (int, error)

// Counters supplies every figure of entity.Stats. All fields are required.
type Counters struct {
	Households          Counter
	FamilyMembers       Counter
	CertificateRequests Counter
	BlotterRecords      Counter
	Complaints          Counter
	Announcements       Counter
	StaffUsers          Counter
}

type Service struct {
	repo     *logrepo.LogRepo
	counters Counters
	logger   *zap.SugaredLogger
}

func NewService(r *logrepo.LogRepo, counters Counters, logger *zap.SugaredLogger) *Service {
	return &Service{repo: r, counters: counters, logger: logger}
}

// Record appends an audit entry with a snowflake id.
func (s *Service) Record(ctx context.Context, e entity.Entry) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return err
	}
	l := &entity.Log{ID: utilities.NewSnowflakeID(), Action: e.Action, Details: details}
	if e.UserID != "" {
		l.UserID = &e.UserID
	}
	if e.IPAddress != "" {
		l.IPAddress = &e.IPAddress
	}
	return s.repo.Insert(ctx, l)
}

// Logs pages through the audit trail. The default page size is larger than other lists.
func (s *Service) Logs(ctx context.Context, p pagination.Params, f entity.Filter) ([]entity.Log, pagination.Descriptor, error) {
	if f.UserID != "" && !utilities.IsUUID(f.UserID) {
		return nil, pagination.Descriptor{}, apperr.Field("user_id", "must be a valid UUID")
	}
	out, total, err := s.repo.List(ctx, f, p)
	if err != nil {
		return nil, pagination.Descriptor{}, apperr.FromStore(err, "System log not found", "")
	}
	return out, p.Describe(total), nil
}

// Stats runs every count concurrently. The first failure cancels the rest.
func (s *Service) Stats(ctx context.Context) (*entity.Stats, error) {
	var out entity.Stats
	g, gctx := errgroup.WithContext(ctx)
	run := func(c Counter, dst *int) {
		g.Go(func() error {
			n, err := c(gctx)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}
	run(s.counters.Households, &out.Households)
	run(s.counters.FamilyMembers, &out.FamilyMembers)
	run(s.counters.CertificateRequests, &out.CertificateRequests)
	run(s.counters.BlotterRecords, &out.BlotterRecords)
	run(s.counters.Complaints, &out.Complaints)
	run(s.counters.Announcements, &out.Announcements)
	run(s.counters.StaffUsers, &out.StaffUsers)
	if err := g.Wait(); err != nil {
		s.logger.Errorw("statistics failed", "err", err)
		return nil, err
	}
	return &out, nil
}
