package announcement

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/announcement/entity"
	annrepo "github.com/ovaphlow/pitchfork/service-barangay/internal/announcement/repo"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/identity"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/httpx"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/pagination"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/utilities"
)

var ErrNotFound = apperr.NotFound("Announcement not found")

type Service struct {
	repo   *annrepo.AnnouncementRepo
	logger *zap.SugaredLogger
}

func NewService(r *annrepo.AnnouncementRepo, logger *zap.SugaredLogger) *Service {
	return &Service{repo: r, logger: logger}
}

func (s *Service) store(err error) error {
	return apperr.FromStore(err, ErrNotFound.Message, "Announcement already exists")
}

func (s *Service) List(ctx context.Context, p pagination.Params) ([]entity.Announcement, pagination.Descriptor, error) {
	out, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, pagination.Descriptor{}, s.store(err)
	}
	return out, p.Describe(total), nil
}

func (s *Service) Get(ctx context.Context, id string) (*entity.Announcement, error) {
	if !utilities.IsUUID(id) {
		return nil, ErrNotFound
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.store(err)
	}
	return a, nil
}

type CreateInput struct {
	Title   string `json:"title" validate:"required,min=5,max=255"`
	Content string `json:"content" validate:"required,min=10"`
}

func (s *Service) Create(ctx context.Context, caller identity.Identity, in CreateInput) (*entity.Announcement, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if err := httpx.Validate(in); err != nil {
		return nil, err
	}
	a := &entity.Announcement{ID: utilities.NewUUID(), Title: in.Title, Content: in.Content, PostedBy: &caller.UserID}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, s.store(err)
	}
	s.logger.Infow("announcement posted", "id", a.ID, "posted_by", caller.UserID)
	return a, nil
}

type UpdateInput struct {
	Title   sqlbuild.Optional[string] `json:"title"`
	Content sqlbuild.Optional[string] `json:"content"`
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*entity.Announcement, error) {
	if !utilities.IsUUID(id) {
		return nil, ErrNotFound
	}
	if err := httpx.Collect(
		httpx.Optional("title", in.Title, "min=5,max=255", false),
		httpx.Optional("content", in.Content, "min=10", false),
	); err != nil {
		return nil, err
	}
	upd := sqlbuild.NewUpdate(entity.Table)
	sqlbuild.SetOpt(upd, entity.ColTitle, in.Title)
	sqlbuild.SetOpt(upd, entity.ColContent, in.Content)
	a, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, s.store(err)
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if !utilities.IsUUID(id) {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.store(err)
	}
	return nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, s.store(err)
	}
	return n, nil
}
