package tag

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/tag/entity"
	tagrepo "github.com/ovaphlow/pitchfork/service-barangay/internal/tag/repo"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/httpx"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/pagination"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/utilities"
)

var (
	ErrNotFound        = apperr.NotFound("Tag not found")
	ErrNotAssigned     = apperr.NotFound("Tag assignment not found")
	ErrTagExists       = apperr.Conflict("Tag already exists")
	ErrAlreadyAssigned = apperr.Conflict("Tag already assigned to this member")
	ErrUnknownRef      = apperr.NotFound("Family member or tag not found")
)

type Service struct {
	repo   *tagrepo.TagRepo
	logger *zap.SugaredLogger
}

func NewService(r *tagrepo.TagRepo, logger *zap.SugaredLogger) *Service {
	return &Service{repo: r, logger: logger}
}

func (s *Service) store(err error, notFound string) error {
	return apperr.FromStore(err, notFound, ErrTagExists.Message)
}

func (s *Service) List(ctx context.Context) ([]entity.Tag, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.store(err, ErrNotFound.Message)
	}
	return out, nil
}

type CreateInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Tag, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := httpx.Validate(in); err != nil {
		return nil, err
	}
	t := &entity.Tag{ID: utilities.NewUUID(), Name: in.Name}
	if in.Description != nil {
		if d := strings.TrimSpace(*in.Description); d != "" {
			t.Description = &d
		}
	}
	if err := s.repo.Create(ctx, t); err != nil {
		if apperr.IsUniqueViolation(err, entity.NameConstraint) {
			return nil, ErrTagExists
		}
		return nil, s.store(err, ErrNotFound.Message)
	}
	return t, nil
}

type AssignInput struct {
	FamilyMemberID string `json:"family_member_id" validate:"required,uuid"`
	TagID          string `json:"tag_id" validate:"required,uuid"`
}

// Assign links a tag to a member. A second assignment of the same pair is a Conflict.
func (s *Service) Assign(ctx context.Context, in AssignInput) (*entity.Assignment, error) {
	if err := httpx.Validate(in); err != nil {
		return nil, err
	}
	a := &entity.Assignment{ID: utilities.NewUUID(), FamilyMemberID: in.FamilyMemberID, TagID: in.TagID}
	if err := s.repo.Assign(ctx, a); err != nil {
		if apperr.IsUniqueViolation(err, entity.PairConstraint) {
			return nil, ErrAlreadyAssigned
		}
		if apperr.KindOf(s.store(err, "")) == apperr.KindValidation {
			return nil, ErrUnknownRef
		}
		return nil, s.store(err, ErrNotFound.Message)
	}
	s.logger.Infow("tag assigned", "family_member_id", a.FamilyMemberID, "tag_id", a.TagID)
	return a, nil
}

func (s *Service) Unassign(ctx context.Context, in AssignInput) error {
	if err := httpx.Validate(in); err != nil {
		return err
	}
	if err := s.repo.Unassign(ctx, in.FamilyMemberID, in.TagID); err != nil {
		return s.store(err, ErrNotAssigned.Message)
	}
	return nil
}

// Residents lists the members holding a tag, ordered by name.
func (s *Service) Residents(ctx context.Context, tagID string, p pagination.Params) (*entity.Tag, []entity.Resident, pagination.Descriptor, error) {
	t, err := s.get(ctx, tagID)
	if err != nil {
		return nil, nil, pagination.Descriptor{}, err
	}
	out, total, err := s.repo.Residents(ctx, tagID, p.Limit, p.Offset())
	if err != nil {
		return nil, nil, pagination.Descriptor{}, s.store(err, ErrNotFound.Message)
	}
	return t, out, p.Describe(total), nil
}

// Export renders every resident holding a tag as an XLSX workbook.
func (s *Service) Export(ctx context.Context, tagID string) (*entity.Tag, []byte, error) {
	t, err := s.get(ctx, tagID)
	if err != nil {
		return nil, nil, err
	}
	out, _, err := s.repo.Residents(ctx, tagID, 0, 0)
	if err != nil {
		return nil, nil, s.store(err, ErrNotFound.Message)
	}
	b, err := GenerateResidentsExport(t.Name, out)
	if err != nil {
		s.logger.Errorw("residents export failed", "tag_id", tagID, "err", err)
		return nil, nil, apperr.Storage(err)
	}
	return t, b, nil
}

func (s *Service) get(ctx context.Context, id string) (*entity.Tag, error) {
	if !utilities.IsUUID(id) {
		return nil, ErrNotFound
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.store(err, ErrNotFound.Message)
	}
	return t, nil
}
