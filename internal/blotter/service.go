package blotter

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/blotter/entity"
	blotterrepo "github.com/ovaphlow/pitchfork/service-barangay/internal/blotter/repo"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/identity"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/httpx"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/pagination"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/utilities"
)

var ErrNotFound = apperr.NotFound("Blotter record not found")

type Service struct {
	repo   *blotterrepo.BlotterRepo
	logger *zap.SugaredLogger
}

func NewService(r *blotterrepo.BlotterRepo, logger *zap.SugaredLogger) *Service {
	return &Service{repo: r, logger: logger}
}

func (s *Service) store(err error) error {
	return apperr.FromStore(err, ErrNotFound.Message, "Blotter record already exists")
}

func (s *Service) List(ctx context.Context, p pagination.Params) ([]entity.Record, pagination.Descriptor, error) {
	out, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, pagination.Descriptor{}, s.store(err)
	}
	return out, p.Describe(total), nil
}

func (s *Service) Get(ctx context.Context, id string) (*entity.Record, error) {
	if !utilities.IsUUID(id) {
		return nil, ErrNotFound
	}
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.store(err)
	}
	return b, nil
}

type CreateInput struct {
	ComplainantName string  `json:"complainant_name" validate:"required,min=2,max=255"`
	RespondentName  *string `json:"respondent_name"`
	IncidentDetails string  `json:"incident_details" validate:"required,min=10"`
	Status          string  `json:"status" validate:"max=50"`
}

func (s *Service) Create(ctx context.Context, caller identity.Identity, in CreateInput) (*entity.Record, error) {
	in.ComplainantName = strings.TrimSpace(in.ComplainantName)
	in.IncidentDetails = strings.TrimSpace(in.IncidentDetails)
	if err := httpx.Validate(in); err != nil {
		return nil, err
	}
	b := &entity.Record{
		ID:              utilities.NewUUID(),
		ComplainantName: in.ComplainantName,
		RespondentName:  in.RespondentName,
		IncidentDetails: in.IncidentDetails,
		Status:          strings.TrimSpace(in.Status),
		CreatedBy:       &caller.UserID,
	}
	if b.Status == "" {
		b.Status = entity.DefaultStatus
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, s.store(err)
	}
	s.logger.Infow("blotter record created", "id", b.ID, "created_by", caller.UserID)
	return b, nil
}

type UpdateInput struct {
	ComplainantName sqlbuild.Optional[string] `json:"complainant_name"`
	RespondentName  sqlbuild.Optional[string] `json:"respondent_name"`
	IncidentDetails sqlbuild.Optional[string] `json:"incident_details"`
	Status          sqlbuild.Optional[string] `json:"status"`
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*entity.Record, error) {
	if !utilities.IsUUID(id) {
		return nil, ErrNotFound
	}
	if err := httpx.Collect(
		httpx.Optional("complainant_name", in.ComplainantName, "min=2,max=255", false),
		httpx.Optional("incident_details", in.IncidentDetails, "min=10", false),
		httpx.Optional("status", in.Status, "min=1,max=50", false),
	); err != nil {
		return nil, err
	}
	upd := sqlbuild.NewUpdate(entity.Table)
	sqlbuild.SetOpt(upd, entity.ColComplainantName, in.ComplainantName)
	sqlbuild.SetOpt(upd, entity.ColRespondentName, in.RespondentName)
	sqlbuild.SetOpt(upd, entity.ColIncidentDetails, in.IncidentDetails)
	sqlbuild.SetOpt(upd, entity.ColStatus, in.Status)
	b, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, s.store(err)
	}
	return b, nil
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
