package complaint

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/complaint/entity"
	complaintrepo "github.com/ovaphlow/pitchfork/service-barangay/internal/complaint/repo"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/identity"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/httpx"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/pagination"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/utilities"
)

var ErrNotFound = apperr.NotFound("Complaint not found")

type Service struct {
	repo   *complaintrepo.ComplaintRepo
	logger *zap.SugaredLogger
}

func NewService(r *complaintrepo.ComplaintRepo, logger *zap.SugaredLogger) *Service {
	return &Service{repo: r, logger: logger}
}

func (s *Service) store(err error) error {
	return apperr.FromStore(err, ErrNotFound.Message, "Complaint already exists")
}

type FileInput struct {
	ReporterName     string  `json:"reporter_name" validate:"required,min=2,max=255"`
	ReporterPhotoURL *string `json:"reporter_photo_url" validate:"omitempty,url"`
	IncidentPhotoURL *string `json:"incident_photo_url" validate:"omitempty,url"`
	ReportedPerson   *string `json:"reported_person"`
	ComplaintDetails string  `json:"complaint_details" validate:"required,min=10"`
}

// File records an anonymous complaint. Only the receipt goes back to the reporter.
func (s *Service) File(ctx context.Context, in FileInput) (*entity.Receipt, error) {
	in.ReporterName = strings.TrimSpace(in.ReporterName)
	in.ComplaintDetails = strings.TrimSpace(in.ComplaintDetails)
	if err := httpx.Validate(in); err != nil {
		return nil, err
	}
	c := &entity.Complaint{
		ID:               utilities.NewUUID(),
		ReporterName:     in.ReporterName,
		ReporterPhotoURL: in.ReporterPhotoURL,
		IncidentPhotoURL: in.IncidentPhotoURL,
		ReportedPerson:   in.ReportedPerson,
		ComplaintDetails: in.ComplaintDetails,
	}
	receipt, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, s.store(err)
	}
	s.logger.Infow("complaint filed", "id", receipt.ID)
	return receipt, nil
}

func (s *Service) List(ctx context.Context, p pagination.Params) ([]entity.Summary, pagination.Descriptor, error) {
	if err := p.CheckStatus(entity.Statuses...); err != nil {
		return nil, pagination.Descriptor{}, err
	}
	out, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, pagination.Descriptor{}, s.store(err)
	}
	return out, p.Describe(total), nil
}

func (s *Service) Get(ctx context.Context, id string) (*entity.Complaint, error) {
	if !utilities.IsUUID(id) {
		return nil, ErrNotFound
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.store(err)
	}
	return c, nil
}

type StatusInput struct {
	Status string `json:"status" validate:"required,oneof=pending validated resolved archived"`
}

// UpdateStatus moves a complaint to any defined status and records the reviewer.
func (s *Service) UpdateStatus(ctx context.Context, caller identity.Identity, id string, in StatusInput) (*entity.Complaint, error) {
	if err := httpx.Validate(in); err != nil {
		return nil, apperr.Validation("Invalid status", map[string]string{"status": "must be one of " + strings.Join(entity.Statuses, ", ")})
	}
	if !utilities.IsUUID(id) {
		return nil, ErrNotFound
	}
	upd := sqlbuild.NewUpdate(entity.Table).
		Set(entity.ColStatus, in.Status).
		Set(entity.ColReviewedBy, caller.UserID)
	c, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, s.store(err)
	}
	s.logger.Infow("complaint status updated", "id", id, "status", in.Status, "reviewed_by", caller.UserID)
	return c, nil
}

// Count returns the number of complaints with status, or all of them when status is empty.
func (s *Service) Count(ctx context.Context, status string) (int, error) {
	n, err := s.repo.CountByStatus(ctx, status)
	if err != nil {
		return 0, s.store(err)
	}
	return n, nil
}
