package certtemplate

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/certtemplate/entity"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/certtemplate/render"
	tplrepo "github.com/ovaphlow/pitchfork/service-barangay/internal/certtemplate/repo"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/identity"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/httpx"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/utilities"
)

var ErrNotFound = apperr.NotFound("Template not found")

type Service struct {
	repo   *tplrepo.TemplateRepo
	logger *zap.SugaredLogger
}

func NewService(r *tplrepo.TemplateRepo, logger *zap.SugaredLogger) *Service {
	return &Service{repo: r, logger: logger}
}

func (s *Service) store(err error) error {
	return apperr.FromStore(err, ErrNotFound.Message, "Template already exists")
}

func (s *Service) List(ctx context.Context, certificateType string) ([]entity.Template, error) {
	out, err := s.repo.List(ctx, strings.TrimSpace(certificateType))
	if err != nil {
		return nil, s.store(err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*entity.Template, error) {
	if !utilities.IsUUID(id) {
		return nil, ErrNotFound
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.store(err)
	}
	return t, nil
}

// FirstByType returns the default suggestion for a certificate type, or nil when none exists.
func (s *Service) FirstByType(ctx context.Context, certificateType string) (*entity.Template, error) {
	t, err := s.repo.FirstByType(ctx, certificateType)
	if err != nil {
		if e := s.store(err); apperr.KindOf(e) == apperr.KindNotFound {
			return nil, nil
		}
		return nil, s.store(err)
	}
	return t, nil
}

type CreateInput struct {
	Name                string  `json:"name" validate:"required"`
	CertificateType     string  `json:"certificate_type" validate:"required"`
	HTMLTemplate        string  `json:"html_template" validate:"required"`
	LogoURL             *string `json:"logo_url"`
	IncludeProfilePhoto bool    `json:"include_profile_photo"`
}

func (s *Service) Create(ctx context.Context, caller identity.Identity, in CreateInput) (*entity.Template, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.CertificateType = strings.TrimSpace(in.CertificateType)
	if err := httpx.Validate(in); err != nil {
		return nil, err
	}
	t := &entity.Template{
		ID:                  utilities.NewUUID(),
		Name:                in.Name,
		CertificateType:     in.CertificateType,
		HTMLTemplate:        in.HTMLTemplate,
		LogoURL:             emptyToNil(in.LogoURL),
		IncludeProfilePhoto: in.IncludeProfilePhoto,
	}
	if caller.UserID != "" {
		t.CreatedBy = &caller.UserID
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, s.store(err)
	}
	s.logger.Infow("certificate template created", "template_id", t.ID, "certificate_type", t.CertificateType)
	return t, nil
}

type UpdateInput struct {
	Name                sqlbuild.Optional[string] `json:"name"`
	CertificateType     sqlbuild.Optional[string] `json:"certificate_type"`
	HTMLTemplate        sqlbuild.Optional[string] `json:"html_template"`
	LogoURL             sqlbuild.Optional[string] `json:"logo_url"`
	IncludeProfilePhoto sqlbuild.Optional[bool]   `json:"include_profile_photo"`
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*entity.Template, error) {
	if !utilities.IsUUID(id) {
		return nil, ErrNotFound
	}
	if err := httpx.Collect(
		httpx.Optional("name", in.Name, "required", false),
		httpx.Optional("certificate_type", in.CertificateType, "required", false),
		httpx.Optional("html_template", in.HTMLTemplate, "required", false),
	); err != nil {
		return nil, err
	}
	// a null flag means "off"
	if in.IncludeProfilePhoto.Null {
		in.IncludeProfilePhoto = sqlbuild.Some(false)
	}
	upd := sqlbuild.NewUpdate(entity.Table)
	sqlbuild.SetOpt(upd, entity.ColName, in.Name)
	sqlbuild.SetOpt(upd, entity.ColCertificateType, in.CertificateType)
	sqlbuild.SetOpt(upd, entity.ColHTMLTemplate, in.HTMLTemplate)
	sqlbuild.SetOpt(upd, entity.ColLogoURL, in.LogoURL)
	sqlbuild.SetOpt(upd, entity.ColIncludeProfilePhoto, in.IncludeProfilePhoto)
	t, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, s.store(err)
	}
	return t, nil
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

// SeedDefault inserts the default template when the table is empty. It reports whether a row was added.
func (s *Service) SeedDefault(ctx context.Context) (bool, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return false, s.store(err)
	}
	if n > 0 {
		return false, nil
	}
	_, err = s.Create(ctx, identity.Identity{}, CreateInput{
		Name:            render.DefaultTemplateName,
		CertificateType: render.DefaultTemplateType,
		HTMLTemplate:    render.DefaultTemplate,
	})
	return err == nil, err
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
