package certificate

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/certificate/entity"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/certificate/refnum"
	certrepo "github.com/ovaphlow/pitchfork/service-barangay/internal/certificate/repo"
	tplentity "github.com/ovaphlow/pitchfork/service-barangay/internal/certtemplate/entity"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/certtemplate/render"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/identity"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/httpx"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/pagination"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/utilities"
)

// maxReferenceAttempts bounds regeneration after a reference_number collision.
const maxReferenceAttempts = 5

var (
	ErrNotFound        = apperr.NotFound("Certificate request not found")
	ErrLookupNotFound  = apperr.NotFound("Certificate not found. Please check your reference number.")
	ErrStatusRegressed = apperr.Field("status", "status cannot move backwards")
)

// Templates is the subset of the template service used for rendering.
type Templates interface {
	Get(ctx context.Context, id string) (*tplentity.Template, error)
	FirstByType(ctx context.Context, certificateType string) (*tplentity.Template, error)
}

type Service struct {
	repo      *certrepo.CertificateRepo
	templates Templates
	refs      *refnum.Generator
	logger    *zap.SugaredLogger
}

func NewService(r *certrepo.CertificateRepo, templates Templates, refs *refnum.Generator, logger *zap.SugaredLogger) *Service {
	if refs == nil {
		refs = refnum.New()
	}
	return &Service{repo: r, templates: templates, refs: refs, logger: logger}
}

func (s *Service) store(err error) error {
	return apperr.FromStore(err, ErrNotFound.Message, "Reference number already exists")
}

// SubmitInput is shared by the public and walk-in paths.
type SubmitInput struct {
	FullName        string     `json:"full_name" validate:"required,min=2,max=255"`
	Address         string     `json:"address" validate:"required,min=5"`
	CertificateType string     `json:"certificate_type" validate:"required,min=2"`
	BirthDate       string     `json:"birth_date"`
	Age             entity.Age `json:"age"`
	CivilStatus     string     `json:"civil_status"`
	Purpose         string     `json:"purpose"`
	ContactNumber   string     `json:"contact_number"`
	PhotoURL        string     `json:"photo_url"`
	// walk-in only
	ProfilePhotoURL string `json:"profile_photo_url"`
	TemplateID      string `json:"template_id"`
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (in SubmitInput) toRequest() (*entity.Request, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Address = strings.TrimSpace(in.Address)
	in.CertificateType = strings.TrimSpace(in.CertificateType)
	if err := httpx.Validate(in); err != nil {
		return nil, err
	}
	if in.Age.Valid && in.Age.Value <= 0 {
		return nil, apperr.Field("age", "must be greater than 0")
	}
	c := &entity.Request{
		ID:              utilities.NewUUID(),
		FullName:        in.FullName,
		Address:         in.Address,
		CertificateType: in.CertificateType,
		Age:             in.Age.Ptr(),
		CivilStatus:     optional(in.CivilStatus),
		Purpose:         optional(in.Purpose),
		ContactNumber:   optional(in.ContactNumber),
		PhotoURL:        optional(in.PhotoURL),
	}
	if strings.TrimSpace(in.BirthDate) != "" {
		d, err := entity.ParseDate(in.BirthDate)
		if err != nil {
			return nil, apperr.Field("birth_date", err.Error())
		}
		c.BirthDate = &d
	}
	return c, nil
}

// insertWithReference mints a reference and inserts, regenerating on a reference collision.
func (s *Service) insertWithReference(ctx context.Context, c *entity.Request, insert func(context.Context, *entity.Request) error) error {
	for attempt := 1; ; attempt++ {
		ref, err := s.refs.Public()
		if err != nil {
			return apperr.Storage(err)
		}
		c.ReferenceNumber = ref
		err = insert(ctx, c)
		if err == nil {
			return nil
		}
		if !apperr.IsUniqueViolation(err, entity.ReferenceConstraint) || attempt >= maxReferenceAttempts {
			return s.store(err)
		}
		s.logger.Warnw("reference number collision, regenerating", "reference_number", ref, "attempt", attempt)
	}
}

// Submit records an anonymous online request and returns a receipt without status.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*entity.Receipt, error) {
	c, err := in.toRequest()
	if err != nil {
		return nil, err
	}
	if err := s.insertWithReference(ctx, c, s.repo.InsertPublic); err != nil {
		return nil, err
	}
	s.logger.Infow("certificate request submitted", "reference_number", c.ReferenceNumber, "certificate_type", c.CertificateType)
	receipt := c.Receipt()
	return &receipt, nil
}

// WalkIn records a request on behalf of an applicant at the counter.
func (s *Service) WalkIn(ctx context.Context, caller identity.Identity, in SubmitInput) (*entity.Request, error) {
	c, err := in.toRequest()
	if err != nil {
		return nil, err
	}
	c.ProfilePhotoURL = optional(in.ProfilePhotoURL)
	if tid := strings.TrimSpace(in.TemplateID); tid != "" {
		if !utilities.IsUUID(tid) {
			return nil, apperr.Field("template_id", "must be a valid id")
		}
		c.TemplateID = &tid
	}
	c.Status = entity.StatusPending
	c.ProcessedBy = &caller.UserID
	if err := s.insertWithReference(ctx, c, s.repo.InsertWalkIn); err != nil {
		return nil, err
	}
	s.logger.Infow("walk-in certificate request", "reference_number", c.ReferenceNumber, "processed_by", caller.UserID)
	return c, nil
}

// LookupStatus is the anonymous status check by reference number.
func (s *Service) LookupStatus(ctx context.Context, ref string) (*entity.StatusView, error) {
	ref = refnum.Normalize(ref)
	if ref == "" {
		return nil, ErrLookupNotFound
	}
	v, err := s.repo.StatusByReference(ctx, ref)
	if err != nil {
		if apperr.KindOf(s.store(err)) == apperr.KindNotFound {
			return nil, ErrLookupNotFound
		}
		return nil, s.store(err)
	}
	return v, nil
}

// Get resolves key as an id when it has the UUID shape, otherwise as a reference number.
func (s *Service) Get(ctx context.Context, key string) (*entity.Request, error) {
	key = strings.TrimSpace(key)
	var (
		c   *entity.Request
		err error
	)
	if utilities.IsUUID(key) {
		c, err = s.repo.GetByID(ctx, key)
	} else {
		c, err = s.repo.GetByReference(ctx, refnum.Normalize(key))
	}
	if err != nil {
		return nil, s.store(err)
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, p pagination.Params, certificateType string) ([]entity.Request, pagination.Descriptor, error) {
	if err := p.CheckStatus(entity.Statuses...); err != nil {
		return nil, pagination.Descriptor{}, err
	}
	out, total, err := s.repo.List(ctx, certrepo.Filter{Status: p.Status, Search: p.Search, CertificateType: certificateType}, p)
	if err != nil {
		return nil, pagination.Descriptor{}, s.store(err)
	}
	return out, p.Describe(total), nil
}

type UpdateInput struct {
	FullName        sqlbuild.Optional[string] `json:"full_name"`
	Address         sqlbuild.Optional[string] `json:"address"`
	CertificateType sqlbuild.Optional[string] `json:"certificate_type"`
	BirthDate       sqlbuild.Optional[string] `json:"birth_date"`
	Age             sqlbuild.Optional[int]    `json:"age"`
	CivilStatus     sqlbuild.Optional[string] `json:"civil_status"`
	Purpose         sqlbuild.Optional[string] `json:"purpose"`
	ContactNumber   sqlbuild.Optional[string] `json:"contact_number"`
	PhotoURL        sqlbuild.Optional[string] `json:"photo_url"`
	ProfilePhotoURL sqlbuild.Optional[string] `json:"profile_photo_url"`
	TemplateID      sqlbuild.Optional[string] `json:"template_id"`
}

// Update edits certificate content fields. Status has its own operation.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*entity.Request, error) {
	if !utilities.IsUUID(id) {
		return nil, ErrNotFound
	}
	if err := httpx.Collect(
		httpx.Optional("full_name", in.FullName, "min=2,max=255", false),
		httpx.Optional("address", in.Address, "min=5", false),
		httpx.Optional("certificate_type", in.CertificateType, "min=2", false),
		httpx.Optional("age", in.Age, "gt=0", true),
		httpx.Optional("template_id", in.TemplateID, "uuid", true),
	); err != nil {
		return nil, err
	}
	upd := sqlbuild.NewUpdate(entity.Table)
	sqlbuild.SetOpt(upd, entity.ColFullName, in.FullName)
	sqlbuild.SetOpt(upd, entity.ColAddress, in.Address)
	sqlbuild.SetOpt(upd, entity.ColCertificateType, in.CertificateType)
	if in.BirthDate.Present() {
		d, err := entity.ParseDate(in.BirthDate.Value)
		if err != nil {
			return nil, apperr.Field("birth_date", err.Error())
		}
		upd.Set(entity.ColBirthDate, d.String())
	} else {
		sqlbuild.SetOpt(upd, entity.ColBirthDate, in.BirthDate)
	}
	sqlbuild.SetOpt(upd, entity.ColAge, in.Age)
	sqlbuild.SetOpt(upd, entity.ColCivilStatus, in.CivilStatus)
	sqlbuild.SetOpt(upd, entity.ColPurpose, in.Purpose)
	sqlbuild.SetOpt(upd, entity.ColContactNumber, in.ContactNumber)
	sqlbuild.SetOpt(upd, entity.ColPhotoURL, in.PhotoURL)
	sqlbuild.SetOpt(upd, entity.ColProfilePhotoURL, in.ProfilePhotoURL)
	sqlbuild.SetOpt(upd, entity.ColTemplateID, in.TemplateID)
	c, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, s.store(err)
	}
	return c, nil
}

type StatusInput struct {
	Status   string                    `json:"status" validate:"required,oneof=pending approved released"`
	PhotoURL sqlbuild.Optional[string] `json:"photo_url"`
}

// UpdateStatus moves a request forward (pending -> approved -> released, skips allowed)
// and records the caller as processor. Moving backwards is rejected, also when
// another update lands between the read and the write.
func (s *Service) UpdateStatus(ctx context.Context, caller identity.Identity, id string, in StatusInput) (*entity.Request, error) {
	if err := httpx.Validate(in); err != nil {
		return nil, apperr.Validation("Invalid status", map[string]string{"status": "must be one of pending, approved, released"})
	}
	if !utilities.IsUUID(id) {
		return nil, ErrNotFound
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.store(err)
	}
	if entity.Rank(in.Status) < entity.Rank(current.Status) {
		return nil, ErrStatusRegressed
	}
	upd := sqlbuild.NewUpdate(entity.Table).
		Set(entity.ColStatus, in.Status).
		Set(entity.ColProcessedBy, caller.UserID).
		Guard(entity.RankExpr+" <= %s", entity.Rank(in.Status))
	sqlbuild.SetOpt(upd, entity.ColPhotoURL, in.PhotoURL)
	c, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStatusRegressed
		}
		return nil, s.store(err)
	}
	s.logger.Infow("certificate status updated", "id", id, "from", current.Status, "to", in.Status, "by", caller.UserID)
	return c, nil
}

// Rendered is the outcome of resolving a request against a template.
// Template is nil and HTML empty when no template matches the certificate type.
type Rendered struct {
	Request  *entity.Request     `json:"request"`
	Template *tplentity.Template `json:"template"`
	HTML     string              `json:"html"`
}

// NoTemplate reports the "no template" outcome.
func (r *Rendered) NoTemplate() bool { return r.Template == nil }

// Values merges template and request fields into the render context.
func Values(t *tplentity.Template, c *entity.Request) render.Values {
	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	v := render.Values{
		render.KeyReferenceNumber: c.ReferenceNumber,
		render.KeyCertificateType: c.CertificateType,
		render.KeyFullName:        c.FullName,
		render.KeyAddress:         c.Address,
		render.KeyCivilStatus:     deref(c.CivilStatus),
		render.KeyPurpose:         deref(c.Purpose),
		render.KeyProfilePhotoURL: deref(c.ProfilePhotoURL),
	}
	if c.Age != nil {
		v[render.KeyAge] = strconv.Itoa(*c.Age)
	}
	if t != nil {
		v[render.KeyLogoURL] = deref(t.LogoURL)
		v[render.KeyIncludeProfilePhoto] = strconv.FormatBool(t.IncludeProfilePhoto)
	}
	return v
}

// resolveTemplate picks the explicit template, then the request's saved template,
// then the first template created for the certificate type.
func (s *Service) resolveTemplate(ctx context.Context, c *entity.Request, templateID string) (*tplentity.Template, error) {
	if templateID != "" {
		t, err := s.templates.Get(ctx, templateID)
		if err != nil {
			return nil, err
		}
		if t.CertificateType != c.CertificateType {
			return nil, apperr.Field("template_id", "template is for a different certificate type")
		}
		return t, nil
	}
	if c.TemplateID != nil {
		t, err := s.templates.Get(ctx, *c.TemplateID)
		switch {
		case err == nil && t.CertificateType == c.CertificateType:
			return t, nil
		case err != nil && apperr.KindOf(err) != apperr.KindNotFound:
			return nil, err
		}
	}
	return s.templates.FirstByType(ctx, c.CertificateType)
}

// Render produces the certificate document for a request (by id or reference).
func (s *Service) Render(ctx context.Context, key, templateID string) (*Rendered, error) {
	c, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	t, err := s.resolveTemplate(ctx, c, strings.TrimSpace(templateID))
	if err != nil {
		return nil, err
	}
	out := &Rendered{Request: c, Template: t}
	if t == nil {
		s.logger.Debugw("no template for certificate type", "certificate_type", c.CertificateType)
		return out, nil
	}
	out.HTML = render.Render(t.HTMLTemplate, Values(t, c))
	return out, nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, s.store(err)
	}
	return n, nil
}

// BackfillReferences assigns timestamp-based references to rows that have none.
func (s *Service) BackfillReferences(ctx context.Context) (int, error) {
	ids, err := s.repo.MissingReferences(ctx)
	if err != nil {
		return 0, s.store(err)
	}
	assigned := 0
	for _, id := range ids {
		for attempt := 1; attempt <= maxReferenceAttempts; attempt++ {
			ref, err := s.refs.Backfill()
			if err != nil {
				return assigned, apperr.Storage(err)
			}
			ok, err := s.repo.AssignReference(ctx, id, ref)
			if err != nil {
				if apperr.IsUniqueViolation(err, entity.ReferenceConstraint) {
					continue
				}
				return assigned, s.store(err)
			}
			if ok {
				assigned++
				s.logger.Infow("reference number assigned", "id", id, "reference_number", ref)
			}
			break
		}
	}
	return assigned, nil
}
