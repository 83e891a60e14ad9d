package household

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/household/entity"
	hhrepo "github.com/ovaphlow/pitchfork/service-barangay/internal/household/repo"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/identity"
	tagentity "github.com/ovaphlow/pitchfork/service-barangay/internal/tag/entity"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/httpx"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/pagination"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/utilities"
)

var (
	ErrNotFound       = apperr.NotFound("Household not found")
	ErrMemberNotFound = apperr.NotFound("Family member not found")
)

type Service struct {
	repo   *hhrepo.HouseholdRepo
	logger *zap.SugaredLogger
}

func NewService(r *hhrepo.HouseholdRepo, logger *zap.SugaredLogger) *Service {
	return &Service{repo: r, logger: logger}
}

func (s *Service) store(err error, notFound string) error {
	return apperr.FromStore(err, notFound, "Household already exists")
}

func trimmedPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

func (s *Service) List(ctx context.Context, p pagination.Params) ([]entity.Household, pagination.Descriptor, error) {
	out, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, pagination.Descriptor{}, s.store(err, ErrNotFound.Message)
	}
	return out, p.Describe(total), nil
}

// Get returns the household with members, each decorated with their tags.
func (s *Service) Get(ctx context.Context, id string) (*entity.Detail, error) {
	if !utilities.IsUUID(id) {
		return nil, ErrNotFound
	}
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.store(err, ErrNotFound.Message)
	}
	members, err := s.repo.Members(ctx, id)
	if err != nil {
		return nil, s.store(err, ErrNotFound.Message)
	}
	tags, err := s.repo.MemberTags(ctx, id)
	if err != nil {
		return nil, s.store(err, ErrNotFound.Message)
	}
	byMember := make(map[string][]tagentity.MemberTag, len(members))
	for _, t := range tags {
		byMember[t.FamilyMemberID] = append(byMember[t.FamilyMemberID], t)
	}
	for i := range members {
		members[i].Tags = byMember[members[i].ID]
		if members[i].Tags == nil {
			members[i].Tags = []tagentity.MemberTag{}
		}
	}
	return &entity.Detail{Household: *h, Members: members}, nil
}

type CreateInput struct {
	HeadName      string  `json:"head_name" validate:"required,min=2,max=255"`
	Address       string  `json:"address" validate:"required,min=5"`
	ContactNumber *string `json:"contact_number"`
	CivilStatus   *string `json:"civil_status"`
}

func (s *Service) Create(ctx context.Context, caller identity.Identity, in CreateInput) (*entity.Household, error) {
	in.HeadName = strings.TrimSpace(in.HeadName)
	in.Address = strings.TrimSpace(in.Address)
	if err := httpx.Validate(in); err != nil {
		return nil, err
	}
	h := &entity.Household{
		ID:            utilities.NewUUID(),
		HeadName:      in.HeadName,
		Address:       in.Address,
		ContactNumber: trimmedPtr(in.ContactNumber),
		CivilStatus:   trimmedPtr(in.CivilStatus),
		CreatedBy:     &caller.UserID,
	}
	if err := s.repo.Create(ctx, h); err != nil {
		return nil, s.store(err, ErrNotFound.Message)
	}
	s.logger.Infow("household created", "id", h.ID, "created_by", caller.UserID)
	return h, nil
}

type UpdateInput struct {
	HeadName      sqlbuild.Optional[string] `json:"head_name"`
	Address       sqlbuild.Optional[string] `json:"address"`
	ContactNumber sqlbuild.Optional[string] `json:"contact_number"`
	CivilStatus   sqlbuild.Optional[string] `json:"civil_status"`
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*entity.Household, error) {
	if !utilities.IsUUID(id) {
		return nil, ErrNotFound
	}
	if err := httpx.Collect(
		httpx.Optional("head_name", in.HeadName, "min=2,max=255", false),
		httpx.Optional("address", in.Address, "min=5", false),
	); err != nil {
		return nil, err
	}
	upd := sqlbuild.NewUpdate(entity.Table)
	sqlbuild.SetOpt(upd, entity.ColHeadName, in.HeadName)
	sqlbuild.SetOpt(upd, entity.ColAddress, in.Address)
	sqlbuild.SetOpt(upd, entity.ColContactNumber, in.ContactNumber)
	sqlbuild.SetOpt(upd, entity.ColCivilStatus, in.CivilStatus)
	h, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, s.store(err, ErrNotFound.Message)
	}
	return h, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if !utilities.IsUUID(id) {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.store(err, ErrNotFound.Message)
	}
	s.logger.Infow("household deleted", "id", id)
	return nil
}

type MemberInput struct {
	FullName     string  `json:"full_name" validate:"required,min=2,max=255"`
	Age          *int    `json:"age" validate:"omitempty,gt=0"`
	Gender       *string `json:"gender"`
	Relationship *string `json:"relationship"`
}

// AddMember adds a family member. An unknown household surfaces as NotFound.
func (s *Service) AddMember(ctx context.Context, householdID string, in MemberInput) (*entity.Member, error) {
	if !utilities.IsUUID(householdID) {
		return nil, ErrNotFound
	}
	in.FullName = strings.TrimSpace(in.FullName)
	if err := httpx.Validate(in); err != nil {
		return nil, err
	}
	m := &entity.Member{
		ID:           utilities.NewUUID(),
		HouseholdID:  householdID,
		FullName:     in.FullName,
		Age:          in.Age,
		Gender:       trimmedPtr(in.Gender),
		Relationship: trimmedPtr(in.Relationship),
		Tags:         []tagentity.MemberTag{},
	}
	if err := s.repo.CreateMember(ctx, m); err != nil {
		if apperr.KindOf(s.store(err, "")) == apperr.KindValidation {
			// the only foreign key on family_members is the household
			return nil, ErrNotFound
		}
		return nil, s.store(err, ErrNotFound.Message)
	}
	return m, nil
}

type MemberUpdateInput struct {
	FullName     sqlbuild.Optional[string] `json:"full_name"`
	Age          sqlbuild.Optional[int]    `json:"age"`
	Gender       sqlbuild.Optional[string] `json:"gender"`
	Relationship sqlbuild.Optional[string] `json:"relationship"`
}

func (s *Service) UpdateMember(ctx context.Context, id string, in MemberUpdateInput) (*entity.Member, error) {
	if !utilities.IsUUID(id) {
		return nil, ErrMemberNotFound
	}
	if err := httpx.Collect(
		httpx.Optional("full_name", in.FullName, "min=2,max=255", false),
		httpx.Optional("age", in.Age, "gt=0", true),
	); err != nil {
		return nil, err
	}
	upd := sqlbuild.NewUpdate(entity.MemberTable)
	sqlbuild.SetOpt(upd, entity.MemberColFullName, in.FullName)
	sqlbuild.SetOpt(upd, entity.MemberColAge, in.Age)
	sqlbuild.SetOpt(upd, entity.MemberColGender, in.Gender)
	sqlbuild.SetOpt(upd, entity.MemberColRelationship, in.Relationship)
	m, err := s.repo.UpdateMember(ctx, id, upd)
	if err != nil {
		return nil, s.store(err, ErrMemberNotFound.Message)
	}
	return m, nil
}

func (s *Service) DeleteMember(ctx context.Context, id string) error {
	if !utilities.IsUUID(id) {
		return ErrMemberNotFound
	}
	if err := s.repo.DeleteMember(ctx, id); err != nil {
		return s.store(err, ErrMemberNotFound.Message)
	}
	return nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, s.store(err, "")
	}
	return n, nil
}

func (s *Service) CountMembers(ctx context.Context) (int, error) {
	n, err := s.repo.CountMembers(ctx)
	if err != nil {
		return 0, s.store(err, "")
	}
	return n, nil
}
