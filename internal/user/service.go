package user

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/identity"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-barangay/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/httpx"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/pagination"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/sqlbuild"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/utilities"
)

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

var (
	ErrUserNotFound   = apperr.NotFound("User not found")
	ErrBadCredentials = apperr.Unauthenticated("Invalid credentials")
	ErrDisabled       = apperr.Forbidden("Account is disabled")
	ErrEmailTaken     = apperr.Conflict("Email already exists")
	ErrDeleteSelf     = apperr.Validation("Cannot delete your own account", nil)
)

const minPassword = 6

// UserService orchestrates staff account lifecycle and password authentication.
type UserService struct {
	repo   *userrepo.UserRepo
	hasher PasswordHasher
	logger *zap.SugaredLogger
}

func NewUserService(r *userrepo.UserRepo, hasher PasswordHasher, logger *zap.SugaredLogger) *UserService {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 10}
	}
	return &UserService{repo: r, hasher: hasher, logger: logger}
}

func (s *UserService) store(err error) error {
	return apperr.FromStore(err, ErrUserNotFound.Message, ErrEmailTaken.Message)
}

// AuthenticatePassword checks email/password. Unknown email and wrong password are indistinguishable.
func (s *UserService) AuthenticatePassword(ctx context.Context, email, password string) (*entity.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrBadCredentials
	}
	u, err := s.repo.GetCredentials(ctx, email)
	if err != nil {
		if apperr.KindOf(s.store(err)) == apperr.KindNotFound {
			return nil, ErrBadCredentials
		}
		return nil, s.store(err)
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	if u.Status != entity.StatusActive {
		return nil, ErrDisabled
	}
	u.PasswordHash = ""
	return u, nil
}

// Get returns the public projection of a user.
func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	if !utilities.IsUUID(id) {
		return nil, ErrUserNotFound
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.store(err)
	}
	return u, nil
}

// List pages through users filtered by role, status and a name/email search.
func (s *UserService) List(ctx context.Context, p pagination.Params, role string) ([]entity.User, pagination.Descriptor, error) {
	if err := p.CheckStatus(entity.StatusActive, entity.StatusDisabled); err != nil {
		return nil, pagination.Descriptor{}, err
	}
	if role != "" && role != identity.RoleAdmin && role != identity.RoleStaff {
		return nil, pagination.Descriptor{}, apperr.Field("role", "invalid role")
	}
	users, total, err := s.repo.List(ctx, entity.Filter{Role: role, Status: p.Status, Search: p.Search}, p)
	if err != nil {
		return nil, pagination.Descriptor{}, s.store(err)
	}
	return users, p.Describe(total), nil
}

type CreateInput struct {
	FullName string `json:"full_name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=admin staff"`
}

// Create adds a staff or admin account. The email pre-check gives a friendly error;
// the unique constraint remains the authority under concurrent inserts.
func (s *UserService) Create(ctx context.Context, in CreateInput) (*entity.User, error) {
	if err := httpx.Validate(in); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(in.Email)
	taken, err := s.repo.EmailTaken(ctx, email, "")
	if err != nil {
		return nil, s.store(err)
	}
	if taken {
		return nil, ErrEmailTaken
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	u := &entity.User{
		ID:           utilities.NewUUID(),
		FullName:     strings.TrimSpace(in.FullName),
		Email:        email,
		PasswordHash: hash,
		Role:         in.Role,
		Status:       entity.StatusActive,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, s.store(err)
	}
	s.logger.Infow("user created", "user_id", u.ID, "role", u.Role)
	u.PasswordHash = ""
	return u, nil
}

type UpdateInput struct {
	FullName sqlbuild.Optional[string] `json:"full_name"`
	Email    sqlbuild.Optional[string] `json:"email"`
	Role     sqlbuild.Optional[string] `json:"role"`
	Status   sqlbuild.Optional[string] `json:"status"`
}

func (s *UserService) Update(ctx context.Context, id string, in UpdateInput) (*entity.User, error) {
	if !utilities.IsUUID(id) {
		return nil, ErrUserNotFound
	}
	if err := httpx.Collect(
		httpx.Optional("full_name", in.FullName, "min=2,max=255", false),
		httpx.Optional("email", in.Email, "email", false),
		httpx.Optional("role", in.Role, "oneof=admin staff", false),
		httpx.Optional("status", in.Status, "oneof=active disabled", false),
	); err != nil {
		return nil, err
	}
	if in.Email.Present() {
		taken, err := s.repo.EmailTaken(ctx, in.Email.Value, id)
		if err != nil {
			return nil, s.store(err)
		}
		if taken {
			return nil, ErrEmailTaken
		}
	}
	upd := sqlbuild.NewUpdate(entity.Table)
	sqlbuild.SetOpt(upd, entity.ColFullName, in.FullName)
	sqlbuild.SetOpt(upd, entity.ColEmail, in.Email)
	sqlbuild.SetOpt(upd, entity.ColRole, in.Role)
	sqlbuild.SetOpt(upd, entity.ColStatus, in.Status)
	u, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, s.store(err)
	}
	return u, nil
}

func (s *UserService) ResetPassword(ctx context.Context, id, password string) error {
	if len(password) < minPassword {
		return apperr.Field("new_password", "Password must be at least 6 characters")
	}
	if !utilities.IsUUID(id) {
		return ErrUserNotFound
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return apperr.Storage(err)
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return s.store(err)
	}
	s.logger.Infow("password reset", "user_id", id)
	return nil
}

// Delete removes an account. Callers cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, caller identity.Identity, id string) error {
	if caller.UserID == id {
		return ErrDeleteSelf
	}
	if !utilities.IsUUID(id) {
		return ErrUserNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.store(err)
	}
	return nil
}

// CountStaff returns the number of staff accounts.
func (s *UserService) CountStaff(ctx context.Context) (int, error) {
	n, err := s.repo.CountByRole(ctx, identity.RoleStaff)
	if err != nil {
		return 0, s.store(err)
	}
	return n, nil
}
