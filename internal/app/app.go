// Package app wires repositories, services and handlers over one database pool.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/announcement"
	annrepo "github.com/ovaphlow/pitchfork/service-barangay/internal/announcement/repo"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/auth"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/blotter"
	blotterrepo "github.com/ovaphlow/pitchfork/service-barangay/internal/blotter/repo"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/certificate"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/certificate/refnum"
	certrepo "github.com/ovaphlow/pitchfork/service-barangay/internal/certificate/repo"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/certtemplate"
	tplrepo "github.com/ovaphlow/pitchfork/service-barangay/internal/certtemplate/repo"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/complaint"
	complaintrepo "github.com/ovaphlow/pitchfork/service-barangay/internal/complaint/repo"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/config"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/household"
	hhrepo "github.com/ovaphlow/pitchfork/service-barangay/internal/household/repo"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/router"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/system"
	logrepo "github.com/ovaphlow/pitchfork/service-barangay/internal/system/repo"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/tag"
	tagrepo "github.com/ovaphlow/pitchfork/service-barangay/internal/tag/repo"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/upload"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-barangay/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/metrics"
)

type tableEnsurer interface {
	EnsureTable(ctx context.Context) error
}

type App struct {
	cfg    config.Config
	logger *zap.SugaredLogger

	// DDL order follows foreign keys.
	tables []tableEnsurer

	Users         *user.UserService
	Households    *household.Service
	Tags          *tag.Service
	Templates     *certtemplate.Service
	Certificates  *certificate.Service
	Blotter       *blotter.Service
	Complaints    *complaint.Service
	Announcements *announcement.Service
	System        *system.Service
}

func New(cfg config.Config, db *sqlx.DB, logger *zap.SugaredLogger) *App {
	users := userrepo.NewUserRepo(db)
	households := hhrepo.NewHouseholdRepo(db)
	tags := tagrepo.NewTagRepo(db)
	templates := tplrepo.NewTemplateRepo(db)
	certs := certrepo.NewCertificateRepo(db)
	blotters := blotterrepo.NewBlotterRepo(db)
	complaints := complaintrepo.NewComplaintRepo(db)
	announcements := annrepo.NewAnnouncementRepo(db)
	logs := logrepo.NewLogRepo(db)

	a := &App{
		cfg:    cfg,
		logger: logger,
		tables: []tableEnsurer{users, households, tags, templates, certs, blotters, complaints, announcements, logs},
	}
	a.Users = user.NewUserService(users, user.BcryptHasher{}, logger)
	a.Households = household.NewService(households, logger)
	a.Tags = tag.NewService(tags, logger)
	a.Templates = certtemplate.NewService(templates, logger)
	a.Certificates = certificate.NewService(certs, a.Templates, refnum.New(), logger)
	a.Blotter = blotter.NewService(blotters, logger)
	a.Complaints = complaint.NewService(complaints, logger)
	a.Announcements = announcement.NewService(announcements, logger)
	a.System = system.NewService(logs, system.Counters{
		Households:          a.Households.Count,
		FamilyMembers:       a.Households.CountMembers,
		CertificateRequests: a.Certificates.Count,
		BlotterRecords:      a.Blotter.Count,
		Complaints: func(ctx context.Context) (int, error) {
			return a.Complaints.Count(ctx, "")
		},
		Announcements: a.Announcements.Count,
		StaffUsers:    a.Users.CountStaff,
	}, logger)
	return a
}

// Migrate creates every table that does not exist yet.
func (a *App) Migrate(ctx context.Context) error {
	for _, t := range a.tables {
		if err := t.EnsureTable(ctx); err != nil {
			return fmt.Errorf("ensure %T: %w", t, err)
		}
	}
	return nil
}

// Handler builds the HTTP surface, including the configured object store.
func (a *App) Handler(ctx context.Context) (http.Handler, error) {
	debug := a.cfg.Development()
	tokens, err := auth.NewTokenService(a.cfg.JWTSecret, a.cfg.JWTTTL)
	if err != nil {
		return nil, err
	}
	store, err := upload.NewObjectStore(ctx, a.cfg.Store)
	if err != nil {
		return nil, err
	}
	var uploadDir string
	if local, ok := store.(*upload.LocalStore); ok {
		uploadDir = local.BaseDir()
	}

	lg := a.logger
	return router.RegisterRoutes(router.Deps{
		Logger:         lg,
		FrontendURL:    a.cfg.FrontendURL,
		Gate:           auth.NewGate(tokens, a.Users, lg),
		Audit:          a.System,
		Metrics:        metrics.New("barangay"),
		TrustedProxies: a.cfg.TrustedProxies,
		UploadDir:      uploadDir,
		Auth:           auth.NewHandler(a.Users, tokens, lg, debug),
		Users:          user.NewHandler(a.Users, lg, debug),
		Households:     household.NewHandler(a.Households, lg, debug),
		Tags:           tag.NewHandler(a.Tags, lg, debug),
		Certificates:   certificate.NewHandler(a.Certificates, lg, debug),
		Templates:      certtemplate.NewHandler(a.Templates, lg, debug),
		Blotter:        blotter.NewHandler(a.Blotter, lg, debug),
		Complaints:     complaint.NewHandler(a.Complaints, lg, debug),
		Announcements:  announcement.NewHandler(a.Announcements, lg, debug),
		System:         system.NewHandler(a.System, lg, debug),
		Upload:         upload.NewHandler(store, lg, debug),
	}), nil
}
