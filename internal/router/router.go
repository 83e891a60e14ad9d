package router

import (
	"net/http"
	"net/netip"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/announcement"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/auth"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/blotter"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/certificate"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/certtemplate"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/complaint"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/household"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/identity"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/system"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/tag"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/upload"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/user"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/httpx"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/metrics"
)

// Deps carries everything RegisterRoutes mounts. Audit and Metrics are optional.
type Deps struct {
	Logger         *zap.SugaredLogger
	FrontendURL    string
	Gate           *auth.Gate
	Audit          AuditRecorder
	Metrics        *metrics.Metrics
	// TrustedProxies may set X-Forwarded-For and X-Real-IP. Other peers are
	// recorded by their socket address.
	TrustedProxies []netip.Prefix
	// UploadDir, when set, is served read-only under /uploads/.
	UploadDir      string

	Auth          *auth.Handler
	Users         *user.Handler
	Households    *household.Handler
	Tags          *tag.Handler
	Certificates  *certificate.Handler
	Templates     *certtemplate.Handler
	Blotter       *blotter.Handler
	Complaints    *complaint.Handler
	Announcements *announcement.Handler
	System        *system.Handler
	Upload        *upload.Handler
}

// RegisterRoutes mounts HTTP handlers on the standard library's http.ServeMux.
// Protected routes run authentication, then the audit trail, then the role check.
func RegisterRoutes(d Deps) http.Handler {
	mux := http.NewServeMux()
	logger := d.Logger

	guard := func(roles ...string) func(http.HandlerFunc) http.Handler {
		return func(h http.HandlerFunc) http.Handler {
			var next http.Handler = auth.RequireRole(logger, roles...)(h)
			if d.Audit != nil {
				next = AuditMiddleware(d.Audit, logger, d.TrustedProxies)(next)
			}
			return d.Gate.Authenticate(next)
		}
	}
	staff := guard(identity.RoleStaff, identity.RoleAdmin)
	admin := guard(identity.RoleAdmin)

	// health
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok", "timestamp": time.Now().UTC()})
	})
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics.Handler())
	}
	if d.UploadDir != "" {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.UploadDir))))
	}

	// public
	mux.HandleFunc("POST /api/auth/login", d.Auth.Login)
	mux.HandleFunc("POST /api/certificates/request", d.Certificates.Submit)
	mux.HandleFunc("GET /api/certificates/status/{ref}", d.Certificates.Status)
	mux.HandleFunc("POST /api/complaints", d.Complaints.File)
	mux.HandleFunc("GET /api/announcements", d.Announcements.List)
	mux.HandleFunc("GET /api/announcements/{id}", d.Announcements.Get)
	mux.HandleFunc("POST /api/upload", d.Upload.Image)

	// auth
	mux.Handle("GET /api/auth/me", staff(d.Auth.Me))
	mux.Handle("POST /api/auth/logout", staff(d.Auth.Logout))

	// households and members
	mux.Handle("GET /api/households", staff(d.Households.List))
	mux.Handle("POST /api/households", staff(d.Households.Create))
	mux.Handle("GET /api/households/{id}", staff(d.Households.Get))
	mux.Handle("PUT /api/households/{id}", staff(d.Households.Update))
	mux.Handle("DELETE /api/households/{id}", staff(d.Households.Delete))
	mux.Handle("POST /api/households/{id}/members", staff(d.Households.AddMember))
	mux.Handle("PUT /api/households/members/{memberId}", staff(d.Households.UpdateMember))
	mux.Handle("DELETE /api/households/members/{memberId}", staff(d.Households.DeleteMember))

	// tags
	mux.Handle("GET /api/tags", staff(d.Tags.List))
	mux.Handle("POST /api/tags", staff(d.Tags.Create))
	mux.Handle("POST /api/tags/assign", staff(d.Tags.Assign))
	mux.Handle("DELETE /api/tags/assign", staff(d.Tags.Unassign))
	mux.Handle("GET /api/tags/{id}/residents", staff(d.Tags.Residents))
	mux.Handle("GET /api/tags/{id}/residents/export", staff(d.Tags.Export))

	// certificates
	mux.Handle("GET /api/certificates", staff(d.Certificates.List))
	mux.Handle("POST /api/certificates/walkin", staff(d.Certificates.WalkIn))
	mux.Handle("GET /api/certificates/{id}", staff(d.Certificates.Get))
	mux.Handle("PUT /api/certificates/{id}", staff(d.Certificates.Update))
	mux.Handle("PUT /api/certificates/{id}/status", staff(d.Certificates.UpdateStatus))
	mux.Handle("GET /api/certificates/{id}/render", staff(d.Certificates.Render))

	// certificate templates
	mux.Handle("GET /api/certificate-templates", staff(d.Templates.List))
	mux.Handle("POST /api/certificate-templates", staff(d.Templates.Create))
	mux.Handle("GET /api/certificate-templates/{id}", staff(d.Templates.Get))
	mux.Handle("PUT /api/certificate-templates/{id}", staff(d.Templates.Update))
	mux.Handle("DELETE /api/certificate-templates/{id}", staff(d.Templates.Delete))

	// blotter
	mux.Handle("GET /api/blotter", staff(d.Blotter.List))
	mux.Handle("POST /api/blotter", staff(d.Blotter.Create))
	mux.Handle("GET /api/blotter/{id}", staff(d.Blotter.Get))
	mux.Handle("PUT /api/blotter/{id}", staff(d.Blotter.Update))
	mux.Handle("DELETE /api/blotter/{id}", staff(d.Blotter.Delete))

	// complaints
	mux.Handle("GET /api/complaints", staff(d.Complaints.List))
	mux.Handle("GET /api/complaints/{id}", staff(d.Complaints.Get))
	mux.Handle("PUT /api/complaints/{id}/status", staff(d.Complaints.UpdateStatus))

	// announcements
	mux.Handle("POST /api/announcements", staff(d.Announcements.Create))
	mux.Handle("PUT /api/announcements/{id}", staff(d.Announcements.Update))
	mux.Handle("DELETE /api/announcements/{id}", staff(d.Announcements.Delete))

	// admin
	mux.Handle("GET /api/users", admin(d.Users.List))
	mux.Handle("POST /api/users", admin(d.Users.Create))
	mux.Handle("GET /api/users/{id}", admin(d.Users.Get))
	mux.Handle("PUT /api/users/{id}", admin(d.Users.Update))
	mux.Handle("DELETE /api/users/{id}", admin(d.Users.Delete))
	mux.Handle("POST /api/users/{id}/reset-password", admin(d.Users.ResetPassword))
	mux.Handle("GET /api/system/logs", admin(d.System.Logs))
	mux.Handle("GET /api/system/stats", admin(d.System.Stats))

	var handler http.Handler = mux
	if d.Metrics != nil {
		handler = d.Metrics.Middleware(handler)
	}
	handler = SecurityHeadersMiddleware()(handler)
	handler = LoggingMiddleware(logger)(handler)
	handler = RequestIDMiddleware(handler)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{d.FrontendURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
	})
	return c.Handler(handler)
}
