package server

import (
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io/fs"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"waterline/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

//go:embed templates static
var uiFS embed.FS
var decoder = form.NewDecoder()

// AccountStore is the slice of the account repository the handlers use.
type AccountStore interface {
	Account(ctx context.Context, accountID string) (*types.Account, error)
	AccountByIDNumber(ctx context.Context, idNumber string) (*types.Account, error)
	AccountByResetToken(ctx context.Context, token string) (*types.Account, error)
	IDNumberExists(ctx context.Context, idNumber string) (bool, error)
	EmailExists(ctx context.Context, email, excludeAccountID string) (bool, error)
	Create(ctx context.Context, account *types.Account) error
	UpdateProfile(ctx context.Context, accountID string, account *types.Account) error
	SetResetToken(ctx context.Context, accountID, token string) error
	ResetPassword(ctx context.Context, accountID, passwordHash string) error
	SetActive(ctx context.Context, accountID string, active bool) error
	SetStaff(ctx context.Context, accountID string, staff bool) error
	StaffAccounts(ctx context.Context) ([]*types.Account, error)
	Accounts(ctx context.Context, filter types.AccountFilter) ([]*types.Account, error)
}

// IncidentStore is the slice of the incident repository the handlers use.
type IncidentStore interface {
	Incident(ctx context.Context, incidentID string) (*types.Incident, error)
	Create(ctx context.Context, incident *types.Incident) error
	IncidentsByAccount(ctx context.Context, accountID string, filter types.IncidentFilter) ([]*types.Incident, error)
	Incidents(ctx context.Context, filter types.AdminIncidentFilter) ([]*types.IncidentRow, error)
	UpdateStatus(ctx context.Context, incidentID string, status types.IncidentStatus) error
	UpdateTriage(ctx context.Context, incidentID string, status types.IncidentStatus, severity types.Severity) error
	AssignedAccountIDs(ctx context.Context, incidentID string) ([]string, error)
	SetAssignments(ctx context.Context, incidentID string, accountIDs []string) error
}

// MailSender dispatches best-effort email; implementations never block the
// request on delivery failure.
type MailSender interface {
	SendPasswordReset(recipient, token string)
}

// EvidenceStorage stores uploaded evidence images.
type EvidenceStorage interface {
	Upload(ctx context.Context, filename string, file multipart.File, contentType string) (string, error)
	URL(key string) string
}

type Service struct {
	logger       *logrus.Logger
	config       *types.Config
	accountRepo  AccountStore
	incidentRepo IncidentStore
	mailer       MailSender
	evidence     EvidenceStorage
	templates    *template.Template

	cookie *securecookie.SecureCookie

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	accountRepo AccountStore,
	incidentRepo IncidentStore,
	mailer MailSender,
	evidence EvidenceStorage,
) (*Service, error) {
	mux := flow.New()

	hashKey, _ := base64.StdEncoding.DecodeString(config.CookieHashKey)
	blockKey, _ := base64.StdEncoding.DecodeString(config.CookieBlockKey)

	s := &Service{
		logger:       logger,
		config:       config,
		accountRepo:  accountRepo,
		incidentRepo: incidentRepo,
		mailer:       mailer,
		evidence:     evidence,
		cookie:       securecookie.New(hashKey, blockKey),
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the router, primarily for httptest.
func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/login", s.handleGetLogin, http.MethodGet)
	r.HandleFunc("/login", s.handlePostLogin, http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout, http.MethodGet)
	r.HandleFunc("/register", s.handleGetRegister, http.MethodGet)
	r.HandleFunc("/register", s.handlePostRegister, http.MethodPost)

	r.HandleFunc("/forgot-password", s.handleGetForgotPassword, http.MethodGet)
	r.HandleFunc("/forgot-password", s.handlePostForgotPassword, http.MethodPost)
	r.HandleFunc("/reset-password/:token", s.handleGetResetPassword, http.MethodGet)
	r.HandleFunc("/reset-password/:token", s.handlePostResetPassword, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/", s.handleGetReport, http.MethodGet)
		r.HandleFunc("/", s.handlePostReport, http.MethodPost)
		r.HandleFunc("/status", s.handleStatus, http.MethodGet)
		r.HandleFunc("/profile", s.handleGetProfile, http.MethodGet)
		r.HandleFunc("/profile", s.handlePostProfile, http.MethodPost)
	})

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth, s.RequireStaff)

		r.HandleFunc("/admin", s.handleAdminHome, http.MethodGet)
		r.HandleFunc("/admin/incidents", s.handleAdminIncidents, http.MethodGet)
		r.HandleFunc("/admin/incidents/:id", s.handleAdminIncidentDetail, http.MethodGet)
		r.HandleFunc("/admin/incidents/:id", s.handleAdminIncidentUpdate, http.MethodPost)
		r.HandleFunc("/admin/incidents/:id/status", s.handleAdminIncidentStatus, http.MethodPost)
		r.HandleFunc("/admin/accounts", s.handleAdminAccounts, http.MethodGet)
		r.HandleFunc("/admin/accounts/:id/active", s.handleAdminAccountActive, http.MethodPost)
		r.HandleFunc("/admin/accounts/:id/staff", s.handleAdminAccountStaff, http.MethodPost)
	})

	staticRoot, err := fs.Sub(uiFS, "static")
	if err != nil {
		s.logger.WithError(err).Fatal("failed to mount static assets")
	}
	r.Handle("/static/...", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))), http.MethodGet)
}

func loadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"coord": func(f *float64) string {
			if f == nil {
				return "-"
			}
			return fmt.Sprintf("%.5f", *f)
		},
	}

	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(uiFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		data, err := fs.ReadFile(uiFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		if _, err := t.Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) internalServerError(w http.ResponseWriter) {
	http.Error(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
}
