package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"waterline/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type fakeAccountStore struct {
	accounts map[string]*types.Account

	createErr  error
	createdIDs []string
}

func newFakeAccountStore(accounts ...*types.Account) *fakeAccountStore {
	s := &fakeAccountStore{accounts: map[string]*types.Account{}}
	for _, a := range accounts {
		s.accounts[a.ID] = a
	}
	return s
}

func (s *fakeAccountStore) Account(_ context.Context, accountID string) (*types.Account, error) {
	if a, ok := s.accounts[accountID]; ok {
		return a, nil
	}
	return nil, types.ErrAccountNotFound
}

func (s *fakeAccountStore) AccountByIDNumber(_ context.Context, idNumber string) (*types.Account, error) {
	for _, a := range s.accounts {
		if a.IDNumber == idNumber {
			return a, nil
		}
	}
	return nil, types.ErrAccountNotFound
}

func (s *fakeAccountStore) AccountByResetToken(_ context.Context, token string) (*types.Account, error) {
	for _, a := range s.accounts {
		if a.PasswordResetToken != nil && *a.PasswordResetToken == token {
			return a, nil
		}
	}
	return nil, types.ErrAccountNotFound
}

func (s *fakeAccountStore) IDNumberExists(ctx context.Context, idNumber string) (bool, error) {
	_, err := s.AccountByIDNumber(ctx, idNumber)
	return err == nil, nil
}

func (s *fakeAccountStore) EmailExists(_ context.Context, email, excludeAccountID string) (bool, error) {
	for _, a := range s.accounts {
		if a.Email == email && a.ID != excludeAccountID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeAccountStore) Create(_ context.Context, account *types.Account) error {
	if s.createErr != nil {
		return s.createErr
	}
	if account.ID == "" {
		account.ID = "acct-" + account.IDNumber
	}
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	s.accounts[account.ID] = account
	s.createdIDs = append(s.createdIDs, account.ID)
	return nil
}

func (s *fakeAccountStore) UpdateProfile(_ context.Context, accountID string, account *types.Account) error {
	existing, ok := s.accounts[accountID]
	if !ok {
		return types.ErrAccountNotFound
	}
	existing.FirstName = account.FirstName
	existing.LastName = account.LastName
	existing.Email = account.Email
	existing.PhoneNumber = account.PhoneNumber
	existing.Address = account.Address
	return nil
}

func (s *fakeAccountStore) SetResetToken(_ context.Context, accountID, token string) error {
	a, ok := s.accounts[accountID]
	if !ok {
		return types.ErrAccountNotFound
	}
	a.PasswordResetToken = &token
	return nil
}

func (s *fakeAccountStore) ResetPassword(_ context.Context, accountID, passwordHash string) error {
	a, ok := s.accounts[accountID]
	if !ok {
		return types.ErrAccountNotFound
	}
	a.PasswordHash = passwordHash
	a.PasswordResetToken = nil
	return nil
}

func (s *fakeAccountStore) SetActive(_ context.Context, accountID string, active bool) error {
	a, ok := s.accounts[accountID]
	if !ok {
		return types.ErrAccountNotFound
	}
	a.IsActive = active
	return nil
}

func (s *fakeAccountStore) SetStaff(_ context.Context, accountID string, staff bool) error {
	a, ok := s.accounts[accountID]
	if !ok {
		return types.ErrAccountNotFound
	}
	a.IsStaff = staff
	return nil
}

func (s *fakeAccountStore) StaffAccounts(_ context.Context) ([]*types.Account, error) {
	var out []*types.Account
	for _, a := range s.accounts {
		if a.IsStaff {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeAccountStore) Accounts(_ context.Context, _ types.AccountFilter) ([]*types.Account, error) {
	var out []*types.Account
	for _, a := range s.accounts {
		out = append(out, a)
	}
	return out, nil
}

type fakeIncidentStore struct {
	incidents []*types.Incident

	byAccountCalls []struct {
		AccountID string
		Filter    types.IncidentFilter
	}
	statusUpdates map[string]types.IncidentStatus
	assignments   map[string][]string
}

func newFakeIncidentStore(incidents ...*types.Incident) *fakeIncidentStore {
	return &fakeIncidentStore{
		incidents:     incidents,
		statusUpdates: map[string]types.IncidentStatus{},
		assignments:   map[string][]string{},
	}
}

func (s *fakeIncidentStore) Incident(_ context.Context, incidentID string) (*types.Incident, error) {
	for _, i := range s.incidents {
		if i.ID == incidentID {
			return i, nil
		}
	}
	return nil, types.ErrIncidentNotFound
}

func (s *fakeIncidentStore) Create(_ context.Context, incident *types.Incident) error {
	if incident.ID == "" {
		incident.ID = "inc-test"
	}
	incident.Status = types.IncidentStatusReceived
	incident.Severity = types.SeverityModerate
	incident.CreatedAt = time.Now()
	incident.UpdatedAt = incident.CreatedAt
	s.incidents = append(s.incidents, incident)
	return nil
}

func (s *fakeIncidentStore) IncidentsByAccount(_ context.Context, accountID string, filter types.IncidentFilter) ([]*types.Incident, error) {
	s.byAccountCalls = append(s.byAccountCalls, struct {
		AccountID string
		Filter    types.IncidentFilter
	}{accountID, filter})

	var out []*types.Incident
	for _, i := range s.incidents {
		if i.AccountID != accountID {
			continue
		}
		if filter.IssueType != "" && i.IssueType != filter.IssueType {
			continue
		}
		if filter.Status != "" && i.Status != filter.Status {
			continue
		}
		out = append(out, i)
	}
	return out, nil
}

func (s *fakeIncidentStore) Incidents(_ context.Context, filter types.AdminIncidentFilter) ([]*types.IncidentRow, error) {
	var out []*types.IncidentRow
	for _, i := range s.incidents {
		if filter.IssueType != "" && i.IssueType != filter.IssueType {
			continue
		}
		if filter.Status != "" && i.Status != filter.Status {
			continue
		}
		if filter.Severity != "" && i.Severity != filter.Severity {
			continue
		}
		out = append(out, &types.IncidentRow{Incident: *i})
	}
	return out, nil
}

func (s *fakeIncidentStore) UpdateStatus(_ context.Context, incidentID string, status types.IncidentStatus) error {
	for _, i := range s.incidents {
		if i.ID == incidentID {
			i.Status = status
			s.statusUpdates[incidentID] = status
			return nil
		}
	}
	return types.ErrIncidentNotFound
}

func (s *fakeIncidentStore) UpdateTriage(_ context.Context, incidentID string, status types.IncidentStatus, severity types.Severity) error {
	for _, i := range s.incidents {
		if i.ID == incidentID {
			i.Status = status
			i.Severity = severity
			return nil
		}
	}
	return types.ErrIncidentNotFound
}

func (s *fakeIncidentStore) AssignedAccountIDs(_ context.Context, incidentID string) ([]string, error) {
	return s.assignments[incidentID], nil
}

func (s *fakeIncidentStore) SetAssignments(_ context.Context, incidentID string, accountIDs []string) error {
	s.assignments[incidentID] = accountIDs
	return nil
}

type fakeMailer struct {
	sends []struct {
		Recipient string
		Token     string
	}
}

func (m *fakeMailer) SendPasswordReset(recipient, token string) {
	m.sends = append(m.sends, struct {
		Recipient string
		Token     string
	}{recipient, token})
}

type fakeEvidence struct {
	uploads []string
}

func (e *fakeEvidence) Upload(_ context.Context, filename string, _ multipart.File, _ string) (string, error) {
	key := "issue_images/" + filename
	e.uploads = append(e.uploads, key)
	return key, nil
}

func (e *fakeEvidence) URL(key string) string {
	return "https://evidence.test/" + key
}

func testConfig() *types.Config {
	return &types.Config{
		Environment:      "development",
		ServerPort:       0,
		BaseURL:          "http://localhost:8080",
		CookieName:       "waterline_session",
		SessionMaxAgeSec: 3600,
		CookieHashKey:    base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x42}, 32)),
		CookieBlockKey:   base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x17}, 16)),
	}
}

func newTestService(t *testing.T, accounts *fakeAccountStore, incidents *fakeIncidentStore, mailer *fakeMailer) *Service {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc, err := New(testConfig(), logger, accounts, incidents, mailer, &fakeEvidence{})
	require.NoError(t, err)

	return svc
}

// sessionCookie encodes a session for the given account ID the same way a
// successful login would.
func sessionCookie(t *testing.T, svc *Service, accountID string) *http.Cookie {
	t.Helper()

	encoded, err := svc.cookie.Encode(svc.config.CookieName, accountID)
	require.NoError(t, err)

	return &http.Cookie{Name: svc.config.CookieName, Value: encoded}
}

func doRequest(svc *Service, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	svc.Handler().ServeHTTP(rec, req)
	return rec
}
