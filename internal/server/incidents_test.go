package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"waterline/internal/utils"
	"waterline/pkg/types"

	"github.com/stretchr/testify/require"
)

func postMultipart(t *testing.T, path string, fields map[string]string, imageName string, imageBody []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if imageName != "" {
		part, err := mw.CreateFormFile("image", imageName)
		require.NoError(t, err)
		_, err = part.Write(imageBody)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestSubmitReport(t *testing.T) {
	account := residentAccount(t, "secret1")
	incidents := newFakeIncidentStore()
	svc := newTestService(t, newFakeAccountStore(account), incidents, &fakeMailer{})

	req := postMultipart(t, "/", map[string]string{
		"issue_type":  "water_leak",
		"description": "Water pooling at the corner of River Road.",
		"latitude":    "-26.20410",
		"longitude":   "28.04730",
	}, "", nil)
	req.AddCookie(sessionCookie(t, svc, account.ID))

	rec := doRequest(svc, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/status", loc.Path)
	require.Equal(t, "Your complaint has been received. Our team will process it shortly.", loc.Query().Get("notice"))

	require.Len(t, incidents.incidents, 1)
	created := incidents.incidents[0]
	require.Equal(t, account.ID, created.AccountID)
	require.Equal(t, types.IssueTypeWaterLeak, created.IssueType)
	require.Equal(t, types.IncidentStatusReceived, created.Status)
	require.Equal(t, types.SeverityModerate, created.Severity)
	require.NotNil(t, created.Latitude)
	require.InDelta(t, -26.2041, *created.Latitude, 0.0001)
	require.Nil(t, created.ImageKey)
}

func TestSubmitReportWithoutCoordinates(t *testing.T) {
	account := residentAccount(t, "secret1")
	incidents := newFakeIncidentStore()
	svc := newTestService(t, newFakeAccountStore(account), incidents, &fakeMailer{})

	// The map picker leaves the hidden fields blank when no point is set;
	// blank values decode to nil, not zero.
	req := postMultipart(t, "/", map[string]string{
		"issue_type":  "tank_empty",
		"description": "Communal tank has been dry for two days.",
		"latitude":    "",
		"longitude":   "",
	}, "", nil)
	req.AddCookie(sessionCookie(t, svc, account.ID))

	rec := doRequest(svc, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Len(t, incidents.incidents, 1)
	require.Nil(t, incidents.incidents[0].Latitude)
	require.Nil(t, incidents.incidents[0].Longitude)
	require.False(t, incidents.incidents[0].HasLocation())
}

func TestSubmitReportWithImage(t *testing.T) {
	account := residentAccount(t, "secret1")
	incidents := newFakeIncidentStore()
	svc := newTestService(t, newFakeAccountStore(account), incidents, &fakeMailer{})

	req := postMultipart(t, "/", map[string]string{
		"issue_type":  "pipe_damage",
		"description": "Burst pipe outside the clinic.",
	}, "burst.jpg", []byte("not-really-a-jpeg"))
	req.AddCookie(sessionCookie(t, svc, account.ID))

	rec := doRequest(svc, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Len(t, incidents.incidents, 1)
	require.NotNil(t, incidents.incidents[0].ImageKey)
	require.Equal(t, "issue_images/burst.jpg", *incidents.incidents[0].ImageKey)
}

func TestSubmitReportInvalidIssueType(t *testing.T) {
	account := residentAccount(t, "secret1")
	incidents := newFakeIncidentStore()
	svc := newTestService(t, newFakeAccountStore(account), incidents, &fakeMailer{})

	req := postMultipart(t, "/", map[string]string{
		"issue_type":  "volcano",
		"description": "Not a water problem.",
	}, "", nil)
	req.AddCookie(sessionCookie(t, svc, account.ID))

	rec := doRequest(svc, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Please fix the highlighted fields.")
	require.Empty(t, incidents.incidents)
}

func TestReportFormRedirectsStaff(t *testing.T) {
	account := residentAccount(t, "secret1")
	account.IsStaff = true
	svc := newTestService(t, newFakeAccountStore(account), newFakeIncidentStore(), &fakeMailer{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, svc, account.ID))
	rec := doRequest(svc, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/admin/incidents", rec.Header().Get("Location"))
}

func TestStatusScopedToSessionAccount(t *testing.T) {
	account := residentAccount(t, "secret1")
	other := &types.Incident{
		ID:        "inc-other",
		AccountID: "acct-someone-else",
		IssueType: types.IssueTypeWaterLeak,
		Status:    types.IncidentStatusReceived,
		Severity:  types.SeverityModerate,
	}
	mine := &types.Incident{
		ID:        "inc-mine",
		AccountID: account.ID,
		IssueType: types.IssueTypeTankEmpty,
		Status:    types.IncidentStatusProcessing,
		Severity:  types.SeverityHigh,
	}
	incidents := newFakeIncidentStore(other, mine)
	svc := newTestService(t, newFakeAccountStore(account), incidents, &fakeMailer{})

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.AddCookie(sessionCookie(t, svc, account.ID))
	rec := doRequest(svc, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, incidents.byAccountCalls, 1)
	require.Equal(t, account.ID, incidents.byAccountCalls[0].AccountID)
}

func TestStatusFilterPassthrough(t *testing.T) {
	account := residentAccount(t, "secret1")
	incidents := newFakeIncidentStore()
	svc := newTestService(t, newFakeAccountStore(account), incidents, &fakeMailer{})

	req := httptest.NewRequest(http.MethodGet, "/status?issue_type=water_leak&status=processing", nil)
	req.AddCookie(sessionCookie(t, svc, account.ID))
	rec := doRequest(svc, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, incidents.byAccountCalls, 1)
	require.Equal(t, types.IssueTypeWaterLeak, incidents.byAccountCalls[0].Filter.IssueType)
	require.Equal(t, types.IncidentStatusProcessing, incidents.byAccountCalls[0].Filter.Status)
}

// Unrecognized filter values fall back to the unfiltered view rather than
// erroring.
func TestStatusIgnoresInvalidFilter(t *testing.T) {
	account := residentAccount(t, "secret1")
	incidents := newFakeIncidentStore()
	svc := newTestService(t, newFakeAccountStore(account), incidents, &fakeMailer{})

	req := httptest.NewRequest(http.MethodGet, "/status?issue_type=volcano&status=archived", nil)
	req.AddCookie(sessionCookie(t, svc, account.ID))
	rec := doRequest(svc, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, incidents.byAccountCalls, 1)
	require.Empty(t, incidents.byAccountCalls[0].Filter.IssueType)
	require.Empty(t, incidents.byAccountCalls[0].Filter.Status)
}

func TestStatusExportPDFHonorsFilter(t *testing.T) {
	account := residentAccount(t, "secret1")
	incidents := newFakeIncidentStore(
		&types.Incident{
			ID:        "inc-open",
			AccountID: account.ID,
			IssueType: types.IssueTypeWaterLeak,
			Status:    types.IncidentStatusReceived,
			Severity:  types.SeverityModerate,
		},
		&types.Incident{
			ID:          "inc-done",
			AccountID:   account.ID,
			IssueType:   types.IssueTypePipeDamage,
			Description: "Fixed burst main.",
			Status:      types.IncidentStatusCompleted,
			Severity:    types.SeverityHigh,
		},
	)
	svc := newTestService(t, newFakeAccountStore(account), incidents, &fakeMailer{})

	req := httptest.NewRequest(http.MethodGet, "/status?status=completed&export=pdf", nil)
	req.AddCookie(sessionCookie(t, svc, account.ID))
	rec := doRequest(svc, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	require.Len(t, incidents.byAccountCalls, 1)
	require.Equal(t, account.ID, incidents.byAccountCalls[0].AccountID)
	require.Equal(t, types.IncidentStatusCompleted, incidents.byAccountCalls[0].Filter.Status)
}

func TestStatusExportPDF(t *testing.T) {
	account := residentAccount(t, "secret1")
	incidents := newFakeIncidentStore(&types.Incident{
		ID:          "inc-1",
		AccountID:   account.ID,
		IssueType:   types.IssueTypeWaterLeak,
		Description: "Leak at the standpipe.",
		Status:      types.IncidentStatusReceived,
		Severity:    types.SeverityModerate,
		Latitude:    utils.Float64Ptr(-26.2),
		Longitude:   utils.Float64Ptr(28.0),
	})
	svc := newTestService(t, newFakeAccountStore(account), incidents, &fakeMailer{})

	req := httptest.NewRequest(http.MethodGet, "/status?export=pdf", nil)
	req.AddCookie(sessionCookie(t, svc, account.ID))
	rec := doRequest(svc, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename="complaints.pdf"`, rec.Header().Get("Content-Disposition"))
	require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}
