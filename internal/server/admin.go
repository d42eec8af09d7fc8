package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"waterline/internal/utils"
	"waterline/pkg/types"
)

func (s *Service) handleAdminHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/admin/incidents", http.StatusSeeOther)
}

func (s *Service) handleAdminIncidents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := types.AdminIncidentFilter{
		Search: strings.TrimSpace(q.Get("q")),
	}
	if v := q.Get("issue_type"); types.IssueType(v).Valid() {
		filter.IssueType = types.IssueType(v)
	}
	if v := q.Get("status"); types.IncidentStatus(v).Valid() {
		filter.Status = types.IncidentStatus(v)
	}
	if v := q.Get("severity"); types.Severity(v).Valid() {
		filter.Severity = types.Severity(v)
	}

	rows, err := s.incidentRepo.Incidents(ctx, filter)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch incidents for admin list")
		s.internalServerError(w)
		return
	}

	data := &types.AdminIncidentsPageData{
		BasePageData: types.BasePageData{
			Title:  "Incidents",
			Notice: q.Get("notice"),
		},
		Rows:       rows,
		IssueTypes: types.IssueTypes,
		Statuses:   types.IncidentStatuses,
		Severities: types.Severities,
		Filter:     filter,
	}

	if err := s.renderTemplate(w, r, "page.admin.incidents", data); err != nil {
		s.logger.WithError(err).Error("failed to render admin incidents page")
		s.internalServerError(w)
	}
}

// handleAdminIncidentStatus is the inline status edit on the list view.
func (s *Service) handleAdminIncidentStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	incidentID := r.PathValue("id")

	status := types.IncidentStatus(r.FormValue("status"))
	if !status.Valid() {
		http.Error(w, "Invalid status.", http.StatusBadRequest)
		return
	}

	if err := s.incidentRepo.UpdateStatus(ctx, incidentID, status); err != nil {
		s.logger.WithError(err).WithField("incident_id", incidentID).Error("failed to update incident status")
		s.internalServerError(w)
		return
	}

	http.Redirect(w, r, "/admin/incidents", http.StatusSeeOther)
}

func (s *Service) handleAdminIncidentDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	incidentID := r.PathValue("id")

	incident, err := s.incidentRepo.Incident(ctx, incidentID)
	if err != nil {
		if errors.Is(err, types.ErrIncidentNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.WithError(err).Error("failed to fetch incident for detail view")
		s.internalServerError(w)
		return
	}

	row := &types.IncidentRow{Incident: *incident}
	if reporter, err := s.accountRepo.Account(ctx, incident.AccountID); err == nil {
		row.ReporterIDNumber = reporter.IDNumber
		row.ReporterFirstName = reporter.FirstName
		row.ReporterLastName = reporter.LastName
	}

	staff, err := s.accountRepo.StaffAccounts(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch staff accounts")
		s.internalServerError(w)
		return
	}

	assignedIDs, err := s.incidentRepo.AssignedAccountIDs(ctx, incidentID)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch incident assignments")
		s.internalServerError(w)
		return
	}

	assigned := make(map[string]bool, len(assignedIDs))
	for _, id := range assignedIDs {
		assigned[id] = true
	}

	imageURL := ""
	if row.ImageKey != nil && s.evidence != nil {
		imageURL = s.evidence.URL(*row.ImageKey)
	}

	data := &types.AdminIncidentDetailPageData{
		BasePageData: types.BasePageData{
			Title:  "Incident " + row.IssueType.Label(),
			Notice: r.URL.Query().Get("notice"),
		},
		Row:         row,
		Statuses:    types.IncidentStatuses,
		Severities:  types.Severities,
		Staff:       staff,
		AssignedIDs: assigned,
		ImageURL:    imageURL,
	}

	if err := s.renderTemplate(w, r, "page.admin.incident", data); err != nil {
		s.logger.WithError(err).Error("failed to render admin incident detail")
		s.internalServerError(w)
	}
}

// handleAdminIncidentUpdate applies the detail form: status, severity, and
// the assigned-staff set. No transition order is enforced; staff may move
// a report backward.
func (s *Service) handleAdminIncidentUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	incidentID := r.PathValue("id")

	if err := r.ParseForm(); err != nil {
		s.internalServerError(w)
		return
	}

	status := types.IncidentStatus(r.FormValue("status"))
	severity := types.Severity(r.FormValue("severity"))
	if !status.Valid() || !severity.Valid() {
		http.Error(w, "Invalid status or severity.", http.StatusBadRequest)
		return
	}

	if err := s.incidentRepo.UpdateTriage(ctx, incidentID, status, severity); err != nil {
		s.logger.WithError(err).WithField("incident_id", incidentID).Error("failed to update incident triage")
		s.internalServerError(w)
		return
	}

	assignees := r.Form["assignees"]
	if err := s.incidentRepo.SetAssignments(ctx, incidentID, assignees); err != nil {
		s.logger.WithError(err).WithField("incident_id", incidentID).Error("failed to update incident assignments")
		s.internalServerError(w)
		return
	}

	v := url.Values{}
	v.Set("notice", "Incident updated.")
	http.Redirect(w, r, "/admin/incidents/"+incidentID+"?"+v.Encode(), http.StatusSeeOther)
}

func (s *Service) handleAdminAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := types.AccountFilter{
		Search: strings.TrimSpace(q.Get("q")),
	}
	switch q.Get("staff") {
	case "yes":
		filter.Staff = utils.BoolPtr(true)
	case "no":
		filter.Staff = utils.BoolPtr(false)
	}
	switch q.Get("active") {
	case "yes":
		filter.Active = utils.BoolPtr(true)
	case "no":
		filter.Active = utils.BoolPtr(false)
	}

	accounts, err := s.accountRepo.Accounts(ctx, filter)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch accounts for admin list")
		s.internalServerError(w)
		return
	}

	data := &types.AdminAccountsPageData{
		BasePageData: types.BasePageData{
			Title:  "Accounts",
			Notice: q.Get("notice"),
		},
		Accounts: accounts,
		Filter:   filter,
	}

	if err := s.renderTemplate(w, r, "page.admin.accounts", data); err != nil {
		s.logger.WithError(err).Error("failed to render admin accounts page")
		s.internalServerError(w)
	}
}

func (s *Service) handleAdminAccountActive(w http.ResponseWriter, r *http.Request) {
	s.toggleAccountFlag(w, r, s.accountRepo.SetActive)
}

func (s *Service) handleAdminAccountStaff(w http.ResponseWriter, r *http.Request) {
	s.toggleAccountFlag(w, r, s.accountRepo.SetStaff)
}

func (s *Service) toggleAccountFlag(w http.ResponseWriter, r *http.Request, set func(ctx context.Context, accountID string, value bool) error) {
	ctx := r.Context()
	accountID := r.PathValue("id")

	value := r.FormValue("value") == "true"

	if err := set(ctx, accountID, value); err != nil {
		s.logger.WithError(err).WithField("account_id", accountID).Error("failed to toggle account flag")
		s.internalServerError(w)
		return
	}

	http.Redirect(w, r, "/admin/accounts", http.StatusSeeOther)
}
