package server

import (
	"net/http"
	"strings"

	"waterline/internal/report"
	"waterline/pkg/types"
)

// handleStatus is the triage view: the requesting account's own reports,
// optionally narrowed by issue type and status, newest first. With
// ?export=pdf the same filtered set is rendered as a downloadable PDF.
func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, err := s.accountFromContext(ctx)
	if err != nil {
		s.internalServerError(w)
		return
	}

	filter := types.IncidentFilter{}
	if v := strings.TrimSpace(r.URL.Query().Get("issue_type")); v != "" && types.IssueType(v).Valid() {
		filter.IssueType = types.IssueType(v)
	}
	if v := strings.TrimSpace(r.URL.Query().Get("status")); v != "" && types.IncidentStatus(v).Valid() {
		filter.Status = types.IncidentStatus(v)
	}

	incidents, err := s.incidentRepo.IncidentsByAccount(ctx, account.ID, filter)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch incidents for status view")
		s.internalServerError(w)
		return
	}

	if strings.TrimSpace(r.URL.Query().Get("export")) == "pdf" {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="complaints.pdf"`)

		if err := report.RenderPDF(w, incidents); err != nil {
			s.logger.WithError(err).Error("failed to export incident pdf")
		}
		return
	}

	data := &types.StatusPageData{
		BasePageData: types.BasePageData{
			Title:  "My Reports",
			Notice: r.URL.Query().Get("notice"),
		},
		Incidents:  incidents,
		IssueTypes: types.IssueTypes,
		Statuses:   types.IncidentStatuses,
		Filter:     filter,
	}

	if err := s.renderTemplate(w, r, "page.status", data); err != nil {
		s.logger.WithError(err).Error("failed to render status page")
		s.internalServerError(w)
	}
}
