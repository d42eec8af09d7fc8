package server

import (
	"net/http"
	"net/url"

	"waterline/internal/validate"
	"waterline/pkg/types"
)

// 5 MB cap on evidence images.
const maxUploadBytes = 5 << 20

func (s *Service) handleGetReport(w http.ResponseWriter, r *http.Request) {
	account, err := s.accountFromContext(r.Context())
	if err != nil {
		s.internalServerError(w)
		return
	}

	// Staff work from the administrative surface, not the report form.
	if account.IsStaff {
		http.Redirect(w, r, "/admin/incidents", http.StatusSeeOther)
		return
	}

	data := &types.ReportPageData{
		BasePageData: types.BasePageData{
			Title:  "Report an Incident",
			Notice: r.URL.Query().Get("notice"),
		},
		IssueTypes: types.IssueTypes,
	}

	if err := s.renderTemplate(w, r, "page.report", data); err != nil {
		s.logger.WithError(err).Error("failed to render report page")
		s.internalServerError(w)
	}
}

func (s *Service) handlePostReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, err := s.accountFromContext(ctx)
	if err != nil {
		s.internalServerError(w)
		return
	}

	if account.IsStaff {
		http.Redirect(w, r, "/admin/incidents", http.StatusSeeOther)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.logger.WithError(err).Info("failed to parse report form")
		http.Error(w, "Upload too large or malformed.", http.StatusBadRequest)
		return
	}

	input := new(validate.IncidentInput)
	if err := decoder.Decode(input, r.MultipartForm.Value); err != nil {
		s.logger.WithError(err).Error("failed to decode report form")
		s.internalServerError(w)
		return
	}

	data := &types.ReportPageData{
		BasePageData: types.BasePageData{Title: "Report an Incident"},
		IssueTypes:   types.IssueTypes,
		IssueType:    input.IssueType,
		Description:  input.Description,
	}

	if fieldErrors := validate.Incident(input); len(fieldErrors) > 0 {
		data.Error = "Please fix the highlighted fields."
		data.FieldErrors = fieldErrors
		if err := s.renderTemplate(w, r, "page.report", data); err != nil {
			s.logger.WithError(err).Error("failed to render report page with errors")
			s.internalServerError(w)
		}
		return
	}

	incident := &types.Incident{
		AccountID:   account.ID,
		IssueType:   types.IssueType(input.IssueType),
		Description: input.Description,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()

		if s.evidence == nil {
			s.logger.Warn("evidence storage not configured, dropping uploaded image")
		} else {
			key, err := s.evidence.Upload(ctx, header.Filename, file, header.Header.Get("Content-Type"))
			if err != nil {
				s.logger.WithError(err).Error("failed to upload evidence image")
				s.internalServerError(w)
				return
			}
			incident.ImageKey = &key
		}
	}

	if err := s.incidentRepo.Create(ctx, incident); err != nil {
		s.logger.WithError(err).Error("failed to create incident")
		s.internalServerError(w)
		return
	}

	v := url.Values{}
	v.Set("notice", "Your complaint has been received. Our team will process it shortly.")
	http.Redirect(w, r, "/status?"+v.Encode(), http.StatusSeeOther)
}
