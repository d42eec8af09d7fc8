package server

import (
	"net/http"
	"strings"

	"waterline/internal/auth"
	"waterline/pkg/types"
)

// genericLoginError is shown for every login failure. Unknown ID numbers,
// wrong passwords, and deactivated accounts are indistinguishable to avoid
// account enumeration.
const genericLoginError = "Invalid ID number or password."

func (s *Service) handleGetLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.sessionAccount(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := &types.LoginPageData{
		BasePageData: types.BasePageData{
			Title:  "Login",
			Notice: r.URL.Query().Get("notice"),
			Error:  r.URL.Query().Get("error"),
		},
	}

	if err := s.renderTemplate(w, r, "page.login", data); err != nil {
		s.logger.WithError(err).Error("failed to render login page")
		s.internalServerError(w)
	}
}

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	idNumber := strings.TrimSpace(r.FormValue("id_number"))
	password := r.FormValue("password")

	data := &types.LoginPageData{
		BasePageData: types.BasePageData{Title: "Login"},
		IDNumber:     idNumber,
	}

	account, err := s.accountRepo.AccountByIDNumber(ctx, idNumber)
	if err != nil ||
		!auth.CheckPasswordHash(password, account.PasswordHash) ||
		!account.IsActive {
		data.Error = genericLoginError
		if renderErr := s.renderTemplate(w, r, "page.login", data); renderErr != nil {
			s.logger.WithError(renderErr).Error("failed to render login page with error")
			s.internalServerError(w)
		}
		return
	}

	if err := s.setSessionCookie(w, account.ID); err != nil {
		s.logger.WithError(err).Error("failed to establish session")
		s.internalServerError(w)
		return
	}

	// Staff and residents share the login form but land on disjoint
	// surfaces.
	if account.IsStaff {
		http.Redirect(w, r, "/admin/incidents", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Service) setSessionCookie(w http.ResponseWriter, accountID string) error {
	encoded, err := s.cookie.Encode(s.config.CookieName, accountID)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    encoded,
		HttpOnly: true,
		Secure:   s.config.Environment != "development",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   s.config.SessionMaxAgeSec,
		Path:     "/",
	})

	return nil
}

func (s *Service) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   s.config.Environment != "development",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Path:     "/",
	})
}
