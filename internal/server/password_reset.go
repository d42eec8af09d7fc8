package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"waterline/internal/auth"
	"waterline/internal/validate"
	"waterline/pkg/types"
)

// The reset-request response is identical whether or not the ID number is
// registered, so the form cannot be used to enumerate accounts.
const resetRequestNotice = "If that ID number is registered, a password reset link has been sent to its email address."

func (s *Service) handleGetForgotPassword(w http.ResponseWriter, r *http.Request) {
	data := &types.ForgotPasswordPageData{
		BasePageData: types.BasePageData{
			Title: "Forgot Password",
			Error: r.URL.Query().Get("error"),
		},
	}

	if err := s.renderTemplate(w, r, "page.forgot_password", data); err != nil {
		s.logger.WithError(err).Error("failed to render forgot password page")
		s.internalServerError(w)
	}
}

func (s *Service) handlePostForgotPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	idNumber := strings.TrimSpace(r.FormValue("id_number"))

	account, err := s.accountRepo.AccountByIDNumber(ctx, idNumber)
	if err != nil && !errors.Is(err, types.ErrAccountNotFound) {
		s.logger.WithError(err).Error("failed to look up account for password reset")
		s.internalServerError(w)
		return
	}

	if account != nil {
		token := auth.NewResetToken()
		if err := s.accountRepo.SetResetToken(ctx, account.ID, token); err != nil {
			s.logger.WithError(err).Error("failed to store reset token")
			s.internalServerError(w)
			return
		}

		// Best effort; delivery failure never blocks the response.
		s.mailer.SendPasswordReset(account.Email, token)
	}

	v := url.Values{}
	v.Set("notice", resetRequestNotice)
	http.Redirect(w, r, "/login?"+v.Encode(), http.StatusSeeOther)
}

func (s *Service) handleGetResetPassword(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	if _, err := s.accountRepo.AccountByResetToken(r.Context(), token); err != nil {
		s.redirectInvalidToken(w, r)
		return
	}

	data := &types.ResetPasswordPageData{
		BasePageData: types.BasePageData{Title: "Reset Password"},
		Token:        token,
	}

	if err := s.renderTemplate(w, r, "page.reset_password", data); err != nil {
		s.logger.WithError(err).Error("failed to render reset password page")
		s.internalServerError(w)
	}
}

func (s *Service) handlePostResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := r.PathValue("token")

	// An expired, unknown, or already-consumed token all fail the same
	// lookup.
	account, err := s.accountRepo.AccountByResetToken(ctx, token)
	if err != nil {
		s.redirectInvalidToken(w, r)
		return
	}

	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	if fieldErrors := validate.PasswordPair(password, confirm); len(fieldErrors) > 0 {
		data := &types.ResetPasswordPageData{
			BasePageData: types.BasePageData{
				Title: "Reset Password",
				Error: "Please fix the highlighted fields.",
			},
			Token:       token,
			FieldErrors: fieldErrors,
		}
		if err := s.renderTemplate(w, r, "page.reset_password", data); err != nil {
			s.logger.WithError(err).Error("failed to render reset password page with errors")
			s.internalServerError(w)
		}
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		s.logger.WithError(err).Error("failed to hash new password")
		s.internalServerError(w)
		return
	}

	// Clears the token in the same statement, keeping it single-use.
	if err := s.accountRepo.ResetPassword(ctx, account.ID, hash); err != nil {
		s.logger.WithError(err).Error("failed to reset password")
		s.internalServerError(w)
		return
	}

	v := url.Values{}
	v.Set("notice", "Password reset successfully. Please login.")
	http.Redirect(w, r, "/login?"+v.Encode(), http.StatusSeeOther)
}

func (s *Service) redirectInvalidToken(w http.ResponseWriter, r *http.Request) {
	v := url.Values{}
	v.Set("error", "Invalid or expired reset link.")
	http.Redirect(w, r, "/forgot-password?"+v.Encode(), http.StatusSeeOther)
}
