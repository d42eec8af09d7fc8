package server

import (
	"errors"
	"net/http"
	"net/url"

	"waterline/internal/auth"
	"waterline/internal/validate"
	"waterline/pkg/types"
)

func (s *Service) handleGetRegister(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.sessionAccount(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := &types.RegisterPageData{
		BasePageData: types.BasePageData{Title: "Register"},
	}

	if err := s.renderTemplate(w, r, "page.register", data); err != nil {
		s.logger.WithError(err).Error("failed to render register page")
		s.internalServerError(w)
	}
}

func (s *Service) handlePostRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		s.internalServerError(w)
		return
	}

	input := new(validate.RegisterInput)
	if err := decoder.Decode(input, r.Form); err != nil {
		s.logger.WithError(err).Error("failed to decode register form")
		s.internalServerError(w)
		return
	}

	fieldErrors := validate.Register(input)

	// Advisory uniqueness pre-checks. The database constraint remains the
	// authority under concurrent submission.
	if fieldErrors["id_number"] == "" {
		taken, err := s.accountRepo.IDNumberExists(ctx, input.IDNumber)
		if err != nil {
			s.logger.WithError(err).Error("failed to check id number uniqueness")
			s.internalServerError(w)
			return
		}
		if taken {
			fieldErrors["id_number"] = validate.MsgIDNumberTaken
		}
	}

	if fieldErrors["email"] == "" && input.Email != "" {
		taken, err := s.accountRepo.EmailExists(ctx, input.Email, "")
		if err != nil {
			s.logger.WithError(err).Error("failed to check email uniqueness")
			s.internalServerError(w)
			return
		}
		if taken {
			fieldErrors["email"] = validate.MsgEmailTaken
		}
	}

	data := &types.RegisterPageData{
		BasePageData: types.BasePageData{Title: "Register"},
		IDNumber:     input.IDNumber,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PhoneNumber:  input.PhoneNumber,
		Address:      input.Address,
		Email:        input.Email,
	}

	if len(fieldErrors) > 0 {
		s.renderRegisterErrors(w, r, data, fieldErrors)
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		s.logger.WithError(err).Error("failed to hash password")
		s.internalServerError(w)
		return
	}

	account := &types.Account{
		IDNumber:     input.IDNumber,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PhoneNumber:  input.PhoneNumber,
		Address:      input.Address,
		Email:        input.Email,
		PasswordHash: hash,
		IsActive:     true,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		// The pre-check lost a race; surface the same field errors the
		// pre-check would have produced.
		switch {
		case errors.Is(err, types.ErrDuplicateIDNumber):
			fieldErrors["id_number"] = validate.MsgIDNumberTaken
		case errors.Is(err, types.ErrDuplicateEmail):
			fieldErrors["email"] = validate.MsgEmailTaken
		default:
			s.logger.WithError(err).Error("failed to create account")
			s.internalServerError(w)
			return
		}
		s.renderRegisterErrors(w, r, data, fieldErrors)
		return
	}

	v := url.Values{}
	v.Set("notice", "Registration successful. Please login.")
	http.Redirect(w, r, "/login?"+v.Encode(), http.StatusSeeOther)
}

func (s *Service) renderRegisterErrors(w http.ResponseWriter, r *http.Request, data *types.RegisterPageData, fieldErrors validate.FieldErrors) {
	s.logger.WithField("field_errors", fieldErrors).Info("validation errors during registration")

	data.Error = "Please fix the highlighted fields."
	data.FieldErrors = fieldErrors

	if err := s.renderTemplate(w, r, "page.register", data); err != nil {
		s.logger.WithError(err).Error("failed to render register page with validation errors")
		s.internalServerError(w)
	}
}
