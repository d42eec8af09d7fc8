package server

import (
	"errors"
	"net/http"
	"net/url"

	"waterline/internal/validate"
	"waterline/pkg/types"
)

func (s *Service) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	account, err := s.accountFromContext(r.Context())
	if err != nil {
		s.internalServerError(w)
		return
	}

	data := &types.ProfilePageData{
		BasePageData: types.BasePageData{
			Title:  "My Details",
			Notice: r.URL.Query().Get("notice"),
		},
		IDNumber:    account.IDNumber,
		FirstName:   account.FirstName,
		LastName:    account.LastName,
		PhoneNumber: account.PhoneNumber,
		Address:     account.Address,
		Email:       account.Email,
	}

	if err := s.renderTemplate(w, r, "page.profile", data); err != nil {
		s.logger.WithError(err).Error("failed to render profile page")
		s.internalServerError(w)
	}
}

func (s *Service) handlePostProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, err := s.accountFromContext(ctx)
	if err != nil {
		s.internalServerError(w)
		return
	}

	if err := r.ParseForm(); err != nil {
		s.internalServerError(w)
		return
	}

	input := new(validate.ProfileInput)
	if err := decoder.Decode(input, r.Form); err != nil {
		s.logger.WithError(err).Error("failed to decode profile form")
		s.internalServerError(w)
		return
	}

	fieldErrors := validate.Profile(input)

	if fieldErrors["email"] == "" && input.Email != "" {
		taken, err := s.accountRepo.EmailExists(ctx, input.Email, account.ID)
		if err != nil {
			s.logger.WithError(err).Error("failed to check email uniqueness")
			s.internalServerError(w)
			return
		}
		if taken {
			fieldErrors["email"] = validate.MsgEmailTaken
		}
	}

	data := &types.ProfilePageData{
		BasePageData: types.BasePageData{Title: "My Details"},
		IDNumber:     account.IDNumber,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PhoneNumber:  input.PhoneNumber,
		Address:      input.Address,
		Email:        input.Email,
	}

	renderWithErrors := func() {
		data.Error = "Please fix the highlighted fields."
		data.FieldErrors = fieldErrors
		if err := s.renderTemplate(w, r, "page.profile", data); err != nil {
			s.logger.WithError(err).Error("failed to render profile page with errors")
			s.internalServerError(w)
		}
	}

	if len(fieldErrors) > 0 {
		renderWithErrors()
		return
	}

	updated := &types.Account{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		PhoneNumber: input.PhoneNumber,
		Address:     input.Address,
		Email:       input.Email,
	}

	if err := s.accountRepo.UpdateProfile(ctx, account.ID, updated); err != nil {
		if errors.Is(err, types.ErrDuplicateEmail) {
			fieldErrors["email"] = validate.MsgEmailTaken
			renderWithErrors()
			return
		}
		s.logger.WithError(err).Error("failed to update profile")
		s.internalServerError(w)
		return
	}

	v := url.Values{}
	v.Set("notice", "Details updated successfully.")
	http.Redirect(w, r, "/profile?"+v.Encode(), http.StatusSeeOther)
}
