package server

import (
	"net/http"

	"waterline/pkg/types"
)

func (s *Service) renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) error {
	if setter, ok := data.(types.NavbarDataSetter); ok {
		navbar := types.NavbarData{}
		if account, err := s.accountFromContext(r.Context()); err == nil {
			navbar = types.NavbarData{
				IsAuthenticated: true,
				IsStaff:         account.IsStaff,
				AccountName:     account.FullName(),
				IDNumber:        account.IDNumber,
			}
		}
		setter.SetNavbarData(navbar)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return s.templates.ExecuteTemplate(w, templateName, data)
}
