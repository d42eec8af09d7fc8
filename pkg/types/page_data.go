package types

type NavbarData struct {
	IsAuthenticated bool
	IsStaff         bool
	AccountName     string
	IDNumber        string
}

type NavbarDataSetter interface {
	SetNavbarData(data NavbarData)
}

type BasePageData struct {
	Title  string
	Notice string
	Error  string
	Navbar NavbarData
}

func (d *BasePageData) SetNavbarData(data NavbarData) {
	d.Navbar = data
}

type LoginPageData struct {
	BasePageData
	IDNumber string
}

type RegisterPageData struct {
	BasePageData
	FieldErrors map[string]string

	IDNumber    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Address     string
	Email       string
}

type ForgotPasswordPageData struct {
	BasePageData
	IDNumber string
}

type ResetPasswordPageData struct {
	BasePageData
	Token       string
	FieldErrors map[string]string
}

type ReportPageData struct {
	BasePageData
	FieldErrors map[string]string
	IssueTypes  []IssueType

	IssueType   string
	Description string
}

type StatusPageData struct {
	BasePageData
	Incidents []*Incident

	IssueTypes []IssueType
	Statuses   []IncidentStatus
	Filter     IncidentFilter
}

type ProfilePageData struct {
	BasePageData
	FieldErrors map[string]string

	IDNumber    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Address     string
	Email       string
}

type AdminIncidentsPageData struct {
	BasePageData
	Rows []*IncidentRow

	IssueTypes []IssueType
	Statuses   []IncidentStatus
	Severities []Severity
	Filter     AdminIncidentFilter
}

type AdminIncidentDetailPageData struct {
	BasePageData
	Row *IncidentRow

	Statuses   []IncidentStatus
	Severities []Severity

	Staff       []*Account
	AssignedIDs map[string]bool

	ImageURL string
}

type AdminAccountsPageData struct {
	BasePageData
	Accounts []*Account
	Filter   AccountFilter
}
