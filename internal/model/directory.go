package model

import "github.com/jackc/pgx/v5/pgtype"

// Company is an organization with its contact channels.
// Practices and Contacts are filled on read and ignored on write.
type Company struct {
	ID        int64          `json:"id"`
	Name      *string        `json:"name"`
	Address   *string        `json:"address"`
	ScopeID   *int64         `json:"scope_id"`
	Note      *string        `json:"note"`
	Emails    []string       `json:"emails"`
	Phones    []int64        `json:"phones"`
	Faxes     []int64        `json:"faxes"`
	Practices []PracticeList `json:"practices"`
	Contacts  []ContactShort `json:"contacts"`
}

// NewCompany returns an empty company with non-nil collections.
func NewCompany() Company {
	return Company{
		Emails:    []string{},
		Phones:    []int64{},
		Faxes:     []int64{},
		Practices: []PracticeList{},
		Contacts:  []ContactShort{},
	}
}

// CompanyList is a company row for tables.
type CompanyList struct {
	ID        int64         `json:"id"`
	Name      *string       `json:"name"`
	Address   *string       `json:"address"`
	ScopeName *string       `json:"scope_name"`
	Emails    []string      `json:"emails"`
	Phones    []int64       `json:"phones"`
	Faxes     []int64       `json:"faxes"`
	Practices []pgtype.Date `json:"practices"`
}

// Contact is a person, optionally attached to a company.
// Educations is filled on read and ignored on write.
type Contact struct {
	ID           int64         `json:"id"`
	Name         *string       `json:"name"`
	CompanyID    *int64        `json:"company_id"`
	DepartmentID *int64        `json:"department_id"`
	PostID       *int64        `json:"post_id"`
	PostGoID     *int64        `json:"post_go_id"`
	RankID       *int64        `json:"rank_id"`
	Birthday     pgtype.Date   `json:"birthday"`
	Note         *string       `json:"note"`
	Emails       []string      `json:"emails"`
	Phones       []int64       `json:"phones"`
	Faxes        []int64       `json:"faxes"`
	Educations   []pgtype.Date `json:"educations"`
}

// NewContact returns an empty contact with non-nil collections.
func NewContact() Contact {
	return Contact{
		Emails:     []string{},
		Phones:     []int64{},
		Faxes:      []int64{},
		Educations: []pgtype.Date{},
	}
}

// ContactList is a contact row for tables.
type ContactList struct {
	ID          int64   `json:"id"`
	Name        *string `json:"name"`
	CompanyID   *int64  `json:"company_id"`
	CompanyName *string `json:"company_name"`
	PostName    *string `json:"post_name"`
	Phones      []int64 `json:"phones"`
	Faxes       []int64 `json:"faxes"`
}

// ContactShort is a contact as shown inside its company.
type ContactShort struct {
	ID             int64   `json:"id"`
	Name           *string `json:"name"`
	DepartmentName *string `json:"department_name"`
	PostName       *string `json:"post_name"`
	PostGoName     *string `json:"post_go_name"`
}

// Named is a plain reference record: a name and a note.
type Named struct {
	ID   int64   `json:"id"`
	Name *string `json:"name"`
	Note *string `json:"note"`
}

// Department, Rank and Scope are Named records kept in separate tables.
type (
	Department = Named
	Rank       = Named
	Scope      = Named
)

// Post is a job title. Go marks civil defence posts.
type Post struct {
	ID   int64   `json:"id"`
	Name *string `json:"name"`
	Go   bool    `json:"go"`
	Note *string `json:"note"`
}
