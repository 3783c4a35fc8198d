package model

import "github.com/jackc/pgx/v5/pgtype"

// Certificate is a training certificate issued to a contact.
type Certificate struct {
	ID        int64       `json:"id"`
	Num       *string     `json:"num"`
	ContactID *int64      `json:"contact_id"`
	CompanyID *int64      `json:"company_id"`
	CertDate  pgtype.Date `json:"cert_date"`
	Note      *string     `json:"note"`
}

// CertificateList is a certificate row with joined names and a formatted date.
type CertificateList struct {
	ID          int64   `json:"id"`
	Num         *string `json:"num"`
	ContactID   *int64  `json:"contact_id"`
	ContactName *string `json:"contact_name"`
	CompanyID   *int64  `json:"company_id"`
	CompanyName *string `json:"company_name"`
	CertDate    *string `json:"cert_date"`
	Note        *string `json:"note"`
}

// Education is a course attended by a contact.
type Education struct {
	ID        int64       `json:"id"`
	ContactID *int64      `json:"contact_id"`
	StartDate pgtype.Date `json:"start_date"`
	EndDate   pgtype.Date `json:"end_date"`
	PostID    *int64      `json:"post_id"`
	Note      *string     `json:"note"`
}

// EducationList is an education row with joined names and formatted dates.
type EducationList struct {
	ID          int64       `json:"id"`
	ContactID   *int64      `json:"contact_id"`
	ContactName *string     `json:"contact_name"`
	StartDate   pgtype.Date `json:"start_date"`
	EndDate     pgtype.Date `json:"end_date"`
	StartStr    *string     `json:"start_str"`
	EndStr      *string     `json:"end_str"`
	PostID      *int64      `json:"post_id"`
	PostName    *string     `json:"post_name"`
	Note        *string     `json:"note"`
}

// EducationShort is an upcoming education.
type EducationShort struct {
	ID          int64       `json:"id"`
	ContactID   *int64      `json:"contact_id"`
	ContactName *string     `json:"contact_name"`
	StartDate   pgtype.Date `json:"start_date"`
}

// Kind is a type of practice.
type Kind struct {
	ID        int64   `json:"id"`
	Name      *string `json:"name"`
	ShortName *string `json:"short_name"`
	Note      *string `json:"note"`
}

// Practice is a training exercise held at a company.
type Practice struct {
	ID             int64       `json:"id"`
	CompanyID      *int64      `json:"company_id"`
	KindID         *int64      `json:"kind_id"`
	Topic          *string     `json:"topic"`
	DateOfPractice pgtype.Date `json:"date_of_practice"`
	Note           *string     `json:"note"`
}

// PracticeList is a practice row with joined names and a formatted date.
type PracticeList struct {
	ID             int64       `json:"id"`
	CompanyID      *int64      `json:"company_id"`
	CompanyName    *string     `json:"company_name"`
	KindID         *int64      `json:"kind_id"`
	KindName       *string     `json:"kind_name"`
	KindShortName  *string     `json:"kind_short_name"`
	Topic          *string     `json:"topic"`
	DateOfPractice pgtype.Date `json:"date_of_practice"`
	DateStr        *string     `json:"date_str"`
}

// PracticeShort is an upcoming practice.
type PracticeShort struct {
	ID             int64       `json:"id"`
	CompanyID      *int64      `json:"company_id"`
	CompanyName    *string     `json:"company_name"`
	KindID         *int64      `json:"kind_id"`
	KindShortName  *string     `json:"kind_short_name"`
	DateOfPractice pgtype.Date `json:"date_of_practice"`
}
