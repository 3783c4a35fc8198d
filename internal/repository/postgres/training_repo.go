package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/serbe/rugo-sub000/internal/model"
	"github.com/serbe/rugo-sub000/internal/repository"
)

// nearLimit caps the upcoming education and practice lists.
const nearLimit = 10

// CertificateRepo serves training certificates.
type CertificateRepo struct{}

var _ repository.Entity[model.Certificate] = CertificateRepo{}

// Get selects a certificate by ID.
func (CertificateRepo) Get(ctx context.Context, q repository.Querier, id int64) (model.Certificate, error) {
	if id == 0 {
		return model.Certificate{}, nil
	}
	const sql = `SELECT id, num, contact_id, company_id, cert_date, note FROM certificates WHERE id = $1`
	var c model.Certificate
	err := q.QueryRow(ctx, sql, id).Scan(&c.ID, &c.Num, &c.ContactID, &c.CompanyID, &c.CertDate, &c.Note)
	return c, scanOne(err)
}

// Insert adds a certificate and returns its ID.
func (CertificateRepo) Insert(ctx context.Context, q repository.Querier, c model.Certificate) (int64, error) {
	const sql = `
INSERT INTO certificates (num, contact_id, company_id, cert_date, note, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())
RETURNING id`
	var id int64
	err := q.QueryRow(ctx, sql, c.Num, c.ContactID, c.CompanyID, c.CertDate, c.Note).Scan(&id)
	return id, err
}

// Update rewrites a certificate.
func (CertificateRepo) Update(ctx context.Context, q repository.Querier, c model.Certificate) (int64, error) {
	const sql = `
UPDATE certificates SET
	num = $2,
	contact_id = $3,
	company_id = $4,
	cert_date = $5,
	note = $6,
	updated_at = now()
WHERE id = $1`
	return expectOne(q.Exec(ctx, sql, c.ID, c.Num, c.ContactID, c.CompanyID, c.CertDate, c.Note))
}

// Delete removes a certificate.
func (CertificateRepo) Delete(ctx context.Context, q repository.Querier, id int64) (int64, error) {
	return expectOne(q.Exec(ctx, `DELETE FROM certificates WHERE id = $1`, id))
}

// List returns every certificate with contact and company names.
func (CertificateRepo) List(ctx context.Context, q repository.Querier) ([]model.CertificateList, error) {
	const sql = `
SELECT
	c.id,
	c.num,
	c.contact_id,
	co.name AS contact_name,
	c.company_id,
	cm.name AS company_name,
	to_char(c.cert_date, 'DD.MM.YY') AS cert_date,
	c.note
FROM certificates AS c
LEFT JOIN contacts AS co ON c.contact_id = co.id
LEFT JOIN companies AS cm ON c.company_id = cm.id
ORDER BY c.num ASC`
	return collect(ctx, q, sql, func(row pgx.CollectableRow) (model.CertificateList, error) {
		var c model.CertificateList
		err := row.Scan(&c.ID, &c.Num, &c.ContactID, &c.ContactName, &c.CompanyID, &c.CompanyName, &c.CertDate, &c.Note)
		return c, err
	})
}

// EducationRepo serves educations.
type EducationRepo struct{}

var _ repository.Entity[model.Education] = EducationRepo{}

// Get selects an education by ID.
func (EducationRepo) Get(ctx context.Context, q repository.Querier, id int64) (model.Education, error) {
	if id == 0 {
		return model.Education{}, nil
	}
	const sql = `SELECT id, contact_id, start_date, end_date, post_id, note FROM educations WHERE id = $1`
	var e model.Education
	err := q.QueryRow(ctx, sql, id).Scan(&e.ID, &e.ContactID, &e.StartDate, &e.EndDate, &e.PostID, &e.Note)
	return e, scanOne(err)
}

// Insert adds an education and returns its ID.
func (EducationRepo) Insert(ctx context.Context, q repository.Querier, e model.Education) (int64, error) {
	const sql = `
INSERT INTO educations (contact_id, start_date, end_date, post_id, note, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())
RETURNING id`
	var id int64
	err := q.QueryRow(ctx, sql, e.ContactID, e.StartDate, e.EndDate, e.PostID, e.Note).Scan(&id)
	return id, err
}

// Update rewrites an education.
func (EducationRepo) Update(ctx context.Context, q repository.Querier, e model.Education) (int64, error) {
	const sql = `
UPDATE educations SET
	contact_id = $2,
	start_date = $3,
	end_date = $4,
	post_id = $5,
	note = $6,
	updated_at = now()
WHERE id = $1`
	return expectOne(q.Exec(ctx, sql, e.ID, e.ContactID, e.StartDate, e.EndDate, e.PostID, e.Note))
}

// Delete removes an education.
func (EducationRepo) Delete(ctx context.Context, q repository.Querier, id int64) (int64, error) {
	return expectOne(q.Exec(ctx, `DELETE FROM educations WHERE id = $1`, id))
}

// List returns every education, latest first.
func (EducationRepo) List(ctx context.Context, q repository.Querier) ([]model.EducationList, error) {
	const sql = `
SELECT
	e.id,
	e.contact_id,
	c.name AS contact_name,
	e.start_date,
	e.end_date,
	to_char(e.start_date, 'DD.MM.YY') AS start_str,
	to_char(e.end_date, 'DD.MM.YY') AS end_str,
	e.post_id,
	p.name AS post_name,
	e.note
FROM educations AS e
LEFT JOIN contacts AS c ON c.id = e.contact_id
LEFT JOIN posts AS p ON p.id = e.post_id
ORDER BY e.start_date DESC`
	return collect(ctx, q, sql, func(row pgx.CollectableRow) (model.EducationList, error) {
		var e model.EducationList
		err := row.Scan(&e.ID, &e.ContactID, &e.ContactName, &e.StartDate, &e.EndDate,
			&e.StartStr, &e.EndStr, &e.PostID, &e.PostName, &e.Note)
		return e, err
	})
}

// Near returns the next educations starting after one month ago.
func (EducationRepo) Near(ctx context.Context, q repository.Querier) ([]model.EducationShort, error) {
	const sql = `
SELECT
	e.id,
	e.contact_id,
	c.name AS contact_name,
	e.start_date
FROM educations AS e
LEFT JOIN contacts AS c ON c.id = e.contact_id
WHERE e.start_date > CURRENT_DATE - interval '1 month'
ORDER BY e.start_date ASC
LIMIT $1`
	return collect(ctx, q, sql, func(row pgx.CollectableRow) (model.EducationShort, error) {
		var e model.EducationShort
		err := row.Scan(&e.ID, &e.ContactID, &e.ContactName, &e.StartDate)
		return e, err
	}, nearLimit)
}

// PracticeRepo serves practices.
type PracticeRepo struct{}

var _ repository.Entity[model.Practice] = PracticeRepo{}

// Get selects a practice by ID.
func (PracticeRepo) Get(ctx context.Context, q repository.Querier, id int64) (model.Practice, error) {
	if id == 0 {
		return model.Practice{}, nil
	}
	const sql = `SELECT id, company_id, kind_id, topic, date_of_practice, note FROM practices WHERE id = $1`
	var p model.Practice
	err := q.QueryRow(ctx, sql, id).Scan(&p.ID, &p.CompanyID, &p.KindID, &p.Topic, &p.DateOfPractice, &p.Note)
	return p, scanOne(err)
}

// Insert adds a practice and returns its ID.
func (PracticeRepo) Insert(ctx context.Context, q repository.Querier, p model.Practice) (int64, error) {
	const sql = `
INSERT INTO practices (company_id, kind_id, topic, date_of_practice, note, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())
RETURNING id`
	var id int64
	err := q.QueryRow(ctx, sql, p.CompanyID, p.KindID, p.Topic, p.DateOfPractice, p.Note).Scan(&id)
	return id, err
}

// Update rewrites a practice.
func (PracticeRepo) Update(ctx context.Context, q repository.Querier, p model.Practice) (int64, error) {
	const sql = `
UPDATE practices SET
	company_id = $2,
	kind_id = $3,
	topic = $4,
	date_of_practice = $5,
	note = $6,
	updated_at = now()
WHERE id = $1`
	return expectOne(q.Exec(ctx, sql, p.ID, p.CompanyID, p.KindID, p.Topic, p.DateOfPractice, p.Note))
}

// Delete removes a practice.
func (PracticeRepo) Delete(ctx context.Context, q repository.Querier, id int64) (int64, error) {
	return expectOne(q.Exec(ctx, `DELETE FROM practices WHERE id = $1`, id))
}

const practiceListColumns = `
SELECT
	p.id,
	p.company_id,
	c.name AS company_name,
	p.kind_id,
	k.name AS kind_name,
	k.short_name AS kind_short_name,
	p.topic,
	p.date_of_practice,
	to_char(p.date_of_practice, 'DD.MM.YY') AS date_str
FROM practices AS p
LEFT JOIN companies AS c ON c.id = p.company_id
LEFT JOIN kinds AS k ON k.id = p.kind_id`

func scanPracticeList(row pgx.CollectableRow) (model.PracticeList, error) {
	var p model.PracticeList
	err := row.Scan(&p.ID, &p.CompanyID, &p.CompanyName, &p.KindID, &p.KindName, &p.KindShortName,
		&p.Topic, &p.DateOfPractice, &p.DateStr)
	return p, err
}

// List returns every practice, latest first.
func (PracticeRepo) List(ctx context.Context, q repository.Querier) ([]model.PracticeList, error) {
	return collect(ctx, q, practiceListColumns+`
ORDER BY p.date_of_practice DESC`, scanPracticeList)
}

// ByCompany returns the practices of one company, latest first.
func (PracticeRepo) ByCompany(ctx context.Context, q repository.Querier, companyID int64) ([]model.PracticeList, error) {
	return collect(ctx, q, practiceListColumns+`
WHERE p.company_id = $1
ORDER BY p.date_of_practice DESC`, scanPracticeList, companyID)
}

// Near returns the next practices dated after one month ago.
func (PracticeRepo) Near(ctx context.Context, q repository.Querier) ([]model.PracticeShort, error) {
	const sql = `
SELECT
	p.id,
	p.company_id,
	c.name AS company_name,
	p.kind_id,
	k.short_name AS kind_short_name,
	p.date_of_practice
FROM practices AS p
LEFT JOIN companies AS c ON c.id = p.company_id
LEFT JOIN kinds AS k ON k.id = p.kind_id
WHERE p.date_of_practice > CURRENT_DATE - interval '1 month'
ORDER BY p.date_of_practice ASC
LIMIT $1`
	return collect(ctx, q, sql, func(row pgx.CollectableRow) (model.PracticeShort, error) {
		var p model.PracticeShort
		err := row.Scan(&p.ID, &p.CompanyID, &p.CompanyName, &p.KindID, &p.KindShortName, &p.DateOfPractice)
		return p, err
	}, nearLimit)
}
