package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/serbe/rugo-sub000/internal/model"
	"github.com/serbe/rugo-sub000/internal/repository"
)

// ContactRepo serves contacts with their emails, phones and faxes.
type ContactRepo struct{}

var _ repository.Entity[model.Contact] = ContactRepo{}

// Get selects a contact with its channels and education dates.
func (ContactRepo) Get(ctx context.Context, q repository.Querier, id int64) (model.Contact, error) {
	c := model.NewContact()
	if id == 0 {
		return c, nil
	}
	const sql = `
SELECT
	c.id,
	c.name,
	c.company_id,
	c.department_id,
	c.post_id,
	c.post_go_id,
	c.rank_id,
	c.birthday,
	c.note,
	array_remove(array_agg(DISTINCT e.email), NULL) AS emails,
	array_remove(array_agg(DISTINCT p.phone), NULL) AS phones,
	array_remove(array_agg(DISTINCT f.phone), NULL) AS faxes,
	array_remove(array_agg(DISTINCT ed.start_date), NULL) AS educations
FROM contacts AS c
LEFT JOIN emails AS e ON c.id = e.contact_id
LEFT JOIN phones AS p ON c.id = p.contact_id AND p.fax = false
LEFT JOIN phones AS f ON c.id = f.contact_id AND f.fax = true
LEFT JOIN educations AS ed ON c.id = ed.contact_id
WHERE c.id = $1
GROUP BY c.id`
	err := q.QueryRow(ctx, sql, id).Scan(
		&c.ID, &c.Name, &c.CompanyID, &c.DepartmentID, &c.PostID, &c.PostGoID, &c.RankID,
		&c.Birthday, &c.Note, &c.Emails, &c.Phones, &c.Faxes, &c.Educations,
	)
	if err != nil {
		return model.Contact{}, scanOne(err)
	}
	return c, nil
}

// Insert adds a contact with its channels and returns its ID.
func (ContactRepo) Insert(ctx context.Context, q repository.Querier, c model.Contact) (int64, error) {
	const sql = `
INSERT INTO contacts (name, company_id, department_id, post_id, post_go_id, rank_id, birthday, note, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
RETURNING id`
	var id int64
	err := q.QueryRow(ctx, sql,
		c.Name, c.CompanyID, c.DepartmentID, c.PostID, c.PostGoID, c.RankID, c.Birthday, c.Note,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	if err := replaceChannels(ctx, q, ownerContact, id, c.Emails, c.Phones, c.Faxes); err != nil {
		return 0, err
	}
	return id, nil
}

// Update rewrites a contact and its channels.
func (ContactRepo) Update(ctx context.Context, q repository.Querier, c model.Contact) (int64, error) {
	const sql = `
UPDATE contacts SET
	name = $2,
	company_id = $3,
	department_id = $4,
	post_id = $5,
	post_go_id = $6,
	rank_id = $7,
	birthday = $8,
	note = $9,
	updated_at = now()
WHERE id = $1`
	n, err := expectOne(q.Exec(ctx, sql,
		c.ID, c.Name, c.CompanyID, c.DepartmentID, c.PostID, c.PostGoID, c.RankID, c.Birthday, c.Note,
	))
	if err != nil {
		return 0, err
	}
	if err := replaceChannels(ctx, q, ownerContact, c.ID, c.Emails, c.Phones, c.Faxes); err != nil {
		return 0, err
	}
	return n, nil
}

// Delete removes a contact after its faxes, phones and emails.
func (ContactRepo) Delete(ctx context.Context, q repository.Querier, id int64) (int64, error) {
	if err := deleteChannels(ctx, q, ownerContact, id); err != nil {
		return 0, err
	}
	return expectOne(q.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id))
}

// List returns every contact with company, post and phones.
func (ContactRepo) List(ctx context.Context, q repository.Querier) ([]model.ContactList, error) {
	const sql = `
SELECT
	c.id,
	c.name,
	co.id AS company_id,
	co.name AS company_name,
	po.name AS post_name,
	array_remove(array_agg(DISTINCT p.phone), NULL) AS phones,
	array_remove(array_agg(DISTINCT f.phone), NULL) AS faxes
FROM contacts AS c
LEFT JOIN companies AS co ON c.company_id = co.id
LEFT JOIN posts AS po ON c.post_id = po.id
LEFT JOIN phones AS p ON c.id = p.contact_id AND p.fax = false
LEFT JOIN phones AS f ON c.id = f.contact_id AND f.fax = true
GROUP BY c.id, co.id, po.name
ORDER BY c.name ASC`
	return collect(ctx, q, sql, func(row pgx.CollectableRow) (model.ContactList, error) {
		var c model.ContactList
		err := row.Scan(&c.ID, &c.Name, &c.CompanyID, &c.CompanyName, &c.PostName, &c.Phones, &c.Faxes)
		return c, err
	})
}

// ByCompany returns the contacts of one company.
func (ContactRepo) ByCompany(ctx context.Context, q repository.Querier, companyID int64) ([]model.ContactShort, error) {
	const sql = `
SELECT
	c.id,
	c.name,
	d.name AS department_name,
	p.name AS post_name,
	pg.name AS post_go_name
FROM contacts AS c
LEFT JOIN departments AS d ON c.department_id = d.id
LEFT JOIN posts AS p ON c.post_id = p.id
LEFT JOIN posts AS pg ON c.post_go_id = pg.id
WHERE c.company_id = $1
ORDER BY c.name ASC`
	return collect(ctx, q, sql, func(row pgx.CollectableRow) (model.ContactShort, error) {
		var c model.ContactShort
		err := row.Scan(&c.ID, &c.Name, &c.DepartmentName, &c.PostName, &c.PostGoName)
		return c, err
	}, companyID)
}

// Select returns id/name pairs ordered by name.
func (ContactRepo) Select(ctx context.Context, q repository.Querier) ([]model.SelectItem, error) {
	return selectItems(ctx, q, `SELECT id, name FROM contacts ORDER BY name ASC`)
}
