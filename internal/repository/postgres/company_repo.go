package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/serbe/rugo-sub000/internal/model"
	"github.com/serbe/rugo-sub000/internal/repository"
)

// CompanyRepo serves companies with their emails, phones and faxes.
type CompanyRepo struct{}

var _ repository.Entity[model.Company] = CompanyRepo{}

// Get selects a company with its channels, practices and contacts.
func (CompanyRepo) Get(ctx context.Context, q repository.Querier, id int64) (model.Company, error) {
	c := model.NewCompany()
	if id == 0 {
		return c, nil
	}
	const sql = `
SELECT
	c.id,
	c.name,
	c.address,
	c.scope_id,
	c.note,
	array_remove(array_agg(DISTINCT e.email), NULL) AS emails,
	array_remove(array_agg(DISTINCT p.phone), NULL) AS phones,
	array_remove(array_agg(DISTINCT f.phone), NULL) AS faxes
FROM companies AS c
LEFT JOIN emails AS e ON c.id = e.company_id
LEFT JOIN phones AS p ON c.id = p.company_id AND p.fax = false
LEFT JOIN phones AS f ON c.id = f.company_id AND f.fax = true
WHERE c.id = $1
GROUP BY c.id`
	err := q.QueryRow(ctx, sql, id).Scan(&c.ID, &c.Name, &c.Address, &c.ScopeID, &c.Note, &c.Emails, &c.Phones, &c.Faxes)
	if err != nil {
		return model.Company{}, scanOne(err)
	}
	if c.Practices, err = (PracticeRepo{}).ByCompany(ctx, q, id); err != nil {
		return model.Company{}, err
	}
	if c.Contacts, err = (ContactRepo{}).ByCompany(ctx, q, id); err != nil {
		return model.Company{}, err
	}
	return c, nil
}

// Insert adds a company with its channels and returns its ID.
func (CompanyRepo) Insert(ctx context.Context, q repository.Querier, c model.Company) (int64, error) {
	const sql = `
INSERT INTO companies (name, address, scope_id, note, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())
RETURNING id`
	var id int64
	if err := q.QueryRow(ctx, sql, c.Name, c.Address, c.ScopeID, c.Note).Scan(&id); err != nil {
		return 0, err
	}
	if err := replaceChannels(ctx, q, ownerCompany, id, c.Emails, c.Phones, c.Faxes); err != nil {
		return 0, err
	}
	return id, nil
}

// Update rewrites a company and its channels.
func (CompanyRepo) Update(ctx context.Context, q repository.Querier, c model.Company) (int64, error) {
	const sql = `
UPDATE companies SET
	name = $2,
	address = $3,
	scope_id = $4,
	note = $5,
	updated_at = now()
WHERE id = $1`
	n, err := expectOne(q.Exec(ctx, sql, c.ID, c.Name, c.Address, c.ScopeID, c.Note))
	if err != nil {
		return 0, err
	}
	if err := replaceChannels(ctx, q, ownerCompany, c.ID, c.Emails, c.Phones, c.Faxes); err != nil {
		return 0, err
	}
	return n, nil
}

// Delete removes a company after its faxes, phones and emails.
func (CompanyRepo) Delete(ctx context.Context, q repository.Querier, id int64) (int64, error) {
	if err := deleteChannels(ctx, q, ownerCompany, id); err != nil {
		return 0, err
	}
	return expectOne(q.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id))
}

// List returns every company with scope name, channels and practice dates.
func (CompanyRepo) List(ctx context.Context, q repository.Querier) ([]model.CompanyList, error) {
	const sql = `
SELECT
	c.id,
	c.name,
	c.address,
	s.name AS scope_name,
	array_remove(array_agg(DISTINCT e.email), NULL) AS emails,
	array_remove(array_agg(DISTINCT p.phone), NULL) AS phones,
	array_remove(array_agg(DISTINCT f.phone), NULL) AS faxes,
	array_remove(array_agg(DISTINCT pr.date_of_practice), NULL) AS practices
FROM companies AS c
LEFT JOIN scopes AS s ON c.scope_id = s.id
LEFT JOIN emails AS e ON c.id = e.company_id
LEFT JOIN phones AS p ON c.id = p.company_id AND p.fax = false
LEFT JOIN phones AS f ON c.id = f.company_id AND f.fax = true
LEFT JOIN practices AS pr ON c.id = pr.company_id
GROUP BY c.id, s.name
ORDER BY c.name ASC`
	return collect(ctx, q, sql, func(row pgx.CollectableRow) (model.CompanyList, error) {
		var c model.CompanyList
		err := row.Scan(&c.ID, &c.Name, &c.Address, &c.ScopeName, &c.Emails, &c.Phones, &c.Faxes, &c.Practices)
		return c, err
	})
}

// Select returns id/name pairs ordered by name.
func (CompanyRepo) Select(ctx context.Context, q repository.Querier) ([]model.SelectItem, error) {
	return selectItems(ctx, q, `SELECT id, name FROM companies ORDER BY name ASC`)
}
