package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/serbe/rugo-sub000/internal/model"
	"github.com/serbe/rugo-sub000/internal/repository"
)

// SirenRepo serves sirens.
type SirenRepo struct{}

var _ repository.Entity[model.Siren] = SirenRepo{}

// Get selects a siren by ID.
func (SirenRepo) Get(ctx context.Context, q repository.Querier, id int64) (model.Siren, error) {
	if id == 0 {
		return model.Siren{}, nil
	}
	const sql = `
SELECT
	id, num_id, num_pass, siren_type_id, address, radio, desk,
	contact_id, company_id, latitude, longitude, stage, own, note
FROM sirens
WHERE id = $1`
	var s model.Siren
	err := q.QueryRow(ctx, sql, id).Scan(
		&s.ID, &s.NumID, &s.NumPass, &s.SirenTypeID, &s.Address, &s.Radio, &s.Desk,
		&s.ContactID, &s.CompanyID, &s.Latitude, &s.Longitude, &s.Stage, &s.Own, &s.Note,
	)
	return s, scanOne(err)
}

// Insert adds a siren and returns its ID.
func (SirenRepo) Insert(ctx context.Context, q repository.Querier, s model.Siren) (int64, error) {
	const sql = `
INSERT INTO sirens (
	num_id, num_pass, siren_type_id, address, radio, desk,
	contact_id, company_id, latitude, longitude, stage, own, note,
	created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())
RETURNING id`
	var id int64
	err := q.QueryRow(ctx, sql,
		s.NumID, s.NumPass, s.SirenTypeID, s.Address, s.Radio, s.Desk,
		s.ContactID, s.CompanyID, s.Latitude, s.Longitude, s.Stage, s.Own, s.Note,
	).Scan(&id)
	return id, err
}

// Update rewrites a siren.
func (SirenRepo) Update(ctx context.Context, q repository.Querier, s model.Siren) (int64, error) {
	const sql = `
UPDATE sirens SET
	num_id = $2,
	num_pass = $3,
	siren_type_id = $4,
	address = $5,
	radio = $6,
	desk = $7,
	contact_id = $8,
	company_id = $9,
	latitude = $10,
	longitude = $11,
	stage = $12,
	own = $13,
	note = $14,
	updated_at = now()
WHERE id = $1`
	return expectOne(q.Exec(ctx, sql,
		s.ID, s.NumID, s.NumPass, s.SirenTypeID, s.Address, s.Radio, s.Desk,
		s.ContactID, s.CompanyID, s.Latitude, s.Longitude, s.Stage, s.Own, s.Note,
	))
}

// Delete removes a siren.
func (SirenRepo) Delete(ctx context.Context, q repository.Querier, id int64) (int64, error) {
	return expectOne(q.Exec(ctx, `DELETE FROM sirens WHERE id = $1`, id))
}

// List returns every siren with its type and the responsible contact's phones.
func (SirenRepo) List(ctx context.Context, q repository.Querier) ([]model.SirenList, error) {
	const sql = `
SELECT
	s.id,
	t.name AS siren_type_name,
	s.address,
	c.name AS contact_name,
	array_remove(array_agg(DISTINCT p.phone), NULL) AS phones
FROM sirens AS s
LEFT JOIN siren_types AS t ON s.siren_type_id = t.id
LEFT JOIN contacts AS c ON s.contact_id = c.id
LEFT JOIN phones AS p ON s.contact_id = p.contact_id AND p.fax = false
GROUP BY s.id, t.name, c.name
ORDER BY t.name ASC, s.address ASC`
	return collect(ctx, q, sql, func(row pgx.CollectableRow) (model.SirenList, error) {
		var s model.SirenList
		err := row.Scan(&s.ID, &s.SirenTypeName, &s.Address, &s.ContactName, &s.Phones)
		return s, err
	})
}
