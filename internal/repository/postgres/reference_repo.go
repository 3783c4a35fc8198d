package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/serbe/rugo-sub000/internal/errs"
	"github.com/serbe/rugo-sub000/internal/model"
	"github.com/serbe/rugo-sub000/internal/repository"
)

// Tables served by NamedRepo.
const (
	TableDepartments = "departments"
	TableRanks       = "ranks"
	TableScopes      = "scopes"
)

// scanOne maps pgx.ErrNoRows to errs.ErrNotFound.
func scanOne(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.ErrNotFound
	}
	return err
}

func scanSelectItem(row pgx.CollectableRow) (model.SelectItem, error) {
	var s model.SelectItem
	err := row.Scan(&s.ID, &s.Name)
	return s, err
}

// selectItems runs a two-column (id, name) query.
func selectItems(ctx context.Context, q repository.Querier, sql string, args ...any) ([]model.SelectItem, error) {
	return collect(ctx, q, sql, scanSelectItem, args...)
}

// NamedRepo serves a name/note table: departments, ranks or scopes.
type NamedRepo struct{ table string }

var _ repository.Entity[model.Named] = NamedRepo{}

// NewNamedRepo constructs a repository over one of the Table* constants.
func NewNamedRepo(table string) NamedRepo { return NamedRepo{table: table} }

// Get selects a record by ID.
func (r NamedRepo) Get(ctx context.Context, q repository.Querier, id int64) (model.Named, error) {
	if id == 0 {
		return model.Named{}, nil
	}
	sql := fmt.Sprintf(`SELECT id, name, note FROM %s WHERE id = $1`, r.table)
	var n model.Named
	err := q.QueryRow(ctx, sql, id).Scan(&n.ID, &n.Name, &n.Note)
	return n, scanOne(err)
}

// Insert adds a record and returns its ID.
func (r NamedRepo) Insert(ctx context.Context, q repository.Querier, n model.Named) (int64, error) {
	sql := fmt.Sprintf(`
INSERT INTO %s (name, note, created_at, updated_at)
VALUES ($1, $2, now(), now())
RETURNING id`, r.table)
	var id int64
	err := q.QueryRow(ctx, sql, n.Name, n.Note).Scan(&id)
	return id, err
}

// Update rewrites a record.
func (r NamedRepo) Update(ctx context.Context, q repository.Querier, n model.Named) (int64, error) {
	sql := fmt.Sprintf(`UPDATE %s SET name = $2, note = $3, updated_at = now() WHERE id = $1`, r.table)
	return expectOne(q.Exec(ctx, sql, n.ID, n.Name, n.Note))
}

// Delete removes a record.
func (r NamedRepo) Delete(ctx context.Context, q repository.Querier, id int64) (int64, error) {
	sql := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)
	return expectOne(q.Exec(ctx, sql, id))
}

// List returns every record ordered by name.
func (r NamedRepo) List(ctx context.Context, q repository.Querier) ([]model.Named, error) {
	sql := fmt.Sprintf(`SELECT id, name, note FROM %s ORDER BY name ASC`, r.table)
	return collect(ctx, q, sql, func(row pgx.CollectableRow) (model.Named, error) {
		var n model.Named
		err := row.Scan(&n.ID, &n.Name, &n.Note)
		return n, err
	})
}

// Select returns id/name pairs ordered by name.
func (r NamedRepo) Select(ctx context.Context, q repository.Querier) ([]model.SelectItem, error) {
	return selectItems(ctx, q, fmt.Sprintf(`SELECT id, name FROM %s ORDER BY name ASC`, r.table))
}

// KindRepo serves practice kinds.
type KindRepo struct{}

var _ repository.Entity[model.Kind] = KindRepo{}

// Get selects a kind by ID.
func (KindRepo) Get(ctx context.Context, q repository.Querier, id int64) (model.Kind, error) {
	if id == 0 {
		return model.Kind{}, nil
	}
	const sql = `SELECT id, name, short_name, note FROM kinds WHERE id = $1`
	var k model.Kind
	err := q.QueryRow(ctx, sql, id).Scan(&k.ID, &k.Name, &k.ShortName, &k.Note)
	return k, scanOne(err)
}

// Insert adds a kind and returns its ID.
func (KindRepo) Insert(ctx context.Context, q repository.Querier, k model.Kind) (int64, error) {
	const sql = `
INSERT INTO kinds (name, short_name, note, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
RETURNING id`
	var id int64
	err := q.QueryRow(ctx, sql, k.Name, k.ShortName, k.Note).Scan(&id)
	return id, err
}

// Update rewrites a kind.
func (KindRepo) Update(ctx context.Context, q repository.Querier, k model.Kind) (int64, error) {
	const sql = `UPDATE kinds SET name = $2, short_name = $3, note = $4, updated_at = now() WHERE id = $1`
	return expectOne(q.Exec(ctx, sql, k.ID, k.Name, k.ShortName, k.Note))
}

// Delete removes a kind.
func (KindRepo) Delete(ctx context.Context, q repository.Querier, id int64) (int64, error) {
	return expectOne(q.Exec(ctx, `DELETE FROM kinds WHERE id = $1`, id))
}

// List returns every kind ordered by name.
func (KindRepo) List(ctx context.Context, q repository.Querier) ([]model.Kind, error) {
	const sql = `SELECT id, name, short_name, note FROM kinds ORDER BY name ASC`
	return collect(ctx, q, sql, func(row pgx.CollectableRow) (model.Kind, error) {
		var k model.Kind
		err := row.Scan(&k.ID, &k.Name, &k.ShortName, &k.Note)
		return k, err
	})
}

// Select returns id/name pairs ordered by name.
func (KindRepo) Select(ctx context.Context, q repository.Querier) ([]model.SelectItem, error) {
	return selectItems(ctx, q, `SELECT id, name FROM kinds ORDER BY name ASC`)
}

// PostRepo serves job titles.
type PostRepo struct{}

var _ repository.Entity[model.Post] = PostRepo{}

// Get selects a post by ID.
func (PostRepo) Get(ctx context.Context, q repository.Querier, id int64) (model.Post, error) {
	if id == 0 {
		return model.Post{}, nil
	}
	const sql = `SELECT id, name, go, note FROM posts WHERE id = $1`
	var p model.Post
	err := q.QueryRow(ctx, sql, id).Scan(&p.ID, &p.Name, &p.Go, &p.Note)
	return p, scanOne(err)
}

// Insert adds a post and returns its ID.
func (PostRepo) Insert(ctx context.Context, q repository.Querier, p model.Post) (int64, error) {
	const sql = `
INSERT INTO posts (name, go, note, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
RETURNING id`
	var id int64
	err := q.QueryRow(ctx, sql, p.Name, p.Go, p.Note).Scan(&id)
	return id, err
}

// Update rewrites a post.
func (PostRepo) Update(ctx context.Context, q repository.Querier, p model.Post) (int64, error) {
	const sql = `UPDATE posts SET name = $2, go = $3, note = $4, updated_at = now() WHERE id = $1`
	return expectOne(q.Exec(ctx, sql, p.ID, p.Name, p.Go, p.Note))
}

// Delete removes a post.
func (PostRepo) Delete(ctx context.Context, q repository.Querier, id int64) (int64, error) {
	return expectOne(q.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id))
}

// List returns every post ordered by name.
func (PostRepo) List(ctx context.Context, q repository.Querier) ([]model.Post, error) {
	const sql = `SELECT id, name, go, note FROM posts ORDER BY name ASC`
	return collect(ctx, q, sql, func(row pgx.CollectableRow) (model.Post, error) {
		var p model.Post
		err := row.Scan(&p.ID, &p.Name, &p.Go, &p.Note)
		return p, err
	})
}

// Select returns id/name pairs of posts with the given go flag.
func (PostRepo) Select(ctx context.Context, q repository.Querier, goPost bool) ([]model.SelectItem, error) {
	return selectItems(ctx, q, `SELECT id, name FROM posts WHERE go = $1 ORDER BY name ASC`, goPost)
}

// SirenTypeRepo serves siren models.
type SirenTypeRepo struct{}

var _ repository.Entity[model.SirenType] = SirenTypeRepo{}

// Get selects a siren type by ID.
func (SirenTypeRepo) Get(ctx context.Context, q repository.Querier, id int64) (model.SirenType, error) {
	if id == 0 {
		return model.SirenType{}, nil
	}
	const sql = `SELECT id, name, radius, note FROM siren_types WHERE id = $1`
	var s model.SirenType
	err := q.QueryRow(ctx, sql, id).Scan(&s.ID, &s.Name, &s.Radius, &s.Note)
	return s, scanOne(err)
}

// Insert adds a siren type and returns its ID.
func (SirenTypeRepo) Insert(ctx context.Context, q repository.Querier, s model.SirenType) (int64, error) {
	const sql = `
INSERT INTO siren_types (name, radius, note, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
RETURNING id`
	var id int64
	err := q.QueryRow(ctx, sql, s.Name, s.Radius, s.Note).Scan(&id)
	return id, err
}

// Update rewrites a siren type.
func (SirenTypeRepo) Update(ctx context.Context, q repository.Querier, s model.SirenType) (int64, error) {
	const sql = `UPDATE siren_types SET name = $2, radius = $3, note = $4, updated_at = now() WHERE id = $1`
	return expectOne(q.Exec(ctx, sql, s.ID, s.Name, s.Radius, s.Note))
}

// Delete removes a siren type.
func (SirenTypeRepo) Delete(ctx context.Context, q repository.Querier, id int64) (int64, error) {
	return expectOne(q.Exec(ctx, `DELETE FROM siren_types WHERE id = $1`, id))
}

// List returns every siren type ordered by name.
func (SirenTypeRepo) List(ctx context.Context, q repository.Querier) ([]model.SirenType, error) {
	const sql = `SELECT id, name, radius, note FROM siren_types ORDER BY name ASC`
	return collect(ctx, q, sql, func(row pgx.CollectableRow) (model.SirenType, error) {
		var s model.SirenType
		err := row.Scan(&s.ID, &s.Name, &s.Radius, &s.Note)
		return s, err
	})
}

// Select returns id/name pairs ordered by name.
func (SirenTypeRepo) Select(ctx context.Context, q repository.Querier) ([]model.SelectItem, error) {
	return selectItems(ctx, q, `SELECT id, name FROM siren_types ORDER BY name ASC`)
}
