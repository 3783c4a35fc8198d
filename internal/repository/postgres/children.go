package postgres

import (
	"context"
	"fmt"

	"github.com/serbe/rugo-sub000/internal/repository"
)

// owner is the parent column of an email or phone row.
type owner string

const (
	ownerCompany owner = "company_id"
	ownerContact owner = "contact_id"
)

func (o owner) deleteEmails() string {
	return fmt.Sprintf(`DELETE FROM emails WHERE %s = $1`, o)
}

func (o owner) insertEmail() string {
	return fmt.Sprintf(`INSERT INTO emails (%s, email, created_at, updated_at) VALUES ($1, $2, now(), now())`, o)
}

func (o owner) deletePhones() string {
	return fmt.Sprintf(`DELETE FROM phones WHERE %s = $1 AND fax = $2`, o)
}

func (o owner) insertPhone() string {
	return fmt.Sprintf(`INSERT INTO phones (%s, phone, fax, created_at, updated_at) VALUES ($1, $2, $3, now(), now())`, o)
}

// replaceEmails rewrites the emails of one parent.
func replaceEmails(ctx context.Context, q repository.Querier, o owner, id int64, emails []string) error {
	if _, err := q.Exec(ctx, o.deleteEmails(), id); err != nil {
		return err
	}
	for _, e := range emails {
		if _, err := q.Exec(ctx, o.insertEmail(), id, e); err != nil {
			return err
		}
	}
	return nil
}

// replacePhones rewrites the phones (fax=false) or faxes (fax=true) of one parent.
func replacePhones(ctx context.Context, q repository.Querier, o owner, id int64, fax bool, phones []int64) error {
	if _, err := q.Exec(ctx, o.deletePhones(), id, fax); err != nil {
		return err
	}
	for _, p := range phones {
		if _, err := q.Exec(ctx, o.insertPhone(), id, p, fax); err != nil {
			return err
		}
	}
	return nil
}

// replaceChannels rewrites emails, phones and faxes, in that order.
func replaceChannels(ctx context.Context, q repository.Querier, o owner, id int64, emails []string, phones, faxes []int64) error {
	if err := replaceEmails(ctx, q, o, id, emails); err != nil {
		return err
	}
	if err := replacePhones(ctx, q, o, id, false, phones); err != nil {
		return err
	}
	return replacePhones(ctx, q, o, id, true, faxes)
}

// deleteChannels removes faxes, phones and emails of one parent, in that order.
func deleteChannels(ctx context.Context, q repository.Querier, o owner, id int64) error {
	if _, err := q.Exec(ctx, o.deletePhones(), id, true); err != nil {
		return err
	}
	if _, err := q.Exec(ctx, o.deletePhones(), id, false); err != nil {
		return err
	}
	_, err := q.Exec(ctx, o.deleteEmails(), id)
	return err
}
