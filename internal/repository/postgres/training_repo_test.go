package postgres

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/serbe/rugo-sub000/internal/errs"
	"github.com/serbe/rugo-sub000/internal/model"
)

func TestCertificateRepo_List(t *testing.T) {
	_, mock := newDB(t)
	defer mock.Close()

	mock.ExpectQuery(`to_char\(c.cert_date, 'DD.MM.YY'\) AS cert_date, c.note FROM certificates AS c`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "num", "contact_id", "contact_name", "company_id", "company_name", "cert_date", "note"}).
			AddRow(int64(1), model.Ptr("A-1"), model.Ptr(int64(3)), model.Ptr("Ivan"), nil, nil, model.Ptr("05.06.23"), nil))
	list, err := CertificateRepo{}.List(context.Background(), mock)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "05.06.23", *list[0].CertDate)
	require.Nil(t, list[0].CompanyName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEducationRepo_NearIsCapped(t *testing.T) {
	_, mock := newDB(t)
	defer mock.Close()

	mock.ExpectQuery(`FROM educations AS e .* WHERE e.start_date > CURRENT_DATE - interval '1 month' ORDER BY e.start_date ASC LIMIT \$1`).
		WithArgs(nearLimit).
		WillReturnRows(pgxmock.NewRows([]string{"id", "contact_id", "contact_name", "start_date"}).
			AddRow(int64(2), model.Ptr(int64(3)), model.Ptr("Ivan"), nil))
	list, err := EducationRepo{}.Near(context.Background(), mock)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.False(t, list[0].StartDate.Valid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPracticeRepo_NearIsCapped(t *testing.T) {
	_, mock := newDB(t)
	defer mock.Close()

	mock.ExpectQuery(`FROM practices AS p .* WHERE p.date_of_practice > CURRENT_DATE - interval '1 month' .* LIMIT \$1`).
		WithArgs(nearLimit).
		WillReturnRows(pgxmock.NewRows([]string{"id", "company_id", "company_name", "kind_id", "kind_short_name", "date_of_practice"}))
	list, err := PracticeRepo{}.Near(context.Background(), mock)
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPracticeRepo_InsertAndDelete(t *testing.T) {
	_, mock := newDB(t)
	defer mock.Close()
	ctx := context.Background()

	p := model.Practice{CompanyID: model.Ptr(int64(5)), KindID: model.Ptr(int64(1)), Topic: model.Ptr("fire")}
	mock.ExpectQuery(`INSERT INTO practices`).
		WithArgs(p.CompanyID, p.KindID, p.Topic, p.DateOfPractice, p.Note).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(8)))
	id, err := PracticeRepo{}.Insert(ctx, mock, p)
	require.NoError(t, err)
	require.Equal(t, int64(8), id)

	mock.ExpectExec(`DELETE FROM practices WHERE id = \$1`).
		WithArgs(int64(8)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	_, err = PracticeRepo{}.Delete(ctx, mock, 8)
	require.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTrainingRepos_GetZeroIsEmpty(t *testing.T) {
	_, mock := newDB(t)
	defer mock.Close()
	ctx := context.Background()

	c, err := CertificateRepo{}.Get(ctx, mock, 0)
	require.NoError(t, err)
	require.Equal(t, model.Certificate{}, c)
	e, err := EducationRepo{}.Get(ctx, mock, 0)
	require.NoError(t, err)
	require.Equal(t, model.Education{}, e)
	p, err := PracticeRepo{}.Get(ctx, mock, 0)
	require.NoError(t, err)
	require.Equal(t, model.Practice{}, p)
	require.NoError(t, mock.ExpectationsWereMet())
}
