package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"bachat_backend/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var udhaarCols = []string{"id", "user_id", "type", "person_name", "amount", "date", "notes", "is_settled", "created_at", "updated_at"}

func TestUdhaarRepository_FindByUser_Filters(t *testing.T) {
	pool := newMockPool(t)
	repo := NewUdhaarRepository(pool)
	date := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	typ := model.UdhaarDene
	settled := false
	pool.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 AND type = $2 AND is_settled = $3 ORDER BY date DESC")).
		WithArgs("u-1", "DENE", false).
		WillReturnRows(pgxmock.NewRows(udhaarCols).
			AddRow("d-1", "u-1", "DENE", "Ravi", 300.0, date, nil, false, date, date))

	list, err := repo.FindByUser(context.Background(), "u-1", model.UdhaarFilters{Type: &typ, IsSettled: &settled})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.UdhaarDene, list[0].Type)
	assert.Nil(t, list[0].Notes)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestUdhaarRepository_FindOwned_NotFound(t *testing.T) {
	pool := newMockPool(t)
	repo := NewUdhaarRepository(pool)

	pool.ExpectQuery(regexp.QuoteMeta("FROM udhaar WHERE id = $1 AND user_id = $2")).
		WithArgs("d-1", "u-2").
		WillReturnError(pgx.ErrNoRows)

	entry, err := repo.FindOwned(context.Background(), "d-1", "u-2")
	assert.NoError(t, err)
	assert.Nil(t, entry)
}

func TestUdhaarRepository_Update_NotOwned(t *testing.T) {
	pool := newMockPool(t)
	repo := NewUdhaarRepository(pool)

	pool.ExpectQuery(regexp.QuoteMeta("WHERE id = $6 AND user_id = $7")).
		WithArgs("Ravi", 1.0, pgxmock.AnyArg(), pgxmock.AnyArg(), false, "d-1", "u-2").
		WillReturnError(pgx.ErrNoRows)

	err := repo.Update(context.Background(), &model.Udhaar{ID: "d-1", UserID: "u-2", PersonName: "Ravi", Amount: 1})
	assert.ErrorIs(t, err, ErrUdhaarNotFound)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestUdhaarRepository_SumUnsettled(t *testing.T) {
	pool := newMockPool(t)
	repo := NewUdhaarRepository(pool)

	pool.ExpectQuery(regexp.QuoteMeta("WHERE is_settled = FALSE")).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(750.0))

	total, err := repo.SumUnsettled(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 750.0, total)
}
