package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenNSW/landedcost/internal/trade/model"
)

func TestHSCodeService_GetAllHSCodes(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	s := NewHSCodeService(db)

	sqlMock.ExpectQuery(`SELECT count\(\*\) FROM "hs_codes" WHERE hs_code LIKE \$1`).
		WithArgs("85%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	sqlMock.ExpectQuery(`SELECT \* FROM "hs_codes" WHERE hs_code LIKE \$1 ORDER BY hs_code ASC LIMIT \$2`).
		WithArgs("85%", 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "hs_code", "description", "category"}).
			AddRow(uuid.New(), "85", "Electrical machinery", "electronics").
			AddRow(uuid.New(), "8518", "Loudspeakers", "electronics"))

	result, err := s.GetAllHSCodes(context.Background(), model.HSCodeFilter{HSCodeStartsWith: ptr("85")})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.TotalCount)
	require.Len(t, result.HSCodes, 2)
	assert.Equal(t, "8518", result.HSCodes[1].HSCode)
	assert.Equal(t, 0, result.Offset)
	assert.Equal(t, 20, result.Limit)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestHSCodeService_GetAllHSCodes_LimitCapped(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	s := NewHSCodeService(db)

	sqlMock.ExpectQuery(`SELECT count\(\*\) FROM "hs_codes"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	sqlMock.ExpectQuery(`SELECT \* FROM "hs_codes" ORDER BY hs_code ASC LIMIT \$1`).
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	result, err := s.GetAllHSCodes(context.Background(), model.HSCodeFilter{ListFilter: model.ListFilter{Limit: ptr(5000)}})
	require.NoError(t, err)
	assert.Equal(t, 100, result.Limit)
	assert.NotNil(t, result.HSCodes)
	assert.Empty(t, result.HSCodes)
}

func TestHSCodeService_GetAllHSCodes_Category(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	s := NewHSCodeService(db)

	sqlMock.ExpectQuery(`SELECT count\(\*\) FROM "hs_codes" WHERE category = \$1`).
		WithArgs("textiles").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	sqlMock.ExpectQuery(`SELECT \* FROM "hs_codes" WHERE category = \$1 ORDER BY hs_code ASC LIMIT \$2`).
		WithArgs("textiles", 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "hs_code", "category"}).
			AddRow(uuid.New(), "61", "textiles"))

	result, err := s.GetAllHSCodes(context.Background(), model.HSCodeFilter{Category: ptr("Textiles")})
	require.NoError(t, err)
	require.Len(t, result.HSCodes, 1)
	assert.Equal(t, "61", result.HSCodes[0].HSCode)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestHSCodeService_GetByCode(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	s := NewHSCodeService(db)

	sqlMock.ExpectQuery(`SELECT \* FROM "hs_codes" WHERE hs_code = \$1`).
		WithArgs("0901", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "hs_code", "category"}).AddRow(uuid.New(), "0901", "food"))
	code, err := s.GetByCode(context.Background(), " 0901 ")
	require.NoError(t, err)
	assert.Equal(t, "food", code.Category)

	sqlMock.ExpectQuery(`SELECT \* FROM "hs_codes"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = s.GetByCode(context.Background(), "0000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHSCodeService_CategoryFor(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	s := NewHSCodeService(db)

	sqlMock.ExpectQuery(`SELECT \* FROM "hs_codes" WHERE hs_code IN \(\$1,\$2,\$3\)`).
		WithArgs("8518.22", "8518", "85").
		WillReturnRows(sqlmock.NewRows([]string{"id", "hs_code", "category"}).
			AddRow(uuid.New(), "85", "machinery").
			AddRow(uuid.New(), "8518", "electronics"))

	category, err := s.CategoryFor(context.Background(), "8518.22")
	require.NoError(t, err)
	assert.Equal(t, "electronics", category, "most specific match wins")

	sqlMock.ExpectQuery(`SELECT \* FROM "hs_codes"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = s.CategoryFor(context.Background(), "9999")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.CategoryFor(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestClassificationPrefixes(t *testing.T) {
	assert.Equal(t, []string{"8518.22.00", "8518.22", "8518", "85"}, classificationPrefixes("8518.22.00"))
	assert.Equal(t, []string{"6109.10", "6109", "61"}, classificationPrefixes("610910"))
	assert.Equal(t, []string{"09"}, classificationPrefixes("09"))
	assert.Nil(t, classificationPrefixes("7"))
	assert.Equal(t, []string{"8518.2", "8518", "85"}, classificationPrefixes("8518.2"))
	assert.Equal(t, []string{"847", "84"}, classificationPrefixes("847"))
}

func TestHSCodeService_SeedDefaults(t *testing.T) {
	db, sqlMock := setupTestDB(t)
	s := NewHSCodeService(db)

	sqlMock.ExpectBegin()
	sqlMock.ExpectExec(`INSERT INTO "hs_codes" .* ON CONFLICT \("hs_code"\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 26))
	sqlMock.ExpectCommit()

	require.NoError(t, s.SeedDefaults(context.Background()))
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}
