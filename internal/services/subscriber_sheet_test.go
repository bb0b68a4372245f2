package services

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Lllllllleong/backofficefunctions/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseSubscriberRows(t *testing.T) {
	rows := [][]string{
		{"email", "First Name", "Last Name", "OPTED OUT", "Created"},
		{"Jane@Example.com", "Jane", "Doe", "", "2023-04-05"},
		{"bob@example.com", "Bob", "", "yes", ""},
		{"not-an-email", "", "", "", ""},
		{"", "", "", "", ""},
		{"jane@example.com", "Dup", "", "false", ""},
		{"Sam <sam@example.com>", "", "", "", ""},
		{"kim@example.com", "Kim"},
		{"a/b@example.com", "", "", "", ""},
		{"__x__@example.com__", "", "", "", ""},
	}

	users, stats, err := parseSubscriberRows(rows)
	require.NoError(t, err)

	require.Len(t, users, 2)
	assert.Equal(t, "jane@example.com", users[0].Email)
	assert.Equal(t, "Jane", users[0].FirstName)
	assert.Equal(t, "Doe", users[0].LastName)
	require.NotNil(t, users[0].CreatedDate)
	assert.Equal(t, time.Date(2023, 4, 5, 0, 0, 0, 0, time.UTC), *users[0].CreatedDate)
	assert.Equal(t, "kim@example.com", users[1].Email)
	assert.Nil(t, users[1].CreatedDate)

	assert.Equal(t, 8, stats.TotalRows)
	assert.Equal(t, 1, stats.OptedOut)
	assert.Equal(t, 4, stats.Invalid)
	assert.Equal(t, 1, stats.Duplicates)
}

func TestParseSubscriberRowsMissingHeaders(t *testing.T) {
	_, _, err := parseSubscriberRows([][]string{{"Email", "Name"}, {"a@example.com", "A"}})
	assert.ErrorIs(t, err, ErrMissingHeaders)
	assert.Contains(t, err.Error(), "Opted Out")

	_, _, err = parseSubscriberRows(nil)
	assert.ErrorIs(t, err, ErrMissingHeaders)
}

func TestParseCreated(t *testing.T) {
	assert.Nil(t, parseCreated(""))
	assert.Nil(t, parseCreated("sometime"))

	got := parseCreated("3/7/2022")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2022, 3, 7, 0, 0, 0, 0, time.UTC), *got)

	got = parseCreated("45000")
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC), *got)
}

func TestIsSupportedImportFile(t *testing.T) {
	assert.True(t, isSupportedImportFile("publicUsers/imports/a.XLSX"))
	assert.True(t, isSupportedImportFile("a.csv"))
	assert.False(t, isSupportedImportFile("a.xls"))
	assert.False(t, isSupportedImportFile("a"))
}

func TestReadSheetRowsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.csv")
	require.NoError(t, os.WriteFile(path, []byte("Email,Opted Out\na@example.com, no\nb@example.com\n"), 0o600))

	rows, err := readSheetRows(path)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Email", "Opted Out"}, {"a@example.com", "no"}, {"b@example.com"}}, rows)
}

func TestReadSheetRowsXLSX(t *testing.T) {
	path := writeTestWorkbook(t, [][]any{
		{"Email", "Opted Out", "First Name"},
		{"a@example.com", "", "Ann"},
		{"b@example.com", "TRUE", "Ben"},
	})

	rows, err := readSheetRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Ann", rows[1][2])

	users, stats, err := parseSubscriberRows(rows)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, stats.OptedOut)
}

func TestChunkUsers(t *testing.T) {
	users := make([]models.ImportedUser, 5)
	chunks := chunkUsers(users, 2)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[2], 1)
	assert.Nil(t, chunkUsers(nil, 2))
}

func writeTestWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	wb := excelize.NewFile()
	defer wb.Close()
	sheet := wb.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), fmt.Sprintf("list-%d.xlsx", len(rows)))
	require.NoError(t, wb.SaveAs(path))
	return path
}
