package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Lllllllleong/backofficefunctions/internal/models"
	"github.com/xuri/excelize/v2"
)

// Column headers the import spreadsheet is expected to carry.
const (
	ColumnEmail     = "Email"
	ColumnOptedOut  = "Opted Out"
	ColumnFirstName = "First Name"
	ColumnLastName  = "Last Name"
	ColumnCreated   = "Created"
)

var ErrMissingHeaders = errors.New("import sheet is missing required headers")

var supportedImportExts = map[string]bool{".xlsx": true, ".csv": true}

func isSupportedImportFile(name string) bool {
	return supportedImportExts[strings.ToLower(filepath.Ext(name))]
}

// readSheetRows returns every row of the first worksheet (or the CSV file) at path.
func readSheetRows(path string) ([][]string, error) {
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r := csv.NewReader(f)
		r.FieldsPerRecord = -1
		r.TrimLeadingSpace = true
		return r.ReadAll()
	}

	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no worksheets")
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

type sheetStats struct {
	TotalRows  int
	OptedOut   int
	Invalid    int
	Duplicates int
}

// parseSubscriberRows maps spreadsheet rows to users, dropping opted-out,
// malformed and repeated addresses. The first row must be the header.
func parseSubscriberRows(rows [][]string) ([]models.ImportedUser, sheetStats, error) {
	var stats sheetStats
	if len(rows) == 0 {
		return nil, stats, fmt.Errorf("%w: sheet is empty", ErrMissingHeaders)
	}

	cols := make(map[string]int)
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, required := range []string{ColumnEmail, ColumnOptedOut} {
		if _, ok := cols[strings.ToLower(required)]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, stats, fmt.Errorf("%w: %s", ErrMissingHeaders, strings.Join(missing, ", "))
	}

	cell := func(row []string, column string) string {
		i, ok := cols[strings.ToLower(column)]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	seen := make(map[string]bool)
	var users []models.ImportedUser
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		stats.TotalRows++

		if isTruthy(cell(row, ColumnOptedOut)) {
			stats.OptedOut++
			continue
		}
		email, ok := parseEmail(cell(row, ColumnEmail))
		if !ok {
			stats.Invalid++
			continue
		}
		if seen[email] {
			stats.Duplicates++
			continue
		}
		seen[email] = true

		users = append(users, models.ImportedUser{
			Email:       email,
			FirstName:   cell(row, ColumnFirstName),
			LastName:    cell(row, ColumnLastName),
			CreatedDate: parseCreated(cell(row, ColumnCreated)),
		})
	}
	return users, stats, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "true", "yes", "y", "1", "x":
		return true
	}
	return false
}

func parseEmail(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Name != "" {
		return "", false
	}
	email := models.NormalizeEmail(addr.Address)
	// The address becomes the publicUsers document id.
	if !models.ValidDocID(email) {
		return "", false
	}
	return email, true
}

var createdLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"1/2/06",
	"01-02-06",
}

// parseCreated accepts common date renderings and raw Excel serial dates.
func parseCreated(v string) *time.Time {
	if v == "" {
		return nil
	}
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return &t
		}
	}
	return nil
}

// chunkUsers splits users into consecutive slices of at most size.
func chunkUsers(users []models.ImportedUser, size int) [][]models.ImportedUser {
	var chunks [][]models.ImportedUser
	for start := 0; start < len(users); start += size {
		end := min(start+size, len(users))
		chunks = append(chunks, users[start:end])
	}
	return chunks
}
