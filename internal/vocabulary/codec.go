package vocabulary

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/example/flashdeck/internal/excel"
	"github.com/example/flashdeck/pkg/models"
	"github.com/go-playground/validator/v10"
)

// Format is an import/export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// ErrImportParse marks every failure to read imported data
var ErrImportParse = errors.New("import parse error")

// ImportError describes why imported data was rejected. Row is the 1-based
// row (CSV/XLSX) or array position (JSON), or 0 when the whole input is bad.
type ImportError struct {
	Format Format
	Row    int
	Err    error
}

func (e *ImportError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("import %s: row %d: %v", e.Format, e.Row, e.Err)
	}
	return fmt.Sprintf("import %s: %v", e.Format, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrImportParse) hold for every ImportError
func (e *ImportError) Is(target error) bool { return target == ErrImportParse }

var validate = validator.New()

// ValidateEntry checks that the required entry fields are present
func ValidateEntry(e models.VocabularyEntry) error {
	return validate.Struct(e)
}

// ParseFormat maps a format name or file name to a Format
func ParseFormat(name string) (Format, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if ext := filepath.Ext(n); ext != "" {
		n = ext[1:]
	}
	switch n {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported format %q (use csv, json or xlsx)", name)
}

// Parse decodes entries in the given format. Either every entry is valid
// and returned, or an *ImportError is returned with no entries.
func Parse(format Format, data []byte) ([]models.VocabularyEntry, error) {
	var (
		entries []models.VocabularyEntry
		err     error
	)
	switch format {
	case FormatCSV:
		entries, err = parseCSV(data)
	case FormatJSON:
		entries, err = parseJSON(data)
	case FormatXLSX:
		entries, err = parseXLSX(data)
	default:
		return nil, &ImportError{Format: format, Err: fmt.Errorf("unsupported format")}
	}
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, &ImportError{Format: format, Err: errors.New("no entries found")}
	}
	return entries, nil
}

// Export encodes entries in the given format
func Export(format Format, entries []models.VocabularyEntry) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, format, entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes entries to w in the given format
func Write(w io.Writer, format Format, entries []models.VocabularyEntry) error {
	switch format {
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(models.EntryColumns); err != nil {
			return err
		}
		for _, e := range entries {
			if err := cw.Write(e.Row()); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case FormatJSON:
		if entries == nil {
			entries = []models.VocabularyEntry{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(entries)
	case FormatXLSX:
		return excel.WriteEntries(w, entries, excel.DefaultConfig())
	}
	return fmt.Errorf("unsupported format %q", format)
}

type record struct {
	row    int
	fields []string
}

func parseCSV(data []byte) ([]models.VocabularyEntry, error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\ufeff"))))
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.TrimLeadingSpace = true

	var records []record
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, &ImportError{Format: FormatCSV, Row: perr.StartLine, Err: perr.Err}
			}
			return nil, &ImportError{Format: FormatCSV, Err: err}
		}
		line, _ := reader.FieldPos(0)
		records = append(records, record{row: line, fields: fields})
	}
	return entriesFromRecords(FormatCSV, records)
}

func parseXLSX(data []byte) ([]models.VocabularyEntry, error) {
	rows, err := excel.ReadRows(bytes.NewReader(data), excel.Config{})
	if err != nil {
		return nil, &ImportError{Format: FormatXLSX, Err: err}
	}
	records := make([]record, len(rows))
	for i, r := range rows {
		records[i] = record{row: r.Number, fields: r.Cells}
	}
	return entriesFromRecords(FormatXLSX, records)
}

func entriesFromRecords(format Format, records []record) ([]models.VocabularyEntry, error) {
	if len(records) > 0 && isHeader(records[0].fields) {
		records = records[1:]
	}

	entries := make([]models.VocabularyEntry, 0, len(records))
	for _, r := range records {
		if len(r.fields) < 3 {
			return nil, &ImportError{Format: format, Row: r.row,
				Err: fmt.Errorf("expected at least 3 columns, got %d", len(r.fields))}
		}
		entry := models.VocabularyEntry{
			GermanWord:                 field(r.fields, 0),
			EnglishTranslation:         field(r.fields, 1),
			Category:                   field(r.fields, 2),
			GermanSentence:             field(r.fields, 3),
			EnglishSentenceTranslation: field(r.fields, 4),
		}
		if err := ValidateEntry(entry); err != nil {
			return nil, &ImportError{Format: format, Row: r.row, Err: describe(err)}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseJSON(data []byte) ([]models.VocabularyEntry, error) {
	var raw []models.VocabularyEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ImportError{Format: FormatJSON, Err: fmt.Errorf("expected an array of entries: %w", err)}
	}

	entries := make([]models.VocabularyEntry, 0, len(raw))
	for i, e := range raw {
		e = models.VocabularyEntry{
			GermanWord:                 strings.TrimSpace(e.GermanWord),
			EnglishTranslation:         strings.TrimSpace(e.EnglishTranslation),
			Category:                   strings.TrimSpace(e.Category),
			GermanSentence:             strings.TrimSpace(e.GermanSentence),
			EnglishSentenceTranslation: strings.TrimSpace(e.EnglishSentenceTranslation),
		}
		if err := ValidateEntry(e); err != nil {
			return nil, &ImportError{Format: FormatJSON, Row: i + 1, Err: describe(err)}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func isHeader(fields []string) bool {
	return len(fields) > 0 && strings.EqualFold(strings.TrimSpace(fields[0]), models.EntryColumns[0])
}

func field(fields []string, i int) string {
	if i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

// describe turns validator output into a short message naming the missing fields
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		names = append(names, lowerFirst(fe.Field()))
	}
	return fmt.Errorf("missing %s", strings.Join(names, ", "))
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
