// Package csvcodec turns uploaded CSV into canonical import rows and user
// records back into CSV.
package csvcodec

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	domain "github.com/mohammadpnp/user-bulkops/internal/domain/user"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrMalformedCSV           = errors.New("malformed csv")
	ErrUnknownField           = errors.New("unknown export field")
)

// ImportFields is the accepted import column set, in template order.
var ImportFields = []string{"first_name", "last_name", "email", "phone_number", "role", "status"}

var DefaultExportFields = []string{"id", "first_name", "last_name", "email", "phone_number", "role", "status", "created_at"}

var acceptedContentTypes = map[string]bool{
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
	"text/plain":               true,
}

var exportColumns = map[string]func(domain.User) string{
	"id":            func(u domain.User) string { return u.ID },
	"first_name":    func(u domain.User) string { return u.FirstName },
	"last_name":     func(u domain.User) string { return u.LastName },
	"email":         func(u domain.User) string { return u.Email },
	"phone_number":  func(u domain.User) string { return u.PhoneNumber },
	"role":          func(u domain.User) string { return string(u.Role) },
	"status":        func(u domain.User) string { return string(u.Status) },
	"status_reason": func(u domain.User) string { return u.StatusReason },
	"created_at":    func(u domain.User) string { return formatTime(u.CreatedAt) },
	"updated_at":    func(u domain.User) string { return formatTime(u.UpdatedAt) },
	"deleted_at": func(u domain.User) string {
		if u.DeletedAt == nil {
			return ""
		}
		return formatTime(*u.DeletedAt)
	},
}

// IsCSVContentType reports whether a declared Content-Type is one we parse.
// Media type parameters such as charset are ignored.
func IsCSVContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return acceptedContentTypes[strings.ToLower(mediaType)]
}

// RowReader yields one canonical field map per data row. It reads lazily and
// cannot be rewound.
type RowReader struct {
	reader *csv.Reader
	header []string
}

// Parse validates the content type, strips a UTF-8 BOM and reads the header
// row. mapping renames CSV headers (case-insensitive) to canonical field
// names; headers without a mapping keep their normalized name.
func Parse(contentType string, r io.Reader, mapping map[string]string) (*RowReader, error) {
	if !IsCSVContentType(contentType) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}

	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.TrimLeadingSpace = true

	raw, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: missing header row", ErrMalformedCSV)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}

	normalizedMapping := make(map[string]string, len(mapping))
	for from, to := range mapping {
		normalizedMapping[normalizeHeader(from)] = normalizeHeader(to)
	}

	header := make([]string, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, h := range raw {
		name := normalizeHeader(h)
		if mapped, ok := normalizedMapping[name]; ok {
			name = mapped
		}
		if name == "" {
			return nil, fmt.Errorf("%w: empty header in column %d", ErrMalformedCSV, i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate header %q", ErrMalformedCSV, name)
		}
		seen[name] = true
		header[i] = name
	}

	return &RowReader{reader: reader, header: header}, nil
}

func (r *RowReader) Header() []string {
	out := make([]string, len(r.header))
	copy(out, r.header)
	return out
}

// Next returns the next row or io.EOF once the input is exhausted.
func (r *RowReader) Next() (map[string]string, error) {
	record, err := r.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}

	row := make(map[string]string, len(r.header))
	for i, name := range r.header {
		row[name] = strings.TrimSpace(record[i])
	}
	return row, nil
}

// ValidateFields checks an export field list before any data is read.
func ValidateFields(fields []string) error {
	for _, f := range fields {
		if _, ok := exportColumns[f]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, f)
		}
	}
	return nil
}

// Serialize writes users as CSV using fields as the ordered column list, or
// DefaultExportFields when fields is empty.
func Serialize(users []domain.User, fields []string) ([]byte, error) {
	if len(fields) == 0 {
		fields = DefaultExportFields
	}
	if err := ValidateFields(fields); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(fields); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(fields))
	for _, u := range users {
		for i, f := range fields {
			record[i] = exportColumns[f](u)
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write record %s: %w", u.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Template returns a header-only CSV naming the import columns.
func Template() []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(ImportFields)
	w.Flush()
	return buf.Bytes()
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, " ", "_")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
