// Package record decodes lines of the tab-delimited pubinfo extract files.
//
// Each line is one record. Fields are separated by a single tab, may be
// wrapped in a backtick, and the bare token NULL marks an absent value.
// Decoding never fails; problems surface when a caller reads a field.
package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Source format markers.
const (
	Delimiter = "\t"
	Quote     = "`"
	Null      = "NULL"
)

// Field is a single decoded column value. Valid is false for NULL.
type Field struct {
	Value string
	Valid bool
}

// Ptr returns nil for an absent field and a pointer to the value otherwise.
func (f Field) Ptr() *string {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// Row is one decoded line. Line is the 1-based line number in the source
// file, or 0 when the row was decoded outside of a table pass.
type Row struct {
	Line   int
	Fields []Field
}

// DecodeField trims surrounding whitespace, then one quote marker from each
// end, and maps NULL to an absent field.
func DecodeField(raw string) Field {
	v := strings.TrimSpace(raw)
	v = strings.TrimPrefix(v, Quote)
	v = strings.TrimSuffix(v, Quote)
	if v == Null {
		return Field{}
	}
	return Field{Value: v, Valid: true}
}

// Decode splits a raw line into fields. Field count is not checked.
func Decode(line string) Row {
	parts := strings.Split(line, Delimiter)
	fields := make([]Field, len(parts))
	for i, p := range parts {
		fields[i] = DecodeField(p)
	}
	return Row{Fields: fields}
}

// Len returns the number of fields in the row.
func (r Row) Len() int { return len(r.Fields) }

// Field returns the field at index i.
func (r Row) Field(i int) (Field, error) {
	if i < 0 || i >= len(r.Fields) {
		return Field{}, fmt.Errorf("field %d of %d: %w", i, len(r.Fields), ErrFieldRange)
	}
	return r.Fields[i], nil
}

// Text returns the value at index i, failing on NULL.
func (r Row) Text(i int) (string, error) {
	f, err := r.Field(i)
	if err != nil {
		return "", err
	}
	if !f.Valid {
		return "", fmt.Errorf("field %d: %w", i, ErrNullField)
	}
	return f.Value, nil
}

// Nullable returns the value at index i, or nil for NULL.
func (r Row) Nullable(i int) (*string, error) {
	f, err := r.Field(i)
	if err != nil {
		return nil, err
	}
	return f.Ptr(), nil
}

// Int parses the value at index i as a base-10 integer.
func (r Row) Int(i int) (int, error) {
	s, err := r.Text(i)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("field %d: integer %q: %w", i, s, ErrMalformedField)
	}
	return n, nil
}

// Time parses the value at index i with layout in loc.
func (r Row) Time(i int, layout string, loc *time.Location) (time.Time, error) {
	s, err := r.Text(i)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation(layout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("field %d: timestamp %q: %w", i, s, ErrMalformedField)
	}
	return t, nil
}
