package record

import (
	"fmt"
	"time"
)

// Cursor reads typed fields from a row and keeps the first error, so a
// sequence of reads can be checked once with Err.
type Cursor struct {
	row Row
	err error
}

// NewCursor returns a cursor over row.
func NewCursor(row Row) *Cursor {
	return &Cursor{row: row}
}

// Text reads a required text field.
func (c *Cursor) Text(i int) string {
	if c.err != nil {
		return ""
	}
	v, err := c.row.Text(i)
	c.err = err
	return v
}

// Nullable reads an optional text field.
func (c *Cursor) Nullable(i int) *string {
	if c.err != nil {
		return nil
	}
	v, err := c.row.Nullable(i)
	c.err = err
	return v
}

// Int reads a required integer field.
func (c *Cursor) Int(i int) int {
	if c.err != nil {
		return 0
	}
	v, err := c.row.Int(i)
	c.err = err
	return v
}

// Time reads a required timestamp field.
func (c *Cursor) Time(i int, layout string, loc *time.Location) time.Time {
	if c.err != nil {
		return time.Time{}
	}
	v, err := c.row.Time(i, layout, loc)
	c.err = err
	return v
}

// Err returns the first error met, annotated with the source line.
func (c *Cursor) Err() error {
	if c.err == nil {
		return nil
	}
	if c.row.Line > 0 {
		return fmt.Errorf("line %d: %w", c.row.Line, c.err)
	}
	return c.err
}
