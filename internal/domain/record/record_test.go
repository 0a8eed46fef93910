package record_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/pubinfo/internal/domain/record"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDecodeField(t *testing.T) {
	Convey("Given raw field values", t, func() {
		Convey("When the value is the NULL sentinel", func() {
			So(record.DecodeField("NULL"), ShouldResemble, record.Field{})
			So(record.DecodeField(" `NULL` "), ShouldResemble, record.Field{})
			So(record.DecodeField("NULL").Ptr(), ShouldBeNil)
		})

		Convey("When the value is quoted and padded", func() {
			f := record.DecodeField("  `AB-01`\r")

			Convey("Then whitespace and one quote layer should be removed", func() {
				So(f.Valid, ShouldBeTrue)
				So(f.Value, ShouldEqual, "AB-01")
				So(*f.Ptr(), ShouldEqual, "AB-01")
			})
		})

		Convey("When the value has nested quotes", func() {
			So(record.DecodeField("``x``").Value, ShouldEqual, "`x`")
		})

		Convey("When the value is empty or a lone quote", func() {
			So(record.DecodeField(""), ShouldResemble, record.Field{Value: "", Valid: true})
			So(record.DecodeField("`"), ShouldResemble, record.Field{Value: "", Valid: true})
		})

		Convey("When NULL is only part of the value", func() {
			So(record.DecodeField("NULLIFIED").Value, ShouldEqual, "NULLIFIED")
			So(record.DecodeField("null").Valid, ShouldBeTrue)
		})
	})
}

func TestDecode(t *testing.T) {
	Convey("Given a tab-delimited line", t, func() {
		row := record.Decode("`1`\tNULL\t` Smith, John `\t\t42")

		Convey("Then every column should become a field", func() {
			So(row.Len(), ShouldEqual, 5)
			So(row.Fields[0].Value, ShouldEqual, "1")
			So(row.Fields[1].Valid, ShouldBeFalse)
			So(row.Fields[2].Value, ShouldEqual, " Smith, John ")
			So(row.Fields[3], ShouldResemble, record.Field{Value: "", Valid: true})
		})

		Convey("Then typed reads should succeed", func() {
			n, err := row.Int(4)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 42)

			party, err := row.Nullable(1)
			So(err, ShouldBeNil)
			So(party, ShouldBeNil)
		})

		Convey("Then bad reads should return typed errors", func() {
			_, err := row.Text(9)
			So(errors.Is(err, record.ErrFieldRange), ShouldBeTrue)

			_, err = row.Text(1)
			So(errors.Is(err, record.ErrNullField), ShouldBeTrue)

			_, err = row.Int(2)
			So(errors.Is(err, record.ErrMalformedField), ShouldBeTrue)

			_, err = row.Time(0, "2006-01-02 15:04:05", time.UTC)
			So(errors.Is(err, record.ErrMalformedField), ShouldBeTrue)
		})
	})
}

func TestCursor(t *testing.T) {
	Convey("Given a cursor over a row", t, func() {
		row := record.Decode("7\t2024-01-05 13:30:00\tNULL")
		row.Line = 12

		Convey("When every read succeeds", func() {
			c := record.NewCursor(row)
			n := c.Int(0)
			at := c.Time(1, "2006-01-02 15:04:05", time.UTC)
			v := c.Nullable(2)

			So(c.Err(), ShouldBeNil)
			So(n, ShouldEqual, 7)
			So(at.Unix(), ShouldEqual, time.Date(2024, 1, 5, 13, 30, 0, 0, time.UTC).Unix())
			So(v, ShouldBeNil)
		})

		Convey("When a read fails", func() {
			c := record.NewCursor(row)
			_ = c.Text(2)
			later := c.Text(0)

			Convey("Then the first error should stick and carry the line", func() {
				So(later, ShouldEqual, "")
				So(errors.Is(c.Err(), record.ErrNullField), ShouldBeTrue)
				So(c.Err().Error(), ShouldStartWith, "line 12: field 2")
			})
		})
	})
}
