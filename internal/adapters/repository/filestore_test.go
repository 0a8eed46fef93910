package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/pubinfo/internal/adapters/repository"
	"github.com/okian/pubinfo/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func ptr(s string) *string { return &s }

func layout(dir string) repository.Layout {
	return repository.Layout{
		LegislatorsPath: filepath.Join(dir, "legislators.json"),
		BillsPath:       filepath.Join(dir, "bills.json"),
		ManifestPath:    filepath.Join(dir, "manifest.json"),
		VotesDir:        filepath.Join(dir, "votes"),
	}
}

func readFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return string(data)
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a file store over a fresh directory", t, func() {
		dir := filepath.Join(t.TempDir(), "out")
		store, err := repository.NewFileStore(ctx, layout(dir))
		So(err, ShouldBeNil)
		defer store.Close()

		Convey("Then the votes directory should exist", func() {
			info, err := os.Stat(filepath.Join(dir, "votes"))
			So(err, ShouldBeNil)
			So(info.IsDir(), ShouldBeTrue)
		})

		Convey("When writing the legislators document", func() {
			roster := model.NewRoster()
			roster.Senate.Set("cole", model.Legislator{District: "SD-01", Party: ptr("DEM"), DisplayName: "Jo Cole"})
			So(store.PutLegislators(ctx, roster), ShouldBeNil)

			Convey("Then the file should hold both houses", func() {
				So(readFile(filepath.Join(dir, "legislators.json")), ShouldEqual,
					`{"A":{},"S":{"cole":{"district":"SD-01","party":"DEM","displayName":"Jo Cole"}}}`)
			})
		})

		Convey("When writing bills in a given order", func() {
			bills := model.NewBills()
			bills.Set("b2", model.Bill{Measure: "AB-1", Subject: ptr("Water")})
			bills.Set("b1", model.Bill{Measure: "AB-2"})
			So(store.PutBills(ctx, bills), ShouldBeNil)

			Convey("Then the file should keep that order", func() {
				So(readFile(filepath.Join(dir, "bills.json")), ShouldEqual,
					`{"b2":{"measure":"AB-1","subject":"Water","location":null,"status":null},`+
						`"b1":{"measure":"AB-2","subject":null,"location":null,"status":null}}`)
			})
		})

		Convey("When writing an author's votes", func() {
			history := model.NewHistory()
			history.Set("b1", []model.Vote{{Timestamp: 1700000000, Vote: ptr("AYE"), Motion: ptr("Third Reading"), Result: "PASS"}})
			So(store.PutVotes(ctx, "smith_j", history), ShouldBeNil)
			So(store.PutVotes(ctx, "lee", model.NewHistory()), ShouldBeNil)

			Convey("Then one file per author should be written", func() {
				So(readFile(filepath.Join(dir, "votes", "smith_j.json")), ShouldEqual,
					`{"b1":[{"timestamp":1700000000,"vote":"AYE","motion":"Third Reading","result":"PASS"}]}`)
				So(readFile(filepath.Join(dir, "votes", "lee.json")), ShouldEqual, `{}`)
			})
		})

		Convey("When an author name would escape the votes directory", func() {
			for _, author := range []string{"../x", "a/b", "..", ""} {
				err := store.PutVotes(ctx, author, model.NewHistory())
				So(errors.Is(err, repository.ErrInvalidKey), ShouldBeTrue)
			}
		})

		Convey("When writing the manifest", func() {
			at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
			err := store.PutManifest(ctx, model.Manifest{RunID: "run-1", GeneratedAt: at, Bills: 2})

			So(err, ShouldBeNil)
			So(readFile(filepath.Join(dir, "manifest.json")), ShouldEqual,
				`{"run_id":"run-1","generated_at":"2024-06-01T12:00:00Z","legislators":0,"bills":2,"authors":0,"votes":0}`)
		})
	})

	Convey("Given an output path blocked by a file", t, func() {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "out")
		So(os.WriteFile(blocker, []byte("x"), 0o644), ShouldBeNil)

		Convey("When opening the store", func() {
			_, err := repository.NewFileStore(ctx, layout(blocker))

			Convey("Then it should fail with a write error", func() {
				So(errors.Is(err, repository.ErrWrite), ShouldBeTrue)
			})
		})
	})
}
