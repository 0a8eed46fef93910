package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/okian/pubinfo/internal/adapters/repository"
	"github.com/okian/pubinfo/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const postgresDSNEnv = "PUBINFO_TEST_POSTGRES_DSN"

func TestPostgresStoreOptions(t *testing.T) {
	Convey("Given an unsafe table name", t, func() {
		_, err := repository.NewPostgresStore(context.Background(), "host=127.0.0.1", uuid.NewString(),
			repository.WithTable("docs; DROP TABLE x"))

		Convey("Then opening should fail before connecting", func() {
			So(errors.Is(err, repository.ErrInvalidKey), ShouldBeTrue)
		})
	})

	Convey("Given an unreachable server", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_, err := repository.NewPostgresStore(ctx, "host=127.0.0.1 port=1 sslmode=disable connect_timeout=1", uuid.NewString(),
			repository.WithPingAttempts(2),
			repository.WithPingInterval(10*time.Millisecond),
		)

		Convey("Then opening should give up after the configured attempts", func() {
			So(err, ShouldNotBeNil)
		})
	})
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv(postgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", postgresDSNEnv)
	}
	ctx := context.Background()
	table := "pubinfo_documents_test"

	Convey("Given two runs against the same database", t, func() {
		db, err := sql.Open("postgres", dsn)
		So(err, ShouldBeNil)
		defer db.Close()
		_, _ = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table)

		oldRun := uuid.NewString()
		old, err := repository.NewPostgresStore(ctx, dsn, oldRun, repository.WithTable(table))
		So(err, ShouldBeNil)
		So(old.PutVotes(ctx, "retired", model.NewHistory()), ShouldBeNil)
		So(old.PutManifest(ctx, model.Manifest{RunID: oldRun}), ShouldBeNil)
		So(old.Close(), ShouldBeNil)

		newRun := uuid.NewString()
		store, err := repository.NewPostgresStore(ctx, dsn, newRun, repository.WithTable(table))
		So(err, ShouldBeNil)
		defer store.Close()

		Convey("When the second run writes its documents", func() {
			bills := model.NewBills()
			bills.Set("b2", model.Bill{Measure: "AB-2"})
			bills.Set("b1", model.Bill{Measure: "AB-1"})
			So(store.PutBills(ctx, bills), ShouldBeNil)
			So(store.PutVotes(ctx, "smith", model.NewHistory()), ShouldBeNil)
			So(store.PutManifest(ctx, model.Manifest{RunID: newRun}), ShouldBeNil)

			Convey("Then only its documents should remain, with key order intact", func() {
				var count int
				So(db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count), ShouldBeNil)
				So(count, ShouldEqual, 3)

				var body string
				So(db.QueryRowContext(ctx,
					"SELECT body::text FROM "+table+" WHERE kind = 'bills'").Scan(&body), ShouldBeNil)
				So(body, ShouldStartWith, `{"b2":`)
			})
		})
	})
}
