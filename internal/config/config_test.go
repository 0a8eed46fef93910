package config_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/pubinfo/internal/config"
	"github.com/okian/pubinfo/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it should point at the published layout", func() {
			convey.So(cfg.InputDir, convey.ShouldEqual, filepath.Join("load_data", "data"))
			convey.So(cfg.LegislatorsPath(), convey.ShouldEqual, filepath.Join("src", "lib", "data", "legislators.json"))
			convey.So(cfg.BillsPath(), convey.ShouldEqual, filepath.Join("src", "lib", "data", "bills.json"))
			convey.So(cfg.VotesPath(), convey.ShouldEqual, filepath.Join("src", "lib", "data", "votes"))
			convey.So(cfg.Tables()[model.TableVotes], convey.ShouldEqual, "BILL_DETAIL_VOTE_TBL.dat")
			convey.So(cfg.Tables(), convey.ShouldHaveLength, len(model.Tables()))
		})

		convey.Convey("Then it should validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
			loc, err := cfg.Location()
			convey.So(err, convey.ShouldBeNil)
			convey.So(loc, convey.ShouldEqual, time.Local)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with unusable settings", t, func() {
		convey.Convey("When the output dir is empty", func() {
			cfg := config.New()
			cfg.OutputDir = ""
			err := cfg.Validate()

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "output_dir")
		})

		convey.Convey("When a table file name is empty", func() {
			cfg := config.New()
			cfg.TableMotions = ""
			err := cfg.Validate()

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, string(model.TableMotions))
		})

		convey.Convey("When the timezone is unknown", func() {
			cfg := config.New()
			cfg.Timezone = "Mars/Olympus_Mons"
			err := cfg.Validate()

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When max_line_bytes is not positive", func() {
			cfg := config.New()
			cfg.MaxLineBytes = 0

			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
