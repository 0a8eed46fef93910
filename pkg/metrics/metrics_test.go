package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager()

			Convey("Then it should register on its own registry", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Registry(), ShouldNotBeNil)
				So(manager.Registry(), ShouldNotEqual, GetRegistry())
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.rowsRead.WithLabelValues("votes").Add(3)

			Convey("Then metric names should carry the namespace and subsystem", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_namespace_test_subsystem_rows_read_total")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the package-level recorders", t, func() {
		Convey("When recording rows read", func() {
			before := testutil.ToFloat64(globalManager.rowsRead.WithLabelValues("legislators"))
			RecordRowRead("legislators")
			RecordRowRead("legislators")

			Convey("Then the table counter should grow", func() {
				after := testutil.ToFloat64(globalManager.rowsRead.WithLabelValues("legislators"))
				So(after-before, ShouldEqual, 2)
			})
		})

		Convey("When updating assembled counts", func() {
			UpdateAssembled("bills", 12)
			UpdateAssembled("bills", 7)

			Convey("Then the gauge should hold the last value", func() {
				So(testutil.ToFloat64(globalManager.assembled.WithLabelValues("bills")), ShouldEqual, 7)
			})
		})

		Convey("When recording writes and outcomes", func() {
			So(func() {
				RecordStageDuration("votes", 0.25)
				RecordDocumentWritten("file", "votes")
				RecordWriteError("postgres", "bills")
				RecordRunFailure("missing_key", 1.5)
				RecordRunSuccess(2.5, 1_700_000_000)
			}, ShouldNotPanic)

			Convey("Then the run gauges should reflect the last success", func() {
				So(testutil.ToFloat64(globalManager.runDuration), ShouldEqual, 2.5)
				So(testutil.ToFloat64(globalManager.lastSuccessSec), ShouldEqual, 1_700_000_000)
			})
		})
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given recorded metrics", t, func() {
		RecordRowRead("motions")
		dir := t.TempDir()

		Convey("When writing the textfile", func() {
			path := filepath.Join(dir, "pubinfo.prom")
			err := WriteTextfile(path)

			Convey("Then the exposition should contain the counters", func() {
				So(err, ShouldBeNil)
				data, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(string(data), ShouldContainSubstring, `pubinfo_transform_rows_read_total{table="motions"}`)
			})
		})

		Convey("When the target directory does not exist", func() {
			err := WriteTextfile(filepath.Join(dir, "missing", "pubinfo.prom"))

			Convey("Then it should return an export error", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, ErrExportFailed), ShouldBeTrue)
			})
		})
	})
}
