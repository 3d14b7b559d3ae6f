package export_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/movestat/internal/adapters/export"
	"github.com/okian/movestat/internal/domain/aggregate"
	"github.com/okian/movestat/internal/domain/model"
	"github.com/okian/movestat/internal/domain/possession"
	"github.com/okian/movestat/internal/synth"
	. "github.com/smartystreets/goconvey/convey"
)

func records() []aggregate.Record {
	roster, err := model.NewRoster(synth.Meta(9, synth.PlayerSpec{Trackable: 110, First: "Ada", Last: "Ames"}))
	if err != nil {
		panic(err)
	}
	return aggregate.NewRecords(9, roster, map[model.EntityID]*possession.PlayerMatchStat{
		"110": {
			Dist: possession.Partition{Total: 12, OnBall: 0, OffBall: 12, TeamNoPos: 12, TeamNoPosOffBall: 12},
			Time: possession.Partition{Total: 4, OffBall: 4, TeamNoPos: 4, TeamNoPosOffBall: 4},
		},
	})
}

func TestCSV(t *testing.T) {
	Convey("Given a record with undefined speeds", t, func() {
		recs := records()

		Convey("When writing CSV", func() {
			var buf bytes.Buffer
			So(export.WriteRecordsCSV(&buf, recs), ShouldBeNil)
			rows, err := csv.NewReader(&buf).ReadAll()
			So(err, ShouldBeNil)

			Convey("Then the header names every column and undefined speeds are blank", func() {
				So(len(rows), ShouldEqual, 2)
				header := rows[0]
				So(len(header), ShouldEqual, 6+24)
				So(header[0], ShouldEqual, "match_id")
				col := map[string]string{}
				for i, h := range header {
					col[h] = rows[1][i]
				}
				So(col["player_name"], ShouldEqual, "Ada Ames")
				So(col["side"], ShouldEqual, "home")
				So(col["dist"], ShouldEqual, "12")
				So(col["speed"], ShouldEqual, "3")
				So(col["speed_onball"], ShouldEqual, "")
				So(col["speed_teamnopos_offball"], ShouldEqual, "3")
			})
		})

		Convey("When writing averages as CSV", func() {
			var buf bytes.Buffer
			So(export.WriteAveragedCSV(&buf, aggregate.Average(recs)), ShouldBeNil)
			rows, err := csv.NewReader(&buf).ReadAll()
			So(err, ShouldBeNil)
			So(rows[0][5], ShouldEqual, "match_count")
			So(rows[1][5], ShouldEqual, "1")
		})
	})
}

func TestJSON(t *testing.T) {
	Convey("Given a record with undefined speeds", t, func() {
		var buf bytes.Buffer
		So(export.WriteJSON(&buf, records()), ShouldBeNil)

		var decoded []map[string]any
		So(json.Unmarshal(buf.Bytes(), &decoded), ShouldBeNil)

		Convey("Then undefined speeds are null", func() {
			speed := decoded[0]["speed"].(map[string]any)
			So(speed["onball"], ShouldBeNil)
			So(speed["total"], ShouldEqual, 3.0)
			So(decoded[0]["side"], ShouldEqual, "home")
			So(decoded[0]["match_id"], ShouldEqual, 9.0)
		})
	})
}

func TestWriteFile(t *testing.T) {
	Convey("Given an output directory", t, func() {
		dir := t.TempDir()
		b := export.Bundle{Records: records()}
		b.Averages = aggregate.Average(b.Records)

		Convey("When writing CSV", func() {
			path := filepath.Join(dir, "out", "stats.csv")
			So(export.WriteFile(path, b), ShouldBeNil)
			_, err := os.Stat(path)
			So(err, ShouldBeNil)
			_, err = os.Stat(filepath.Join(dir, "out", "stats_averages.csv"))
			So(err, ShouldBeNil)
		})

		Convey("When writing JSON", func() {
			path := filepath.Join(dir, "stats.json")
			So(export.WriteFile(path, b), ShouldBeNil)
			raw, err := os.ReadFile(path)
			So(err, ShouldBeNil)
			So(string(raw), ShouldContainSubstring, `"averages"`)
		})

		Convey("When the extension is unknown", func() {
			So(export.WriteFile(filepath.Join(dir, "stats.xml"), b), ShouldNotBeNil)
		})
	})
}
