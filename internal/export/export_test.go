package export

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"powercurve/internal/analysis"
	"powercurve/internal/logging"
	"powercurve/internal/service"
	"powercurve/internal/workout"
)

func testReport(t *testing.T) *service.Report {
	t.Helper()
	n := 90
	power := make([]float64, n)
	hr := make([]float64, n)
	for i := range power {
		power[i] = 200
		hr[i] = 140
	}
	for i := 30; i < 40; i++ {
		power[i] = 400
	}
	w, err := workout.New("ride", "csv", "ride.csv", map[workout.Channel][]float64{
		workout.Power: power,
		workout.Hr:    hr,
	})
	if err != nil {
		t.Fatal(err)
	}
	a, err := service.NewAnalyzer(analysis.DefaultParams(251), logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	r, err := a.Analyze(w)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestSamples(t *testing.T) {
	r := testReport(t)
	rows := Samples(r)

	if len(rows) != 90 {
		t.Fatalf("len(Samples) = %d, want 90", len(rows))
	}
	// the first full trailing window ends on sample 9
	if !math.IsNaN(rows[8].Smoothed) || rows[8].Zone != "" {
		t.Errorf("row 8 = %+v, want no smoothed value", rows[8])
	}
	if rows[9].Smoothed != 200 || rows[9].Zone != "Endurance" {
		t.Errorf("row 9 = %+v, want 200 W Endurance", rows[9])
	}
	if rows[39].Smoothed != 400 || rows[39].Zone != "VO2 Max" {
		t.Errorf("row 39 = %+v, want 400 W VO2 Max", rows[39])
	}
	if rows[0].HRBPM != 140 {
		t.Errorf("HRBPM = %v, want 140", rows[0].HRBPM)
	}
	if !math.IsNaN(rows[0].Lat) {
		t.Errorf("absent channel Lat = %v, want NaN", rows[0].Lat)
	}
}

func TestCurve(t *testing.T) {
	rows := Curve(testReport(t))
	if len(rows) != 90 {
		t.Fatalf("len(Curve) = %d, want 90", len(rows))
	}
	tests := []struct {
		idx      int
		label    string
		watts    float64
		labelled bool
	}{
		{0, "0:01", 400, true},
		{2, "0:03", 400, false},
		{9, "0:10", 400, true},
		{59, "1:00", 200 + 200.0/6, true},
	}
	for _, tt := range tests {
		got := rows[tt.idx]
		if got.Label != tt.label || math.Abs(got.Watts-tt.watts) > 1e-9 || got.Labelled != tt.labelled {
			t.Errorf("Curve[%d] = %+v, want %s %v labelled=%v", tt.idx, got, tt.label, tt.watts, tt.labelled)
		}
	}
}

func TestWrite_CSV(t *testing.T) {
	dir := t.TempDir()
	paths, err := Write(dir, FormatCSV, testReport(t))
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	want := []string{filepath.Join(dir, "ride_samples.csv"), filepath.Join(dir, "ride_curve.csv")}
	if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
		t.Fatalf("Write() paths = %v, want %v", paths, want)
	}

	f, err := os.Open(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading samples: %v", err)
	}
	if len(records) != 91 {
		t.Fatalf("samples has %d records, want header + 90", len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(sampleHeader, ",") {
		t.Errorf("header = %v", records[0])
	}
	if records[1][2] != "" || records[10][2] != "200" {
		t.Errorf("smoothed column = %q, %q; want empty then 200", records[1][2], records[10][2])
	}
	if records[1][8] != "" {
		t.Errorf("lat = %q, want empty", records[1][8])
	}
}

func TestWrite_Parquet(t *testing.T) {
	dir := t.TempDir()
	paths, err := Write(dir, FormatParquet, testReport(t))
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.HasPrefix(data, []byte("PAR1")) || !bytes.HasSuffix(data, []byte("PAR1")) {
			t.Errorf("%s is not a parquet file", filepath.Base(p))
		}
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if _, err := Write(t.TempDir(), "xlsx", testReport(t)); err == nil {
		t.Error("Write(xlsx) should fail")
	}
}
