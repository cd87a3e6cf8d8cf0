package export

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

var sampleHeader = []string{
	"second", "power_w", "smoothed_w", "centered_w", "zone", "hr_bpm", "cadence_rpm", "altitude_m", "lat", "long",
}

var curveHeader = []string{"duration_s", "label", "watts", "labelled"}

func writeSamplesCSV(path string, rows []SampleRow) error {
	return writeCSV(path, sampleHeader, len(rows), func(i int) []string {
		r := rows[i]
		return []string{
			strconv.FormatInt(r.Second, 10),
			formatFloat(r.PowerW),
			formatFloat(r.Smoothed),
			formatFloat(r.Centered),
			r.Zone,
			formatFloat(r.HRBPM),
			formatFloat(r.Cadence),
			formatFloat(r.AltM),
			formatFloat(r.Lat),
			formatFloat(r.Long),
		}
	})
}

func writeCurveCSV(path string, rows []CurveRow) error {
	return writeCSV(path, curveHeader, len(rows), func(i int) []string {
		r := rows[i]
		return []string{
			strconv.FormatInt(r.DurationS, 10),
			r.Label,
			formatFloat(r.Watts),
			strconv.FormatBool(r.Labelled),
		}
	})
}

func writeCSV(path string, header []string, n int, record func(int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := w.Write(record(i)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// NaN is written as an empty field
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeParquetFile[T any](path string, schema *T, rows []T) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	if err := writeParquet(fw, schema, rows); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

func writeParquet[T any](fw source.ParquetFile, schema *T, rows []T) error {
	pw, err := writer.NewParquetWriter(fw, schema, 4)
	if err != nil {
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return err
		}
	}
	return pw.WriteStop()
}
