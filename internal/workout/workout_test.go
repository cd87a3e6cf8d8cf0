package workout

import (
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"
)

func floatPtr(v float64) *float64 {
	return &v
}

func quietOptions() NormalizeOptions {
	opts := DefaultNormalizeOptions()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return opts
}

func TestNormalize_ZeroFillsMissing(t *testing.T) {
	raw := RawSeries{
		Power: {floatPtr(100), nil, floatPtr(300)},
		Hr:    {nil, floatPtr(120), floatPtr(121)},
	}

	got, err := Normalize(raw, quietOptions())
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}

	if want := []float64{100, 0, 300}; !slices.Equal(got.Channels[Power], want) {
		t.Errorf("Power = %v, want %v", got.Channels[Power], want)
	}
	if want := []float64{0, 120, 121}; !slices.Equal(got.Channels[Hr], want) {
		t.Errorf("Hr = %v, want %v", got.Channels[Hr], want)
	}
	if len(got.Dropped()) != 0 {
		t.Errorf("Dropped() = %v, want none", got.Dropped())
	}
}

func TestNormalize_DropsSparseChannel(t *testing.T) {
	n := 1000
	raw := RawSeries{Power: make([]*float64, n), Ele: make([]*float64, n), Hr: make([]*float64, n)}
	for i := 0; i < n; i++ {
		raw[Power][i] = floatPtr(200)
		if i < 500 {
			raw[Ele][i] = floatPtr(10) // 500 behind: dropped
		}
		if i < 850 {
			raw[Hr][i] = floatPtr(140) // 150 behind: kept
		}
	}

	got, err := Normalize(raw, quietOptions())
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}

	if _, ok := got.Channels[Ele]; ok {
		t.Error("Ele should have been dropped")
	}
	if _, ok := got.Channels[Hr]; !ok {
		t.Error("Hr should have been kept")
	}
	if dropped := got.Dropped(); !slices.Equal(dropped, []Channel{Ele}) {
		t.Errorf("Dropped() = %v, want [Ele]", dropped)
	}

	for _, c := range got.Completeness {
		if c.Channel == Ele && (c.Present != 500 || c.Total != n || c.Ratio != 0.5) {
			t.Errorf("Ele completeness = %+v", c)
		}
	}
}

func TestNormalize_DeficitBoundary(t *testing.T) {
	n := 400
	raw := RawSeries{Power: make([]*float64, n), Hr: make([]*float64, n)}
	for i := 0; i < n; i++ {
		raw[Power][i] = floatPtr(1)
		if i < n-DefaultMaxMissingDeficit {
			raw[Hr][i] = floatPtr(1)
		}
	}

	got, err := Normalize(raw, quietOptions())
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if _, ok := got.Channels[Hr]; !ok {
		t.Errorf("deficit of exactly %d should be tolerated", DefaultMaxMissingDeficit)
	}
}

func TestNormalize_MinCompleteness(t *testing.T) {
	raw := RawSeries{
		Power: {floatPtr(1), floatPtr(2), floatPtr(3), floatPtr(4)},
		Hr:    {floatPtr(1), nil, nil, nil},
	}
	opts := quietOptions()
	opts.MinCompleteness = 0.5

	got, err := Normalize(raw, opts)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if _, ok := got.Channels[Hr]; ok {
		t.Error("Hr at 25% completeness should be dropped")
	}
}

func TestNormalize_KeepsPowerAfterDropout(t *testing.T) {
	tests := []struct {
		name string
		opts func(*NormalizeOptions)
	}{
		{"deficit", func(*NormalizeOptions) {}},
		{"completeness", func(o *NormalizeOptions) { o.MinCompleteness = 0.95 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// meter pairs 250 s into an hour-long ride
			n := 3600
			raw := RawSeries{Power: make([]*float64, n), Lat: make([]*float64, n)}
			for i := 0; i < n; i++ {
				raw[Lat][i] = floatPtr(45)
				if i >= 250 {
					raw[Power][i] = floatPtr(210)
				}
			}
			opts := quietOptions()
			tt.opts(&opts)

			got, err := Normalize(raw, opts)
			if err != nil {
				t.Fatalf("Normalize() error: %v", err)
			}
			power, ok := got.Channels[Power]
			if !ok {
				t.Fatalf("Power dropped, Dropped() = %v", got.Dropped())
			}
			if len(power) != n {
				t.Fatalf("len(Power) = %d, want %d", len(power), n)
			}
			if power[0] != 0 || power[249] != 0 || power[250] != 210 {
				t.Errorf("Power[0], [249], [250] = %v, %v, %v, want 0, 0, 210", power[0], power[249], power[250])
			}
			if slices.Contains(got.Dropped(), Power) {
				t.Errorf("Dropped() = %v, want no Power", got.Dropped())
			}
		})
	}
}

func TestNormalize_UnequalLengths(t *testing.T) {
	raw := RawSeries{
		Power: {floatPtr(1), floatPtr(2)},
		Hr:    {floatPtr(1)},
	}
	_, err := Normalize(raw, quietOptions())
	if !errors.Is(err, ErrMalformedInput) {
		t.Errorf("Normalize() error = %v, want ErrMalformedInput", err)
	}
}

func TestNew_CopiesAndValidates(t *testing.T) {
	power := []float64{100, 200, 300}
	w, err := New("ride", "csv", "ride.csv", map[Channel][]float64{
		Power: power,
		Hr:    {120, 121, 122},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	power[0] = 999
	if got := w.Power(); got[0] != 100 {
		t.Errorf("workout shares caller memory: Power()[0] = %v", got[0])
	}
	out := w.Power()
	out[1] = 999
	if got := w.Power(); got[1] != 200 {
		t.Errorf("Power() exposes internal slice: got %v", got[1])
	}

	if w.Len() != 3 || w.Name() != "ride" || w.Format() != "csv" || w.Source() != "ride.csv" {
		t.Errorf("unexpected metadata: len=%d name=%q format=%q source=%q",
			w.Len(), w.Name(), w.Format(), w.Source())
	}
	if !w.Has(Hr) || w.Has(Ele) {
		t.Errorf("Has(Hr)=%v Has(Ele)=%v", w.Has(Hr), w.Has(Ele))
	}
	if got := w.Channels(); !slices.Equal(got, []Channel{Hr, Power}) {
		t.Errorf("Channels() = %v", got)
	}
	if w.Channel(Ele) != nil {
		t.Error("Channel(Ele) should be nil")
	}

	_, err = New("bad", "csv", "", map[Channel][]float64{Power: {1, 2}, Hr: {1}})
	if !errors.Is(err, ErrMalformedInput) {
		t.Errorf("New(unequal) error = %v, want ErrMalformedInput", err)
	}
}

func TestSlice(t *testing.T) {
	w, err := New("ride", "csv", "", map[Channel][]float64{
		Power: {1, 2, 3, 4, 5},
		Hr:    {10, 20, 30, 40, 50},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	s, err := w.Slice(1, 3)
	if err != nil {
		t.Fatalf("Slice() error: %v", err)
	}
	if got := s.Power(); !slices.Equal(got, []float64{2, 3}) {
		t.Errorf("Slice Power = %v, want [2 3]", got)
	}
	if got := s.Channel(Hr); !slices.Equal(got, []float64{20, 30}) {
		t.Errorf("Slice Hr = %v, want [20 30]", got)
	}

	if start, end, sliced := s.Window(); start != 1 || end != 3 || !sliced {
		t.Errorf("Window() = %d, %d, %v, want 1, 3, true", start, end, sliced)
	}
	if start, end, sliced := w.Window(); start != 0 || end != 5 || sliced {
		t.Errorf("full Window() = %d, %d, %v, want 0, 5, false", start, end, sliced)
	}
	nested, err := s.Slice(1, 2)
	if err != nil {
		t.Fatalf("nested Slice() error: %v", err)
	}
	if start, end, _ := nested.Window(); start != 2 || end != 3 {
		t.Errorf("nested Window() = %d, %d, want 2, 3", start, end)
	}

	clamped, err := w.Slice(3, 100)
	if err != nil {
		t.Fatalf("Slice(clamped) error: %v", err)
	}
	if clamped.Len() != 2 {
		t.Errorf("clamped Len = %d, want 2", clamped.Len())
	}

	if _, err := w.Slice(4, 2); err == nil {
		t.Error("Slice(4, 2) should fail")
	}
}
