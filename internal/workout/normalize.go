package workout

import (
	"fmt"
	"log/slog"
)

// RawSeries maps each channel to its parsed samples; a nil entry is a missing value.
type RawSeries map[Channel][]*float64

// DefaultMaxMissingDeficit is how many more missing samples a channel may have than
// the best-populated channel before it is dropped.
const DefaultMaxMissingDeficit = 200

// NormalizeOptions tunes the channel drop policy.
type NormalizeOptions struct {
	// MaxMissingDeficit drops channels whose present count trails the best channel
	// by more than this many samples.
	MaxMissingDeficit int
	// MinCompleteness drops channels whose present ratio is below it. Zero disables.
	MinCompleteness float64
	Logger          *slog.Logger
}

// DefaultNormalizeOptions returns the stock drop policy.
func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{MaxMissingDeficit: DefaultMaxMissingDeficit}
}

// Completeness describes how many samples of a channel were present.
type Completeness struct {
	Channel Channel
	Present int
	Total   int
	Ratio   float64
	Dropped bool
}

// Normalized is the outcome of Normalize.
type Normalized struct {
	Channels     map[Channel][]float64
	Completeness []Completeness // every input channel, in name order
}

// Dropped lists the channels removed for missing too many samples.
func (n Normalized) Dropped() []Channel {
	var out []Channel
	for _, c := range n.Completeness {
		if c.Dropped {
			out = append(out, c.Channel)
		}
	}
	return out
}

// Normalize zero-fills missing samples and drops channels that are too sparse
// compared to the best-populated one. Power is never dropped. Channels must all
// have the same length.
func Normalize(raw RawSeries, opts NormalizeOptions) (Normalized, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	channels := sortedChannels(raw)
	total := -1
	for _, ch := range channels {
		if total >= 0 && len(raw[ch]) != total {
			return Normalized{}, fmt.Errorf("%w: channel %s has %d samples, expected %d",
				ErrMalformedInput, ch, len(raw[ch]), total)
		}
		total = len(raw[ch])
	}

	stats := make([]Completeness, 0, len(channels))
	best := 0
	for _, ch := range channels {
		present := 0
		for _, v := range raw[ch] {
			if v != nil {
				present++
			}
		}
		c := Completeness{Channel: ch, Present: present, Total: total}
		if total > 0 {
			c.Ratio = float64(present) / float64(total)
		}
		stats = append(stats, c)
		best = max(best, present)
	}

	out := Normalized{Channels: make(map[Channel][]float64, len(channels))}
	for i := range stats {
		c := &stats[i]
		deficit := best - c.Present
		if deficit > opts.MaxMissingDeficit || c.Ratio < opts.MinCompleteness {
			// power is what gets analyzed; gaps in it read as zero watts
			if c.Channel == Power {
				logger.Warn("power channel is incomplete, filling gaps with zero",
					"present", c.Present, "best", best, "ratio", c.Ratio)
			} else {
				c.Dropped = true
				logger.Warn("dropping channel with too many missing values",
					"channel", c.Channel, "present", c.Present, "best", best, "ratio", c.Ratio)
				continue
			}
		}

		data := make([]float64, total)
		for j, v := range raw[c.Channel] {
			if v != nil {
				data[j] = *v
			}
		}
		out.Channels[c.Channel] = data
	}
	out.Completeness = stats

	return out, nil
}
