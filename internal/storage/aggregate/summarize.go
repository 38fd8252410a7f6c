package aggregate

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/xtxerr/wavehist/internal/storage/config"
	"github.com/xtxerr/wavehist/internal/storage/history"
	"github.com/xtxerr/wavehist/internal/storage/types"
)

// Summarizer computes summary statistics over history buffer channels.
type Summarizer struct {
	percentiles bool
	accuracy    float64
}

// NewSummarizer creates a summarizer from configuration.
func NewSummarizer(cfg config.SummaryConfig) *Summarizer {
	accuracy := cfg.Accuracy
	if accuracy <= 0 {
		accuracy = DefaultAccuracy
	}
	return &Summarizer{
		percentiles: cfg.Percentiles,
		accuracy:    accuracy,
	}
}

func (s *Summarizer) newAggregate(channel int, start, end types.Timestamp) *StreamingAggregate {
	if !s.percentiles {
		return New(channel, start, end, false)
	}
	return NewWithAccuracy(channel, start, end, s.accuracy)
}

// Summarize computes statistics for one channel restricted to [start, end].
// Nil bounds default to the start of the oldest and the end of the newest
// stored segment. It returns false when the channel holds no segments.
func (s *Summarizer) Summarize(hb *history.Waveform, start, end *types.Timestamp, channel int) (types.AggregateResult, bool) {
	ws, we, ok := hb.TimeRange(channel)
	if !ok {
		return types.AggregateResult{}, false
	}
	if start != nil {
		ws = *start
	}
	if end != nil {
		we = *end
	}
	segments := hb.ToArray(channel)

	agg := s.newAggregate(channel, ws, we)
	for i := range segments {
		agg.AddWaveform(&segments[i])
	}

	return agg.Result(), true
}

// SummarizeAll computes statistics for every channel concurrently.
// Channels without segments yield an empty result at their index.
//
// The buffer must not be pushed to while SummarizeAll runs.
func (s *Summarizer) SummarizeAll(ctx context.Context, hb *history.Waveform, start, end *types.Timestamp) ([]types.AggregateResult, error) {
	results := make([]types.AggregateResult, hb.Width())

	g, ctx := errgroup.WithContext(ctx)
	for ch := 0; ch < hb.Width(); ch++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if r, ok := s.Summarize(hb, start, end, ch); ok {
				results[ch] = r
			} else {
				results[ch] = types.AggregateResult{Channel: ch}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
