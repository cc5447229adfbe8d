package worker

import (
	"github.com/montanaflynn/stats"
	"github.com/ppiankov/veracity/internal/model"
)

// Summary aggregates a batch of verification results
type Summary struct {
	Total    int                   `json:"total"`
	Verified int                   `json:"verified"`
	Failed   int                   `json:"failed"`
	Verdicts map[model.Verdict]int `json:"verdicts"`

	MeanFakeProbability   float64 `json:"mean_fake_probability"`
	MedianFakeProbability float64 `json:"median_fake_probability"`
	StdDevFakeProbability float64 `json:"stddev_fake_probability"`
	P90FakeProbability    float64 `json:"p90_fake_probability"`
	MeanConfidence        float64 `json:"mean_confidence"`
	MeanAggregateScore    float64 `json:"mean_aggregate_score"`
	MinAggregateScore     float64 `json:"min_aggregate_score"`
}

// Summarize computes verdict counts and distribution statistics over the
// successful results
func Summarize(results []*VerifyResult) Summary {
	s := Summary{
		Total: len(results),
		Verdicts: map[model.Verdict]int{
			model.VerdictReal:      0,
			model.VerdictFake:      0,
			model.VerdictUncertain: 0,
		},
	}

	var probs, confidences, scores stats.Float64Data
	for _, r := range results {
		if r.Error != nil || r.Report == nil {
			s.Failed++
			continue
		}
		s.Verified++
		s.Verdicts[r.Report.Verdict]++
		probs = append(probs, r.Report.FakeProbability)
		confidences = append(confidences, r.Report.Confidence)
		scores = append(scores, r.Report.AggregateScore)
	}

	if len(probs) == 0 {
		return s
	}

	// Errors only occur on empty input, excluded above
	s.MeanFakeProbability, _ = stats.Round(must(probs.Mean()), 4)
	s.MedianFakeProbability, _ = stats.Round(must(probs.Median()), 4)
	s.StdDevFakeProbability, _ = stats.Round(must(probs.StandardDeviation()), 4)
	s.P90FakeProbability, _ = stats.Round(must(probs.Percentile(90)), 4)
	s.MeanConfidence, _ = stats.Round(must(confidences.Mean()), 4)
	s.MeanAggregateScore, _ = stats.Round(must(scores.Mean()), 2)
	s.MinAggregateScore = must(scores.Min())

	return s
}

func must(v float64, err error) float64 {
	if err != nil {
		return 0
	}
	return v
}
