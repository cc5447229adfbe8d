// Package score holds the fusion arithmetic: it merges component reports and
// an optional external estimate into a fake probability, a confidence and a
// verdict.
package score

import (
	"math"

	"github.com/ppiankov/veracity/internal/model"
)

// Result is the outcome of fusing component reports
type Result struct {
	Verdict            model.Verdict
	FakeProbability    float64
	Confidence         float64
	AggregateScore     float64
	CombinedMultiplier float64
	Mode               model.FusionMode
	Estimate           *float64 // clamped estimate actually used, nil in verification-only mode
	Findings           int
}

// Scorer fuses component scores under a fixed policy
type Scorer struct {
	cfg model.FusionConfig
}

// NewScorer creates a new scorer
func NewScorer(cfg model.FusionConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Calculate fuses the component reports with an optional estimate of the
// probability that the text is fake. Negative component scores always move
// the result toward FAKE.
func (s *Scorer) Calculate(components []model.ComponentReport, estimate *float64) Result {
	// 1. Aggregate score and finding count
	total := 0.0
	findings := 0
	for _, c := range components {
		total += c.TotalScore
		findings += len(c.Findings)
	}
	aggregate := Round(total, 2)

	// 2. Combined confidence multiplier. Components that do not scale
	// confidence carry 1.0.
	combined := 1.0
	for _, c := range components {
		if c.ConfidenceMultiplier > 0 {
			combined *= c.ConfidenceMultiplier
		}
	}

	res := Result{
		AggregateScore:     aggregate,
		CombinedMultiplier: Round(combined, 4),
		Findings:           findings,
	}

	// 3. Fuse
	var adjusted, confidence float64
	if p, ok := usableEstimate(estimate); ok {
		res.Mode = model.ModeFused
		res.Estimate = &p
		adjusted = s.withEstimate(p, combined, aggregate)
		confidence = math.Abs(Round(adjusted, 4)-0.5) * 2
	} else {
		res.Mode = model.ModeVerificationOnly
		if s.cfg.NoFindingsBias && aggregate >= 0 && findings == 0 {
			adjusted = s.cfg.NoFindingsProbability
			confidence = s.cfg.NoFindingsConfidence
		} else {
			adjusted = Clamp01(s.cfg.BaseProbability - aggregate*s.cfg.ScoreWeight)
			confidence = math.Abs(Round(adjusted, 4)-0.5) * 2
		}
	}

	// 4. Round, then decide on the rounded value so the reported probability
	// and the verdict always agree
	res.FakeProbability = Round(adjusted, 4)
	res.Confidence = Round(confidence, 4)
	res.Verdict = s.Verdict(res.FakeProbability)

	return res
}

// withEstimate scales the estimate by the combined multiplier and nudges it
// by the aggregate score
func (s *Scorer) withEstimate(p, combined, aggregate float64) float64 {
	adjusted := p * combined

	if aggregate < s.cfg.StrongPenaltyBelow {
		adjusted += math.Abs(aggregate) * s.cfg.StrongPenaltyWeight
	} else if aggregate < s.cfg.PenaltyBelow {
		adjusted += math.Abs(aggregate) * s.cfg.PenaltyWeight
	}
	adjusted = math.Min(adjusted, 1)

	if aggregate > s.cfg.BonusAbove {
		adjusted -= aggregate * s.cfg.BonusWeight
	}

	return Clamp01(adjusted)
}

// Verdict applies the thresholds to a fake probability
func (s *Scorer) Verdict(p float64) model.Verdict {
	switch {
	case p > s.cfg.FakeThreshold:
		return model.VerdictFake
	case p < s.cfg.RealThreshold:
		return model.VerdictReal
	default:
		return model.VerdictUncertain
	}
}

// usableEstimate clamps an estimate into [0, 1]; nil and NaN are absent
func usableEstimate(estimate *float64) (float64, bool) {
	if estimate == nil || math.IsNaN(*estimate) {
		return 0, false
	}
	return Clamp01(*estimate), true
}
