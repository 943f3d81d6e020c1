package normalization

import (
	"polymarket-lab/internal/domain"
)

// applyFillPolicy assigns prices to samples without observations.
// Observed samples are left untouched.
func applyFillPolicy(points []*domain.SamplePoint, policy domain.FillPolicy) {
	switch policy {
	case domain.FillGapMark:
		markGaps(points)
	case domain.FillInterpolate:
		interpolate(points)
	default:
		forwardFill(points)
	}
}

// forwardFill carries the last observed price forward.
func forwardFill(points []*domain.SamplePoint) {
	var last *float64
	for _, p := range points {
		if p.Source == domain.SourceObserved {
			last = p.Price
			continue
		}
		fillFrom(p, last, domain.SourceForwardFill)
	}
}

// interpolate fills between the nearest observed samples on each side.
// Trailing gaps with no later observation fall back to forward fill.
func interpolate(points []*domain.SamplePoint) {
	prev := -1
	for i := 0; i < len(points); i++ {
		if points[i].Source == domain.SourceObserved {
			prev = i
			continue
		}

		next := -1
		for j := i + 1; j < len(points); j++ {
			if points[j].Source == domain.SourceObserved {
				next = j
				break
			}
		}

		if prev < 0 {
			// Leading gap cannot occur: the grid starts at an observed trade
			markGap(points[i])
			continue
		}
		if next < 0 {
			for k := i; k < len(points); k++ {
				fillFrom(points[k], points[prev].Price, domain.SourceForwardFill)
			}
			return
		}

		from, to := *points[prev].Price, *points[next].Price
		steps := float64(next - prev)
		for k := i; k < next; k++ {
			v := from + (to-from)*float64(k-prev)/steps
			v = clampUnit(v)
			points[k].Price = &v
			points[k].Source = domain.SourceInterpolated
		}
		i = next - 1
	}
}

// markGaps leaves every unobserved sample undefined.
func markGaps(points []*domain.SamplePoint) {
	for _, p := range points {
		if p.Source != domain.SourceObserved {
			markGap(p)
		}
	}
}

func markGap(p *domain.SamplePoint) {
	p.Price = nil
	p.Source = domain.SourceGap
}

func fillFrom(p *domain.SamplePoint, price *float64, source domain.SampleSource) {
	if price == nil {
		markGap(p)
		return
	}
	v := *price
	p.Price = &v
	p.Source = source
}
