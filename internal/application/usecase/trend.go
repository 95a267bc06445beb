package usecase

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/diillson/cloud-optimizer-go/internal/domain/entity"
)

// CurrentPeriodLabel is used for billing lines that carry no period.
const CurrentPeriodLabel = "current"

type period struct {
	label string
	start time.Time
	first int
	cost  float64
}

// periodIndex ordena os períodos: datas reconhecidas em ordem cronológica, depois rótulos
// livres na ordem do arquivo e, por último, as linhas sem período.
type periodIndex struct {
	ordered []*period
	rank    map[string]int
}

func newPeriodIndex(lines []entity.BillingLine) *periodIndex {
	byLabel := make(map[string]*period)
	var all []*period
	for i, l := range lines {
		label := l.Period
		if label == "" {
			label = CurrentPeriodLabel
		}
		p, ok := byLabel[label]
		if !ok {
			p = &period{label: label, start: l.PeriodStart, first: i}
			byLabel[label] = p
			all = append(all, p)
		}
		p.cost += l.Cost
	}

	group := func(p *period) int {
		switch {
		case !p.start.IsZero():
			return 0
		case p.label != CurrentPeriodLabel:
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		gi, gj := group(all[i]), group(all[j])
		if gi != gj {
			return gi < gj
		}
		if gi == 0 && !all[i].start.Equal(all[j].start) {
			return all[i].start.Before(all[j].start)
		}
		return all[i].first < all[j].first
	})

	idx := &periodIndex{ordered: all, rank: make(map[string]int, len(all))}
	for i, p := range all {
		idx.rank[p.label] = i
	}
	return idx
}

func (pi *periodIndex) rankOf(l entity.BillingLine) int {
	if l.Period == "" {
		return pi.rank[CurrentPeriodLabel]
	}
	return pi.rank[l.Period]
}

// buildTrend gera um ponto por período. savingsRatio é a fração do custo que o rightsizing remove.
func buildTrend(pi *periodIndex, savingsRatio float64) []entity.CostPoint {
	savingsRatio = math.Max(0, math.Min(1, savingsRatio))

	n := len(pi.ordered)
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, p := range pi.ordered {
		xs[i] = float64(i)
		ys[i] = p.cost
	}

	var alpha, beta float64
	if n >= 2 {
		alpha, beta = stat.LinearRegression(xs, ys, nil, false)
	}

	points := make([]entity.CostPoint, n)
	for i, p := range pi.ordered {
		predicted := p.cost
		if n >= 2 {
			predicted = math.Max(0, alpha+beta*xs[i])
		}
		points[i] = entity.CostPoint{
			Period:        p.label,
			CurrentCost:   entity.RoundCents(p.cost),
			PredictedCost: entity.RoundCents(predicted),
			OptimizedCost: entity.RoundCents(p.cost * (1 - savingsRatio)),
		}
	}
	return points
}
