package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/diillson/cloud-optimizer-go/internal/domain/entity"
	"github.com/diillson/cloud-optimizer-go/internal/domain/repository"
	"github.com/diillson/cloud-optimizer-go/internal/shared/types"
)

// Faixas padrão de utilização para rightsizing.
const (
	DefaultIdleBelow      = 20.0
	DefaultUnderusedBelow = 60.0
)

// SizingPolicy maps utilization bands to how many sizes an instance should shrink.
type SizingPolicy struct {
	IdleBelow      float64
	UnderusedBelow float64
}

// DefaultSizingPolicy devolve a política padrão (20% / 60%).
func DefaultSizingPolicy() SizingPolicy {
	return SizingPolicy{IdleBelow: DefaultIdleBelow, UnderusedBelow: DefaultUnderusedBelow}
}

// SizingPolicyFromConfig aplica os valores configurados sobre o padrão.
// The merged bands must keep idle_below <= underused_below.
func SizingPolicyFromConfig(band types.SizingBand) (SizingPolicy, error) {
	p := DefaultSizingPolicy()
	if band.IdleBelow > 0 {
		p.IdleBelow = band.IdleBelow
	}
	if band.UnderusedBelow > 0 {
		p.UnderusedBelow = band.UnderusedBelow
	}
	if p.IdleBelow > p.UnderusedBelow {
		return p, fmt.Errorf("%w: sizing idle_below %.1f is above underused_below %.1f",
			types.ErrInvalidConfig, p.IdleBelow, p.UnderusedBelow)
	}
	return p, nil
}

// Steps devolve quantos tamanhos a instância deve descer.
func (p SizingPolicy) Steps(utilization float64) int {
	switch {
	case utilization < p.IdleBelow:
		return 2
	case utilization < p.UnderusedBelow:
		return 1
	default:
		return 0
	}
}

// Rightsizer recommends a smaller class from the instance catalog.
type Rightsizer struct {
	catalog repository.InstanceCatalog
	policy  SizingPolicy
	log     *zap.Logger
}

// NewRightsizer cria um novo Rightsizer.
func NewRightsizer(catalog repository.InstanceCatalog, policy SizingPolicy, log *zap.Logger) *Rightsizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Rightsizer{catalog: catalog, policy: policy, log: log}
}

// Recommend returns the recommended type and the estimated monthly cost after resizing.
// Types the catalog does not know keep their current type and cost.
func (r *Rightsizer) Recommend(ctx context.Context, instanceType string, utilization, monthlyCost float64) (string, float64) {
	steps := r.policy.Steps(utilization)
	if steps == 0 || instanceType == "" {
		return instanceType, monthlyCost
	}

	ladder, idx, err := r.catalog.Family(ctx, instanceType)
	if err != nil {
		if errors.Is(err, types.ErrUnknownInstanceType) {
			r.log.Debug("no rightsizing for instance type", zap.String("type", instanceType), zap.Error(err))
		} else {
			r.log.Warn("instance catalog lookup failed", zap.String("type", instanceType), zap.Error(err))
		}
		return instanceType, monthlyCost
	}

	target := idx - steps
	if target < 0 {
		target = 0
	}
	current, recommended := ladder[idx], ladder[target]
	if target == idx || current.Units <= 0 {
		return instanceType, monthlyCost
	}
	return recommended.Type, entity.RoundCents(monthlyCost * recommended.Units / current.Units)
}
