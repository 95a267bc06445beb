package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/diillson/cloud-optimizer-go/internal/domain/entity"
	"github.com/diillson/cloud-optimizer-go/internal/domain/repository"
	"github.com/diillson/cloud-optimizer-go/internal/metrics"
	"github.com/diillson/cloud-optimizer-go/internal/shared/types"
)

// IngestionPipeline turns one upload into a UsageReport.
type IngestionPipeline struct {
	resolver repository.ParserResolver
	sizer    *Rightsizer
	validate *validator.Validate
	log      *zap.Logger
}

// NewIngestionPipeline cria o pipeline de ingestão.
func NewIngestionPipeline(resolver repository.ParserResolver, sizer *Rightsizer, log *zap.Logger) *IngestionPipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &IngestionPipeline{
		resolver: resolver,
		sizer:    sizer,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
	}
}

// Submit reads, parses and analyses the upload. The body is consumed and closed.
// Errors wrap types.ErrUnsupportedFormat, types.ErrEmptyOrMalformed or types.ErrTruncated,
// or are the context error when ctx ends first.
func (p *IngestionPipeline) Submit(ctx context.Context, upload *entity.Upload) (*entity.UsageReport, error) {
	start := time.Now()
	log := p.log.With(zap.String("source", upload.Name))

	data, err := readUpload(ctx, upload)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s has no content", types.ErrEmptyOrMalformed, upload.Name)
	}

	parser, err := p.resolver.Resolve(upload.Name, upload.MediaType, data)
	if err != nil {
		return nil, err
	}
	log.Debug("parsing usage export", zap.String("format", parser.Format()), zap.Int("bytes", len(data)))

	lines, err := parser.Parse(ctx, data)
	if err != nil {
		return nil, err
	}

	report := p.analyse(ctx, upload.Name, parser.Format(), lines)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.validate.Struct(report); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrEmptyOrMalformed, err)
	}

	metrics.BillingLinesTotal.WithLabelValues(parser.Format()).Add(float64(len(lines)))
	metrics.IngestionDuration.WithLabelValues(parser.Format()).Observe(time.Since(start).Seconds())
	log.Info("usage export analysed",
		zap.Int("lines", len(lines)),
		zap.Int("instances", len(report.Instances)),
		zap.Float64("monthly_savings", report.Savings.Monthly),
	)
	return report, nil
}

func (p *IngestionPipeline) analyse(ctx context.Context, source, format string, lines []entity.BillingLine) *entity.UsageReport {
	periods := newPeriodIndex(lines)
	instances := aggregateInstances(lines, periods)

	var total, optimized float64
	for i := range instances {
		inst := &instances[i]
		recommended, cost := p.sizer.Recommend(ctx, inst.Type, inst.UtilizationPercent, inst.MonthlyCost)
		inst.RecommendedType = recommended
		total += inst.MonthlyCost
		optimized += cost
	}

	savings := computeSavings(total, optimized)
	ratio := 0.0
	if total > 0 {
		ratio = (total - optimized) / total
	}

	return &entity.UsageReport{
		Source:    source,
		Format:    format,
		LineCount: len(lines),
		Instances: instances,
		Trend:     buildTrend(periods, ratio),
		Savings:   savings,
	}
}

func computeSavings(total, optimized float64) entity.Savings {
	monthly := entity.RoundCents(total - optimized)
	if monthly < 0 {
		monthly = 0
	}
	s := entity.Savings{
		Monthly: monthly,
		Annual:  entity.RoundCents(monthly * 12),
	}
	if total > 0 {
		s.Percentage = entity.RoundCents(monthly / total * 100)
	}
	return s
}

type instanceAcc struct {
	usage   entity.InstanceUsage
	rank    int
	utilSum float64
	utilN   int
}

// aggregateInstances agrupa as linhas por instância usando apenas o período mais recente
// de cada uma: custos somados e utilização média.
func aggregateInstances(lines []entity.BillingLine, periods *periodIndex) []entity.InstanceUsage {
	byID := make(map[string]*instanceAcc)
	var order []string

	for _, l := range lines {
		rank := periods.rankOf(l)
		acc, ok := byID[l.InstanceID]
		if !ok {
			acc = &instanceAcc{rank: rank, usage: entity.InstanceUsage{ID: l.InstanceID}}
			byID[l.InstanceID] = acc
			order = append(order, l.InstanceID)
		}
		switch {
		case rank < acc.rank:
			continue
		case rank > acc.rank:
			acc.rank = rank
			acc.usage.MonthlyCost = 0
			acc.utilSum, acc.utilN = 0, 0
		}
		acc.usage.MonthlyCost += l.Cost
		acc.utilSum += l.Utilization()
		acc.utilN++
		if l.InstanceType != "" {
			acc.usage.Type = l.InstanceType
		}
	}

	out := make([]entity.InstanceUsage, 0, len(order))
	for _, id := range order {
		acc := byID[id]
		u := acc.usage
		u.MonthlyCost = entity.RoundCents(u.MonthlyCost)
		if acc.utilN > 0 {
			u.UtilizationPercent = entity.RoundCents(acc.utilSum / float64(acc.utilN))
		}
		out = append(out, u)
	}
	return out
}

// ctxReader interrompe a leitura quando o contexto termina.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func readUpload(ctx context.Context, upload *entity.Upload) ([]byte, error) {
	if upload.Body == nil {
		return nil, fmt.Errorf("%w: %s has no content", types.ErrEmptyOrMalformed, upload.Name)
	}
	if closer, ok := upload.Body.(io.Closer); ok {
		defer closer.Close()
	}

	data, err := io.ReadAll(ctxReader{ctx: ctx, r: upload.Body})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: read stopped after %d bytes: %v", types.ErrTruncated, upload.Name, len(data), err)
	}
	if upload.Size >= 0 && int64(len(data)) < upload.Size {
		return nil, fmt.Errorf("%w: %s: read %d of %d bytes", types.ErrTruncated, upload.Name, len(data), upload.Size)
	}
	return data, nil
}
