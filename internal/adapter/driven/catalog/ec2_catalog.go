package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2Types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"go.uber.org/zap"

	"github.com/diillson/cloud-optimizer-go/internal/domain/entity"
	"github.com/diillson/cloud-optimizer-go/internal/logger"
	"github.com/diillson/cloud-optimizer-go/internal/shared/types"
)

// EC2Catalog descobre as famílias via DescribeInstanceTypes, com cache por família.
type EC2Catalog struct {
	client ec2.DescribeInstanceTypesAPIClient
	cache  map[string][]entity.InstanceClass
	mu     sync.Mutex
}

// NewEC2Catalog cria um catálogo a partir de um cliente EC2 já configurado.
func NewEC2Catalog(client ec2.DescribeInstanceTypesAPIClient) *EC2Catalog {
	return &EC2Catalog{
		client: client,
		cache:  make(map[string][]entity.InstanceClass),
	}
}

// NewEC2CatalogFromConfig carrega a configuração AWS do perfil/região informados.
func NewEC2CatalogFromConfig(ctx context.Context, profile, region string) (*EC2Catalog, error) {
	var opts []func(*config.LoadOptions) error
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for profile %s: %w", profile, err)
	}
	return NewEC2Catalog(ec2.NewFromConfig(cfg)), nil
}

func (c *EC2Catalog) Family(ctx context.Context, instanceType string) ([]entity.InstanceClass, int, error) {
	family, _, ok := strings.Cut(instanceType, ".")
	if !ok {
		return nil, -1, fmt.Errorf("%w: %s", types.ErrUnknownInstanceType, instanceType)
	}

	ladder, err := c.family(ctx, family)
	if err != nil {
		return nil, -1, err
	}
	for i, class := range ladder {
		if class.Type == instanceType {
			return ladder, i, nil
		}
	}
	return nil, -1, fmt.Errorf("%w: %s", types.ErrUnknownInstanceType, instanceType)
}

func (c *EC2Catalog) family(ctx context.Context, family string) ([]entity.InstanceClass, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ladder, ok := c.cache[family]; ok {
		return ladder, nil
	}

	type sized struct {
		class  entity.InstanceClass
		memory int64
	}
	var found []sized

	paginator := ec2.NewDescribeInstanceTypesPaginator(c.client, &ec2.DescribeInstanceTypesInput{
		Filters: []ec2Types.Filter{
			{Name: aws.String("instance-type"), Values: []string{family + ".*"}},
		},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error describing instance types for family %s: %w", family, err)
		}
		for _, info := range page.InstanceTypes {
			if aws.ToBool(info.BareMetal) || info.VCpuInfo == nil {
				continue
			}
			name := string(info.InstanceType)
			_, size, _ := strings.Cut(name, ".")
			var memory int64
			if info.MemoryInfo != nil {
				memory = aws.ToInt64(info.MemoryInfo.SizeInMiB)
			}
			found = append(found, sized{
				class: entity.InstanceClass{
					Type:   name,
					Family: family,
					Size:   size,
					Units:  float64(aws.ToInt32(info.VCpuInfo.DefaultVCpus)),
				},
				memory: memory,
			})
		}
	}

	if len(found) == 0 {
		return nil, fmt.Errorf("%w: family %s", types.ErrUnknownInstanceType, family)
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].class.Units != found[j].class.Units {
			return found[i].class.Units < found[j].class.Units
		}
		return found[i].memory < found[j].memory
	})

	ladder := make([]entity.InstanceClass, len(found))
	for i, f := range found {
		ladder[i] = f.class
	}
	c.cache[family] = ladder
	logger.FromContext(ctx).Debug("instance family loaded", zap.String("family", family), zap.Int("sizes", len(ladder)))
	return ladder, nil
}
