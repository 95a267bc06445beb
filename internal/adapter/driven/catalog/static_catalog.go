package catalog

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/diillson/cloud-optimizer-go/internal/domain/entity"
	"github.com/diillson/cloud-optimizer-go/internal/domain/repository"
	"github.com/diillson/cloud-optimizer-go/internal/shared/types"
)

// Fatores de normalização da AWS: proporcionais ao preço on-demand dentro da família.
var normalizationFactors = map[string]float64{
	"nano": 0.25, "micro": 0.5, "small": 1, "medium": 2, "large": 4,
	"xlarge": 8, "2xlarge": 16, "3xlarge": 24, "4xlarge": 32, "6xlarge": 48,
	"8xlarge": 64, "9xlarge": 72, "10xlarge": 80, "12xlarge": 96, "16xlarge": 128,
	"18xlarge": 144, "24xlarge": 192, "32xlarge": 256, "48xlarge": 384,
}

var (
	burstableSizes = []string{"nano", "micro", "small", "medium", "large", "xlarge", "2xlarge"}
	intelSizes     = []string{"large", "xlarge", "2xlarge", "4xlarge", "8xlarge", "12xlarge", "16xlarge", "24xlarge"}
	gen6Sizes      = []string{"large", "xlarge", "2xlarge", "4xlarge", "8xlarge", "12xlarge", "16xlarge", "24xlarge", "32xlarge"}
	gravitonSizes  = []string{"medium", "large", "xlarge", "2xlarge", "4xlarge", "8xlarge", "12xlarge", "16xlarge"}
	c5Sizes        = []string{"large", "xlarge", "2xlarge", "4xlarge", "9xlarge", "12xlarge", "18xlarge", "24xlarge"}
)

var awsFamilies = map[string][]string{
	"t2": burstableSizes, "t3": burstableSizes, "t3a": burstableSizes, "t4g": burstableSizes,
	"m5": intelSizes, "m5a": intelSizes, "r5": intelSizes, "r5a": intelSizes,
	"m6i": gen6Sizes, "m6a": gen6Sizes, "r6i": gen6Sizes, "c6i": gen6Sizes, "m7i": gen6Sizes,
	"m6g": gravitonSizes, "m7g": gravitonSizes, "c6g": gravitonSizes, "c7g": gravitonSizes,
	"r6g": gravitonSizes, "r7g": gravitonSizes,
	"c5": c5Sizes,
}

// Séries do Azure e as contagens de vCPU disponíveis.
var azureSeries = map[string][]int{
	"B": {1, 2, 4, 8, 12, 16, 20},
	"D": {2, 4, 8, 16, 32, 48, 64, 96},
	"E": {2, 4, 8, 16, 20, 32, 48, 64, 96},
	"F": {2, 4, 8, 16, 32, 48, 64, 72},
}

var azurePattern = regexp.MustCompile(`^Standard_([A-Z]+)(\d+)([a-z]*)((?:_v\d+)?)$`)

// StaticCatalog resolves AWS and Azure families from built-in tables.
type StaticCatalog struct{}

// NewStaticCatalog cria o catálogo embutido.
func NewStaticCatalog() repository.InstanceCatalog {
	return &StaticCatalog{}
}

func (c *StaticCatalog) Family(ctx context.Context, instanceType string) ([]entity.InstanceClass, int, error) {
	if strings.HasPrefix(instanceType, "Standard_") {
		return azureFamily(instanceType)
	}
	return awsFamily(instanceType)
}

func awsFamily(instanceType string) ([]entity.InstanceClass, int, error) {
	family, size, ok := strings.Cut(strings.ToLower(instanceType), ".")
	if !ok {
		return nil, -1, fmt.Errorf("%w: %s", types.ErrUnknownInstanceType, instanceType)
	}
	sizes, ok := awsFamilies[family]
	if !ok {
		return nil, -1, fmt.Errorf("%w: family %s", types.ErrUnknownInstanceType, family)
	}

	ladder := make([]entity.InstanceClass, len(sizes))
	index := -1
	for i, s := range sizes {
		ladder[i] = entity.InstanceClass{
			Type:   family + "." + s,
			Family: family,
			Size:   s,
			Units:  normalizationFactors[s],
		}
		if s == size {
			index = i
		}
	}
	if index < 0 {
		return nil, -1, fmt.Errorf("%w: size %s in family %s", types.ErrUnknownInstanceType, size, family)
	}
	return ladder, index, nil
}

func azureFamily(instanceType string) ([]entity.InstanceClass, int, error) {
	m := azurePattern.FindStringSubmatch(instanceType)
	if m == nil {
		return nil, -1, fmt.Errorf("%w: %s", types.ErrUnknownInstanceType, instanceType)
	}
	series, suffix, version := m[1], m[3], m[4]
	vcpus, _ := strconv.Atoi(m[2])

	counts, ok := azureSeries[series]
	if !ok {
		return nil, -1, fmt.Errorf("%w: Azure series %s", types.ErrUnknownInstanceType, series)
	}

	family := fmt.Sprintf("Standard_%s%s%s", series, suffix, version)
	ladder := make([]entity.InstanceClass, len(counts))
	index := -1
	for i, n := range counts {
		ladder[i] = entity.InstanceClass{
			Type:   fmt.Sprintf("Standard_%s%d%s%s", series, n, suffix, version),
			Family: family,
			Size:   strconv.Itoa(n),
			Units:  float64(n),
		}
		if n == vcpus {
			index = i
		}
	}
	if index < 0 {
		return nil, -1, fmt.Errorf("%w: %d vCPUs in Azure series %s", types.ErrUnknownInstanceType, vcpus, series)
	}
	return ladder, index, nil
}
