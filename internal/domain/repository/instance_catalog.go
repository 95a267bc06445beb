package repository

import (
	"context"

	"github.com/diillson/cloud-optimizer-go/internal/domain/entity"
)

// InstanceCatalog resolves instance families for rightsizing.
type InstanceCatalog interface {
	// Family returns the sizes of the family that instanceType belongs to, ordered from
	// smallest to largest, and the index of instanceType in that slice.
	Family(ctx context.Context, instanceType string) ([]entity.InstanceClass, int, error)
}
