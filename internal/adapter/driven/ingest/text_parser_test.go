package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/cloud-optimizer-go/internal/shared/types"
)

func TestTextParser_Parse(t *testing.T) {
	ctx := context.Background()
	parser := NewTextParser()

	tests := []struct {
		name string
		data string
	}{
		{"comma separated", "id,type,usage,cost\ni-1,t3.large,50,100\n"},
		{"tab separated", "id\ttype\tusage\tcost\ni-1\tt3.large\t50\t100\n"},
		{"aligned columns", "id    type      usage  cost\ni-1   t3.large  50     100\n"},
		{"json content", `[{"id":"i-1","type":"t3.large","usage":50,"cost":100}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := parser.Parse(ctx, []byte(tt.data))
			require.NoError(t, err)
			require.Len(t, lines, 1)
			assert.Equal(t, "i-1", lines[0].InstanceID)
			assert.Equal(t, 50.0, lines[0].CPUPercent)
			assert.Equal(t, 100.0, lines[0].Cost)
		})
	}

	t.Run("ragged columns", func(t *testing.T) {
		_, err := parser.Parse(ctx, []byte("id type usage cost\ni-1 t3.large 50\n"))
		assert.ErrorIs(t, err, types.ErrEmptyOrMalformed)
	})

	t.Run("whitespace only", func(t *testing.T) {
		_, err := parser.Parse(ctx, []byte("  \n\t\n"))
		assert.ErrorIs(t, err, types.ErrEmptyOrMalformed)
	})
}
