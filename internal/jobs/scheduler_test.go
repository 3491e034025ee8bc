package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"healteex/api/internal/models"
)

func TestClassifySnapshot(t *testing.T) {
	tests := []struct {
		name     string
		snapshot models.StockSnapshot
		want     models.AlertType
	}{
		{
			name:     "zero stock is a stock out",
			snapshot: models.StockSnapshot{StockOnHand: 0, DaysOfStock: 10},
			want:     models.AlertTypeStockOut,
		},
		{
			name:     "below threshold is low stock",
			snapshot: models.StockSnapshot{StockOnHand: 50, DaysOfStock: 3},
			want:     models.AlertTypeLowStock,
		},
		{
			name:     "at threshold is healthy",
			snapshot: models.StockSnapshot{StockOnHand: 50, DaysOfStock: 7},
			want:     "",
		},
		{
			name:     "plenty of stock is healthy",
			snapshot: models.StockSnapshot{StockOnHand: 300, DaysOfStock: 30},
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alertType, message := classifySnapshot(tt.snapshot, 7)
			assert.Equal(t, tt.want, alertType)
			if tt.want == "" {
				assert.Empty(t, message)
			} else {
				assert.NotEmpty(t, message)
			}
		})
	}
}
