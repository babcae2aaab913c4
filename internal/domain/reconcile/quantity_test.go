package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeAvailable(t *testing.T) {
	tests := []struct {
		name          string
		received      int64
		rejected      int64
		totalQuantity int64
		short         int64
		want          int64
	}{
		{
			name:     "no arrivals yet",
			received: 100, rejected: 0, totalQuantity: 120, short: 20,
			want: 100,
		},
		{
			name:     "ten units arrived from short",
			received: 100, rejected: 0, totalQuantity: 120, short: 10,
			want: 110,
		},
		{
			name:     "rejections subtract",
			received: 100, rejected: 15, totalQuantity: 120, short: 20,
			want: 85,
		},
		{
			name:     "fully received no short",
			received: 120, rejected: 0, totalQuantity: 120, short: 0,
			want: 120,
		},
		{
			name:     "over-receipt clamps arrived short",
			received: 130, rejected: 0, totalQuantity: 120, short: 0,
			want: 130,
		},
		{
			name:     "short grew beyond initial, clamp to zero",
			received: 100, rejected: 0, totalQuantity: 120, short: 30,
			want: 100,
		},
		{
			name:     "everything rejected",
			received: 50, rejected: 50, totalQuantity: 50, short: 0,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeAvailable(tt.received, tt.rejected, tt.totalQuantity, tt.short)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeAvailable_NeverNegativeInDomain(t *testing.T) {
	// For all received >= 0, rejected in [0, received], totalQuantity >= 0,
	// short >= 0 the result must be non-negative.
	for received := int64(0); received <= 30; received += 3 {
		for rejected := int64(0); rejected <= received; rejected += 3 {
			for totalQuantity := int64(0); totalQuantity <= 40; totalQuantity += 4 {
				for short := int64(0); short <= 40; short += 4 {
					got := ComputeAvailable(received, rejected, totalQuantity, short)
					if got < 0 {
						t.Fatalf("negative available %d for received=%d rejected=%d total=%d short=%d",
							got, received, rejected, totalQuantity, short)
					}
				}
			}
		}
	}
}

func TestArrivedShort(t *testing.T) {
	assert.Equal(t, int64(10), ArrivedShort(120, 100, 10))
	assert.Equal(t, int64(0), ArrivedShort(120, 100, 20))
	// Short count grew; saturate instead of going negative.
	assert.Equal(t, int64(0), ArrivedShort(120, 100, 25))
	// Over-receipt gives a negative initial short; still clamps.
	assert.Equal(t, int64(0), ArrivedShort(120, 130, 0))
}

func TestQuantitiesAvailable(t *testing.T) {
	q := Quantities{TotalQuantity: 120, Received: 100, Rejected: 15, Short: 20}
	assert.Equal(t, int64(85), q.Available())
}
