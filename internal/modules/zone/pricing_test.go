package zone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func cents(v int64) *int64 { return &v }

func TestIsAddressInZone(t *testing.T) {
	full := &DeliveryZone{
		ZipCodes: []string{"60601", "60602"},
		Cities:   []string{"Evanston"},
		States:   []string{"WI"},
	}
	tests := []struct {
		name string
		zone *DeliveryZone
		addr Address
		want bool
	}{
		{"zip match", full, Address{ZipCode: "60602", City: "Chicago", State: "IL"}, true},
		{"city match ignores case", full, Address{ZipCode: "99999", City: "EVANSTON", State: "IL"}, true},
		{"state match ignores case", full, Address{City: "Madison", State: "wi"}, true},
		{"nothing matches", full, Address{ZipCode: "99999", City: "Chicago", State: "IL"}, false},
		{"empty address", full, Address{}, false},
		{"zip prefix is not a match", full, Address{ZipCode: "6060"}, false},
		{"city substring is not a match", full, Address{City: "Evan"}, false},
		{"whitespace is trimmed", full, Address{City: "  evanston "}, true},
		{"empty zone matches nothing", &DeliveryZone{}, Address{ZipCode: "60601", City: "Evanston", State: "WI"}, false},
		{"zip only zone ignores city", &DeliveryZone{ZipCodes: []string{"60601"}}, Address{City: "Evanston"}, false},
		{"unicode city", &DeliveryZone{Cities: []string{"Zürich"}}, Address{City: "ZÜRICH"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAddressInZone(tt.zone, tt.addr))
		})
	}
}

func TestCalculateDeliveryFee(t *testing.T) {
	tests := []struct {
		name     string
		fee      int64
		free     *int64
		subtotal int64
		want     int64
	}{
		{"no threshold", 500, nil, 100000, 500},
		{"below threshold", 500, cents(5000), 4999, 500},
		{"at threshold", 500, cents(5000), 5000, 0},
		{"above threshold", 500, cents(5000), 7500, 0},
		{"zero threshold is always free", 500, cents(0), 0, 0},
		{"free zone", 0, nil, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z := &DeliveryZone{DeliveryFeeCents: tt.fee, FreeDeliveryThresholdCents: tt.free}
			assert.Equal(t, tt.want, CalculateDeliveryFee(z, tt.subtotal))
		})
	}
}

func TestMeetsMinimumOrder(t *testing.T) {
	assert.True(t, MeetsMinimumOrder(&DeliveryZone{}, 0))
	assert.False(t, MeetsMinimumOrder(&DeliveryZone{MinimumOrderCents: cents(2500)}, 2499))
	assert.True(t, MeetsMinimumOrder(&DeliveryZone{MinimumOrderCents: cents(2500)}, 2500))
}

func TestQuoteFor(t *testing.T) {
	z := &DeliveryZone{
		Cities:                     []string{"Oak Park"},
		DeliveryFeeCents:           700,
		FreeDeliveryThresholdCents: cents(6000),
		MinimumOrderCents:          cents(2000),
		DeliveryDays:               []string{"Tuesday"},
	}
	q := QuoteFor(z, Address{City: "oak park"}, 1500)
	assert.True(t, q.InZone)
	assert.False(t, q.MeetsMinimum)
	assert.Equal(t, int64(700), q.DeliveryFeeCents)
	assert.Equal(t, []string{"Tuesday"}, q.DeliveryDays)

	q = QuoteFor(z, Address{City: "Berwyn"}, 6000)
	assert.False(t, q.InZone)
	assert.True(t, q.MeetsMinimum)
	assert.Equal(t, int64(0), q.DeliveryFeeCents)
}
