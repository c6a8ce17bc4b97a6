package zone

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// IsAddressInZone reports whether a matches any of the zone's coverage lists:
// exact zip code, or case-insensitive city, or case-insensitive state. A
// dimension the zone leaves empty never matches.
func IsAddressInZone(z *DeliveryZone, a Address) bool {
	if zip := strings.TrimSpace(a.ZipCode); zip != "" && slices.Contains(z.ZipCodes, zip) {
		return true
	}
	fold := cases.Fold()
	return containsFold(fold, z.Cities, a.City) || containsFold(fold, z.States, a.State)
}

func containsFold(fold cases.Caser, list []string, v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	want := fold.String(v)
	for _, item := range list {
		if fold.String(strings.TrimSpace(item)) == want {
			return true
		}
	}
	return false
}

// CalculateDeliveryFee returns 0 once the subtotal reaches the zone's free
// delivery threshold, otherwise the flat delivery fee.
func CalculateDeliveryFee(z *DeliveryZone, subtotalCents int64) int64 {
	if z.FreeDeliveryThresholdCents != nil && subtotalCents >= *z.FreeDeliveryThresholdCents {
		return 0
	}
	return z.DeliveryFeeCents
}

// MeetsMinimumOrder is true when the zone has no minimum or the subtotal
// reaches it.
func MeetsMinimumOrder(z *DeliveryZone, subtotalCents int64) bool {
	return z.MinimumOrderCents == nil || subtotalCents >= *z.MinimumOrderCents
}

// QuoteFor previews delivery for an address and subtotal.
func QuoteFor(z *DeliveryZone, a Address, subtotalCents int64) *Quote {
	return &Quote{
		ZoneID:                     z.ID,
		InZone:                     IsAddressInZone(z, a),
		MeetsMinimum:               MeetsMinimumOrder(z, subtotalCents),
		DeliveryFeeCents:           CalculateDeliveryFee(z, subtotalCents),
		MinimumOrderCents:          z.MinimumOrderCents,
		FreeDeliveryThresholdCents: z.FreeDeliveryThresholdCents,
		DeliveryDays:               z.DeliveryDays,
	}
}
