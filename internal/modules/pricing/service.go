// README: Pricing service computes fare estimates for the booking summary.
package pricing

import (
	"math"

	"yahu/internal/types"
)

// Rate defines the fare parameters for one car category.
type Rate struct {
	CarType  string
	BaseFare int64
	PerKm    int64
	Currency string
}

// Fares are display estimates only; dispatch pricing is out of scope.
var defaultRates = []Rate{
	{CarType: CarTypeVIP, BaseFare: 15000, PerKm: 4000, Currency: "SYP"},
	{CarType: CarTypeStandard, BaseFare: 8000, PerKm: 2000, Currency: "SYP"},
}

const (
	// CarTypeVIP and CarTypeStandard are the canonical car categories.
	CarTypeVIP      = "VIP"
	CarTypeStandard = "عادية"

	// roundToSYP rounds estimates to a denomination passengers actually pay.
	roundToSYP = 500
)

// Service computes fare estimates.
type Service struct {
	rates []Rate
}

func NewService() *Service {
	return &Service{rates: defaultRates}
}

// Estimate returns the fare for a trip of distanceKm with the given car type.
// Unknown car types fall back to the standard rate.
func (s *Service) Estimate(distanceKm float64, carType string) types.Money {
	rate := s.rateFor(carType)
	raw := float64(rate.BaseFare) + distanceKm*float64(rate.PerKm)
	amount := int64(math.Round(raw/roundToSYP)) * roundToSYP
	return types.Money{Amount: amount, Currency: rate.Currency}
}

func (s *Service) rateFor(carType string) Rate {
	for _, r := range s.rates {
		if r.CarType == carType {
			return r
		}
	}
	return s.rates[len(s.rates)-1]
}
