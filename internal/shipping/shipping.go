package shipping

import (
	"context"
	"errors"

	"github.com/artelar/shop/internal/cart/domain"
)

var ErrNoOptions = errors.New("no shipping options for destination")

// Package is one parcel to be quoted, already in the carrier's units.
type Package struct {
	WeightKg float64 `json:"weight"`
	WidthCm  float64 `json:"width"`
	HeightCm float64 `json:"height"`
	LengthCm float64 `json:"length"`
}

// Option is one quoted shipping service.
type Option struct {
	ID                    string  `json:"id"`
	CarrierName           string  `json:"carrier_name"`
	Price                 float64 `json:"price"`
	EstimatedDeliveryDays int     `json:"estimated_delivery_days"`
}

// Quoter is the shipping-rate collaborator.
type Quoter interface {
	Quote(ctx context.Context, originPostalCode, destinationPostalCode string, packages []Package) ([]Option, error)
}

// PackagesFor derives the parcel list from cart line items: one parcel
// per physical unit, using the dimensions resolved at configuration time.
func PackagesFor(items []domain.LineItem) []Package {
	var packages []Package
	for _, item := range items {
		for i := 0; i < item.Quantity; i++ {
			packages = append(packages, Package{
				WeightKg: item.WeightKg,
				WidthCm:  item.WidthCm,
				HeightCm: item.HeightCm,
				LengthCm: item.LengthCm,
			})
		}
	}
	return packages
}
