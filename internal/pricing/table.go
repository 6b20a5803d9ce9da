package pricing

import "sort"

// PriceEntry is one row of the static price table: the two glass options
// plus the physical shipping dimensions for the packed frames.
type PriceEntry struct {
	Arrangement    Arrangement
	Size           string
	PriceNoGlass   float64
	PriceWithGlass float64
	WeightKg       float64
	WidthCm        float64
	HeightCm       float64
	LengthCm       float64
}

// Quote is the resolved result for one configuration.
type Quote struct {
	Arrangement Arrangement
	Size        string
	WithGlass   bool
	UnitPrice   float64
	WeightKg    float64
	WidthCm     float64
	HeightCm    float64
	LengthCm    float64
}

type tableKey struct {
	arrangement Arrangement
	size        string
}

// priceTable is the single source of truth for configurator pricing.
// The storefront previously duplicated these values across call sites;
// everything must resolve through here.
var priceTable = map[tableKey]PriceEntry{
	// Solo (1 frame)
	{ArrangementSolo, "21x30 cm"}: {ArrangementSolo, "21x30 cm", 89.90, 119.90, 0.8, 29, 33, 6},
	{ArrangementSolo, "30x42 cm"}: {ArrangementSolo, "30x42 cm", 129.90, 169.90, 1.2, 38, 45, 6},
	{ArrangementSolo, "42x60 cm"}: {ArrangementSolo, "42x60 cm", 179.90, 229.90, 1.8, 50, 63, 6},
	{ArrangementSolo, "60x84 cm"}: {ArrangementSolo, "60x84 cm", 249.90, 329.90, 3.0, 68, 87, 6},

	// Dupla (2 frames packed side by side)
	{ArrangementDupla, "21x30 cm"}: {ArrangementDupla, "21x30 cm", 159.90, 209.90, 1.6, 50, 33, 6},
	{ArrangementDupla, "30x42 cm"}: {ArrangementDupla, "30x42 cm", 229.90, 299.90, 2.4, 68, 45, 6},
	{ArrangementDupla, "42x60 cm"}: {ArrangementDupla, "42x60 cm", 295.00, 385.00, 3.6, 92, 63, 6},

	// Trio (3 frames packed side by side)
	{ArrangementTrio, "21x30 cm"}: {ArrangementTrio, "21x30 cm", 219.90, 289.90, 2.4, 71, 33, 6},
	{ArrangementTrio, "30x42 cm"}: {ArrangementTrio, "30x42 cm", 319.90, 419.90, 3.6, 98, 45, 6},
	{ArrangementTrio, "42x60 cm"}: {ArrangementTrio, "42x60 cm", 425.00, 555.00, 5.4, 134, 63, 6},

	// Diagnostic entry used to exercise the payment flow with a minimal charge
	{ArrangementTeste, "10x10 cm"}: {ArrangementTeste, "10x10 cm", 1.00, 1.00, 0.1, 18, 13, 6},
}

// Resolve returns the unit price and shipping dimensions for one
// configuration. Pure lookup: identical inputs always yield identical
// output, unknown keys are rejected rather than defaulted.
func Resolve(arrangement Arrangement, size string, withGlass bool) (Quote, error) {
	if !arrangement.Valid() {
		return Quote{}, ErrUnknownArrangement
	}

	entry, ok := priceTable[tableKey{arrangement, size}]
	if !ok {
		return Quote{}, ErrUnknownSize
	}

	price := entry.PriceNoGlass
	if withGlass {
		price = entry.PriceWithGlass
	}

	return Quote{
		Arrangement: entry.Arrangement,
		Size:        entry.Size,
		WithGlass:   withGlass,
		UnitPrice:   price,
		WeightKg:    entry.WeightKg,
		WidthCm:     entry.WidthCm,
		HeightCm:    entry.HeightCm,
		LengthCm:    entry.LengthCm,
	}, nil
}

// Sizes lists the size labels offered for an arrangement.
func Sizes(arrangement Arrangement) ([]string, error) {
	if !arrangement.Valid() {
		return nil, ErrUnknownArrangement
	}
	var sizes []string
	for key := range priceTable {
		if key.arrangement == arrangement {
			sizes = append(sizes, key.size)
		}
	}
	sort.Strings(sizes)
	return sizes, nil
}

// Entries returns a copy of every table row, mainly for invariant checks.
func Entries() []PriceEntry {
	entries := make([]PriceEntry, 0, len(priceTable))
	for _, entry := range priceTable {
		entries = append(entries, entry)
	}
	return entries
}
