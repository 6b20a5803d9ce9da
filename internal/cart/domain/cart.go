package domain

import "time"

type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"-"`
	UserID    string     `bson:"user_id" json:"user_id"`
	Items     []LineItem `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// LineItem is one configured, priced entry in the cart. Identity is the
// opaque ID: catalog items reuse the product reference, configurator items
// carry an ID derived from their options plus a timestamp.
type LineItem struct {
	ID                 string    `bson:"item_id" json:"id"`
	Name               string    `bson:"name" json:"name"`
	UnitPrice          float64   `bson:"unit_price" json:"unit_price"`
	Quantity           int       `bson:"quantity" json:"quantity"`
	ImageRef           string    `bson:"image_ref" json:"image_ref"`
	OptionsDescription string    `bson:"options_description" json:"options_description"`
	WeightKg           float64   `bson:"weight_kg" json:"weight_kg"`
	WidthCm            float64   `bson:"width_cm" json:"width_cm"`
	HeightCm           float64   `bson:"height_cm" json:"height_cm"`
	LengthCm           float64   `bson:"length_cm" json:"length_cm"`
	CustomImageRefs    []string  `bson:"custom_image_refs,omitempty" json:"custom_image_refs,omitempty"`
	AddedAt            time.Time `bson:"added_at" json:"added_at"`
}

const (
	// InstantDiscountRate is the flat discount for immediate-transfer payment.
	InstantDiscountRate = 0.10

	// CardFeeRate is the surcharge for card payment. The storefront used to
	// carry both 4.99% and 5% in different checkout paths; 5% is the single
	// authoritative constant now.
	CardFeeRate = 0.05
)

func (c *Cart) Subtotal() float64 {
	var subtotal float64
	for _, item := range c.Items {
		subtotal += item.UnitPrice * float64(item.Quantity)
	}
	return subtotal
}

// InstantTotal applies the instant-payment discount to the goods only;
// shipping is charged in full.
func (c *Cart) InstantTotal(shippingCost float64) float64 {
	return c.Subtotal()*(1-InstantDiscountRate) + shippingCost
}

// CardTotal applies the card fee over goods plus shipping.
func (c *Cart) CardTotal(shippingCost float64) float64 {
	return (c.Subtotal() + shippingCost) * (1 + CardFeeRate)
}

// TotalWeightKg sums item weight across quantities, for shipping quotes.
func (c *Cart) TotalWeightKg() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.WeightKg * float64(item.Quantity)
	}
	return total
}
