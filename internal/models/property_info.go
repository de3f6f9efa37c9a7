package models

import "time"

// PropertyInfo is the enriched market record kept per street address.
// Nullable columns stay nil until an enrichment run can source them.
type PropertyInfo struct {
	ID                   int64     `db:"id" json:"id"`
	Address              string    `db:"address" json:"address"`
	Type                 *string   `db:"type" json:"type"`
	Size                 *float64  `db:"size" json:"size"`
	YearBuilt            *int      `db:"year_built" json:"year_built"`
	ListingPrice         *float64  `db:"listing_price" json:"listing_price"`
	LastSoldPrice        *float64  `db:"last_sold_price" json:"last_sold_price"`
	RentEstimate         *float64  `db:"rent_estimate" json:"rent_estimate"`
	DaysOnMarket         *int      `db:"days_on_market" json:"days_on_market"`
	PricePerSqft         *float64  `db:"price_per_sqft" json:"price_per_sqft"`
	EstimatedValueZillow *float64  `db:"estimated_value_zillow" json:"estimated_value_zillow"`
	EstimatedValueRedfin *float64  `db:"estimated_value_redfin" json:"estimated_value_redfin"`
	Photos               *string   `db:"photos" json:"photos"`
	Description          *string   `db:"description" json:"description"`
	GrossYield           *float64  `db:"gross_yield" json:"gross_yield"`
	CapRate              *float64  `db:"cap_rate" json:"cap_rate"`
	HistoricalPrices     *string   `db:"historical_prices" json:"historical_prices"`
	TaxHistory           *string   `db:"tax_history" json:"tax_history"`
	HOAFees              *float64  `db:"hoa_fees" json:"hoa_fees"`
	HOARules             *string   `db:"hoa_rules" json:"hoa_rules"`
	ROIInputs            *string   `db:"roi_inputs" json:"roi_inputs"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// IsComplete reports whether every field the marketplace shows on the
// property-info panel has been sourced.
func (p *PropertyInfo) IsComplete() bool {
	return p.Type != nil &&
		p.Size != nil &&
		p.YearBuilt != nil &&
		p.ListingPrice != nil &&
		p.RentEstimate != nil &&
		p.DaysOnMarket != nil &&
		p.PricePerSqft != nil &&
		p.Photos != nil &&
		p.Description != nil &&
		p.GrossYield != nil
}

// PropertyInfoStatus is returned while enrichment is still running.
type PropertyInfoStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
