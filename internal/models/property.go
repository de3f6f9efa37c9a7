package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrInvalidProperty is returned (wrapped) when a property record fails validation.
var ErrInvalidProperty = errors.New("invalid property")

// PropertyType classifies the kind of dwelling or parcel.
type PropertyType string

const (
	PropertyTypeSingleFamily PropertyType = "single-family"
	PropertyTypeCondo        PropertyType = "condo"
	PropertyTypeTownhouse    PropertyType = "townhouse"
	PropertyTypeMultiFamily  PropertyType = "multi-family"
	PropertyTypeLand         PropertyType = "land"
)

// PropertyTypes lists every known property type in display order.
var PropertyTypes = []PropertyType{
	PropertyTypeSingleFamily,
	PropertyTypeCondo,
	PropertyTypeTownhouse,
	PropertyTypeMultiFamily,
	PropertyTypeLand,
}

// Label returns the human readable plural label used by the listing pages.
func (t PropertyType) Label() string {
	switch t {
	case PropertyTypeSingleFamily:
		return "Single Family Homes"
	case PropertyTypeCondo:
		return "Condominiums"
	case PropertyTypeTownhouse:
		return "Townhouses"
	case PropertyTypeMultiFamily:
		return "Multi-Family Properties"
	case PropertyTypeLand:
		return "Land"
	}
	return string(t)
}

// propertyTypeLabels maps lower-cased display labels, singular and plural,
// to their type.
var propertyTypeLabels = map[string]PropertyType{
	"single family home":      PropertyTypeSingleFamily,
	"single family homes":     PropertyTypeSingleFamily,
	"single family":           PropertyTypeSingleFamily,
	"house":                   PropertyTypeSingleFamily,
	"condominium":             PropertyTypeCondo,
	"condominiums":            PropertyTypeCondo,
	"townhouses":              PropertyTypeTownhouse,
	"multi-family properties": PropertyTypeMultiFamily,
	"multi family":            PropertyTypeMultiFamily,
}

// ParsePropertyType resolves a canonical value or a display label,
// ignoring case.
func ParsePropertyType(s string) (PropertyType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if t := PropertyType(s); t.Valid() {
		return t, true
	}
	t, ok := propertyTypeLabels[s]
	return t, ok
}

// Valid reports whether t is one of the known property types.
func (t PropertyType) Valid() bool {
	for _, known := range PropertyTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ListingType is the commercial arrangement offered for a property.
type ListingType string

const (
	ListingTypeSale  ListingType = "sale"
	ListingTypeRent  ListingType = "rent"
	ListingTypeLease ListingType = "lease"
)

// Valid reports whether l is a known listing type.
func (l ListingType) Valid() bool {
	switch l {
	case ListingTypeSale, ListingTypeRent, ListingTypeLease:
		return true
	}
	return false
}

// ListingStatus tracks where a listing is in its lifecycle.
type ListingStatus string

const (
	ListingStatusActive  ListingStatus = "active"
	ListingStatusPending ListingStatus = "pending"
	ListingStatusSold    ListingStatus = "sold"
)

// Agent is the contact person attached to a listing.
type Agent struct {
	Name    string `bson:"name" json:"name" yaml:"name"`
	Phone   string `bson:"phone,omitempty" json:"phone,omitempty" yaml:"phone"`
	Email   string `bson:"email,omitempty" json:"email,omitempty" yaml:"email"`
	Company string `bson:"company,omitempty" json:"company,omitempty" yaml:"company"`
}

// Property is a marketplace listing record.
// Prices are whole dollars.
type Property struct {
	ID          int64         `bson:"_id" json:"id" yaml:"id"`
	Title       string        `bson:"title" json:"title" yaml:"title"`
	Address     string        `bson:"address" json:"address" yaml:"address"`
	City        string        `bson:"city" json:"city" yaml:"city"`
	State       string        `bson:"state" json:"state" yaml:"state"`
	ZipCode     string        `bson:"zip_code" json:"zip_code" yaml:"zip_code"`
	Type        PropertyType  `bson:"type" json:"type" yaml:"type"`
	ListingType ListingType   `bson:"listing_type" json:"listing_type" yaml:"listing_type"`
	Status      ListingStatus `bson:"status" json:"status" yaml:"status"`
	Price       int64         `bson:"price" json:"price" yaml:"price"`

	Bedrooms  int     `bson:"bedrooms" json:"bedrooms" yaml:"bedrooms"`
	Bathrooms float64 `bson:"bathrooms" json:"bathrooms" yaml:"bathrooms"`
	Sqft      int     `bson:"sqft" json:"sqft" yaml:"sqft"`
	LotSize   string  `bson:"lot_size" json:"lot_size" yaml:"lot_size"`
	YearBuilt int     `bson:"year_built" json:"year_built" yaml:"year_built"`
	Garage    int     `bson:"garage" json:"garage" yaml:"garage"`

	Description  string   `bson:"description" json:"description" yaml:"description"`
	Features     []string `bson:"features" json:"features" yaml:"features"`
	Images       []string `bson:"images" json:"images" yaml:"images"`
	DaysOnMarket int      `bson:"days_on_market" json:"days_on_market" yaml:"days_on_market"`
	Featured     bool     `bson:"featured" json:"featured" yaml:"featured"`
	Agent        *Agent   `bson:"agent,omitempty" json:"agent,omitempty" yaml:"agent"`

	PricePerSqftValue *int64     `bson:"price_per_sqft,omitempty" json:"price_per_sqft,omitempty" yaml:"price_per_sqft"`
	LastSoldPrice     *int64     `bson:"last_sold_price,omitempty" json:"last_sold_price,omitempty" yaml:"last_sold_price"`
	LastSoldDate      *time.Time `bson:"last_sold_date,omitempty" json:"last_sold_date,omitempty" yaml:"last_sold_date"`
	RentEstimate      *int64     `bson:"rent_estimate,omitempty" json:"rent_estimate,omitempty" yaml:"rent_estimate"`
	HOAFee            *int64     `bson:"hoa_fee,omitempty" json:"hoa_fee,omitempty" yaml:"hoa_fee"`
	PropertyTax       *int64     `bson:"property_tax,omitempty" json:"property_tax,omitempty" yaml:"property_tax"`

	OwnerID   string    `bson:"owner_id,omitempty" json:"owner_id,omitempty" yaml:"-"`
	Views     int       `bson:"views" json:"views" yaml:"-"`
	CreatedAt time.Time `bson:"created_at" json:"created_at" yaml:"-"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at" yaml:"-"`
}

// PricePerSqft returns the precomputed price per square foot when present,
// otherwise price/sqft rounded to whole dollars. Zero when sqft is not positive.
func (p *Property) PricePerSqft() int64 {
	if p.PricePerSqftValue != nil {
		return *p.PricePerSqftValue
	}
	if p.Sqft <= 0 {
		return 0
	}
	return int64(math.Round(float64(p.Price) / float64(p.Sqft)))
}

// GrossYield is annual rent over price, as a fraction. Zero without a rent estimate.
func (p *Property) GrossYield() float64 {
	if p.RentEstimate == nil || p.Price <= 0 {
		return 0
	}
	return float64(*p.RentEstimate*12) / float64(p.Price)
}

// Validate enforces the record invariants that mock data never had to satisfy.
func (p *Property) Validate() error {
	var problems []string
	if p.Price <= 0 {
		problems = append(problems, "price must be positive")
	}
	if p.Sqft <= 0 {
		problems = append(problems, "sqft must be positive")
	}
	if p.Bedrooms < 0 {
		problems = append(problems, "bedrooms cannot be negative")
	}
	if p.Bathrooms < 0 {
		problems = append(problems, "bathrooms cannot be negative")
	} else if math.Mod(p.Bathrooms*2, 1) != 0 {
		problems = append(problems, "bathrooms must be in half steps")
	}
	if p.Garage < 0 {
		problems = append(problems, "garage cannot be negative")
	}
	if p.DaysOnMarket < 0 {
		problems = append(problems, "days on market cannot be negative")
	}
	if !p.Type.Valid() {
		problems = append(problems, fmt.Sprintf("unknown property type %q", p.Type))
	}
	if p.ListingType != "" && !p.ListingType.Valid() {
		problems = append(problems, fmt.Sprintf("unknown listing type %q", p.ListingType))
	}
	if strings.TrimSpace(p.Address) == "" {
		problems = append(problems, "address is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidProperty, strings.Join(problems, "; "))
	}
	return nil
}
