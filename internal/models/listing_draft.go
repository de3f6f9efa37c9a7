package models

import (
	"fmt"
	"strings"
	"time"
)

// ContactType says who answers enquiries for a submitted listing.
type ContactType string

const (
	ContactTypeOwner ContactType = "owner"
	ContactTypeAgent ContactType = "agent"
)

// ListingDraft is the payload submitted by the create-listing wizard.
type ListingDraft struct {
	Title         string       `json:"title"`
	Address       string       `json:"address" binding:"required"`
	City          string       `json:"city"`
	State         string       `json:"state"`
	ZipCode       string       `json:"zip_code" binding:"required"`
	Type          PropertyType `json:"property_type" binding:"required"`
	ListingType   ListingType  `json:"listing_type"`
	Price         int64        `json:"price"`
	Bedrooms      int          `json:"bedrooms"`
	Bathrooms     float64      `json:"bathrooms"`
	Sqft          int          `json:"sqft"`
	LotSize       string       `json:"lot_size"`
	YearBuilt     int          `json:"year_built"`
	Garage        int          `json:"garage"`
	Description   string       `json:"description"`
	Features      []string     `json:"features"`
	Images        []string     `json:"images"`
	LastSoldPrice *int64       `json:"last_sold_price,omitempty"`
	LastSoldDate  *time.Time   `json:"last_sold_date,omitempty"`
	RentEstimate  *int64       `json:"rent_estimate,omitempty"`
	PricePerSqft  *int64       `json:"price_per_sqft,omitempty"`
	HOAFee        *int64       `json:"hoa_fee,omitempty"`
	PropertyTax   *int64       `json:"property_tax,omitempty"`
	ContactType   ContactType  `json:"contact_type"`
	Agent         *Agent       `json:"agent,omitempty"`
}

// ToProperty converts the draft into an active listing owned by ownerID.
// The returned property has no ID yet; the repository assigns one on insert.
func (d *ListingDraft) ToProperty(ownerID string, now time.Time) (*Property, error) {
	if strings.TrimSpace(d.Address) == "" || strings.TrimSpace(d.ZipCode) == "" {
		return nil, fmt.Errorf("%w: address and zip code are required", ErrInvalidProperty)
	}
	listingType := d.ListingType
	if listingType == "" {
		listingType = ListingTypeSale
	}
	title := strings.TrimSpace(d.Title)
	if title == "" {
		title = strings.TrimSpace(d.Address)
	}
	features := make([]string, 0, len(d.Features))
	seen := make(map[string]bool, len(d.Features))
	for _, f := range d.Features {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		features = append(features, f)
	}
	images := d.Images
	if images == nil {
		images = []string{}
	}
	var agent *Agent
	if d.ContactType == ContactTypeAgent {
		agent = d.Agent
	}

	p := &Property{
		Title:             title,
		Address:           strings.TrimSpace(d.Address),
		City:              strings.TrimSpace(d.City),
		State:             strings.TrimSpace(d.State),
		ZipCode:           strings.TrimSpace(d.ZipCode),
		Type:              d.Type,
		ListingType:       listingType,
		Status:            ListingStatusActive,
		Price:             d.Price,
		Bedrooms:          d.Bedrooms,
		Bathrooms:         d.Bathrooms,
		Sqft:              d.Sqft,
		LotSize:           d.LotSize,
		YearBuilt:         d.YearBuilt,
		Garage:            d.Garage,
		Description:       d.Description,
		Features:          features,
		Images:            images,
		Agent:             agent,
		PricePerSqftValue: d.PricePerSqft,
		LastSoldPrice:     d.LastSoldPrice,
		LastSoldDate:      d.LastSoldDate,
		RentEstimate:      d.RentEstimate,
		HOAFee:            d.HOAFee,
		PropertyTax:       d.PropertyTax,
		OwnerID:           ownerID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if p.LotSize == "" {
		p.LotSize = "N/A"
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
