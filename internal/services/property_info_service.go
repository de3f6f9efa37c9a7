package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/models"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/queue"
)

var (
	// ErrPropertyInfoNotFound is returned when no record exists for an address.
	ErrPropertyInfoNotFound = errors.New("property info not found")
	// ErrNoSourceData is returned when enrichment finds nothing to derive from.
	ErrNoSourceData = errors.New("no source data for address")
	// ErrAddressRequired is returned for blank lookups.
	ErrAddressRequired = errors.New("address is required")
)

// StatusFetching is reported while enrichment is pending.
const StatusFetching = "fetching"

// IPropertyInfoRepository persists enrichment records keyed by address.
type IPropertyInfoRepository interface {
	FindByAddress(ctx context.Context, address string) (*models.PropertyInfo, error)
	Upsert(ctx context.Context, info *models.PropertyInfo) error
}

type sqlPropertyInfoRepository struct {
	db *sqlx.DB
}

// NewSQLPropertyInfoRepository stores records in the Postgres properties_info table.
func NewSQLPropertyInfoRepository(pg *sqlx.DB) IPropertyInfoRepository {
	return &sqlPropertyInfoRepository{db: pg}
}

func (r *sqlPropertyInfoRepository) FindByAddress(ctx context.Context, address string) (*models.PropertyInfo, error) {
	var info models.PropertyInfo
	err := r.db.GetContext(ctx, &info, `SELECT * FROM properties_info WHERE lower(address) = lower($1)`, strings.TrimSpace(address))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPropertyInfoNotFound
		}
		return nil, fmt.Errorf("failed to load property info for %q: %w", address, err)
	}
	return &info, nil
}

const upsertPropertyInfo = `
INSERT INTO properties_info (
	address, type, size, year_built, listing_price, last_sold_price, rent_estimate,
	days_on_market, price_per_sqft, estimated_value_zillow, estimated_value_redfin,
	photos, description, gross_yield, cap_rate, historical_prices, tax_history,
	hoa_fees, hoa_rules, roi_inputs, updated_at
) VALUES (
	:address, :type, :size, :year_built, :listing_price, :last_sold_price, :rent_estimate,
	:days_on_market, :price_per_sqft, :estimated_value_zillow, :estimated_value_redfin,
	:photos, :description, :gross_yield, :cap_rate, :historical_prices, :tax_history,
	:hoa_fees, :hoa_rules, :roi_inputs, :updated_at
)
ON CONFLICT (address) DO UPDATE SET
	type = EXCLUDED.type,
	size = EXCLUDED.size,
	year_built = EXCLUDED.year_built,
	listing_price = EXCLUDED.listing_price,
	last_sold_price = EXCLUDED.last_sold_price,
	rent_estimate = EXCLUDED.rent_estimate,
	days_on_market = EXCLUDED.days_on_market,
	price_per_sqft = EXCLUDED.price_per_sqft,
	estimated_value_zillow = EXCLUDED.estimated_value_zillow,
	estimated_value_redfin = EXCLUDED.estimated_value_redfin,
	photos = EXCLUDED.photos,
	description = EXCLUDED.description,
	gross_yield = EXCLUDED.gross_yield,
	cap_rate = EXCLUDED.cap_rate,
	historical_prices = EXCLUDED.historical_prices,
	tax_history = EXCLUDED.tax_history,
	hoa_fees = EXCLUDED.hoa_fees,
	hoa_rules = EXCLUDED.hoa_rules,
	roi_inputs = EXCLUDED.roi_inputs,
	updated_at = EXCLUDED.updated_at
RETURNING id`

func (r *sqlPropertyInfoRepository) Upsert(ctx context.Context, info *models.PropertyInfo) error {
	rows, err := r.db.NamedQueryContext(ctx, upsertPropertyInfo, info)
	if err != nil {
		return fmt.Errorf("failed to upsert property info for %q: %w", info.Address, err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&info.ID); err != nil {
			return fmt.Errorf("failed to read property info id: %w", err)
		}
	}
	return rows.Err()
}

// IPropertyInfoService answers property-info lookups, enriching records in
// the background when they are incomplete.
type IPropertyInfoService interface {
	// Lookup returns the record when complete. Otherwise it queues
	// enrichment and returns a fetching status instead.
	Lookup(ctx context.Context, address string) (*models.PropertyInfo, *models.PropertyInfoStatus, error)
	Enrich(ctx context.Context, address string) (*models.PropertyInfo, error)
}

type propertyInfoService struct {
	infos      IPropertyInfoRepository
	catalog    IPropertyRepository
	taskClient queue.IAsynqClient
	now        func() time.Time
}

// NewPropertyInfoService creates a new PropertyInfoService.
func NewPropertyInfoService(infos IPropertyInfoRepository, catalog IPropertyRepository, taskClient queue.IAsynqClient) IPropertyInfoService {
	return &propertyInfoService{
		infos:      infos,
		catalog:    catalog,
		taskClient: taskClient,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *propertyInfoService) Lookup(ctx context.Context, address string) (*models.PropertyInfo, *models.PropertyInfoStatus, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, nil, ErrAddressRequired
	}
	info, err := s.infos.FindByAddress(ctx, address)
	if err != nil && !errors.Is(err, ErrPropertyInfoNotFound) {
		return nil, nil, err
	}
	if info != nil && info.IsComplete() {
		return info, nil, nil
	}

	task, err := queue.NewPropertyEnrichTask(queue.EnrichTaskPayload{Address: address})
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.taskClient.EnqueueContext(ctx, task); err != nil {
		// a duplicate means a fetch for this address is already pending
		if !errors.Is(err, asynq.ErrDuplicateTask) {
			return nil, nil, fmt.Errorf("failed to enqueue enrichment for %q: %w", address, err)
		}
	}
	return nil, &models.PropertyInfoStatus{
		Status:  StatusFetching,
		Message: "Data is being gathered, check back soon.",
	}, nil
}

// Enrich derives the record from the catalog listing at address, keeping
// any previously stored values the listing cannot supply.
func (s *propertyInfoService) Enrich(ctx context.Context, address string) (*models.PropertyInfo, error) {
	address = strings.TrimSpace(address)
	matches, err := s.catalog.List(ctx, PropertyFilter{Address: address, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%q: %w", address, ErrNoSourceData)
	}

	info, err := s.infos.FindByAddress(ctx, address)
	if errors.Is(err, ErrPropertyInfoNotFound) {
		info = &models.PropertyInfo{Address: address}
	} else if err != nil {
		return nil, err
	}

	applyListing(info, &matches[0])
	info.UpdatedAt = s.now()
	if err := s.infos.Upsert(ctx, info); err != nil {
		return nil, err
	}
	zap.L().Info("property info enriched", zap.String("address", address), zap.Bool("complete", info.IsComplete()))
	return info, nil
}

func applyListing(info *models.PropertyInfo, p *models.Property) {
	typ := string(p.Type)
	info.Type = &typ
	info.Size = ptr(float64(p.Sqft))
	info.YearBuilt = ptr(p.YearBuilt)
	info.ListingPrice = ptr(float64(p.Price))
	info.DaysOnMarket = ptr(p.DaysOnMarket)
	info.Description = ptr(p.Description)
	if p.Sqft > 0 {
		info.PricePerSqft = ptr(round2(float64(p.Price) / float64(p.Sqft)))
	}
	if p.LastSoldPrice != nil {
		info.LastSoldPrice = ptr(float64(*p.LastSoldPrice))
	}
	if p.HOAFee != nil {
		info.HOAFees = ptr(float64(*p.HOAFee))
	}
	if photos, err := json.Marshal(p.Images); err == nil {
		info.Photos = ptr(string(photos))
	}
	if p.RentEstimate != nil {
		rent := float64(*p.RentEstimate)
		info.RentEstimate = ptr(rent)
		if p.Price > 0 {
			info.GrossYield = ptr(round4(rent * 12 / float64(p.Price)))
			info.CapRate = ptr(round4(netOperatingIncome(p) / float64(p.Price)))
		}
	}
}

// netOperatingIncome is annual rent less property tax and HOA fees.
func netOperatingIncome(p *models.Property) float64 {
	noi := float64(*p.RentEstimate) * 12
	if p.PropertyTax != nil {
		noi -= float64(*p.PropertyTax)
	}
	if p.HOAFee != nil {
		noi -= float64(*p.HOAFee) * 12
	}
	return noi
}

func ptr[T any](v T) *T { return &v }

func round2(f float64) float64 { return math.Round(f*100) / 100 }

func round4(f float64) float64 { return math.Round(f*10000) / 10000 }
