package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/db"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/models"
)

// ErrPropertyNotFound is returned when no property has the requested id.
var ErrPropertyNotFound = errors.New("property not found")

// PropertyFilter narrows what a repository fetches before the query engine
// runs. Zero fields do not constrain.
type PropertyFilter struct {
	IDs      []int64
	OwnerID  string
	Address  string // case-insensitive exact match
	Featured bool   // only featured listings when true
	Status   models.ListingStatus
	Limit    int
}

// IPropertyRepository is the catalog store. List returns properties in
// ascending id order so query results are deterministic.
type IPropertyRepository interface {
	List(ctx context.Context, filter PropertyFilter) ([]models.Property, error)
	FindByID(ctx context.Context, id int64) (*models.Property, error)
	FindByIDs(ctx context.Context, ids []int64) ([]models.Property, error)
	Insert(ctx context.Context, p *models.Property) error
	Upsert(ctx context.Context, p *models.Property) error
	IncrementViews(ctx context.Context, id int64) error
	AppendImage(ctx context.Context, id int64, key string) error
}

// --- MongoDB ---

type mongoPropertyRepository struct {
	db *mongo.Database
}

// NewMongoPropertyRepository stores the catalog in the properties collection.
func NewMongoPropertyRepository(database *mongo.Database) IPropertyRepository {
	return &mongoPropertyRepository{db: database}
}

func (r *mongoPropertyRepository) coll() *mongo.Collection {
	return r.db.Collection(db.PropertiesCollection)
}

// mongoFilter translates a PropertyFilter into a find query. Address
// matches the whole field, ignoring case, with metacharacters escaped.
func mongoFilter(filter PropertyFilter) bson.M {
	q := bson.M{}
	if len(filter.IDs) > 0 {
		q["_id"] = bson.M{"$in": filter.IDs}
	}
	if filter.OwnerID != "" {
		q["owner_id"] = filter.OwnerID
	}
	if filter.Address != "" {
		q["address"] = bson.M{"$regex": "^" + regexp.QuoteMeta(strings.TrimSpace(filter.Address)) + "$", "$options": "i"}
	}
	if filter.Featured {
		q["featured"] = true
	}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	return q
}

func (r *mongoPropertyRepository) List(ctx context.Context, filter PropertyFilter) ([]models.Property, error) {
	q := mongoFilter(filter)
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	cursor, err := r.coll().Find(ctx, q, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	props := []models.Property{}
	if err := cursor.All(ctx, &props); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}
	return props, nil
}

func (r *mongoPropertyRepository) FindByID(ctx context.Context, id int64) (*models.Property, error) {
	var p models.Property
	err := r.coll().FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("error finding property %d: %w", id, err)
	}
	return &p, nil
}

func (r *mongoPropertyRepository) FindByIDs(ctx context.Context, ids []int64) ([]models.Property, error) {
	if len(ids) == 0 {
		return []models.Property{}, nil
	}
	return r.List(ctx, PropertyFilter{IDs: ids})
}

// Insert assigns the next numeric id. Two concurrent inserts can read the
// same max id; the loser gets a duplicate key error and tries again.
func (r *mongoPropertyRepository) Insert(ctx context.Context, p *models.Property) error {
	op := func() error {
		var last models.Property
		next := int64(1)
		err := r.coll().FindOne(ctx, bson.M{}, options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})).Decode(&last)
		switch {
		case err == nil:
			next = last.ID + 1
		case !errors.Is(err, mongo.ErrNoDocuments):
			return fmt.Errorf("failed to read last property id: %w", err)
		}
		p.ID = next
		_, err = r.coll().InsertOne(ctx, p)
		return err
	}
	if err := db.Try(op); err != nil {
		return fmt.Errorf("failed to insert property (last attempted id %d): %w", p.ID, err)
	}
	return nil
}

func (r *mongoPropertyRepository) Upsert(ctx context.Context, p *models.Property) error {
	_, err := r.coll().ReplaceOne(ctx, bson.M{"_id": p.ID}, p, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert property %d: %w", p.ID, err)
	}
	return nil
}

func (r *mongoPropertyRepository) IncrementViews(ctx context.Context, id int64) error {
	res, err := r.coll().UpdateByID(ctx, id, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return fmt.Errorf("failed to count view for property %d: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

func (r *mongoPropertyRepository) AppendImage(ctx context.Context, id int64, key string) error {
	update := bson.M{
		"$addToSet": bson.M{"images": key},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.coll().UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("failed to add image to property %d: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

// --- In memory ---

type memoryPropertyRepository struct {
	mu    sync.RWMutex
	items []models.Property // kept sorted by id
}

// NewMemoryPropertyRepository holds the catalog in process. It backs the
// seed catalog mode and service tests.
func NewMemoryPropertyRepository(initial []models.Property) IPropertyRepository {
	r := &memoryPropertyRepository{items: slices.Clone(initial)}
	slices.SortFunc(r.items, func(a, b models.Property) int { return cmp.Compare(a.ID, b.ID) })
	return r
}

func (r *memoryPropertyRepository) List(_ context.Context, filter PropertyFilter) ([]models.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Property{}
	for _, p := range r.items {
		if len(filter.IDs) > 0 && !slices.Contains(filter.IDs, p.ID) {
			continue
		}
		if filter.OwnerID != "" && p.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Address != "" && !strings.EqualFold(strings.TrimSpace(filter.Address), p.Address) {
			continue
		}
		if filter.Featured && !p.Featured {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, clonePropertySlices(p))
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *memoryPropertyRepository) index(id int64) int {
	i, found := slices.BinarySearchFunc(r.items, id, func(p models.Property, id int64) int { return cmp.Compare(p.ID, id) })
	if !found {
		return -1
	}
	return i
}

func (r *memoryPropertyRepository) FindByID(_ context.Context, id int64) (*models.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.index(id)
	if i < 0 {
		return nil, ErrPropertyNotFound
	}
	p := clonePropertySlices(r.items[i])
	return &p, nil
}

func (r *memoryPropertyRepository) FindByIDs(ctx context.Context, ids []int64) ([]models.Property, error) {
	if len(ids) == 0 {
		return []models.Property{}, nil
	}
	return r.List(ctx, PropertyFilter{IDs: ids})
}

func (r *memoryPropertyRepository) Insert(_ context.Context, p *models.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = 1
	if n := len(r.items); n > 0 {
		p.ID = r.items[n-1].ID + 1
	}
	r.items = append(r.items, clonePropertySlices(*p))
	return nil
}

func (r *memoryPropertyRepository) Upsert(_ context.Context, p *models.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.index(p.ID); i >= 0 {
		r.items[i] = clonePropertySlices(*p)
		return nil
	}
	r.items = append(r.items, clonePropertySlices(*p))
	slices.SortFunc(r.items, func(a, b models.Property) int { return cmp.Compare(a.ID, b.ID) })
	return nil
}

func (r *memoryPropertyRepository) IncrementViews(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return ErrPropertyNotFound
	}
	r.items[i].Views++
	return nil
}

func (r *memoryPropertyRepository) AppendImage(_ context.Context, id int64, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return ErrPropertyNotFound
	}
	if !slices.Contains(r.items[i].Images, key) {
		r.items[i].Images = append(slices.Clone(r.items[i].Images), key)
		r.items[i].UpdatedAt = time.Now().UTC()
	}
	return nil
}

// clonePropertySlices detaches the slice fields so callers cannot write
// through to repository state.
func clonePropertySlices(p models.Property) models.Property {
	p.Features = slices.Clone(p.Features)
	p.Images = slices.Clone(p.Images)
	return p
}
