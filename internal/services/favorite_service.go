package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Brandon-J23/Real-Estate-Project-58/internal/db"
	"github.com/Brandon-J23/Real-Estate-Project-58/internal/models"
)

// ErrAlreadyFavorited is returned when a user saves the same property twice.
var ErrAlreadyFavorited = errors.New("property already in favorites")

// IFavoriteService manages each user's saved properties.
type IFavoriteService interface {
	// List returns the user's favorites, oldest first.
	List(ctx context.Context, userID string) ([]models.Property, error)
	Add(ctx context.Context, userID string, propertyID int64) error
	// Remove is a no-op when the property is not a favorite.
	Remove(ctx context.Context, userID string, propertyID int64) error
	CountForProperty(ctx context.Context, propertyID int64) (int64, error)
	CountsForProperties(ctx context.Context, propertyIDs []int64) (map[int64]int64, error)
}

type favoriteService struct {
	db   *mongo.Database
	repo IPropertyRepository
}

// NewFavoriteService creates a new FavoriteService.
func NewFavoriteService(database *mongo.Database, repo IPropertyRepository) IFavoriteService {
	return &favoriteService{db: database, repo: repo}
}

func (s *favoriteService) coll() *mongo.Collection {
	return s.db.Collection(db.FavoritesCollection)
}

func (s *favoriteService) List(ctx context.Context, userID string) ([]models.Property, error) {
	cursor, err := s.coll().Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites for user %s: %w", userID, err)
	}
	var favs []models.Favorite
	if err := cursor.All(ctx, &favs); err != nil {
		return nil, fmt.Errorf("failed to decode favorites for user %s: %w", userID, err)
	}
	if len(favs) == 0 {
		return []models.Property{}, nil
	}

	ids := make([]int64, len(favs))
	for i, f := range favs {
		ids[i] = f.PropertyID
	}
	props, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.Property, len(props))
	for _, p := range props {
		byID[p.ID] = p
	}
	// favorite order, skipping properties that have since been removed
	out := make([]models.Property, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *favoriteService) Add(ctx context.Context, userID string, propertyID int64) error {
	if _, err := s.repo.FindByID(ctx, propertyID); err != nil {
		return err
	}
	fav := models.Favorite{
		Base:       models.NewBase(),
		UserID:     userID,
		PropertyID: propertyID,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.coll().InsertOne(ctx, fav); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadyFavorited
		}
		return fmt.Errorf("failed to add favorite %d for user %s: %w", propertyID, userID, err)
	}
	return nil
}

func (s *favoriteService) Remove(ctx context.Context, userID string, propertyID int64) error {
	_, err := s.coll().DeleteOne(ctx, bson.M{"user_id": userID, "property_id": propertyID})
	if err != nil {
		return fmt.Errorf("failed to remove favorite %d for user %s: %w", propertyID, userID, err)
	}
	return nil
}

func (s *favoriteService) CountForProperty(ctx context.Context, propertyID int64) (int64, error) {
	n, err := s.coll().CountDocuments(ctx, bson.M{"property_id": propertyID})
	if err != nil {
		return 0, fmt.Errorf("failed to count favorites for property %d: %w", propertyID, err)
	}
	return n, nil
}

func (s *favoriteService) CountsForProperties(ctx context.Context, propertyIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(propertyIDs))
	if len(propertyIDs) == 0 {
		return counts, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"property_id": bson.M{"$in": propertyIDs}}}},
		{{Key: "$group", Value: bson.M{"_id": "$property_id", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := s.coll().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate favorite counts: %w", err)
	}
	var rows []struct {
		PropertyID int64 `bson:"_id"`
		Count      int64 `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode favorite counts: %w", err)
	}
	for _, r := range rows {
		counts[r.PropertyID] = r.Count
	}
	return counts, nil
}
