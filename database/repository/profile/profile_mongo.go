package profileRepo

import (
	"context"
	"fmt"
	"time"

	"solace/config"
	"solace/database"
	"solace/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProfileRepo implements ProfileRepository using MongoDB.
type MongoProfileRepo struct {
	coll *mongo.Collection
}

// NewMongoProfileRepo creates a new instance of ProfileRepository using MongoDB.
func NewMongoProfileRepo() ProfileRepository {
	coll := database.MongoClient.Database(config.AppConfig.DatabaseName).Collection("provider_profiles")
	repo := &MongoProfileRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates indexes for fields frequently used in matching.
func (r *MongoProfileRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "presencePackages.category", Value: 1}}},
		{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "isFeatured", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// GetByID retrieves a profile by its unique ID.
func (r *MongoProfileRepo) GetByID(id string) (*models.ProviderProfile, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var profile models.ProviderProfile
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&profile); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch profile with id %s: %w", id, err)
	}
	return &profile, nil
}

// GetByUserID retrieves the profile owned by the given companion user.
func (r *MongoProfileRepo) GetByUserID(userID string) (*models.ProviderProfile, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var profile models.ProviderProfile
	if err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&profile); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch profile for user %s: %w", userID, err)
	}
	return &profile, nil
}

// Create inserts a new profile document.
func (r *MongoProfileRepo) Create(profile *models.ProviderProfile) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, profile)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// Update modifies an existing profile document.
func (r *MongoProfileRepo) Update(profile *models.ProviderProfile) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	profile.UpdatedAt = time.Now()
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": profile.ID}, bson.M{"$set": profile})
	if err != nil {
		return fmt.Errorf("failed to update profile with id %s: %w", profile.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("profile with id %s not found", profile.ID)
	}
	return nil
}

// Search returns active profiles matching the criteria.
func (r *MongoProfileRepo) Search(criteria ProfileSearchCriteria) ([]models.ProviderProfile, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	query := bson.M{"isActive": true}
	if criteria.VerifiedOnly {
		query["verificationStatus.idVerified"] = true
	}
	if criteria.Category != "" {
		elem := bson.M{
			"category": criteria.Category,
			"isActive": true,
		}
		if criteria.RateMin > 0 || criteria.RateMax > 0 {
			rate := bson.M{}
			if criteria.RateMin > 0 {
				rate["$gte"] = criteria.RateMin
			}
			if criteria.RateMax > 0 {
				rate["$lte"] = criteria.RateMax
			}
			elem["hourlyRate"] = rate
		}
		query["presencePackages"] = bson.M{"$elemMatch": elem}
	}

	cursor, err := r.coll.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("profile search failed: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []models.ProviderProfile
	for cursor.Next(ctx) {
		var p models.ProviderProfile
		if err := cursor.Decode(&p); err != nil {
			return nil, fmt.Errorf("failed to decode profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// ListRecommended returns featured profiles first, topped up with
// id-verified profiles ordered by total bookings.
func (r *MongoProfileRepo) ListRecommended(limit int) ([]models.ProviderProfile, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	featured, err := r.findAll(ctx, bson.M{"isActive": true, "isFeatured": true},
		options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	if len(featured) >= limit {
		return featured[:limit], nil
	}

	rest, err := r.findAll(ctx,
		bson.M{"isActive": true, "isFeatured": false, "verificationStatus.idVerified": true},
		options.Find().
			SetSort(bson.D{{Key: "totalBookings", Value: -1}}).
			SetLimit(int64(limit-len(featured))))
	if err != nil {
		return nil, err
	}
	return append(featured, rest...), nil
}

func (r *MongoProfileRepo) findAll(ctx context.Context, query bson.M, opts *options.FindOptions) ([]models.ProviderProfile, error) {
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("profile query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []models.ProviderProfile
	for cursor.Next(ctx) {
		var p models.ProviderProfile
		if err := cursor.Decode(&p); err != nil {
			return nil, fmt.Errorf("failed to decode profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// IncrementBookingStats bumps the completed-booking counters with $inc so
// a retried completion can never double-apply through this path alone;
// the caller couples it to the guarded status flip.
func (r *MongoProfileRepo) IncrementBookingStats(userID string, earnings float64) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$inc": bson.M{"totalBookings": 1, "totalEarnings": earnings},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to increment booking stats for user %s: %w", userID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("profile for user %s not found", userID)
	}
	return nil
}

// IncrementPackageRating recomputes the package's running mean in a
// single pipeline update. The whole presencePackages array is rewritten
// with $map so the mean and count advance together.
func (r *MongoProfileRepo) IncrementPackageRating(userID, packageID string, rating int) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "presencePackages", Value: bson.D{
				{Key: "$map", Value: bson.D{
					{Key: "input", Value: "$presencePackages"},
					{Key: "as", Value: "pkg"},
					{Key: "in", Value: bson.D{
						{Key: "$cond", Value: bson.D{
							{Key: "if", Value: bson.D{{Key: "$eq", Value: bson.A{"$$pkg.id", packageID}}}},
							{Key: "then", Value: bson.D{
								{Key: "$mergeObjects", Value: bson.A{
									"$$pkg",
									bson.D{
										{Key: "rating", Value: bson.D{{Key: "$divide", Value: bson.A{
											bson.D{{Key: "$add", Value: bson.A{
												bson.D{{Key: "$multiply", Value: bson.A{"$$pkg.rating", "$$pkg.reviewCount"}}},
												rating,
											}}},
											bson.D{{Key: "$add", Value: bson.A{"$$pkg.reviewCount", 1}}},
										}}}},
										{Key: "reviewCount", Value: bson.D{{Key: "$add", Value: bson.A{"$$pkg.reviewCount", 1}}}},
									},
								}},
							}},
							{Key: "else", Value: "$$pkg"},
						}},
					}},
				}},
			}},
			{Key: "updatedAt", Value: time.Now()},
		}}},
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"userId": userID}, pipeline)
	if err != nil {
		return fmt.Errorf("failed to update package rating for user %s: %w", userID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("profile for user %s not found", userID)
	}
	return nil
}
