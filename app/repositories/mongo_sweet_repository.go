package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/pkg/metrics"
)

type sweetDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Category    string             `bson:"category"`
	Price       float64            `bson:"price"`
	Quantity    int                `bson:"quantity"`
	Image       string             `bson:"image"`
	Rating      float64            `bson:"rating"`
	Description string             `bson:"description"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d sweetDoc) model() models.Sweet {
	return models.Sweet{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Category:    d.Category,
		Price:       d.Price,
		Quantity:    d.Quantity,
		Image:       d.Image,
		Rating:      d.Rating,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// MongoSweetRepository stores sweets in the "sweets" collection.
type MongoSweetRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewMongoSweetRepository(db *mongo.Database, timeout time.Duration) *MongoSweetRepository {
	return &MongoSweetRepository{coll: db.Collection("sweets"), timeout: timeout}
}

// objectID parses a hex id. Malformed ids cannot exist, so they are
// reported as ErrNotFound.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

func (r *MongoSweetRepository) Create(ctx context.Context, sweet *models.Sweet) error {
	defer metrics.ObserveDBQuery("mongo", "sweets.create", time.Now())
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := sweetDoc{
		ID:          primitive.NewObjectID(),
		Name:        sweet.Name,
		Category:    sweet.Category,
		Price:       sweet.Price,
		Quantity:    sweet.Quantity,
		Image:       sweet.Image,
		Rating:      sweet.Rating,
		Description: sweet.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongo: insert sweet: %w", err)
	}
	*sweet = doc.model()
	return nil
}

func (r *MongoSweetRepository) FindByID(ctx context.Context, id string) (models.Sweet, error) {
	defer metrics.ObserveDBQuery("mongo", "sweets.find", time.Now())
	oid, err := objectID(id)
	if err != nil {
		return models.Sweet{}, err
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var doc sweetDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Sweet{}, ErrNotFound
		}
		return models.Sweet{}, fmt.Errorf("mongo: find sweet: %w", err)
	}
	return doc.model(), nil
}

func mongoFilter(f SweetFilter) bson.M {
	filter := bson.M{}
	if f.Name != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Name), Options: "i"}
	}
	if f.Category != "" {
		filter["category"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Category), Options: "i"}
	}
	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		filter["price"] = price
	}
	return filter
}

func (r *MongoSweetRepository) List(ctx context.Context, f SweetFilter, page Page) ([]models.Sweet, int64, error) {
	defer metrics.ObserveDBQuery("mongo", "sweets.list", time.Now())
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	filter := mongoFilter(f)
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("mongo: count sweets: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	if page.enabled() {
		opts.SetSkip(int64(page.offset())).SetLimit(int64(page.Size))
	}
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("mongo: find sweets: %w", err)
	}
	defer cur.Close(ctx)

	sweets := make([]models.Sweet, 0)
	for cur.Next(ctx) {
		var doc sweetDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("mongo: decode sweet: %w", err)
		}
		sweets = append(sweets, doc.model())
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("mongo: iterate sweets: %w", err)
	}
	return sweets, total, nil
}

func (r *MongoSweetRepository) Update(ctx context.Context, id string, c SweetChanges) (models.Sweet, error) {
	if c.Empty() {
		return r.FindByID(ctx, id)
	}
	defer metrics.ObserveDBQuery("mongo", "sweets.update", time.Now())
	oid, err := objectID(id)
	if err != nil {
		return models.Sweet{}, err
	}

	set := bson.M{"updatedAt": time.Now().UTC().Truncate(time.Millisecond)}
	if c.Name != nil {
		set["name"] = *c.Name
	}
	if c.Category != nil {
		set["category"] = *c.Category
	}
	if c.Price != nil {
		set["price"] = *c.Price
	}
	if c.Quantity != nil {
		set["quantity"] = *c.Quantity
	}
	if c.Image != nil {
		set["image"] = *c.Image
	}
	if c.Rating != nil {
		set["rating"] = *c.Rating
	}
	if c.Description != nil {
		set["description"] = *c.Description
	}

	return r.findOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, "update sweet")
}

func (r *MongoSweetRepository) Delete(ctx context.Context, id string) error {
	defer metrics.ObserveDBQuery("mongo", "sweets.delete", time.Now())
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongo: delete sweet: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoSweetRepository) Decrement(ctx context.Context, id string, n int) (models.Sweet, error) {
	defer metrics.ObserveDBQuery("mongo", "sweets.decrement", time.Now())
	oid, err := objectID(id)
	if err != nil {
		return models.Sweet{}, err
	}

	sweet, err := r.findOneAndUpdate(ctx,
		bson.M{"_id": oid, "quantity": bson.M{"$gte": n}},
		bson.M{
			"$inc": bson.M{"quantity": -n},
			"$set": bson.M{"updatedAt": time.Now().UTC().Truncate(time.Millisecond)},
		},
		"decrement stock")
	if !errors.Is(err, ErrNotFound) {
		return sweet, err
	}

	// The guard matched nothing: either the sweet is gone or stock is short.
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	count, cerr := r.coll.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if cerr != nil {
		return models.Sweet{}, fmt.Errorf("mongo: check sweet: %w", cerr)
	}
	if count == 0 {
		return models.Sweet{}, ErrNotFound
	}
	return models.Sweet{}, ErrInsufficientStock
}

func (r *MongoSweetRepository) Increment(ctx context.Context, id string, n int) (models.Sweet, error) {
	defer metrics.ObserveDBQuery("mongo", "sweets.increment", time.Now())
	oid, err := objectID(id)
	if err != nil {
		return models.Sweet{}, err
	}
	return r.findOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{
			"$inc": bson.M{"quantity": n},
			"$set": bson.M{"updatedAt": time.Now().UTC().Truncate(time.Millisecond)},
		},
		"increment stock")
}

func (r *MongoSweetRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("mongo: count sweets: %w", err)
	}
	return n, nil
}

func (r *MongoSweetRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M, op string) (models.Sweet, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var doc sweetDoc
	err := r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Sweet{}, ErrNotFound
		}
		return models.Sweet{}, fmt.Errorf("mongo: %s: %w", op, err)
	}
	return doc.model(), nil
}
