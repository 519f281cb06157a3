package tokens

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/secretkeeper/internal/common"
	"github.com/dmitrijs2005/secretkeeper/internal/server/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// document is the stored shape of a token. Field names match the layout
// already used by existing deployments.
type document struct {
	Name       string `bson:"tokenName"`
	Ciphertext string `bson:"token"`
	IV         string `bson:"iv"`
	AuthTag    string `bson:"tag"`
	Lookup     string `bson:"lookup"`
}

func toDocument(t *models.Token) document {
	return document{
		Name:       t.Name,
		Ciphertext: t.Ciphertext,
		IV:         t.IV,
		AuthTag:    t.AuthTag,
		Lookup:     t.Lookup,
	}
}

func (d document) toModel() *models.Token {
	return &models.Token{
		Name:       d.Name,
		Ciphertext: d.Ciphertext,
		IV:         d.IV,
		AuthTag:    d.AuthTag,
		Lookup:     d.Lookup,
	}
}

// MongoRepository stores a namespace in its own collection.
type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database, namespace string) *MongoRepository {
	return &MongoRepository{coll: db.Collection(namespace)}
}

// EnsureIndexes creates the unique name index and the lookup index.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tokenName", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "lookup", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: mongo indexes %s: %w", common.ErrorBackend, r.coll.Name(), err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, t *models.Token) error {
	if _, err := r.coll.InsertOne(ctx, toDocument(t)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return common.ErrorTokenAlreadyExists
		}
		return fmt.Errorf("%w: mongo error: %w", common.ErrorBackend, err)
	}
	return nil
}

func (r *MongoRepository) GetByName(ctx context.Context, name string) (*models.Token, error) {
	return r.findOne(ctx, bson.D{{Key: "tokenName", Value: name}})
}

func (r *MongoRepository) GetByLookup(ctx context.Context, lookup string) (*models.Token, error) {
	return r.findOne(ctx, bson.D{{Key: "lookup", Value: lookup}})
}

func (r *MongoRepository) SetLookup(ctx context.Context, name, lookup string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "tokenName", Value: name}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "lookup", Value: lookup}}}},
	)
	if err != nil {
		return fmt.Errorf("%w: mongo error: %w", common.ErrorBackend, err)
	}
	if res.MatchedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.D) (*models.Token, error) {
	var d document
	if err := r.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: mongo error: %w", common.ErrorBackend, err)
	}
	return d.toModel(), nil
}

func (r *MongoRepository) List(ctx context.Context) ([]*models.Token, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "tokenName", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("%w: mongo error: %w", common.ErrorBackend, err)
	}

	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: mongo error: %w", common.ErrorBackend, err)
	}

	result := make([]*models.Token, 0, len(docs))
	for _, d := range docs {
		result = append(result, d.toModel())
	}
	return result, nil
}
