package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quickmail_server/core/domain"
	"quickmail_server/core/port/out"
	"quickmail_server/pkg/apperr"
)

const collectionEmails = "emails"

// AnalysisAdapter implements out.AnalysisRepository on MongoDB.
type AnalysisAdapter struct {
	collection *mongo.Collection
}

// NewAnalysisAdapter creates a new analysis adapter on the given database.
func NewAnalysisAdapter(db *mongo.Database) *AnalysisAdapter {
	return &AnalysisAdapter{
		collection: db.Collection(collectionEmails),
	}
}

// EnsureIndexes creates the indexes used by listing and soft deletion.
func (a *AnalysisAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "deleted", Value: 1}},
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// =============================================================================
// Document Model
// =============================================================================

// analysisDocument is the MongoDB document for a completed analysis.
type analysisDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Email          string             `bson:"email"`
	Snippet        string             `bson:"snippet"`
	Content        string             `bson:"content"`
	Category       string             `bson:"category"`
	Confidence     float64            `bson:"confidence"`
	SuggestedReply string             `bson:"suggested_reply"`
	NormalizedText string             `bson:"normalized_text"`
	CreatedAt      time.Time          `bson:"created_at"`
	Deleted        bool               `bson:"deleted"`
}

func toDocument(record *domain.AnalysisRecord) *analysisDocument {
	return &analysisDocument{
		Email:          record.Sender,
		Snippet:        record.Snippet,
		Content:        record.Content,
		Category:       string(record.Category),
		Confidence:     record.Confidence,
		SuggestedReply: record.SuggestedReply,
		NormalizedText: record.NormalizedText,
		CreatedAt:      record.CreatedAt,
	}
}

func toRecord(doc *analysisDocument) *domain.AnalysisRecord {
	return &domain.AnalysisRecord{
		ID:             doc.ID.Hex(),
		Sender:         doc.Email,
		Snippet:        doc.Snippet,
		Content:        doc.Content,
		Category:       domain.Category(doc.Category),
		Confidence:     doc.Confidence,
		SuggestedReply: doc.SuggestedReply,
		NormalizedText: doc.NormalizedText,
		CreatedAt:      doc.CreatedAt,
	}
}

// =============================================================================
// Operations
// =============================================================================

// Save inserts a completed analysis record and returns its id.
func (a *AnalysisAdapter) Save(ctx context.Context, record *domain.AnalysisRecord) (string, error) {
	res, err := a.collection.InsertOne(ctx, toDocument(record))
	if err != nil {
		return "", apperr.DatabaseError("insert analysis", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", apperr.DatabaseError("insert analysis", mongo.ErrNilDocument)
	}
	return oid.Hex(), nil
}

// List returns one page of records, newest first, excluding soft-deleted
// documents.
func (a *AnalysisAdapter) List(ctx context.Context, page, perPage int) (*out.AnalysisPage, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"deleted": bson.M{"$exists": false}},
		bson.M{"deleted": false},
	}}

	total, err := a.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, apperr.DatabaseError("count analyses", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))

	cursor, err := a.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.DatabaseError("list analyses", err)
	}
	defer cursor.Close(ctx)

	records := make([]*domain.AnalysisRecord, 0, perPage)
	for cursor.Next(ctx) {
		var doc analysisDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, apperr.DatabaseError("decode analysis", err)
		}
		records = append(records, toRecord(&doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, apperr.DatabaseError("list analyses", err)
	}

	return &out.AnalysisPage{
		Records: records,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}, nil
}

// SoftDelete marks a record as deleted without removing the document.
func (a *AnalysisAdapter) SoftDelete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.BadRequest("invalid analysis id")
	}

	res, err := a.collection.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"deleted": true}},
	)
	if err != nil {
		return apperr.DatabaseError("soft delete analysis", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("analysis")
	}

	return nil
}
