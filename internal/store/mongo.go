package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"meetscribe/internal/model"
)

// Collection names.
const (
	colRecordings = "recordings"
	colChats      = "chats"
	colSummaries  = "summaries"
	colFAQs       = "faqs"
)

// MongoStore implements Store on a MongoDB database. The *mongo.Database
// handle is owned by the composition root and passed in; this package holds
// no ambient connection state.
type MongoStore struct {
	db *mongo.Database
}

// NewMongoStore creates a MongoStore over db.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

// EnsureIndexes creates the unique indexes the data model depends on:
// recordings.uniqueId, summaries.recordingId, faqs.question, and the
// compound chats.(recordingId, userId).
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	specs := map[string][]mongo.IndexModel{
		colRecordings: {
			{Keys: bson.D{{Key: "uniqueId", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "sessionId", Value: 1}}},
		},
		colChats: {
			{Keys: bson.D{{Key: "recordingId", Value: 1}, {Key: "userId", Value: 1}}, Options: unique},
		},
		colSummaries: {
			{Keys: bson.D{{Key: "recordingId", Value: 1}}, Options: unique},
		},
		colFAQs: {
			{Keys: bson.D{{Key: "question", Value: 1}}, Options: unique},
		},
	}

	for col, models := range specs {
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", col, err)
		}
	}
	return nil
}

// CreateRecording inserts recording metadata; on a uniqueId collision the
// already-stored document wins and is returned.
func (s *MongoStore) CreateRecording(ctx context.Context, rec *model.RecordingMetadata) (*model.RecordingMetadata, bool, error) {
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	_, err := s.db.Collection(colRecordings).InsertOne(ctx, rec)
	if mongo.IsDuplicateKeyError(err) {
		existing, getErr := s.GetRecording(ctx, rec.UniqueID)
		if getErr != nil {
			return nil, false, fmt.Errorf("failed to load existing recording: %w", getErr)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to create recording: %w", err)
	}
	return rec, true, nil
}

// GetRecording looks up recording metadata by uniqueId.
func (s *MongoStore) GetRecording(ctx context.Context, uniqueID string) (*model.RecordingMetadata, error) {
	var rec model.RecordingMetadata
	err := s.db.Collection(colRecordings).FindOne(ctx, bson.M{"uniqueId": uniqueID}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recording: %w", err)
	}
	return &rec, nil
}

// GetSummary looks up the summary for a recording.
func (s *MongoStore) GetSummary(ctx context.Context, recordingID string) (*model.Summary, error) {
	var sum model.Summary
	err := s.db.Collection(colSummaries).FindOne(ctx, bson.M{"recordingId": recordingID}).Decode(&sum)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}
	return &sum, nil
}

// CreateSummary inserts a summary; a concurrent writer that got there first
// wins and its document is returned.
func (s *MongoStore) CreateSummary(ctx context.Context, sum *model.Summary) (*model.Summary, error) {
	now := time.Now()
	sum.CreatedAt = now
	sum.UpdatedAt = now

	_, err := s.db.Collection(colSummaries).InsertOne(ctx, sum)
	if mongo.IsDuplicateKeyError(err) {
		return s.GetSummary(ctx, sum.RecordingID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create summary: %w", err)
	}
	return sum, nil
}

// GetChat returns the conversation for one (recording, user) pair.
func (s *MongoStore) GetChat(ctx context.Context, recordingID, userID string) (*model.Chat, error) {
	var chat model.Chat
	err := s.db.Collection(colChats).
		FindOne(ctx, bson.M{"recordingId": recordingID, "userId": userID}).
		Decode(&chat)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	return &chat, nil
}

// AppendMessages pushes messages onto the conversation, upserting the
// document on the first turn for the (recording, user) pair.
func (s *MongoStore) AppendMessages(ctx context.Context, recordingID, userID string, msgs ...model.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	now := time.Now()
	_, err := s.db.Collection(colChats).UpdateOne(ctx,
		bson.M{"recordingId": recordingID, "userId": userID},
		bson.M{
			"$push":        bson.M{"messages": bson.M{"$each": msgs}},
			"$set":         bson.M{"updatedAt": now},
			"$setOnInsert": bson.M{"createdAt": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to append chat messages: %w", err)
	}
	return nil
}

// ListFAQs returns all FAQ records.
func (s *MongoStore) ListFAQs(ctx context.Context) ([]model.FAQ, error) {
	cur, err := s.db.Collection(colFAQs).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list FAQs: %w", err)
	}
	defer cur.Close(ctx)

	var faqs []model.FAQ
	if err := cur.All(ctx, &faqs); err != nil {
		return nil, fmt.Errorf("failed to decode FAQs: %w", err)
	}
	return faqs, nil
}

// CreateFAQ inserts a new FAQ record, assigning its id.
func (s *MongoStore) CreateFAQ(ctx context.Context, f *model.FAQ) (*model.FAQ, error) {
	f.ID = primitive.NewObjectID()
	if _, err := s.db.Collection(colFAQs).InsertOne(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to create FAQ: %w", err)
	}
	return f, nil
}

// UpdateFAQ replaces the question/answer of an existing FAQ by id.
func (s *MongoStore) UpdateFAQ(ctx context.Context, f *model.FAQ) (*model.FAQ, error) {
	var updated model.FAQ
	err := s.db.Collection(colFAQs).FindOneAndUpdate(ctx,
		bson.M{"_id": f.ID},
		bson.M{"$set": bson.M{"question": f.Question, "answer": f.Answer}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update FAQ: %w", err)
	}
	return &updated, nil
}

// DeleteFAQ removes an FAQ by id.
func (s *MongoStore) DeleteFAQ(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.db.Collection(colFAQs).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete FAQ: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
