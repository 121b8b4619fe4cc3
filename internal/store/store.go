// Package store persists recording metadata, conversations, summaries and
// FAQ records. The canonical implementation is backed by MongoDB; an
// in-memory implementation backs tests and database-less development runs.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"meetscribe/internal/model"
)

var (
	// ErrNotFound is returned when a looked-up document does not exist.
	ErrNotFound = errors.New("not found")
)

// Store is the data-access interface shared by the Mongo and in-memory
// implementations.
type Store interface {
	// CreateRecording persists metadata for a recording. Creation is
	// first-writer-wins: when a document with the same uniqueId already
	// exists, the stored document is returned and created is false.
	CreateRecording(ctx context.Context, rec *model.RecordingMetadata) (stored *model.RecordingMetadata, created bool, err error)

	// GetRecording looks up recording metadata by uniqueId.
	GetRecording(ctx context.Context, uniqueID string) (*model.RecordingMetadata, error)

	// GetSummary looks up the summary for a recording.
	GetSummary(ctx context.Context, recordingID string) (*model.Summary, error)

	// CreateSummary persists a summary unless one already exists for the
	// recording, in which case the stored summary is returned untouched.
	CreateSummary(ctx context.Context, s *model.Summary) (*model.Summary, error)

	// GetChat returns the conversation for one (recording, user) pair.
	GetChat(ctx context.Context, recordingID, userID string) (*model.Chat, error)

	// AppendMessages appends messages to the conversation for one
	// (recording, user) pair, creating the conversation document on the
	// first turn.
	AppendMessages(ctx context.Context, recordingID, userID string, msgs ...model.Message) error

	// FAQ records.
	ListFAQs(ctx context.Context) ([]model.FAQ, error)
	CreateFAQ(ctx context.Context, f *model.FAQ) (*model.FAQ, error)
	UpdateFAQ(ctx context.Context, f *model.FAQ) (*model.FAQ, error)
	DeleteFAQ(ctx context.Context, id primitive.ObjectID) error
}
