package model

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// RecordingMetadata links a provider recording artifact to its transcript.
// uniqueId is caller-supplied and globally unique; the first writer wins.
type RecordingMetadata struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UniqueID           string             `bson:"uniqueId" json:"uniqueId"`
	SessionID          string             `bson:"sessionId" json:"sessionId"`
	RecordingFilename  string             `bson:"recordingFilename" json:"recordingFilename"`
	RecordingURL       string             `bson:"recordingUrl" json:"recordingUrl"`
	TranscriptFilename string             `bson:"transcriptFilename,omitempty" json:"transcriptFilename,omitempty"`
	TranscriptURL      string             `bson:"transcriptUrl" json:"transcriptUrl"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Message is one turn in a conversation. The ID is synthetic (role plus
// creation time in milliseconds) and is the dedup key when reconciling
// client-supplied history against the stored copy.
type Message struct {
	ID        string    `bson:"id" json:"id"`
	Content   string    `bson:"content" json:"content"`
	Role      string    `bson:"role" json:"role"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// NewMessage builds a message with a synthetic role-timestamp ID.
func NewMessage(content, role string) Message {
	now := time.Now()
	return Message{
		ID:        fmt.Sprintf("%s-%d", role, now.UnixMilli()),
		Content:   content,
		Role:      role,
		CreatedAt: now,
	}
}

// Chat is the append-only message log between one user and the assistant
// about one recording. Unique on (recordingId, userId): two users chatting
// about the same recording get independent histories.
type Chat struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	RecordingID string             `bson:"recordingId" json:"recordingId"`
	UserID      string             `bson:"userId" json:"userId"`
	Messages    []Message          `bson:"messages" json:"messages"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Summary is the cached model-generated digest of a transcript, at most one
// per recording and immutable once written.
type Summary struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	RecordingID string             `bson:"recordingId" json:"recordingId"`
	SessionID   string             `bson:"sessionId,omitempty" json:"sessionId,omitempty"`
	Filename    string             `bson:"filename,omitempty" json:"filename,omitempty"`
	Content     string             `bson:"content" json:"content"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// FAQ is a question/answer pair shown on the help page.
type FAQ struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Question string             `bson:"question" json:"question"`
	Answer   string             `bson:"answer" json:"answer"`
}
