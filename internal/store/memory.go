package store

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"meetscribe/internal/model"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs tests and
// database-less development runs; semantics match MongoStore.
type MemoryStore struct {
	mu         sync.Mutex
	recordings map[string]*model.RecordingMetadata
	summaries  map[string]*model.Summary
	chats      map[chatKey]*model.Chat
	faqs       map[primitive.ObjectID]*model.FAQ
}

type chatKey struct {
	recordingID string
	userID      string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		recordings: make(map[string]*model.RecordingMetadata),
		summaries:  make(map[string]*model.Summary),
		chats:      make(map[chatKey]*model.Chat),
		faqs:       make(map[primitive.ObjectID]*model.FAQ),
	}
}

func (s *MemoryStore) CreateRecording(_ context.Context, rec *model.RecordingMetadata) (*model.RecordingMetadata, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.recordings[rec.UniqueID]; ok {
		cp := *existing
		return &cp, false, nil
	}

	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	cp := *rec
	s.recordings[rec.UniqueID] = &cp
	return rec, true, nil
}

func (s *MemoryStore) GetRecording(_ context.Context, uniqueID string) (*model.RecordingMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recordings[uniqueID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *MemoryStore) GetSummary(_ context.Context, recordingID string) (*model.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum, ok := s.summaries[recordingID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sum
	return &cp, nil
}

func (s *MemoryStore) CreateSummary(_ context.Context, sum *model.Summary) (*model.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.summaries[sum.RecordingID]; ok {
		cp := *existing
		return &cp, nil
	}

	now := time.Now()
	sum.CreatedAt = now
	sum.UpdatedAt = now
	cp := *sum
	s.summaries[sum.RecordingID] = &cp
	return sum, nil
}

func (s *MemoryStore) GetChat(_ context.Context, recordingID, userID string) (*model.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat, ok := s.chats[chatKey{recordingID, userID}]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *chat
	cp.Messages = append([]model.Message(nil), chat.Messages...)
	return &cp, nil
}

func (s *MemoryStore) AppendMessages(_ context.Context, recordingID, userID string, msgs ...model.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := chatKey{recordingID, userID}
	now := time.Now()
	chat, ok := s.chats[key]
	if !ok {
		chat = &model.Chat{
			RecordingID: recordingID,
			UserID:      userID,
			CreatedAt:   now,
		}
		s.chats[key] = chat
	}
	chat.Messages = append(chat.Messages, msgs...)
	chat.UpdatedAt = now
	return nil
}

func (s *MemoryStore) ListFAQs(_ context.Context) ([]model.FAQ, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	faqs := make([]model.FAQ, 0, len(s.faqs))
	for _, f := range s.faqs {
		faqs = append(faqs, *f)
	}
	return faqs, nil
}

func (s *MemoryStore) CreateFAQ(_ context.Context, f *model.FAQ) (*model.FAQ, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f.ID = primitive.NewObjectID()
	cp := *f
	s.faqs[f.ID] = &cp
	return f, nil
}

func (s *MemoryStore) UpdateFAQ(_ context.Context, f *model.FAQ) (*model.FAQ, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.faqs[f.ID]
	if !ok {
		return nil, ErrNotFound
	}
	existing.Question = f.Question
	existing.Answer = f.Answer
	cp := *existing
	return &cp, nil
}

func (s *MemoryStore) DeleteFAQ(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.faqs[id]; !ok {
		return ErrNotFound
	}
	delete(s.faqs, id)
	return nil
}
