package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetscribe/internal/model"
)

func TestCreateRecordingFirstWriterWins(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first, created, err := s.CreateRecording(ctx, &model.RecordingMetadata{
		UniqueID:          "rec-1",
		SessionID:         "sess-1",
		RecordingFilename: "standup.mp4",
		RecordingURL:      "https://cdn.example.com/standup.mp4",
	})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := s.CreateRecording(ctx, &model.RecordingMetadata{
		UniqueID:          "rec-1",
		SessionID:         "sess-other",
		RecordingFilename: "other.mp4",
		RecordingURL:      "https://cdn.example.com/other.mp4",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.RecordingFilename, second.RecordingFilename)

	stored, err := s.GetRecording(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "standup.mp4", stored.RecordingFilename)
}

func TestGetRecordingNotFound(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.GetRecording(context.Background(), "rec-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateSummaryIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first, err := s.CreateSummary(ctx, &model.Summary{RecordingID: "rec-1", Content: "v1"})
	require.NoError(t, err)
	assert.Equal(t, "v1", first.Content)

	second, err := s.CreateSummary(ctx, &model.Summary{RecordingID: "rec-1", Content: "v2"})
	require.NoError(t, err)
	assert.Equal(t, "v1", second.Content, "existing summary must win")
}

func TestAppendMessagesOrderAndIsolation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.AppendMessages(ctx, "rec-1", "user-a",
		model.NewMessage("question", model.RoleUser),
		model.NewMessage("answer", model.RoleAssistant),
	))
	require.NoError(t, s.AppendMessages(ctx, "rec-1", "user-b",
		model.NewMessage("other question", model.RoleUser),
		model.NewMessage("other answer", model.RoleAssistant),
	))
	require.NoError(t, s.AppendMessages(ctx, "rec-1", "user-a",
		model.NewMessage("followup", model.RoleUser),
		model.NewMessage("followup answer", model.RoleAssistant),
	))

	chatA, err := s.GetChat(ctx, "rec-1", "user-a")
	require.NoError(t, err)
	require.Len(t, chatA.Messages, 4)
	assert.Equal(t, "question", chatA.Messages[0].Content)
	assert.Equal(t, model.RoleUser, chatA.Messages[0].Role)
	assert.Equal(t, model.RoleAssistant, chatA.Messages[1].Role)
	assert.Equal(t, "followup answer", chatA.Messages[3].Content)

	// Same recording, different user: histories never mix.
	chatB, err := s.GetChat(ctx, "rec-1", "user-b")
	require.NoError(t, err)
	require.Len(t, chatB.Messages, 2)
	assert.Equal(t, "other question", chatB.Messages[0].Content)
}

func TestGetChatAbsentIsNotFound(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.GetChat(context.Background(), "rec-1", "user-z")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFAQCRUD(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.CreateFAQ(ctx, &model.FAQ{Question: "Q", Answer: "A"})
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())

	faqs, err := s.ListFAQs(ctx)
	require.NoError(t, err)
	require.Len(t, faqs, 1)
	assert.Equal(t, "Q", faqs[0].Question)

	updated, err := s.UpdateFAQ(ctx, &model.FAQ{ID: created.ID, Question: "Q2", Answer: "A2"})
	require.NoError(t, err)
	assert.Equal(t, "Q2", updated.Question)

	require.NoError(t, s.DeleteFAQ(ctx, created.ID))
	assert.ErrorIs(t, s.DeleteFAQ(ctx, created.ID), ErrNotFound)

	_, err = s.UpdateFAQ(ctx, &model.FAQ{ID: created.ID})
	assert.ErrorIs(t, err, ErrNotFound)
}
