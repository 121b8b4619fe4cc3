// Package assistant orchestrates AI chat turns and summary generation for
// recordings: it resolves recording metadata, assembles prompt context from
// the stored summary and the provider transcript, invokes the model once
// per turn, and records the conversation.
package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"meetscribe/internal/ai"
	"meetscribe/internal/cache"
	"meetscribe/internal/model"
	"meetscribe/internal/store"
	"meetscribe/internal/transcript"
)

// ErrRecordingNotFound is returned when the referenced recording metadata
// does not exist. Callers reject the request before any model call.
var ErrRecordingNotFound = errors.New("recording not found")

// Service wires the conversation store, transcript fetcher and model
// client together. All dependencies are injected by the composition root.
type Service struct {
	store     store.Store
	fetcher   *transcript.Fetcher
	completer ai.Completer
	summaries *cache.Summaries
}

// NewService creates a Service. summaries may be nil when Redis is not
// configured.
func NewService(st store.Store, fetcher *transcript.Fetcher, completer ai.Completer, summaries *cache.Summaries) *Service {
	return &Service{
		store:     st,
		fetcher:   fetcher,
		completer: completer,
		summaries: summaries,
	}
}

// Chat runs one conversation turn for a (recording, user) pair and returns
// the assistant reply.
//
// Failure order is fixed: the recording must resolve before anything else
// happens; context-building failures degrade to "no additional context";
// a model failure is surfaced to the caller; a persistence failure after a
// successful model call is logged and swallowed so the reply is still
// delivered.
func (s *Service) Chat(ctx context.Context, userID, uniqueID, message string, previous []model.Message) (string, error) {
	rec, err := s.store.GetRecording(ctx, uniqueID)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrRecordingNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve recording: %w", err)
	}

	contextBlock := s.buildContext(ctx, rec)

	history := s.history(ctx, uniqueID, userID)

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+len(previous)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: ai.ChatSystemPrompt(contextBlock),
	})

	seen := make(map[string]bool, len(history))
	for _, msg := range history {
		seen[msg.ID] = true
		messages = append(messages, toChatMessage(msg))
	}

	// Client-supplied turns the persistence write hasn't caught up with
	// yet; on an id collision the stored copy wins.
	for _, msg := range previous {
		if msg.Role != model.RoleUser && msg.Role != model.RoleAssistant {
			continue
		}
		if seen[msg.ID] {
			continue
		}
		seen[msg.ID] = true
		messages = append(messages, toChatMessage(msg))
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	reply, err := s.completer.Complete(ctx, messages, ai.ChatTemperature)
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}

	userMsg := model.NewMessage(message, model.RoleUser)
	aiMsg := model.NewMessage(reply, model.RoleAssistant)
	if err := s.store.AppendMessages(ctx, uniqueID, userID, userMsg, aiMsg); err != nil {
		// Reply delivery takes precedence over durability: the turn is
		// lost from history but the user still gets their answer.
		log.Error().Err(err).
			Str("recordingId", uniqueID).
			Str("userId", userID).
			Msg("failed to persist chat turn")
	}

	return reply, nil
}

// Summarize returns the stored summary for a recording, generating and
// persisting one on first request. Generation is idempotent: an existing
// summary short-circuits before any model call.
func (s *Service) Summarize(ctx context.Context, uniqueID, sessionID, filename, transcriptText string) (string, error) {
	_, err := s.store.GetRecording(ctx, uniqueID)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrRecordingNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve recording: %w", err)
	}

	if content, ok := s.summaries.Get(ctx, uniqueID); ok {
		return content, nil
	}

	existing, err := s.store.GetSummary(ctx, uniqueID)
	if err == nil {
		s.summaries.Set(ctx, uniqueID, existing.Content)
		return existing.Content, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("failed to look up summary: %w", err)
	}

	content, err := s.completer.Complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: ai.SummarySystemPrompt()},
		{Role: openai.ChatMessageRoleUser, Content: ai.SummaryUserPrompt(transcriptText)},
	}, ai.SummaryTemperature)
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}

	stored, err := s.store.CreateSummary(ctx, &model.Summary{
		RecordingID: uniqueID,
		SessionID:   sessionID,
		Filename:    filename,
		Content:     content,
	})
	if err != nil {
		return "", fmt.Errorf("failed to persist summary: %w", err)
	}

	s.summaries.Set(ctx, uniqueID, stored.Content)
	return stored.Content, nil
}

// History returns the recording metadata and the stored conversation for
// one (recording, user) pair. An absent conversation is an empty message
// list, not an error.
func (s *Service) History(ctx context.Context, userID, uniqueID string) (*model.RecordingMetadata, []model.Message, error) {
	rec, err := s.store.GetRecording(ctx, uniqueID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, ErrRecordingNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve recording: %w", err)
	}

	chat, err := s.store.GetChat(ctx, uniqueID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return rec, []model.Message{}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	return rec, chat.Messages, nil
}

// buildContext gathers the summary and transcript context for a chat turn.
// Every failure here degrades to less context, never to a failed turn.
func (s *Service) buildContext(ctx context.Context, rec *model.RecordingMetadata) string {
	var summary string
	if content, ok := s.summaries.Get(ctx, rec.UniqueID); ok {
		summary = content
	} else if stored, err := s.store.GetSummary(ctx, rec.UniqueID); err == nil {
		summary = stored.Content
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Warn().Err(err).Str("recordingId", rec.UniqueID).Msg("summary lookup failed, continuing without")
	}

	var (
		segs []transcript.Segment
		raw  string
	)
	if rec.TranscriptURL != "" {
		text, err := s.fetcher.Fetch(ctx, rec.TranscriptURL)
		switch {
		case errors.Is(err, transcript.ErrUnavailable):
			log.Debug().Str("recordingId", rec.UniqueID).Msg("transcript unavailable")
		case err != nil:
			log.Warn().Err(err).Str("recordingId", rec.UniqueID).Msg("transcript fetch failed, continuing without")
		default:
			segs = transcript.Parse(text)
			if len(segs) == 0 {
				raw = text
			}
		}
	}

	return ai.BuildContext(summary, segs, raw)
}

func (s *Service) history(ctx context.Context, uniqueID, userID string) []model.Message {
	chat, err := s.store.GetChat(ctx, uniqueID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		log.Warn().Err(err).Str("recordingId", uniqueID).Msg("chat history lookup failed, continuing without")
		return nil
	}
	return chat.Messages
}

func toChatMessage(msg model.Message) openai.ChatCompletionMessage {
	role := openai.ChatMessageRoleUser
	if msg.Role == model.RoleAssistant {
		role = openai.ChatMessageRoleAssistant
	}
	return openai.ChatCompletionMessage{Role: role, Content: msg.Content}
}
