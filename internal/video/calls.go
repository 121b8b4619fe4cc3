package video

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Participant tracking actions.
const (
	ActionJoin  = "join"
	ActionLeave = "leave"
	ActionEnd   = "end"
)

// Participant is the per-call participant record kept in the call's custom
// data.
type Participant struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Role     string `json:"role,omitempty"`
	Status   string `json:"status,omitempty"`
	LeftAt   string `json:"left_at,omitempty"`
}

// CallWithArtifacts pairs a call with its stored recordings and
// transcription files.
type CallWithArtifacts struct {
	Call           Call            `json:"call"`
	Recordings     []Recording     `json:"recordings"`
	Transcriptions []Transcription `json:"transcriptions"`
}

// ApplyParticipantAction mutates a call's custom data for one participant
// event and returns the updated block. The input map is not modified.
func ApplyParticipantAction(custom map[string]interface{}, p Participant, action string, now time.Time) (map[string]interface{}, error) {
	updated := make(map[string]interface{}, len(custom)+3)
	for k, v := range custom {
		updated[k] = v
	}

	participants := participantsFromCustom(custom)

	switch action {
	case ActionJoin:
		replaced := false
		for i := range participants {
			if participants[i].UserID == p.UserID {
				participants[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			participants = append(participants, p)
		}

	case ActionLeave:
		for i := range participants {
			if participants[i].UserID == p.UserID {
				participants[i].Status = "left"
				participants[i].LeftAt = now.UTC().Format(time.RFC3339)
			}
		}

	case ActionEnd:
		updated["ended_by"] = p
		updated["ended_at"] = now.UTC().Format(time.RFC3339)
		updated["final_participant_count"] = len(participants)

	default:
		return nil, fmt.Errorf("unknown participant action %q", action)
	}

	updated["participants"] = participants
	return updated, nil
}

// participantsFromCustom decodes the participants list out of raw custom
// data; anything unrecognizable is treated as an empty list.
func participantsFromCustom(custom map[string]interface{}) []Participant {
	raw, ok := custom["participants"]
	if !ok {
		return nil
	}
	payload, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var participants []Participant
	if err := json.Unmarshal(payload, &participants); err != nil {
		return nil
	}
	return participants
}

// CallsWithArtifacts lists the user's calls that have recordings. For each
// call, recordings and transcriptions are fetched concurrently; calls are
// processed one at a time. Calls whose artifact queries fail are skipped.
func (c *Client) CallsWithArtifacts(ctx context.Context, userID string) ([]CallWithArtifacts, error) {
	calls, err := c.QueryCalls(ctx, userID, 25)
	if err != nil {
		return nil, err
	}

	var results []CallWithArtifacts
	for _, call := range calls {
		var (
			wg             sync.WaitGroup
			recordings     []Recording
			transcriptions []Transcription
			recErr, trErr  error
		)

		wg.Add(2)
		go func() {
			defer wg.Done()
			recordings, recErr = c.QueryRecordings(ctx, call.Type, call.ID)
		}()
		go func() {
			defer wg.Done()
			transcriptions, trErr = c.QueryTranscriptions(ctx, call.Type, call.ID)
		}()
		wg.Wait()

		if recErr != nil {
			log.Debug().Err(recErr).Str("callId", call.ID).Msg("skipping call, recordings query failed")
			continue
		}
		if len(recordings) == 0 {
			continue
		}
		if trErr != nil {
			log.Debug().Err(trErr).Str("callId", call.ID).Msg("transcriptions query failed, continuing without")
			transcriptions = nil
		}

		results = append(results, CallWithArtifacts{
			Call:           call,
			Recordings:     recordings,
			Transcriptions: fillSessionIDs(transcriptions, recordings),
		})
	}
	return results, nil
}

// fillSessionIDs backfills transcription session ids from the recording
// that started at the same time; older provider responses omit them.
func fillSessionIDs(transcriptions []Transcription, recordings []Recording) []Transcription {
	for i := range transcriptions {
		if transcriptions[i].SessionID != "" {
			continue
		}
		transcriptions[i].SessionID = "unknown"
		for _, rec := range recordings {
			if rec.StartTime != "" && rec.StartTime == transcriptions[i].StartTime {
				transcriptions[i].SessionID = rec.SessionID
				break
			}
		}
	}
	return transcriptions
}

// Ended reports whether a call should be shown as over: either the
// provider recorded an end event, or the scheduled start is more than one
// hour past. The one-hour rule papers over missing end-of-call events from
// the provider.
func Ended(startsAt, endedAt *time.Time, now time.Time) bool {
	if endedAt != nil {
		return true
	}
	return startsAt != nil && now.Sub(*startsAt) > time.Hour
}
