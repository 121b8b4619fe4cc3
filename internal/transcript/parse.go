// Package transcript normalizes the video provider's transcript files into
// an ordered sequence of speaker-attributed segments. Providers have shipped
// the same data as a JSON array, as whitespace-concatenated JSON objects and
// as newline-delimited JSON, so parsing is an ordered chain of strategies;
// the first one that yields a usable result wins.
package transcript

import (
	"encoding/json"
	"strings"
	"unicode"
)

// RawExcerptLimit caps the raw-text fallback used when no structure is
// recognized. Only the chat-context path consumes the fallback.
const RawExcerptLimit = 5000

// Segment is one speaker-attributed span of transcript text. Offsets are
// milliseconds from session start.
type Segment struct {
	SpeakerID string `json:"speaker_id"`
	Type      string `json:"type,omitempty"`
	Text      string `json:"text"`
	StartTS   int64  `json:"start_ts,omitempty"`
	StopTS    int64  `json:"stop_ts,omitempty"`
}

// Parse normalizes raw transcript text into segments, in file order.
// It returns an empty slice when no strategy produces a usable result;
// callers decide whether that degrades to a raw-text excerpt or to
// "no content".
func Parse(text string) []Segment {
	for _, parse := range []func(string) []Segment{
		parseJSONArray,
		parseConcatenated,
		parseLines,
	} {
		if segs := parse(text); usable(segs) {
			return segs
		}
	}
	return nil
}

// usable is the shared post-condition applied after every strategy: the
// first element must carry a non-empty speaker and text. This rejects
// syntactically valid JSON that is semantically an error payload.
func usable(segs []Segment) bool {
	if len(segs) == 0 {
		return false
	}
	return segs[0].SpeakerID != "" && segs[0].Text != ""
}

// parseJSONArray handles the whole payload as a single JSON array.
func parseJSONArray(text string) []Segment {
	var segs []Segment
	if err := json.Unmarshal([]byte(text), &segs); err != nil {
		return nil
	}
	return segs
}

// parseConcatenated handles provider output of JSON objects separated by
// whitespace, splitting immediately before each '{'.
func parseConcatenated(text string) []Segment {
	chunks := splitBeforeBrace(strings.TrimSpace(text))
	if len(chunks) < 2 {
		return nil
	}

	var segs []Segment
	for _, chunk := range chunks {
		var seg Segment
		if err := json.Unmarshal([]byte(strings.TrimSpace(chunk)), &seg); err != nil {
			continue
		}
		segs = append(segs, seg)
	}
	return segs
}

// parseLines handles newline-delimited JSON, one object per non-blank line.
func parseLines(text string) []Segment {
	var segs []Segment
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var seg Segment
		if err := json.Unmarshal([]byte(line), &seg); err != nil {
			continue
		}
		segs = append(segs, seg)
	}
	return segs
}

// splitBeforeBrace splits s on runs of whitespace that immediately precede
// a '{', keeping the brace with the following chunk.
func splitBeforeBrace(s string) []string {
	var chunks []string
	start := 0
	runes := []rune(s)
	for i := 1; i < len(runes); i++ {
		if runes[i] == '{' && unicode.IsSpace(runes[i-1]) {
			chunks = append(chunks, string(runes[start:i]))
			start = i
		}
	}
	chunks = append(chunks, string(runes[start:]))
	return chunks
}

// RawExcerpt bounds opaque transcript text for prompt assembly.
func RawExcerpt(text string) string {
	if len(text) > RawExcerptLimit {
		return text[:RawExcerptLimit]
	}
	return text
}
