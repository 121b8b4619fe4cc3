package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONArray(t *testing.T) {
	text := `[
		{"speaker_id": "alice", "type": "speech", "text": "hello", "start_ts": 0, "stop_ts": 1200},
		{"speaker_id": "bob", "type": "speech", "text": "hi there", "start_ts": 1300, "stop_ts": 2400},
		{"speaker_id": "alice", "type": "speech", "text": "shall we start?", "start_ts": 2500, "stop_ts": 4000}
	]`

	segs := Parse(text)
	require.Len(t, segs, 3)
	assert.Equal(t, "alice", segs[0].SpeakerID)
	assert.Equal(t, "hello", segs[0].Text)
	assert.Equal(t, "bob", segs[1].SpeakerID)
	assert.Equal(t, "shall we start?", segs[2].Text)
	assert.Equal(t, int64(1300), segs[1].StartTS)
}

func TestParseConcatenatedObjects(t *testing.T) {
	text := `{"speaker_id": "alice", "text": "one"} {"speaker_id": "bob", "text": "two"}
	{"speaker_id": "alice", "text": "three"}`

	segs := Parse(text)
	require.Len(t, segs, 3)
	assert.Equal(t, "one", segs[0].Text)
	assert.Equal(t, "two", segs[1].Text)
	assert.Equal(t, "three", segs[2].Text)
}

func TestParseNDJSON(t *testing.T) {
	lines := []string{
		`{"speaker_id":"alice","text":"first"}`,
		``,
		`{"speaker_id":"bob","text":"second"}`,
		`{"speaker_id":"alice","text":"third"}`,
	}

	segs := Parse(strings.Join(lines, "\n"))
	require.Len(t, segs, 3)
	assert.Equal(t, "first", segs[0].Text)
	assert.Equal(t, "bob", segs[1].SpeakerID)
	assert.Equal(t, "third", segs[2].Text)
}

func TestParseSingleObject(t *testing.T) {
	segs := Parse(`{"speaker_id":"alice","text":"only line"}`)
	require.Len(t, segs, 1)
	assert.Equal(t, "only line", segs[0].Text)
}

func TestParseRejectsErrorPayloads(t *testing.T) {
	// Syntactically valid JSON that is semantically an error must not
	// be surfaced as a transcript.
	for _, text := range []string{
		`[{"error": "access denied"}]`,
		`{"error": "not found"}`,
		`plain prose with no structure at all`,
		``,
	} {
		assert.Empty(t, Parse(text), "payload: %s", text)
	}
}

func TestParsePreservesOrder(t *testing.T) {
	text := `[{"speaker_id":"s","text":"a"},{"speaker_id":"s","text":"b"},{"speaker_id":"s","text":"c"},{"speaker_id":"s","text":"d"}]`
	segs := Parse(text)
	require.Len(t, segs, 4)
	for i, want := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, want, segs[i].Text)
	}
}

func TestUsableRejectsErrorMarkers(t *testing.T) {
	invalid := []string{
		`<Error><Code>InvalidKey</Code></Error>`,
		`Unknown Key`,
		`something something invalidkey something`,
		`<ERROR>denied</ERROR>`,
		``,
		`   `,
	}
	for _, text := range invalid {
		assert.False(t, Usable(text), "payload: %q", text)
	}

	// The bare word "error" inside real speech is not a marker.
	assert.True(t, Usable(`[{"speaker_id":"a","text":"we hit an error in prod"}]`))
}

func TestRawExcerptCap(t *testing.T) {
	long := strings.Repeat("x", RawExcerptLimit+500)
	assert.Len(t, RawExcerpt(long), RawExcerptLimit)
	assert.Equal(t, "short", RawExcerpt("short"))
}
