package ai

import (
	"fmt"
	"strings"

	"meetscribe/internal/transcript"
)

// BuildContext assembles the system-prompt context block from an optional
// prior summary and an optional parsed transcript. The summary section is
// never truncated; only the raw-text fallback (used when no transcript
// structure was recognized) is capped.
func BuildContext(summary string, segs []transcript.Segment, raw string) string {
	var b strings.Builder

	if summary != "" {
		b.WriteString("Summary of the recording:\n")
		b.WriteString(summary)
		b.WriteString("\n\n")
	}

	if len(segs) > 0 {
		b.WriteString("Transcript of the recording:\n")
		b.WriteString(renderSegments(segs))
		b.WriteString("\n\n")
	} else if strings.TrimSpace(raw) != "" {
		b.WriteString("Transcript of the recording:\n")
		b.WriteString(transcript.RawExcerpt(raw))
		b.WriteString("\n\n")
	}

	return b.String()
}

// renderSegments formats segments as "speaker: text" lines in file order.
func renderSegments(segs []transcript.Segment) string {
	lines := make([]string, 0, len(segs))
	for _, seg := range segs {
		speaker := seg.SpeakerID
		if speaker == "" {
			speaker = "Speaker"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", speaker, seg.Text))
	}
	return strings.Join(lines, "\n")
}
