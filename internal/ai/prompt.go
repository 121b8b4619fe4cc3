package ai

import "fmt"

// ChatSystemPrompt embeds the assembled context in the assistant's system
// instructions for a chat turn.
func ChatSystemPrompt(context string) string {
	return fmt.Sprintf(`You are an AI assistant that helps users find information in meeting recordings.
You have access to a summary and/or transcript of a recording.
Answer questions based only on the information provided in the context.
If you don't know the answer based on the context, say so.
Be concise, helpful and format your answers for readability.

Context information:
%s`, context)
}

// summarySystemPrompt fixes the three-section digest template. Empty
// sections are omitted by instruction to the model; the structure is a
// prompt-level contract, not parsed or validated afterwards.
const summarySystemPrompt = `You are an AI assistant that summarizes meeting transcripts. Create a comprehensive summary of the meeting with the following format:

### Meeting Summary:
- Key point 1
- Key point 2
- Key point 3

### Action Items:
- Action item 1
- Action item 2
- Action item 3

### Decisions Made:
- Decision 1
- Decision 2
- Decision 3

For each section, use clear bullet points. If a section has no relevant information, omit that section entirely. Format your response cleanly with proper spacing and organization. Use exactly this format with these section titles, no more and no less.`

// SummarySystemPrompt returns the fixed summary instructions.
func SummarySystemPrompt() string {
	return summarySystemPrompt
}

// SummaryUserPrompt wraps a transcript for summarization.
func SummaryUserPrompt(transcriptText string) string {
	return fmt.Sprintf("Please summarize the following meeting transcript:\n\n%s", transcriptText)
}
