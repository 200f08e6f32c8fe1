package summarize

import (
	"fmt"
	"strings"
)

// System messages, one per call type.
const (
	chunkSystem   = "You are summarizing a section of a larger document. Be concise and focus on key information."
	combineSystem = "You are creating a final summary by combining section summaries."
	extractSystem = "You extract structured information from documents."
	directSystem  = "You are an expert document summarizer."
	answerSystem  = "You answer questions based on provided documents. Be accurate and cite the document."
	briefSystem   = "You are an expert document analyst and summarizer."
)

const directInstructions = `Provide a comprehensive summary of this document.
Include: main topic, key points, important details, and conclusions.
Format: 3-4 paragraphs.`

// NotInDocument is the answer the model is told to give when the document
// does not contain the requested information.
const NotInDocument = "This information is not in the document"

func chunkPrompt(text string, index, total int) string {
	return fmt.Sprintf(`Summarize this section (part %d of %d) of a document.
Focus on key points, important data, and main ideas.
Keep it concise (3-5 sentences).

Text:
%s`, index, total, text)
}

func combinePrompt(summaries []string) string {
	return `Here are summaries of different sections of a document.
Combine them into one coherent, comprehensive summary.
Remove redundancy and organize logically.
Keep it 2-4 paragraphs.

Section summaries:
` + strings.Join(summaries, "\n\n")
}

func extractPrompt(head string) string {
	return `Extract key information from this document:

1. Important dates (if any)
2. Key numbers/statistics
3. Action items or recommendations
4. Main entities (people, companies, locations)

Format as a structured list. If any category has no relevant info, write "None found".

Document:
` + head
}

func directPrompt(text string) string {
	return directInstructions + "\n\nDocument:\n" + text
}

func answerPrompt(head, question string) string {
	return fmt.Sprintf(`Based on the document below, answer this question:

Question: %s

Document:
%s

Instructions:
- Answer based ONLY on information in the document
- If the answer isn't in the document, say "%s"
- Be specific and cite relevant parts when possible
- Keep answer concise but complete`, question, head, NotInDocument)
}

var briefInstructions = map[Style]string{
	StyleExecutive: `Provide an executive summary of this document.
Include: main topic, key points (3-5), and conclusion.
Format: 2-3 paragraphs, professional tone.
Keep it concise but comprehensive.`,

	StyleBullet: `Summarize this document as bullet points.
Include:
- Main topic
- Key findings (5-7 points)
- Important numbers/statistics
- Conclusions or recommendations
Be clear and concise.`,

	StyleDetailed: `Provide a detailed summary of this document.
Include all major sections, key arguments, important data,
and conclusions. Maintain the document's structure.
Be thorough but don't reproduce the entire document.`,
}

func briefPrompt(style Style, text string) string {
	return briefInstructions[style] + "\n\nDocument:\n" + text
}
