package services

import (
	"fmt"
	"strings"
)

const (
	LanguageEnglish  = "english"
	LanguageHindi    = "hindi"
	LanguageHinglish = "hinglish"
)

// FallbackExplanation is stored when the model returns nothing.
const FallbackExplanation = "Unable to generate explanation."

// NormalizeLanguage maps a requested language onto a supported one.
// Anything unrecognised becomes english.
func NormalizeLanguage(language string) string {
	switch l := strings.ToLower(strings.TrimSpace(language)); l {
	case LanguageHindi, LanguageHinglish:
		return l
	default:
		return LanguageEnglish
	}
}

// StudentExplanationPrompt asks for a simple, structured explanation of one page.
func StudentExplanationPrompt(pageText, language string) string {
	return fmt.Sprintf(`TASK:
- Summarize and explain the content of this page for a student.
- The explanation should be very simple and easy to understand.
- Use real-life examples wherever necessary.
- Explain equations or diagrams step by step if present.
LANGUAGE RULE:
- hinglish → mix Hindi + English (casual)
- hindi → pure Hindi
- english → simple English
Requested Language: %s
FORMAT:
- Use Markdown formatting with proper headings (## for main topics, ### for subtopics)
- Use **bold** for important terms
- Use bullet points (-) and numbered lists where appropriate
- Use proper structure with topics and subtopics
CONTENT:
%s
`, NormalizeLanguage(language), pageText)
}

var refusalPhrases = []string{
	"i am unable to",
	"i cannot fulfill",
	"i cannot answer",
	"i cannot provide",
	"as a large language model",
}

// looksLikeRefusal reports whether a model answer reads as a refusal.
func looksLikeRefusal(answer string) bool {
	lower := strings.ToLower(answer)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
