package preprocess

import (
	"unicode"

	"github.com/praval-labs/praval/internal/documents"
)

// malayalamDominance is the letter share above which a document is
// classified as Malayalam rather than mixed.
const malayalamDominance = 0.9

// DetectLanguage classifies text by script composition. A document is
// Malayalam when at least 90% of its letters are in the Malayalam
// block, mixed when any Malayalam is present below that share, and
// English otherwise. Malayalam and mixed documents need translation.
func DetectLanguage(text string) (lang string, needsTranslation bool) {
	var malayalam, letters int

	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Malayalam, r) {
			malayalam++
		}
	}

	if letters == 0 {
		return documents.LanguageUnknown, false
	}

	share := float64(malayalam) / float64(letters)
	switch {
	case share >= malayalamDominance:
		return documents.LanguageMalayalam, true
	case malayalam > 0:
		return documents.LanguageMixed, true
	default:
		return documents.LanguageEnglish, false
	}
}
