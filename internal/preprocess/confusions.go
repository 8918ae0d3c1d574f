package preprocess

import "strings"

// confusions maps characters OCR engines commonly misread when they
// appear inside otherwise alphabetic tokens. Repair only runs on
// low-confidence extractions.
var confusions = map[byte]string{
	'0': "O",
	'1': "l",
	'5': "S",
	'8': "B",
	'|': "I",
}

// repairConfusions rewrites digit-for-letter confusions inside
// otherwise alphabetic tokens. Pure numbers, measurements, and
// identifiers with a majority of digits are left alone.
func repairConfusions(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))

	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		sb.WriteString(repairToken(text[start:end]))
		start = -1
	}

	for i, r := range text {
		if r == ' ' || r == '\n' || r == '\t' {
			flush(i)
			sb.WriteRune(r)
			continue
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(text))

	return sb.String()
}

func repairToken(token string) string {
	letters, suspects := 0, 0
	for i := 0; i < len(token); i++ {
		if _, ok := confusions[token[i]]; ok {
			suspects++
		} else if isASCIILetter(token[i]) {
			letters++
		}
	}

	// Repair only tokens dominated by letters: mostly-numeric tokens
	// are quantities or identifiers and must not change.
	if suspects == 0 || letters <= suspects {
		return token
	}

	var sb strings.Builder
	sb.Grow(len(token))
	for i := 0; i < len(token); i++ {
		if repl, ok := confusions[token[i]]; ok {
			sb.WriteString(repl)
		} else {
			sb.WriteByte(token[i])
		}
	}
	return sb.String()
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
