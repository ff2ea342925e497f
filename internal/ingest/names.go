package ingest

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var okrugSuffix = regexp.MustCompile(`(?i)UPRAVNI\sOKRUG|UPR\.\sOKRUG|OKRUG`)

// stripDiacritics returns a fresh transformer; chains are not safe to share
// between goroutines.
func stripDiacritics() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// ProcessOkrugName turns a raw district label such as "BORSKI UPRAVNI OKRUG"
// into "Borski": diacritics and the district suffix are removed, then every
// word is title-cased.
func ProcessOkrugName(name string) string {
	if stripped, _, err := transform.String(stripDiacritics(), name); err == nil {
		name = stripped
	}
	name = okrugSuffix.ReplaceAllString(name, "")
	return titleWords(name, false)
}

// ProcessOpstinaName title-cases a raw municipality label. A word opening
// with "(" keeps the parenthesis and capitalizes the letter after it.
func ProcessOpstinaName(name string) string {
	return titleWords(name, true)
}

func titleWords(name string, keepParen bool) string {
	words := strings.Fields(name)
	for i, w := range words {
		prefix := ""
		if keepParen && strings.HasPrefix(w, "(") {
			prefix, w = "(", w[1:]
		}
		words[i] = prefix + titleWord(w)
	}
	return strings.Join(words, " ")
}

func titleWord(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError {
		return strings.ToLower(w)
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
}
