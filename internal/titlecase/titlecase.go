// Package titlecase converts paper titles to headline style without
// destroying capitalisation chosen by the authors.
//
// Letters are only ever promoted to uppercase, never demoted, so acronyms and
// brand names survive. The two exceptions are the closed list of function
// words, which are lowercased inside a title, and fully uppercase titles,
// which carry no usable case information and are re-cased word by word. The
// latter are always flagged for manual review: the converter cannot tell
// "MIR" the acronym from "MIR" the shouted word, and it does not guess.
//
// The rules roughly follow the New York Times style. A faithful
// implementation would need part-of-speech tagging, so words that may be
// either a preposition or an adverb are left untouched and flagged instead.
package titlecase

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matsen/proceedings/internal/diag"
)

// AlwaysLower lists words lowercased everywhere except at title bookends.
var AlwaysLower = []string{"an", "and", "as", "at", "but", "if", "of", "or", "the", "vs"}

// Ambiguous lists words whose case depends on their part of speech.
var Ambiguous = []string{"a", "by", "en", "for", "in", "on", "to", "v", "via"}

// Exceptions are written exactly as listed regardless of input case.
var Exceptions = []string{"iPhone"}

var vowels = "aeiou"

// Smart converts title to title case, recording review diagnostics on d.
func Smart(title string, d *diag.Collector) string {
	if isUpper(title) {
		converted := Smart(wordCase(title), d)
		d.Warn(diag.TitleAllCaps, title,
			"Check automatically converted title %q for accidental lowercasing of acronyms etc.", converted)
		return converted
	}

	words := strings.Fields(title)
	if len(words) == 0 {
		return title
	}

	bookends := make([]bool, len(words))
	bookends[0] = true
	bookends[len(words)-1] = true
	for i, w := range words {
		if strings.HasSuffix(w, ":") {
			bookends[i] = true
			if i+1 < len(words) {
				bookends[i+1] = true
			}
		}
		if isDash(w) {
			for j := i - 1; j <= i+1; j++ {
				if j >= 0 && j < len(words) {
					bookends[j] = true
				}
			}
		}
	}

	c := converter{title: title, d: d}
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = c.word(w, bookends[i])
	}
	return strings.Join(out, " ")
}

type converter struct {
	title string
	d     *diag.Collector
}

func (c converter) word(word string, bookend bool) string {
	lower := strings.ToLower(word)
	for _, e := range Exceptions {
		if strings.ToLower(e) == lower {
			return e
		}
	}

	if !bookend && contains(AlwaysLower, lower) {
		return lower
	}

	if !bookend && contains(Ambiguous, lower) {
		if isLower(word) {
			c.d.Warn(diag.TitleAmbiguous, c.title,
				"Verify that %q is an article or preposition in %q, otherwise manually capitalise it", word, c.title)
		} else {
			c.d.Warn(diag.TitleAmbiguous, c.title,
				"Verify that %q is an adverb or verb in %q, otherwise manually lowercase it", word, c.title)
		}
		return word
	}

	if !strings.Contains(word, "-") {
		return upperInitial(word)
	}

	parts := strings.Split(word, "-")
	if len(parts) == 2 {
		// Co-operation keeps the second part lowercase, Co-Author does not.
		if !doubledVowelPrefix(parts[0], parts[1]) {
			parts[1] = upperInitial(parts[1])
		}
		return upperInitial(parts[0]) + "-" + parts[1]
	}
	for i, p := range parts {
		parts[i] = c.word(p, false)
	}
	return strings.Join(parts, "-")
}

// doubledVowelPrefix reports whether a two or three letter prefix ends in the
// vowel the next part starts with.
func doubledVowelPrefix(prefix, rest string) bool {
	n := utf8.RuneCountInString(prefix)
	if n != 2 && n != 3 || rest == "" {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(prefix)
	first, _ := utf8.DecodeRuneInString(rest)
	return strings.ContainsRune(vowels, last) && last == first
}

// upperInitial capitalises the first letter and leaves the rest alone. When
// everything after that letter is already uppercase the word is trusted as
// written (fMRI, iOS).
func upperInitial(s string) string {
	for i, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		rest := s[i+utf8.RuneLen(r):]
		if isUpper(rest) {
			return s
		}
		return s[:i] + string(unicode.ToUpper(r)) + rest
	}
	return s
}

// wordCase uppercases the first letter of every run of letters and lowercases
// the rest of the run.
func wordCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inWord := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) && !inWord:
			b.WriteRune(unicode.ToUpper(r))
			inWord = true
		case unicode.IsLetter(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
			inWord = false
		}
	}
	return b.String()
}

// isUpper reports whether s has at least one cased letter and no lowercase ones.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}

// isLower reports whether s has at least one cased letter and no uppercase ones.
func isLower(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsLower(r) {
			cased = true
		}
	}
	return cased
}

func isDash(w string) bool {
	return strings.HasPrefix(w, "-") || strings.HasPrefix(w, "–") || strings.HasPrefix(w, "—")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
