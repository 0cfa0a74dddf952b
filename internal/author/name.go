package author

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/matsen/proceedings/internal/diag"
)

// Generational and academic suffixes that follow a surname.
var suffixes = []string{"Jr.", "Jr", "Sr.", "Sr", "II", "III", "IV", "V", "PhD", "Ph.D.", "MD", "M.D."}

// Nobiliary particles, written lowercase inside a name.
var particles = []string{"van", "von", "de", "del", "della", "di", "da", "le", "la", "du", "des", "den", "der", "het", "ter", "ten", "dos", "das", "y"}

// Name is a display name split into given names and surname.
type Name struct {
	First string
	Last  string
}

// ParseName splits a display name. "Last, First" input is recognised by its
// comma; otherwise the last word that is not a suffix is the surname.
func ParseName(input string) Name {
	input = strings.Join(strings.Fields(input), " ")
	if input == "" {
		return Name{}
	}

	if last, first, ok := cutInverted(input); ok {
		return Name{First: first, Last: last}
	}

	parts := strings.Fields(input)
	end := len(parts)
	for end > 1 && isSuffix(parts[end-1]) {
		end--
	}
	if end == 1 {
		return Name{Last: parts[0]}
	}
	return Name{First: strings.Join(parts[:end-1], " "), Last: parts[end-1]}
}

// cutInverted splits "Last, First" at the final comma. A trailing suffix
// ("Jane Doe, Jr.") is not an inversion.
func cutInverted(s string) (last, first string, ok bool) {
	i := strings.LastIndex(s, ",")
	if i <= 0 {
		return "", "", false
	}
	last = strings.TrimSpace(s[:i])
	first = strings.TrimSpace(s[i+1:])
	if first == "" || last == "" || isSuffix(first) {
		return "", "", false
	}
	return last, first, true
}

// SurnameWithParticles moves trailing particles of the given names onto the
// surname, so "Jean van der Berg" sorts and cites as "van der Berg, Jean".
func (n Name) SurnameWithParticles() Name {
	first := strings.Fields(n.First)
	i := len(first)
	for i > 1 && isParticle(first[i-1]) {
		i--
	}
	if i == len(first) {
		return n
	}
	return Name{
		First: strings.Join(first[:i], " "),
		Last:  strings.Join(append(first[i:len(first):len(first)], n.Last), " "),
	}
}

// Display returns "First Last".
func (n Name) Display() string {
	if n.First == "" {
		return n.Last
	}
	return n.First + " " + n.Last
}

// NormalizeName turns a raw export name into a display name: markers are
// stripped, "Last, First M" is reordered to "First M. Last", single letter
// initials gain a period, and all-upper or all-lower words are re-cased.
func NormalizeName(raw string, d *diag.Collector) string {
	cleaned := strings.Join(strings.Fields(strings.ReplaceAll(raw, "*", "")), " ")
	if cleaned == "" {
		return ""
	}

	display := cleaned
	if last, first, ok := cutInverted(cleaned); ok {
		display = first + " " + last
	}

	words := strings.Fields(display)
	for i, w := range words {
		if i < len(words)-1 && isInitial(w) {
			words[i] = w + "."
		}
	}
	return CheckCase(strings.Join(words, " "), d)
}

// CheckCase re-cases name words written entirely in upper or lower case.
// Particles inside the name are lowercased and suffixes are left alone. A
// diagnostic is recorded when anything changed.
func CheckCase(name string, d *diag.Collector) string {
	caser := cases.Title(language.Und)
	words := strings.Fields(name)
	changed := false
	for i, w := range words {
		if isSuffix(w) || letterCount(w) < 2 {
			continue
		}
		if i > 0 && i < len(words)-1 && isParticle(w) {
			if lw := strings.ToLower(w); lw != w {
				words[i] = lw
				changed = true
			}
			continue
		}
		if allUpper(w) || allLower(w) {
			if tw := caser.String(w); tw != w {
				words[i] = tw
				changed = true
			}
		}
	}

	out := strings.Join(words, " ")
	if changed {
		d.Warn(diag.AuthorCase, name, "Re-cased author name %q to %q; check the spelling", name, out)
	}
	return out
}

// LastName returns the surname of a display name.
func LastName(display string) string {
	return ParseName(display).Last
}

// LastNames returns the surnames of a list of display names.
func LastNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if l := LastName(n); l != "" {
			out = append(out, l)
		}
	}
	return out
}

var foldReplacer = strings.NewReplacer(
	"ø", "o", "Ø", "O", "ł", "l", "Ł", "L", "đ", "d", "Đ", "D",
	"ß", "ss", "æ", "ae", "Æ", "AE", "œ", "oe", "Œ", "OE", "ı", "i",
)

// Fold strips diacritics and lowercases s, for accent-insensitive comparison.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, foldReplacer.Replace(s))
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// SortKey orders display names by accent-folded surname, then given names.
func SortKey(display string) string {
	n := ParseName(display)
	return strings.ToUpper(Fold(n.Last) + " " + Fold(n.First))
}

func isInitial(w string) bool {
	r := []rune(w)
	return len(r) == 1 && unicode.IsLetter(r[0])
}

func isSuffix(w string) bool {
	for _, s := range suffixes {
		if strings.EqualFold(w, s) {
			return true
		}
	}
	return false
}

func isParticle(w string) bool {
	lw := strings.ToLower(w)
	for _, p := range particles {
		if lw == p {
			return true
		}
	}
	return false
}

func letterCount(w string) int {
	n := 0
	for _, r := range w {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

func allUpper(w string) bool {
	return strings.IndexFunc(w, unicode.IsLower) < 0 && strings.IndexFunc(w, unicode.IsUpper) >= 0
}

func allLower(w string) bool {
	return strings.IndexFunc(w, unicode.IsUpper) < 0 && strings.IndexFunc(w, unicode.IsLower) >= 0
}
