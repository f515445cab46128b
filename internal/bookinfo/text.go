package bookinfo

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

var (
	markupPattern = regexp.MustCompile(`<[a-zA-Z/][^>]*>`)
	emphasis      = strings.NewReplacer("*", "", "_", "", "`", "")
	zeroWidth     = strings.NewReplacer("\u200b", "", "\u200c", "", "\u200d", "", "\ufeff", "")
)

// PrepareText normalizes raw event text before rule matching: markup is
// stripped, entities decoded, the text NFKC-normalized, zero-width and
// emphasis characters removed and whitespace collapsed to single spaces.
func PrepareText(raw string) string {
	if raw == "" {
		return ""
	}
	text := stripMarkup(raw)
	text = norm.NFKC.String(text)
	text = zeroWidth.Replace(text)
	text = emphasis.Replace(text)
	return strings.Join(strings.Fields(text), " ")
}

// stripMarkup returns the text content of HTML fragments. Plain text only has
// its entities decoded.
func stripMarkup(raw string) string {
	if !markupPattern.MatchString(raw) {
		return html.UnescapeString(raw)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return html.UnescapeString(raw)
	}
	// Block elements run together in Text(); keep a gap between them
	doc.Find("br, p, div, li").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})
	return doc.Text()
}

const (
	tokenCutset = " \t\r\n\"'`*_-–—.,;:"
	titleCutset = "!.?;,: "
	leadCutset  = " \t\r\n-–—:;,.!"
	dashCutset  = " -:–—"
)

// wordChar matches the characters a name token may contain
const wordChar = `[\p{L}\p{N}_'.-]`

var (
	authorPattern = regexp.MustCompile(`^[A-Z]` + wordChar + `+(?:\s+[A-Z]` + wordChar + `+){0,3}$`)

	quotedClub  = regexp.MustCompile(`(?i)["“”'][^"“”']*book\s*club[^"“”']*["“”']`)
	leadingClub = regexp.MustCompile(`(?i)^\s*book\s*club\b`)
	anyClub     = regexp.MustCompile(`(?i)\bbook\s*club\b`)
	capital     = regexp.MustCompile(`^[A-Z]`)
	nonAlnum    = regexp.MustCompile(`^[^A-Za-z0-9]+`)

	hardBreak = regexp.MustCompile(`[!?;,\n]`)
	initials  = regexp.MustCompile(`^(?:[A-Z]\.){1,3}\s+[A-Z]`)
	filler    = regexp.MustCompile(`(?i)\b(?:join|welcome|registration|register|discussion|club|reading|book|event|tickets)\b`)

	leadBreak = regexp.MustCompile(`(?i)[.!?;]|\b(?:reading|discussion|discuss|discussing|will discuss|will be discussing|our book|this month|we will be reading|selection|first selection is|our selection is)\b`)
)

// leadingFiller are words that open an invitation rather than a name
var leadingFiller = map[string]bool{
	"join": true, "welcome": true, "registration": true, "register": true,
	"discussion": true, "discuss": true, "discussing": true, "club": true,
	"reading": true, "read": true, "book": true, "event": true, "tickets": true,
}

func cleanToken(s string) string {
	return strings.TrimSpace(strings.Trim(s, tokenCutset))
}

func containsBookClub(s string) bool {
	return strings.Contains(strings.ToLower(s), "book club")
}

// isValid rejects empty candidates, candidates opening with an unquoted
// "book club" and candidates not starting with a capital letter.
func isValid(s string) bool {
	if s == "" {
		return false
	}
	if containsBookClub(s) && !quotedClub.MatchString(s) && leadingClub.MatchString(s) {
		return false
	}
	return capital.MatchString(s)
}

// trimAuthorTail cuts an author candidate at the first strong boundary. A
// period only ends the name when a new capitalized word follows and the
// candidate does not open with initials.
func trimAuthorTail(s string) string {
	if loc := hardBreak.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	if !initials.MatchString(s) {
		s = s[:sentenceBreak(s)]
	}
	if loc := filler.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return cleanToken(s)
}

// sentenceBreak returns the index of the first period followed (after
// optional spaces) by a capital letter, skipping periods that precede a lone
// capital such as the "J." in "J.R.R.". It returns len(s) if there is none.
func sentenceBreak(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] != '.' {
			continue
		}
		j := i + 1
		if j < len(s) && isUpperASCII(s[j]) && (j+1 == len(s) || !isWordByte(s[j+1])) {
			continue
		}
		k := j
		for k < len(s) && isSpaceASCII(s[k]) {
			k++
		}
		if k < len(s) && isUpperASCII(s[k]) {
			return i
		}
	}
	return len(s)
}

// stripLeadingFiller drops invitation words ahead of a possessive name, so
// "Reading Louise Penny" becomes "Louise Penny".
func stripLeadingFiller(s string) string {
	words := strings.Fields(s)
	for len(words) > 1 && leadingFiller[strings.ToLower(words[0])] {
		words = words[1:]
	}
	return strings.Join(words, " ")
}

// trimTitleTail drops trailing punctuation and any suffix starting with three
// consecutive lowercase words.
func trimTitleTail(s string) string {
	s = strings.TrimRight(s, "!.?;,:")
	words := strings.Fields(s)
	for i := len(words) - 1; i >= 2; i-- {
		if startsLower(words[i]) && startsLower(words[i-1]) && startsLower(words[i-2]) {
			words = words[:i-2]
			break
		}
	}
	return strings.Trim(strings.Join(words, " "), titleCutset)
}

// stripBookClubPrefix keeps the text after an unquoted "book club" label
func stripBookClubPrefix(s string) string {
	if quotedClub.MatchString(s) {
		return s
	}
	loc := anyClub.FindStringIndex(s)
	if loc == nil || loc[1] >= len(s) {
		return s
	}
	rest := strings.TrimLeft(s[loc[1]:], dashCutset)
	rest = strings.Trim(rest, dashCutset+"\t\r\n")
	return nonAlnum.ReplaceAllString(rest, "")
}

// trimTitleLead keeps the last non-empty chunk after sentence punctuation or
// a cue phrase ("this month", "our selection is", ...), then drops a leading
// run of lowercase words.
func trimTitleLead(s string) string {
	chunks := leadBreak.Split(s, -1)
	tail := s
	for i := len(chunks) - 1; i >= 0; i-- {
		if strings.TrimSpace(chunks[i]) != "" {
			tail = chunks[i]
			break
		}
	}
	words := strings.Fields(tail)
	for len(words) > 0 && startsLower(words[0]) {
		words = words[1:]
	}
	return strings.Trim(strings.Join(words, " "), leadCutset)
}

func startsLower(word string) bool {
	for _, r := range word {
		return unicode.IsLower(r)
	}
	return false
}

func isUpperASCII(b byte) bool { return b >= 'A' && b <= 'Z' }

func isSpaceASCII(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}

func isWordByte(b byte) bool {
	return b == '_' || b >= 0x80 || isUpperASCII(b) || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
