package bookinfo

import (
	"regexp"
	"strings"
)

// Match is an extracted book
type Match struct {
	Title  string
	Author string
	// Rule names the rule that produced the match
	Rule string
}

// RuleFunc inspects prepared text and returns a title and author, or two empty
// strings.
type RuleFunc func(text string) (title, author string)

// Rule is a named extraction strategy
type Rule struct {
	Name string
	Func RuleFunc
}

// Rules is the extraction chain in priority order
var Rules = []Rule{
	{Name: "by_split", Func: BySplit},
	{Name: "possessive", Func: Possessive},
	{Name: "quoted_by", Func: QuotedBy},
	{Name: "loose_possessive", Func: LoosePossessive},
}

var (
	byWord          = regexp.MustCompile(`(?i)\sby\s`)
	quotedSpan      = regexp.MustCompile(`["“”']\s*([^"“”']{2,200}?)\s*["“”']`)
	possessive      = regexp.MustCompile(`([A-Z]` + wordChar + `+(?:\s+[A-Z]` + wordChar + `+){0,3})['’]s\s+([^,:;\n]{2,160})`)
	quotedBy        = regexp.MustCompile(`(?i)["“”']\s*([^"“”']{2,160}?)\s*["“”']\s+by\s+([A-Z][^\n]{1,80})`)
	loosePossessive = regexp.MustCompile(`([A-Z]` + wordChar + `+(?:\s+[A-Z]` + wordChar + `+){0,4})['’]s\s+([^.!?;\n]{2,200})`)
)

// Extract runs the rule chain over the title and then the description. Both
// inputs are prepared with PrepareText first.
func Extract(title, description string) (Match, bool) {
	for _, raw := range []string{title, description} {
		if m, ok := ExtractText(PrepareText(raw)); ok {
			return m, true
		}
	}
	return Match{}, false
}

// ExtractText runs the rule chain over already prepared text
func ExtractText(text string) (Match, bool) {
	if text == "" {
		return Match{}, false
	}
	for _, r := range Rules {
		if t, a := r.Func(text); t != "" && a != "" {
			return Match{Title: t, Author: a, Rule: r.Name}, true
		}
	}
	return Match{}, false
}

// BySplit handles "<title> by <author>", trying each " by " left to right. A
// quoted span left of the split narrows the title.
func BySplit(text string) (string, string) {
	for _, loc := range byWord.FindAllStringIndex(text, -1) {
		left := strings.TrimSpace(text[:loc[0]])
		right := strings.TrimSpace(text[loc[1]:])

		quoted := false
		if q := quotedSpan.FindStringSubmatch(left); q != nil {
			left = q[1]
			quoted = true
		}

		title := trimTitleTail(stripBookClubPrefix(trimTitleLead(cleanToken(left))))
		author := trimAuthorTail(right)

		if containsBookClub(title) && !quoted {
			continue
		}
		if title == "" || author == "" || !authorPattern.MatchString(author) {
			continue
		}
		if isValid(title) && isValid(author) {
			return title, author
		}
	}
	return "", ""
}

// Possessive handles "<Author>'s <title>" using the first occurrence
func Possessive(text string) (string, string) {
	m := possessive.FindStringSubmatch(text)
	if m == nil {
		return "", ""
	}
	author, title := possessiveParts(m[1], m[2])
	if containsBookClub(title) || title == "" || author == "" {
		return "", ""
	}
	if !authorPattern.MatchString(author) {
		return "", ""
	}
	if isValid(title) && isValid(author) {
		return title, author
	}
	return "", ""
}

// QuotedBy handles "\"<title>\" by <author>" anywhere in the text
func QuotedBy(text string) (string, string) {
	m := quotedBy.FindStringSubmatch(text)
	if m == nil {
		return "", ""
	}
	title := trimTitleTail(trimTitleLead(cleanToken(m[1])))
	author := trimAuthorTail(m[2])
	if title == "" || author == "" || !authorPattern.MatchString(author) {
		return "", ""
	}
	if isValid(title) && isValid(author) {
		return title, author
	}
	return "", ""
}

// LoosePossessive is the last resort: the final possessive in the text, with
// a longer name and title allowed and no author shape check.
func LoosePossessive(text string) (string, string) {
	all := loosePossessive.FindAllStringSubmatch(text, -1)
	if len(all) == 0 {
		return "", ""
	}
	m := all[len(all)-1]
	author, title := possessiveParts(m[1], m[2])
	if containsBookClub(title) {
		return "", ""
	}
	if author != "" && title != "" && isValid(title) && isValid(author) {
		return title, author
	}
	return "", ""
}

func possessiveParts(name, rest string) (author, title string) {
	author = trimAuthorTail(stripLeadingFiller(cleanToken(name)))
	title = trimTitleTail(stripBookClubPrefix(trimTitleLead(cleanToken(rest))))
	return author, title
}
