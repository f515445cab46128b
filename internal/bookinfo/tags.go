package bookinfo

import (
	"regexp"
	"sort"
	"strings"
)

// TagRule maps a tag to the phrases that trigger it
type TagRule struct {
	Tag   string
	Terms []string
}

// TagRules is the tag dictionary
var TagRules = []TagRule{
	{Tag: "fantasy", Terms: []string{"fantasy", "urban fantasy", "epic fantasy", "sword & sorcery", "sword and sorcery"}},
	{Tag: "sci-fi", Terms: []string{"sci-fi", "science fiction", "sf", "speculative", "time travel", "time-travel", "dystopian"}},
	{Tag: "historical", Terms: []string{"historical", "history", "wwii", "world war", "period"}},
	{Tag: "mystery", Terms: []string{"mystery", "thriller", "suspense", "crime", "whodunit", "detective", "noir"}},
	{Tag: "romance", Terms: []string{"romance", "rom-com", "rom com", "romantic"}},
	{Tag: "horror", Terms: []string{"horror", "gothic", "spooky", "ghost", "haunted"}},
	{Tag: "literary", Terms: []string{"literary", "fiction", "novel"}},
	{Tag: "nonfiction", Terms: []string{"nonfiction", "non-fiction", "nf", "essay", "essays", "biography", "bio"}},
	{Tag: "lgbtq", Terms: []string{"lgbt", "lgbtq", "lgbtq+", "queer", "sapphic", "trans", "nonbinary", "non-binary", "gay", "lesbian"}},
	{Tag: "ya", Terms: []string{"young adult", "teen", "teens", "teenager", "teenagers", "tween", "tweens", "tweenager", "tweenagers", "ya"}},
	{Tag: "kids", Terms: []string{"kids", "kid", "children", "childrens", "children's", "family", "families", "youth", "toddler", "toddlers"}},
	{Tag: "graphic", Terms: []string{"graphic novel", "graphic novels", "comic", "comics", "manga"}},
	{Tag: "poetry", Terms: []string{"poetry", "poem", "poems", "poet"}},
	{Tag: "classics", Terms: []string{"classic", "classics", "canon", "canonical"}},
	{Tag: "finance", Terms: []string{"bookkeeping", "finance", "financial", "budget", "budgeting"}},
}

// Classifier assigns tags from a compiled dictionary
type Classifier struct {
	tags []compiledTag
}

type compiledTag struct {
	tag      string
	patterns []*regexp.Regexp
}

// NewClassifier compiles rules into a Classifier. Terms match whole words,
// case-insensitively.
func NewClassifier(rules []TagRule) *Classifier {
	c := &Classifier{tags: make([]compiledTag, 0, len(rules))}
	for _, r := range rules {
		ct := compiledTag{tag: r.Tag}
		for _, term := range r.Terms {
			ct.patterns = append(ct.patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(strings.ToLower(term))+`\b`))
		}
		c.tags = append(c.tags, ct)
	}
	return c
}

var defaultClassifier = NewClassifier(TagRules)

// Classify tags an event using the default dictionary
func Classify(title, description string) []string {
	return defaultClassifier.Classify(title, description)
}

// Classify returns the sorted, de-duplicated tags whose terms appear in the
// title or description. The result is never nil.
func (c *Classifier) Classify(title, description string) []string {
	corpus := strings.ToLower(PrepareText(title) + " " + PrepareText(description))

	seen := make(map[string]bool)
	tags := []string{}
	for _, ct := range c.tags {
		if seen[ct.tag] {
			continue
		}
		for _, p := range ct.patterns {
			if p.MatchString(corpus) {
				seen[ct.tag] = true
				tags = append(tags, ct.tag)
				break
			}
		}
	}
	sort.Strings(tags)
	return tags
}
