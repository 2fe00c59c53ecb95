// Package classify assigns categories, vocabulary matches and importance
// scores to normalized items using ordered rule tables.
package classify

import (
	"regexp"
	"strings"
	"time"

	"AINewsCollector/internal/domain"
)

// Rule is one (category, keyword-set) entry. Rules are evaluated in order
// and the first match wins; specific categories are listed before the
// generic news terms so a title hitting both resolves to the specific one.
type Rule struct {
	Category   domain.Category
	KeywordsEN []string
	KeywordsZH []string
}

// Company is one controlled-vocabulary entry. ASCII aliases are matched on
// word boundaries; CJK aliases by substring, since Han text has no word
// delimiters to anchor on.
type Company struct {
	Name      string
	Type      domain.SourceType
	Aliases   []string
	AliasesZH []string
}

// Tag is a technical-term vocabulary entry (model and technique names).
type Tag struct {
	Name    string
	Aliases []string
}

// ImportancePolicy is the tunable weight table behind the 1-10 score. The
// contract is monotonicity: one more matched company or more recency can
// never lower the score.
type ImportancePolicy struct {
	Base             int
	CompanyWeight    int
	CompanyCap       int
	CategoryWeights  map[domain.Category]int
	FreshWithin      time.Duration
	FreshBonus       int
	RecentWithin     time.Duration
	RecentBonus      int
	LongSummaryRunes int
	LongSummaryBonus int
}

type compiledCompany struct {
	name     string
	patterns []*regexp.Regexp
	substrs  []string
}

type compiledTag struct {
	name     string
	patterns []*regexp.Regexp
	substrs  []string
}

// Classifier applies rule tables to items. Classification never fails:
// unmatched inputs degrade to the default category and empty sets.
type Classifier struct {
	rules     []Rule
	companies []compiledCompany
	tags      []compiledTag
	policy    ImportancePolicy
}

// New compiles the given tables. Nil slices fall back to the built-in
// defaults; a zero policy falls back to DefaultImportancePolicy.
func New(rules []Rule, companies []Company, tags []Tag, policy ImportancePolicy) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}
	if companies == nil {
		companies = DefaultCompanies()
	}
	if tags == nil {
		tags = DefaultTags()
	}
	if policy.Base == 0 {
		policy = DefaultImportancePolicy()
	}

	c := &Classifier{rules: rules, policy: policy}
	for _, comp := range companies {
		cc := compiledCompany{name: comp.Name}
		for _, alias := range comp.Aliases {
			cc.patterns = append(cc.patterns, boundaryPattern(alias))
		}
		for _, alias := range comp.AliasesZH {
			cc.substrs = append(cc.substrs, alias)
		}
		c.companies = append(c.companies, cc)
	}
	for _, tag := range tags {
		ct := compiledTag{name: tag.Name}
		for _, alias := range tag.Aliases {
			if isASCII(alias) {
				ct.patterns = append(ct.patterns, boundaryPattern(alias))
			} else {
				ct.substrs = append(ct.substrs, alias)
			}
		}
		c.tags = append(c.tags, ct)
	}
	return c
}

// Classify produces the ClassifiedItem for one normalized item. asOf is
// the run start time, passed explicitly so recency scoring is reproducible
// within a run.
func (c *Classifier) Classify(item domain.NormalizedItem, asOf time.Time) domain.ClassifiedItem {
	text := item.Title + " " + item.Summary
	lower := strings.ToLower(text)

	category := c.category(lower)
	companies := c.matchCompanies(text, lower)
	tags := c.matchTags(text, lower)

	return domain.ClassifiedItem{
		NormalizedItem: item,
		Category:       category,
		Tags:           tags,
		Companies:      companies,
		Importance:     c.importance(category, len(companies), item, asOf),
	}
}

func (c *Classifier) category(lower string) domain.Category {
	for _, rule := range c.rules {
		for _, kw := range rule.KeywordsEN {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return rule.Category
			}
		}
		for _, kw := range rule.KeywordsZH {
			if strings.Contains(lower, kw) {
				return rule.Category
			}
		}
	}
	return domain.CategoryNews
}

func (c *Classifier) matchCompanies(text, lower string) []string {
	var out []string
	for _, comp := range c.companies {
		if matchAny(comp.patterns, text) || containsAny(lower, comp.substrs) {
			out = append(out, comp.name)
		}
	}
	return out
}

func (c *Classifier) matchTags(text, lower string) []string {
	var out []string
	for _, tag := range c.tags {
		if matchAny(tag.patterns, text) || containsAny(lower, tag.substrs) {
			out = append(out, tag.name)
		}
	}
	return out
}

func (c *Classifier) importance(category domain.Category, companyCount int, item domain.NormalizedItem, asOf time.Time) int {
	p := c.policy
	score := p.Base

	if companyCount > p.CompanyCap {
		companyCount = p.CompanyCap
	}
	score += companyCount * p.CompanyWeight

	score += p.CategoryWeights[category]

	age := asOf.Sub(item.PublishedAt)
	switch {
	case age <= p.FreshWithin:
		score += p.FreshBonus
	case age <= p.RecentWithin:
		score += p.RecentBonus
	}

	if len([]rune(item.Summary)) >= p.LongSummaryRunes {
		score += p.LongSummaryBonus
	}

	if score > 10 {
		score = 10
	}
	if score < 1 {
		score = 1
	}
	return score
}

func boundaryPattern(alias string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(alias) + `\b`)
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func containsAny(lower string, substrs []string) bool {
	for _, s := range substrs {
		if s != "" && strings.Contains(lower, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for _, r := range s {
		if r >= 128 {
			return false
		}
	}
	return true
}
