package format

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	preambleRe = regexp.MustCompile(`^I'll analyze[^\n]*:\n\n`)
	subItemRe  = regexp.MustCompile(`(?m)^[a-z]\) ([A-Z].*)$`)
	percentRe  = regexp.MustCompile(`[+-]?\d+(?:\.\d+)?%`)
	dollarRe   = regexp.MustCompile(`\$\d+(?:,\d{3})*(?:\.\d+)?[BM]?`)
	bulletRe   = regexp.MustCompile(`(?m)^([ \t]*)\* `)
)

type sectionRule struct {
	re      *regexp.Regexp
	heading string
}

// Reformatter rewrites loosely structured analysis prose into markdown.
// The rules are order dependent: section headings are injected before
// metric wrapping so a heading's numeral is never mistaken for a figure.
type Reformatter struct {
	sections []sectionRule
	labels   []LabelRule
}

func New(vocab Vocabulary) *Reformatter {
	numerals := make([]int, 0, len(vocab.SectionTitles))
	for n := range vocab.SectionTitles {
		numerals = append(numerals, n)
	}
	sort.Ints(numerals)

	sections := make([]sectionRule, 0, len(numerals))
	for _, n := range numerals {
		titles := vocab.SectionTitles[n]
		if len(titles) == 0 {
			continue
		}
		quoted := make([]string, len(titles))
		for i, title := range titles {
			quoted[i] = regexp.QuoteMeta(title)
		}
		sections = append(sections, sectionRule{
			re:      regexp.MustCompile(fmt.Sprintf(`(?m)^%d\. (%s)$`, n, strings.Join(quoted, "|"))),
			heading: fmt.Sprintf("### %s %d. $1", vocab.SectionEmojis[n], n),
		})
	}
	return &Reformatter{sections: sections, labels: vocab.Labels}
}

// Reformat applies every rewrite rule, in order, to one analysis blob.
// It is a pure function: any string in, some string out, unchanged when
// nothing matches.
func (r *Reformatter) Reformat(content string) string {
	out := preambleRe.ReplaceAllString(content, "")

	for _, section := range r.sections {
		out = section.re.ReplaceAllString(out, section.heading)
	}
	out = subItemRe.ReplaceAllString(out, "#### 🔸 $1")

	out = percentRe.ReplaceAllString(out, "`${0}`")
	out = dollarRe.ReplaceAllString(out, "`${0}`")

	for _, label := range r.labels {
		out = strings.ReplaceAll(out, label.From, label.To)
	}

	out = bulletRe.ReplaceAllString(out, "${1}• ")
	return out
}
