package format

// LabelRule rewrites a literal label into its markdown replacement.
type LabelRule struct {
	From string
	To   string
}

// Vocabulary is the closed set of phrases the reformatter recognizes.
// The section titles and labels track the wording of the analysis
// prompts; when a prompt changes, the vocabulary must change with it
// or the matching rules silently stop firing.
type Vocabulary struct {
	// SectionTitles maps a top-level numeral to the titles that become
	// section headings when they follow "<n>. " at the start of a line.
	SectionTitles map[int][]string

	// SectionEmojis maps a top-level numeral to the emoji injected in
	// front of its heading.
	SectionEmojis map[int]string

	// Labels are literal phrase replacements, applied in order.
	Labels []LabelRule
}

// DefaultVocabulary covers the numbered points the analysis prompts ask
// each agent to produce, in the title case models tend to echo back.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		SectionTitles: map[int][]string{
			1: {
				"Market Strength Assessment",
				"Overall Market Sentiment",
				"Overall Technical Analysis Summary",
				"Overall Risk Assessment",
				"Recommended Portfolio Action",
			},
			2: {
				"Notable Patterns or Concerns",
				"Key Sentiment Indicators",
				"Key Indicator Signals",
				"Key Risk Factors",
				"Position Sizing Recommendation",
			},
			3: {
				"Key Factors to Watch",
				"Sentiment Outlook",
				"Potential Price Action Scenarios",
				"Risk Mitigation Recommendations",
				"Risk Management Considerations",
			},
			4: {
				"Trading Recommendations",
				"Position Sizing Suggestions",
				"Short-Term and Long-Term Outlook",
			},
		},
		SectionEmojis: map[int]string{
			1: "📊",
			2: "🔍",
			3: "⚡",
			4: "💡",
		},
		Labels: []LabelRule{
			{From: "FOCUS ON:", To: "**Focus Areas:**"},
			{From: "Reasoning:", To: "_Analysis:_"},
			{From: "Key risks:", To: "**Key Risks:**"},
		},
	}
}
