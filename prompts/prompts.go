package prompts

import _ "embed"

// Embedded prompt files. The wording is load-bearing: the markdown
// reformatter's section vocabulary matches the numbered headings these
// prompts elicit.

//go:embed market.txt
var market string

//go:embed sentiment.txt
var sentiment string

//go:embed technical.txt
var technical string

//go:embed risk.txt
var risk string

//go:embed portfolio.txt
var portfolio string

//go:embed reasoning.txt
var reasoning string

func Market() string    { return market }
func Sentiment() string { return sentiment }
func Technical() string { return technical }
func Risk() string      { return risk }
func Portfolio() string { return portfolio }

// Reasoning is the optional addendum requesting per-point reasoning.
func Reasoning() string { return reasoning }
