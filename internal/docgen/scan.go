package docgen

import (
	"regexp"
	"strings"
)

var (
	anyTokenRe    = regexp.MustCompile(`\{\{[^{}]+\}\}|\{[#/%][^{}]+\}`)
	scalarTokenRe = regexp.MustCompile(`\{\{([^{}]+)\}\}`)
	imageTokenRe  = regexp.MustCompile(`\{%([^{}]+)\}`)
	loopOpenRe    = regexp.MustCompile(`\{#([^{}]+)\}`)
	loopCloseRe   = regexp.MustCompile(`\{/([^{}]+)\}`)

	paragraphRe = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>`)
	textRe      = regexp.MustCompile(`(?s)<w:t(?:\s[^>]*)?>(.*?)</w:t>`)
)

// validateTokens scans the document part for placeholder problems before any
// substitution happens. Tokens are discovered on the run-merged text of each
// paragraph, not on raw text nodes, so a token fragmented by the authoring
// tool is still recognized and reported as split instead of silently ignored.
func validateTokens(doc string) error {
	for _, para := range paragraphRe.FindAllString(doc, -1) {
		texts := []string{}
		for _, m := range textRe.FindAllStringSubmatch(para, -1) {
			texts = append(texts, m[1])
		}
		if len(texts) == 0 {
			continue
		}
		joined := strings.Join(texts, "")

		// Tokens visible in the merged text but absent from any single text
		// node were split across runs.
		whole := map[string]int{}
		for _, t := range texts {
			for _, tok := range anyTokenRe.FindAllString(t, -1) {
				whole[tok]++
			}
		}
		for _, tok := range anyTokenRe.FindAllString(joined, -1) {
			if whole[tok] == 0 {
				return &SyntaxError{
					Token: tok,
					Reason: "the placeholder is split across multiple formatting runs; " +
						"retype it in the template as one continuous string without changing formatting mid-token",
				}
			}
			whole[tok]--
		}

		// Anything left that looks like the start or end of a token is
		// malformed (unterminated braces, stray delimiters).
		residual := anyTokenRe.ReplaceAllString(joined, "")
		for _, frag := range []string{"{{", "}}", "{#", "{/", "{%"} {
			if strings.Contains(residual, frag) {
				return &SyntaxError{
					Token:  frag,
					Reason: "malformed or unterminated placeholder near " + snippet(residual, frag),
				}
			}
		}
	}

	return validateLoopPairs(doc)
}

// validateLoopPairs checks that every {#name} has a matching {/name} after it
// and that blocks do not interleave.
func validateLoopPairs(doc string) error {
	texts := []string{}
	for _, m := range textRe.FindAllStringSubmatch(doc, -1) {
		texts = append(texts, m[1])
	}
	joined := strings.Join(texts, "")

	var stack []string
	for _, tok := range anyTokenRe.FindAllString(joined, -1) {
		if m := loopOpenRe.FindStringSubmatch(tok); m != nil {
			stack = append(stack, m[1])
			continue
		}
		if m := loopCloseRe.FindStringSubmatch(tok); m != nil {
			if len(stack) == 0 || stack[len(stack)-1] != m[1] {
				return &SyntaxError{
					Token:  tok,
					Reason: "loop end without a matching {#" + m[1] + "} before it",
				}
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		return &SyntaxError{
			Token:  "{#" + stack[len(stack)-1] + "}",
			Reason: "loop block is never closed; add {/" + stack[len(stack)-1] + "}",
		}
	}
	return nil
}

func snippet(s, frag string) string {
	i := strings.Index(s, frag)
	if i < 0 {
		return frag
	}
	end := i + 30
	if end > len(s) {
		end = len(s)
	}
	return "\"" + s[i:end] + "\""
}
