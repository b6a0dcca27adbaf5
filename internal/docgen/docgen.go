// Package docgen merges data bindings into zip-packaged word-processing
// templates. Templates carry {{key}} scalar tokens, {#name}...{/name} loop
// blocks (typically spanning table rows) and {%key} image tokens; rendering
// produces a complete new package with all tokens resolved.
//
// Rendering is stateless per call and safe for concurrent use.
package docgen

import (
	"sort"
	"strings"
)

// Render substitutes binding values into the template package and returns the
// rendered package bytes. It fails with *LoadError when the template is not a
// readable package and with *SyntaxError when a placeholder is malformed or
// split across formatting runs. Keys with no binding entry resolve to the
// empty string.
func Render(template []byte, b Binding) ([]byte, error) {
	arch, err := openArchive(template)
	if err != nil {
		return nil, err
	}

	data, _ := arch.get(documentPart)
	doc := string(data)

	if err := validateTokens(doc); err != nil {
		return nil, err
	}

	r := newRenderer(arch)

	doc, err = r.expandLoops(doc, b)
	if err != nil {
		return nil, err
	}
	doc = r.substituteScalars(doc, func(key string) string {
		return b.Fields[key]
	})
	doc = r.substituteImages(doc, func(key string) Image {
		return b.Images[key]
	})

	arch.set(documentPart, []byte(doc))
	if err := r.flushMedia(); err != nil {
		return nil, err
	}

	return arch.bytes()
}

type span struct {
	start, end int
}

// expandLoops replaces every loop block with one clone of its row template
// per binding row, preserving row order. The structural units holding the
// delimiters (table row, else paragraph) are removed; with both delimiters in
// the same unit the block expands inline instead.
func (r *renderer) expandLoops(doc string, b Binding) (string, error) {
	for {
		m := loopOpenRe.FindStringSubmatchIndex(doc)
		if m == nil {
			return doc, nil
		}
		name := strings.TrimSpace(doc[m[2]:m[3]])
		openTok := span{m[0], m[1]}

		closeStr := "{/" + doc[m[2]:m[3]] + "}"
		ci := strings.Index(doc[openTok.end:], closeStr)
		if ci < 0 {
			return "", &SyntaxError{
				Token:  doc[openTok.start:openTok.end],
				Reason: "loop block is never closed; add " + closeStr,
			}
		}
		closeTok := span{openTok.end + ci, openTok.end + ci + len(closeStr)}

		openUnit := unitAround(doc, openTok)
		closeUnit := unitAround(doc, closeTok)

		var region span
		var rowTemplate string
		if openUnit == closeUnit {
			region = span{openTok.start, closeTok.end}
			rowTemplate = doc[openTok.end:closeTok.start]
		} else {
			region = span{openUnit.start, closeUnit.end}
			rowTemplate = doc[openUnit.end:closeUnit.start]
		}

		var sb strings.Builder
		for _, row := range b.Rows[name] {
			sb.WriteString(r.renderRow(rowTemplate, row, b))
		}

		doc = doc[:region.start] + sb.String() + doc[region.end:]
	}
}

func (r *renderer) renderRow(tmpl string, row Row, b Binding) string {
	out := r.substituteScalars(tmpl, func(key string) string {
		if v, ok := row.Values[key]; ok {
			return v
		}
		return b.Fields[key]
	})
	return r.substituteImages(out, func(key string) Image {
		if img, ok := row.Images[key]; ok {
			return img
		}
		return b.Images[key]
	})
}

func (r *renderer) substituteScalars(s string, lookup func(string) string) string {
	return scalarTokenRe.ReplaceAllStringFunc(s, func(tok string) string {
		key := strings.TrimSpace(tok[2 : len(tok)-2])
		return escapeValue(lookup(key))
	})
}

// substituteImages resolves each {%key} token in place: the token text is
// replaced by an inline drawing referencing a freshly registered media part,
// so text sharing the token's run survives. Empty payloads (and payloads that
// are not a supported image format) drop only the token.
func (r *renderer) substituteImages(s string, lookup func(string) Image) string {
	for {
		m := imageTokenRe.FindStringSubmatchIndex(s)
		if m == nil {
			return s
		}
		key := strings.TrimSpace(s[m[2]:m[3]])

		frag := ""
		if img := lookup(key); len(img.Data) > 0 {
			if drawing, ok := r.registerImage(img.Data); ok {
				frag = drawing
			}
		}

		replacement := frag
		if frag != "" {
			if _, ok := enclosingElement(s, m[0], "w:t"); ok {
				// A drawing cannot sit inside a text node. Close the token's
				// text and run around it so text on either side of the token
				// keeps rendering in runs of its own.
				replacement = `</w:t></w:r>` + frag + `<w:r><w:t xml:space="preserve">`
			}
		}
		s = s[:m[0]] + replacement + s[m[1]:]
	}
}

// unitAround finds the structural unit that owns a token: the innermost table
// row when the token sits in one, otherwise its paragraph, otherwise the token
// itself.
func unitAround(doc string, tok span) span {
	if tr, ok := enclosingElement(doc, tok.start, "w:tr"); ok {
		return tr
	}
	if p, ok := enclosingElement(doc, tok.start, "w:p"); ok {
		return p
	}
	return tok
}

// enclosingElement returns the span of the innermost <tag>...</tag> element
// containing pos. Elements of the same tag may nest (nested tables).
func enclosingElement(doc string, pos int, tag string) (span, bool) {
	openMarker := "<" + tag
	closeMarker := "</" + tag + ">"

	type event struct {
		idx  int
		open bool
	}
	var events []event
	for i := 0; ; {
		j := strings.Index(doc[i:], openMarker)
		if j < 0 {
			break
		}
		at := i + j
		after := at + len(openMarker)
		// Reject prefix matches like <w:pPr for <w:p and self-closing tags.
		if after < len(doc) && (doc[after] == ' ' || doc[after] == '>') {
			events = append(events, event{idx: at, open: true})
		}
		i = after
	}
	for i := 0; ; {
		j := strings.Index(doc[i:], closeMarker)
		if j < 0 {
			break
		}
		events = append(events, event{idx: i + j, open: false})
		i = i + j + len(closeMarker)
	}
	sort.Slice(events, func(a, b int) bool { return events[a].idx < events[b].idx })

	var stack []int
	for _, ev := range events {
		if ev.open {
			stack = append(stack, ev.idx)
			continue
		}
		if len(stack) == 0 {
			continue
		}
		start := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		end := ev.idx + len(closeMarker)
		// The first closed pair containing pos is the innermost one.
		if start <= pos && pos < end {
			return span{start, end}, true
		}
	}
	return span{}, false
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// escapeValue XML-escapes a bound value. Newlines become run breaks so
// multi-line details render as authored.
func escapeValue(v string) string {
	if !strings.Contains(v, "\n") {
		return xmlEscaper.Replace(v)
	}
	lines := strings.Split(strings.ReplaceAll(v, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = xmlEscaper.Replace(line)
	}
	return strings.Join(lines, `</w:t><w:br/><w:t xml:space="preserve">`)
}
