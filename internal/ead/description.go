package ead

import (
	"regexp"
	"strings"

	"github.com/a3tai/ead-extract/internal/layout"
	"github.com/a3tai/ead-extract/internal/section"
	"github.com/a3tai/ead-extract/internal/textnorm"
)

var (
	descriptionStarts = []*regexp.Regexp{
		section.MustCompile(`descrierea marfurilor\s*\[\s*18\s*0?5\s*\]`),
		section.MustCompile(`descrierea marfurilor`),
	}
	descriptionStopper    = section.MustCompile(`(?m)^[ \t]*(?:expeditor|destinatar|tipul si nr\.|cod cus|cod onu|cod(?:ul)? (?:de )?nomenclatura|unitati suplim\.|tara exportatoare|tara de destinatie|masa bruta|masa neta|valoare|regim|reg\.)`)
	descriptionNeighbours = section.MustCompile(`tipul si nr\.|cod cus|cod onu|\[\s*18\s*0?[678]\s*\]`)

	leadingCode   = regexp.MustCompile(`^\s*\[\s*\d{1,2}\s*\d{2}\s*\]\s*`)
	articleNumber = regexp.MustCompile(`^\s*\d+\s+(\S.*)$`)
	spacedHyphen  = regexp.MustCompile(`(\pL)(?:\s+-\s*|-\s+)(\pL)`)
	bareFieldCode = regexp.MustCompile(`^\s*(?:\[\s*\d{1,2}\s*\d{2}\s*\]\s*)+$`)
)

// Description returns the goods description of box [18 05].
func Description(doc *layout.Document) (string, bool) {
	return newCorpus(doc).description()
}

func (c *corpus) description() (string, bool) {
	for _, start := range descriptionStarts {
		span, ok := section.Locate(c.text, start, descriptionStopper)
		if !ok {
			continue
		}
		hdr := c.lineAt(span.Start)
		if hdr >= len(c.lines) {
			return "", false
		}
		col := fullWidth
		if loc := start.FindStringIndex(c.fold(hdr)); loc != nil {
			col = c.headerColumn(hdr, loc[0], loc[1], descriptionNeighbours)
		}
		end := c.lineAt(span.End)

		var parts []string
		if tail := descriptionLine(c.cell(hdr, span.Start-c.starts[hdr], col)); tail != "" {
			parts = append(parts, tail)
		}
		for i := hdr + 1; i < end; i++ {
			raw := c.cell(i, 0, col)
			if strings.TrimSpace(raw) == "" {
				if len(parts) > 0 {
					break
				}
				continue
			}
			if descriptionStopper.MatchString(textnorm.Fold(raw).Text) {
				break
			}
			if len(parts) == 0 && bareFieldCode.MatchString(raw) {
				continue
			}
			if s := descriptionLine(raw); s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) == 0 {
			return "", false
		}
		return normalizeHyphens(textnorm.CollapseSpaces(strings.Join(parts, " "))), true
	}
	return "", false
}

// descriptionLine cleans one collected line: field code prefix, article
// number and any trailing neighbour header are removed.
func descriptionLine(raw string) string {
	s := leadingCode.ReplaceAllString(raw, "")
	if m := articleNumber.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	f := textnorm.Fold(s)
	if loc := descriptionNeighbours.FindStringIndex(f.Text); loc != nil {
		s = f.Original(0, loc[0])
	}
	if bareFieldCode.MatchString(s) {
		return ""
	}
	return strings.TrimSpace(s)
}

// normalizeHyphens joins words split around a hyphen by layout spacing.
func normalizeHyphens(s string) string {
	for {
		next := spacedHyphen.ReplaceAllString(s, "$1-$2")
		if next == s {
			return s
		}
		s = next
	}
}
