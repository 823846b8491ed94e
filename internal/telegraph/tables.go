package telegraph

import (
	"regexp"
	"strings"
)

// CellSeparator joins the cells of a flattened table row.
const CellSeparator = " | "

var (
	tablePattern = regexp.MustCompile(`(?s)<table.*?>(.+?)</table>`)
	rowPattern   = regexp.MustCompile(`(?s)<tr.*?>(.*?)</tr>`)
	cellPattern  = regexp.MustCompile(`(?s)<t[hd].*?>(.*?)</t[hd]>`)
	tagPattern   = regexp.MustCompile(`<[^>]+>`)
)

// FlattenTables replaces every <table> with one paragraph per row, since
// Telegraph has no table support. Cell text is stripped of markup and joined
// with CellSeparator; rows without cells are dropped. Nested tables are not
// supported.
func FlattenTables(fragment string) string {
	return tablePattern.ReplaceAllStringFunc(fragment, func(table string) string {
		inner := tablePattern.FindStringSubmatch(table)[1]

		var out strings.Builder
		for _, row := range rowPattern.FindAllStringSubmatch(inner, -1) {
			cells := cellPattern.FindAllStringSubmatch(row[1], -1)
			if len(cells) == 0 {
				continue
			}
			texts := make([]string, 0, len(cells))
			for _, cell := range cells {
				texts = append(texts, strings.TrimSpace(tagPattern.ReplaceAllString(cell[1], "")))
			}
			out.WriteString("<p>")
			out.WriteString(strings.Join(texts, CellSeparator))
			out.WriteString("</p>")
		}
		return out.String()
	})
}
