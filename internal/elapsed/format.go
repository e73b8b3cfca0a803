package elapsed

import (
	"strconv"
	"strings"
)

// FormatDuration renders the calendar part of b in Portuguese, e.g.
// "1 ano, 2 meses e 3 dias". An empty span renders as "0 dias".
func FormatDuration(b Breakdown) string {
	var parts []string
	if b.Years > 0 {
		parts = append(parts, plural(b.Years, "ano", "anos"))
	}
	if b.Months > 0 {
		parts = append(parts, plural(b.Months, "mês", "meses"))
	}
	if b.Days > 0 || len(parts) == 0 {
		parts = append(parts, plural(b.Days, "dia", "dias"))
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " e " + parts[len(parts)-1]
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return strconv.Itoa(n) + " " + many
}
