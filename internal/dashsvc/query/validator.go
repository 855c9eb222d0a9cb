package query

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	lineComment  = regexp.MustCompile(`(?m)--.*$`)
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// dangerousKeywords are rejected anywhere in the statement, not just at
// the front, so stacked statements cannot smuggle a mutation in.
var dangerousKeywords = []string{
	"DROP",
	"DELETE",
	"INSERT",
	"UPDATE",
	"ALTER",
	"CREATE",
	"TRUNCATE",
	"EXEC",
	"EXECUTE",
}

// ValidateSelect checks that the statement is a plain SELECT. Comments are
// stripped before inspection so a keyword cannot hide behind them.
func ValidateSelect(sql string) error {
	clean := lineComment.ReplaceAllString(sql, "")
	clean = blockComment.ReplaceAllString(clean, "")
	clean = strings.Join(strings.Fields(clean), " ")

	if clean == "" {
		return fmt.Errorf("query is empty")
	}

	upper := strings.ToUpper(clean)
	if !strings.HasPrefix(upper, "SELECT") {
		return fmt.Errorf("only SELECT queries are allowed")
	}

	for _, kw := range dangerousKeywords {
		if strings.Contains(upper, " "+kw+" ") || strings.HasPrefix(upper, kw+" ") {
			return fmt.Errorf("query contains forbidden keyword: %s", kw)
		}
	}

	return nil
}
