package sqlguard

import (
	"regexp"
	"strings"
)

// Kind separates statements that return rows from statements that change state.
type Kind int

const (
	KindSelect Kind = iota
	KindNonSelect
)

func (k Kind) String() string {
	if k == KindSelect {
		return "select"
	}
	return "non_select"
}

// DangerKeyword is one of the keywords that force a confirmation round-trip.
type DangerKeyword string

const (
	KeywordDrop     DangerKeyword = "DROP"
	KeywordTruncate DangerKeyword = "TRUNCATE"
	KeywordDelete   DangerKeyword = "DELETE"
	KeywordAlter    DangerKeyword = "ALTER"
	KeywordUpdate   DangerKeyword = "UPDATE"
)

// DangerKeywords is the fixed scan order. Reported matches keep this order.
var DangerKeywords = []DangerKeyword{
	KeywordDrop,
	KeywordTruncate,
	KeywordDelete,
	KeywordAlter,
	KeywordUpdate,
}

var keywordImpacts = map[DangerKeyword]string{
	KeywordDrop:     "This will permanently delete a database or table",
	KeywordTruncate: "This will remove ALL rows from a table instantly",
	KeywordDelete:   "This will remove records from a table",
	KeywordAlter:    "This will change the table structure",
	KeywordUpdate:   "This will modify existing data in the table",
}

// Impact describes what executing a statement containing the keyword does.
func (k DangerKeyword) Impact() string {
	return keywordImpacts[k]
}

// Statement is the classification of one generated SQL text.
type Statement struct {
	Text           string
	Kind           Kind
	DangerKeywords []DangerKeyword
}

// IsDangerous reports whether the statement needs explicit confirmation.
func (s Statement) IsDangerous() bool {
	return len(s.DangerKeywords) > 0
}

// Impacts lists the impact text of every matched keyword in scan order.
func (s Statement) Impacts() []string {
	impacts := make([]string, 0, len(s.DangerKeywords))
	for _, kw := range s.DangerKeywords {
		impacts = append(impacts, kw.Impact())
	}
	return impacts
}

// Classify is a pure lexical classification. Danger keywords are matched as
// substrings of the uppercased text, so identifiers such as "updated_at" match
// UPDATE. That over-approximation is intentional and must not be narrowed.
func Classify(sql string) Statement {
	upper := strings.ToUpper(sql)

	stmt := Statement{
		Text:           sql,
		Kind:           KindNonSelect,
		DangerKeywords: []DangerKeyword{},
	}
	if strings.HasPrefix(strings.TrimSpace(upper), "SELECT") {
		stmt.Kind = KindSelect
	}
	for _, kw := range DangerKeywords {
		if strings.Contains(upper, string(kw)) {
			stmt.DangerKeywords = append(stmt.DangerKeywords, kw)
		}
	}
	return stmt
}

// PreviewColumns is the fixed header of every preview table.
var PreviewColumns = []string{"Action", "Table", "Condition", "Impact"}

const (
	previewPlaceholder = "-"
	previewUnknown     = "UNKNOWN"
	previewImpact      = "Removes record(s) permanently"
)

var (
	fromTablePattern = regexp.MustCompile(`FROM\s+(\w+)`)
	wherePattern     = regexp.MustCompile(`(?i)WHERE\s+(.+)`)
)

// TablePreview is a one-row tabular summary of a dangerous statement.
type TablePreview struct {
	Columns []string   `json:"columns"`
	Data    [][]string `json:"data"`
}

// BuildPreview summarizes a statement for the confirmation prompt. Only DELETE
// statements get table and condition extraction, the rest report UNKNOWN.
func BuildPreview(sql string) TablePreview {
	action := previewUnknown
	table := previewPlaceholder
	condition := previewPlaceholder

	upper := strings.ToUpper(strings.TrimSpace(sql))
	if strings.HasPrefix(upper, "DELETE") {
		action = string(KeywordDelete)
		if m := fromTablePattern.FindStringSubmatch(upper); m != nil {
			table = m[1]
		}
		if m := wherePattern.FindStringSubmatch(sql); m != nil {
			condition = m[1]
		}
	}

	return TablePreview{
		Columns: append([]string(nil), PreviewColumns...),
		Data:    [][]string{{action, table, condition, previewImpact}},
	}
}
