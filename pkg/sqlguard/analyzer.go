package sqlguard

import (
	"fmt"
	"strings"

	"github.com/pingcap/tidb/parser"
	"github.com/pingcap/tidb/parser/ast"
	_ "github.com/pingcap/tidb/parser/test_driver"
)

// Analysis is parser-derived metadata about a statement. It never feeds the
// danger decision, which stays lexical in Classify.
type Analysis struct {
	StatementType string   `json:"statement_type"`
	Tables        []string `json:"tables,omitempty"`
}

// Analyzer wraps the TiDB parser. A parser.Parser is not safe for concurrent
// use, so every call builds its own.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze parses the first statement in sql and reports its type and the
// tables it references, in order of first appearance.
func (a *Analyzer) Analyze(sql string) (*Analysis, error) {
	stmts, _, err := parser.New().Parse(sql, "", "")
	if err != nil {
		return nil, fmt.Errorf("failed to parse statement: %w", err)
	}
	if len(stmts) == 0 {
		return nil, fmt.Errorf("no statement found")
	}

	stmt := stmts[0]
	collector := &tableCollector{seen: make(map[string]bool)}
	stmt.Accept(collector)

	return &Analysis{
		StatementType: statementType(stmt),
		Tables:        collector.tables,
	}, nil
}

func statementType(stmt ast.StmtNode) string {
	switch s := stmt.(type) {
	case *ast.SelectStmt, *ast.SetOprStmt:
		return "SELECT"
	case *ast.InsertStmt:
		if s.IsReplace {
			return "REPLACE"
		}
		return "INSERT"
	case *ast.UpdateStmt:
		return "UPDATE"
	case *ast.DeleteStmt:
		return "DELETE"
	case *ast.DropTableStmt:
		if s.IsView {
			return "DROP VIEW"
		}
		return "DROP TABLE"
	case *ast.DropDatabaseStmt:
		return "DROP DATABASE"
	case *ast.TruncateTableStmt:
		return "TRUNCATE"
	case *ast.AlterTableStmt:
		return "ALTER TABLE"
	case *ast.CreateTableStmt:
		return "CREATE TABLE"
	case *ast.ShowStmt:
		return "SHOW"
	case *ast.ExplainStmt:
		return "EXPLAIN"
	default:
		return "OTHER"
	}
}

type tableCollector struct {
	tables []string
	seen   map[string]bool
}

func (c *tableCollector) Enter(in ast.Node) (ast.Node, bool) {
	if tn, ok := in.(*ast.TableName); ok {
		name := tn.Name.O
		if tn.Schema.O != "" {
			name = tn.Schema.O + "." + name
		}
		key := strings.ToLower(name)
		if name != "" && !c.seen[key] {
			c.seen[key] = true
			c.tables = append(c.tables, name)
		}
	}
	return in, false
}

func (c *tableCollector) Leave(in ast.Node) (ast.Node, bool) {
	return in, true
}
