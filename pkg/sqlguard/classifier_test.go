package sqlguard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		kind     Kind
		keywords []DangerKeyword
	}{
		{
			name:     "plain select",
			sql:      "SELECT id, name FROM customers",
			kind:     KindSelect,
			keywords: []DangerKeyword{},
		},
		{
			name:     "leading whitespace and lowercase",
			sql:      "  \n select * from orders",
			kind:     KindSelect,
			keywords: []DangerKeyword{},
		},
		{
			name:     "delete",
			sql:      "DELETE FROM orders WHERE status = 'cancelled'",
			kind:     KindNonSelect,
			keywords: []DangerKeyword{KeywordDelete},
		},
		{
			name:     "lowercase drop",
			sql:      "drop table logs",
			kind:     KindNonSelect,
			keywords: []DangerKeyword{KeywordDrop},
		},
		{
			name:     "select with column named updated_at",
			sql:      "SELECT updated_at FROM users",
			kind:     KindSelect,
			keywords: []DangerKeyword{KeywordUpdate},
		},
		{
			name:     "multiple keywords keep scan order",
			sql:      "UPDATE t SET a = 1; ALTER TABLE t DROP COLUMN b",
			kind:     KindNonSelect,
			keywords: []DangerKeyword{KeywordDrop, KeywordAlter, KeywordUpdate},
		},
		{
			name:     "insert is not dangerous",
			sql:      "INSERT INTO logs (msg) VALUES ('hi')",
			kind:     KindNonSelect,
			keywords: []DangerKeyword{},
		},
		{
			name:     "truncate",
			sql:      "truncate table sessions",
			kind:     KindNonSelect,
			keywords: []DangerKeyword{KeywordTruncate},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := Classify(tt.sql)
			assert.Equal(t, tt.sql, stmt.Text)
			assert.Equal(t, tt.kind, stmt.Kind)
			assert.Equal(t, tt.keywords, stmt.DangerKeywords)
			assert.Equal(t, len(tt.keywords) > 0, stmt.IsDangerous())
		})
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	for _, sql := range []string{
		"SELECT 1",
		"DELETE FROM a WHERE b = 1",
		"ALTER TABLE x ADD COLUMN y INT",
		"",
	} {
		assert.Equal(t, Classify(sql), Classify(sql), sql)
	}
}

func TestClassifyFlagsEveryKeywordInAnyCase(t *testing.T) {
	for _, kw := range DangerKeywords {
		for _, variant := range []string{string(kw), strings.ToLower(string(kw)), "x" + strings.ToLower(string(kw)) + "y"} {
			stmt := Classify("SELECT " + variant)
			require.True(t, stmt.IsDangerous(), variant)
			assert.Contains(t, stmt.DangerKeywords, kw)
		}
	}
}

func TestStatementImpacts(t *testing.T) {
	stmt := Classify("DROP TABLE users; DELETE FROM logs")
	assert.Equal(t, []string{
		"This will permanently delete a database or table",
		"This will remove records from a table",
	}, stmt.Impacts())
}

func TestBuildPreview(t *testing.T) {
	t.Run("delete with condition", func(t *testing.T) {
		preview := BuildPreview("DELETE FROM orders WHERE status = 'cancelled'")
		assert.Equal(t, []string{"Action", "Table", "Condition", "Impact"}, preview.Columns)
		require.Len(t, preview.Data, 1)
		assert.Equal(t, []string{"DELETE", "ORDERS", "status = 'cancelled'", "Removes record(s) permanently"}, preview.Data[0])
	})

	t.Run("delete without where", func(t *testing.T) {
		preview := BuildPreview("delete from audit_log")
		assert.Equal(t, []string{"DELETE", "AUDIT_LOG", "-", "Removes record(s) permanently"}, preview.Data[0])
	})

	t.Run("lowercase where keeps original case", func(t *testing.T) {
		preview := BuildPreview("delete from Users where Name = 'Bob'")
		assert.Equal(t, "Name = 'Bob'", preview.Data[0][2])
	})

	t.Run("other dangerous kinds use placeholders", func(t *testing.T) {
		for _, sql := range []string{"DROP TABLE logs", "UPDATE users SET a = 1 WHERE id = 2", "TRUNCATE t", "ALTER TABLE t ADD c INT"} {
			preview := BuildPreview(sql)
			assert.Equal(t, []string{"UNKNOWN", "-", "-", "Removes record(s) permanently"}, preview.Data[0], sql)
		}
	})
}
