package dbmanager

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"query-genie/internal/constants"
)

// SchemaInfo represents database schema information
type SchemaInfo struct {
	Tables map[string]*TableSchema `json:"tables"`
}

type TableSchema struct {
	Name    string       `json:"name"`
	Columns []ColumnInfo `json:"columns"`
}

type ColumnInfo struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	IsNullable   bool   `json:"is_nullable"`
	IsPrimaryKey bool   `json:"is_primary_key"`
	DefaultValue string `json:"default_value,omitempty"`
	Comment      string `json:"comment,omitempty"`
}

// Every query returns table, column, type, nullable ('YES'/'NO'), default,
// comment and a primary key flag, ordered by table then column position.
const (
	mysqlColumnsQuery = `
        SELECT table_name, column_name, column_type, is_nullable, column_default, column_comment,
            column_key = 'PRI'
        FROM information_schema.columns
        WHERE table_schema = DATABASE()
        ORDER BY table_name, ordinal_position`

	postgresColumnsQuery = `
        SELECT c.table_name, c.column_name, c.data_type, c.is_nullable, c.column_default,
            COALESCE(col_description(format('%I.%I', c.table_schema, c.table_name)::regclass, c.ordinal_position), ''),
            EXISTS (
                SELECT 1 FROM information_schema.table_constraints tc
                JOIN information_schema.key_column_usage kcu
                    ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
                WHERE tc.constraint_type = 'PRIMARY KEY'
                AND kcu.table_schema = c.table_schema
                AND kcu.table_name = c.table_name
                AND kcu.column_name = c.column_name
            )
        FROM information_schema.columns c
        JOIN information_schema.tables t
            ON t.table_schema = c.table_schema AND t.table_name = c.table_name
        WHERE c.table_schema = current_schema() AND t.table_type = 'BASE TABLE'
        ORDER BY c.table_name, c.ordinal_position`

	clickhouseColumnsQuery = `
        SELECT table, name, type, if(startsWith(type, 'Nullable'), 'YES', 'NO'), default_expression, comment,
            is_in_primary_key
        FROM system.columns
        WHERE database = currentDatabase()
        ORDER BY table, position`
)

func columnsQuery(dbType string) string {
	switch dbType {
	case constants.DatabaseTypePostgreSQL, constants.DatabaseTypeYugabyteDB:
		return postgresColumnsQuery
	case constants.DatabaseTypeClickhouse:
		return clickhouseColumnsQuery
	default:
		return mysqlColumnsQuery
	}
}

// FetchSchema reads table and column metadata for the connected database.
func FetchSchema(ctx context.Context, db *sql.DB, dbType string) (*SchemaInfo, error) {
	rows, err := db.QueryContext(ctx, columnsQuery(dbType))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schema: %w", err)
	}
	defer rows.Close()

	schema := &SchemaInfo{Tables: make(map[string]*TableSchema)}
	for rows.Next() {
		var (
			table, column, dataType, nullable string
			defaultValue, comment             sql.NullString
			primary                           sql.NullBool
		)
		if err := rows.Scan(&table, &column, &dataType, &nullable, &defaultValue, &comment, &primary); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}

		t, ok := schema.Tables[table]
		if !ok {
			t = &TableSchema{Name: table}
			schema.Tables[table] = t
		}
		t.Columns = append(t.Columns, ColumnInfo{
			Name:         column,
			Type:         dataType,
			IsNullable:   strings.EqualFold(nullable, "YES"),
			IsPrimaryKey: primary.Valid && primary.Bool,
			DefaultValue: defaultValue.String,
			Comment:      comment.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	return schema, nil
}

// FormatSchemaForLLM formats the schema into a LLM-friendly string
func FormatSchemaForLLM(schema *SchemaInfo) string {
	var result strings.Builder
	result.WriteString("Current Database Schema:\n\n")

	if schema == nil || len(schema.Tables) == 0 {
		result.WriteString("(no tables)\n")
		return result.String()
	}

	// Sort tables for consistent output
	tableNames := make([]string, 0, len(schema.Tables))
	for tableName := range schema.Tables {
		tableNames = append(tableNames, tableName)
	}
	sort.Strings(tableNames)

	for _, tableName := range tableNames {
		table := schema.Tables[tableName]
		result.WriteString(fmt.Sprintf("Table: %s\n", tableName))

		for _, column := range table.Columns {
			nullable := "NOT NULL"
			if column.IsNullable {
				nullable = "NULL"
			}
			result.WriteString(fmt.Sprintf("  - %s (%s) %s", column.Name, column.Type, nullable))

			if column.IsPrimaryKey {
				result.WriteString(" PRIMARY KEY")
			}
			if column.DefaultValue != "" {
				result.WriteString(fmt.Sprintf(" DEFAULT %s", column.DefaultValue))
			}
			if column.Comment != "" {
				result.WriteString(fmt.Sprintf(" -- %s", column.Comment))
			}
			result.WriteString("\n")
		}
		result.WriteString("\n")
	}

	return result.String()
}
