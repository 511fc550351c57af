package constants

// SQL generation prompt. Placeholders are filled by llm.BuildPrompt in order:
// dialect, dialect, extra rules, schema, chat history, question.
const SQLGenerationPrompt = `
You are a %s expert. Given the schema and chat history,
generate a SINGLE valid %s statement (DDL, DML, DCL, TCL, or queries with JOINS/CONSTRAINTS/TRIGGERS).

IMPORTANT RULES:
1. When using aggregate functions (AVG, SUM, COUNT, MAX, MIN), you MUST include a GROUP BY clause for any non-aggregated columns in SELECT
2. If you select both aggregated and non-aggregated columns, GROUP BY the non-aggregated ones
3. Include only the SQL; no explanations, markdown, or extra text
%s
Schema:
%s

Chat History (recent context):
%s

User Question:
%s

Your response must contain ONLY the SQL statement. Do NOT add any extra text, commentary, or code formatting like ` + "```sql." + `
`

// Rules 4 and 5 differ per dialect.
const (
	MySQLGroupByRules = `4. Ensure the query is compatible with sql_mode=only_full_group_by
5. For aggregate queries, structure should be: SELECT column, AGG_FUNC(column) FROM table GROUP BY column
`
	GenericGroupByRules = `4. Every non-aggregated column in SELECT, HAVING and ORDER BY must appear in GROUP BY
5. For aggregate queries, structure should be: SELECT column, AGG_FUNC(column) FROM table GROUP BY column
`
)

const (
	HumanRoleLabel = "Human"
	AIRoleLabel    = "AI"

	// Only this many recent chat messages reach the prompt.
	ChatHistoryLimit = 5
)
