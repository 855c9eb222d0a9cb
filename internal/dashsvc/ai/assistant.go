package ai

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/chestergarett/twba/internal/dashsvc/models"
	"github.com/chestergarett/twba/internal/dashsvc/query"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrNotConfigured is returned when no OpenAI API key was provided; the
// Ask AI feature is simply off in that case.
var ErrNotConfigured = errors.New("ask ai is not configured: OPENAI_API_KEY is missing")

// ErrInvalidSQL marks a generated statement the SELECT validator refused.
// The caller should treat it as a bad question, not an upstream failure.
var ErrInvalidSQL = errors.New("generated SQL failed validation")

const systemPrompt = "You are a SQL expert that generates PostgreSQL queries from natural language questions. " +
	"Always wrap uppercase column names in double quotes (e.g., \"InteractionID\") and use LOWER() " +
	"function for case-insensitive value comparisons in WHERE clauses (e.g., WHERE LOWER(column) = LOWER('value'))."

// Runner executes a validated SELECT.
type Runner interface {
	Run(ctx context.Context, sql string) (*models.QueryResult, error)
}

type Assistant struct {
	client *openai.Client
	runner Runner
}

// New builds an Assistant; with an empty apiKey the assistant is disabled
// and Ask returns ErrNotConfigured.
func New(apiKey string, runner Runner) *Assistant {
	a := &Assistant{runner: runner}
	if apiKey != "" {
		c := openai.NewClient(option.WithAPIKey(apiKey))
		a.client = &c
	}
	return a
}

func (a *Assistant) Enabled() bool {
	return a.client != nil
}

// Ask turns a natural language question into SQL, validates it as a
// SELECT, executes it and returns both the SQL and its result.
func (a *Assistant) Ask(ctx context.Context, question string) (string, *models.QueryResult, error) {
	if !a.Enabled() {
		return "", nil, ErrNotConfigured
	}
	if strings.TrimSpace(question) == "" {
		return "", nil, fmt.Errorf("question is empty")
	}

	sql, err := a.generateSQL(ctx, question)
	if err != nil {
		return "", nil, err
	}

	if err := query.ValidateSelect(sql); err != nil {
		return sql, nil, fmt.Errorf("%w: %v", ErrInvalidSQL, err)
	}

	result, err := a.runner.Run(ctx, sql)
	if err != nil {
		return sql, nil, err
	}

	return sql, result, nil
}

func (a *Assistant) generateSQL(ctx context.Context, question string) (string, error) {
	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModelGPT4oMini,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildPrompt(question)),
		},
		Temperature: openai.Float(0.1),
		MaxTokens:   openai.Int(500),
	})
	if err != nil {
		return "", fmt.Errorf("error generating SQL: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("error generating SQL: empty completion")
	}

	sql := ExtractSQL(resp.Choices[0].Message.Content)
	if sql == "" {
		return "", fmt.Errorf("model returned no SQL, try rephrasing the question")
	}

	return sql, nil
}

func buildPrompt(question string) string {
	return fmt.Sprintf(`Given a database schema and a natural language question, generate a PostgreSQL SELECT query.

%s

Question: %s

Instructions:
1. Generate ONLY a valid PostgreSQL SELECT query
2. Do not include any explanations, markdown, or code blocks
3. Always include a reasonable LIMIT clause (e.g., LIMIT 100) unless the question specifically asks for all records
4. Use proper JOINs when querying multiple tables
5. Use appropriate aggregate functions (COUNT, SUM, AVG, etc.) when needed
6. Format dates properly using PostgreSQL date functions
7. IMPORTANT: For PostgreSQL column names that contain uppercase letters, wrap them in double quotes (e.g., "InteractionID", "brandName")
8. IMPORTANT: When filtering by specific values in WHERE clauses, always use LOWER() function for case-insensitive matching
9. Return ONLY the SQL query, nothing else

SQL Query:`, databaseSchema, question)
}

var (
	sqlFenceOpen = regexp.MustCompile("```sql\\s*")
	fence        = regexp.MustCompile("```\\s*")
)

// ExtractSQL strips markdown code fences the model sometimes wraps the
// query in despite the instructions.
func ExtractSQL(content string) string {
	s := sqlFenceOpen.ReplaceAllString(content, "")
	s = fence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
