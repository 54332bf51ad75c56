// Package sqlguard validates candidate SQL before it reaches the
// query engine. It is a pattern-based guard, not a SQL parser: a
// defense-in-depth layer on top of the engine's own read-only
// connection.
package sqlguard

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	apperrors "github.com/Ziolli/Case-Indicium/internal/errors"
	"github.com/Ziolli/Case-Indicium/internal/observability"
)

// Executor runs one validated SELECT statement and returns column
// names plus rows.
type Executor interface {
	Execute(ctx context.Context, sql string) ([]string, [][]interface{}, error)
}

// GuardedQuery pairs a candidate statement with its validation
// outcome. Never mutated after validation.
type GuardedQuery struct {
	Input    string
	SQL      string
	Accepted bool
	Reason   string
	RowCap   int
}

var forbiddenKeywords = []string{
	"insert", "update", "delete", "merge", "create", "drop", "alter",
	"truncate", "attach", "detach", "copy", "replace", "grant", "revoke",
}

var (
	selectRe = regexp.MustCompile(`(?i)^\s*select\b`)
	limitRe  = regexp.MustCompile(`(?i)\blimit\s+(\d+)\b`)
	tableRe  = regexp.MustCompile(`(?i)\b(?:from|join)\s+("?[a-zA-Z_][a-zA-Z0-9_.]*"?)`)
)

func keywordRe(kw string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + kw + `\b`)
}

var forbiddenRes = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(forbiddenKeywords))
	for i, kw := range forbiddenKeywords {
		res[i] = keywordRe(kw)
	}
	return res
}()

// Guard validates and executes candidate statements.
type Guard struct {
	allowedTables map[string]bool
	maxRows       int
	executor      Executor
	logger        *observability.Logger
}

// NewGuard creates a guard over the given table allowlist.
func NewGuard(allowedTables []string, maxRows int, executor Executor) *Guard {
	allowed := make(map[string]bool, len(allowedTables))
	for _, t := range allowedTables {
		allowed[strings.ToLower(t)] = true
	}
	return &Guard{
		allowedTables: allowed,
		maxRows:       maxRows,
		executor:      executor,
		logger:        observability.NewLogger("sqlguard"),
	}
}

// Validate runs the gate pipeline over a candidate statement. Each
// gate fails fast with a specific reason. The only permitted rewrite
// is injecting or clamping the LIMIT clause.
func (g *Guard) Validate(input string) GuardedQuery {
	q := GuardedQuery{Input: input, RowCap: g.maxRows}

	sql := strings.TrimSpace(input)
	sql = strings.TrimRight(sql, ";")
	sql = strings.TrimSpace(sql)

	if !selectRe.MatchString(sql) {
		q.Reason = apperrors.NewNotSelectError().Error()
		return q
	}

	for i, re := range forbiddenRes {
		if re.MatchString(sql) {
			q.Reason = apperrors.NewForbiddenKeywordError(forbiddenKeywords[i]).Error()
			return q
		}
	}

	if reason := g.checkTables(sql); reason != "" {
		q.Reason = reason
		return q
	}

	sql = g.enforceLimit(sql)

	q.SQL = sql
	q.Accepted = true
	return q
}

// checkTables scans every FROM/JOIN target against the allowlist.
// Quoted identifiers are rejected outright since the token scan cannot
// resolve them reliably. Derived tables ("FROM (SELECT ...)") carry no
// identifier token and are covered by the scan of their inner FROM.
func (g *Guard) checkTables(sql string) string {
	for _, m := range tableRe.FindAllStringSubmatch(sql, -1) {
		name := m[1]
		if strings.Contains(name, `"`) {
			return apperrors.NewTableNotAllowedError(name).Error()
		}
		if !g.allowedTables[strings.ToLower(name)] {
			return apperrors.NewTableNotAllowedError(name).Error()
		}
	}
	return ""
}

// enforceLimit clamps an existing LIMIT to maxRows or appends one.
func (g *Guard) enforceLimit(sql string) string {
	if m := limitRe.FindStringSubmatch(sql); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n > g.maxRows {
			observability.GetGlobalMetrics().Inc(observability.MetricGuardLimitClamp, nil)
			return limitRe.ReplaceAllString(sql, fmt.Sprintf("LIMIT %d", g.maxRows))
		}
		return sql
	}
	return sql + fmt.Sprintf(" LIMIT %d", g.maxRows)
}

// ExecuteSafe validates the statement and, when accepted, runs it on
// the read-only engine. Engine errors surface as typed failures, never
// as a silent empty result.
func (g *Guard) ExecuteSafe(ctx context.Context, input string) (GuardedQuery, []string, [][]interface{}, error) {
	q := g.Validate(input)
	if !q.Accepted {
		observability.GetGlobalMetrics().Inc(observability.MetricGuardRejections, nil)
		g.logger.Warn(ctx, "statement rejected", map[string]interface{}{
			"reason": q.Reason,
		})
		return q, nil, nil, apperrors.New(apperrors.ErrCodeGuardRejection, q.Reason)
	}

	cols, rows, err := g.executor.Execute(ctx, q.SQL)
	if err != nil {
		return q, nil, nil, apperrors.NewDatabaseQueryError(err, "guarded select")
	}
	return q, cols, rows, nil
}
