package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/alfanzaky/sitecomply/internal/domain"
	"github.com/alfanzaky/sitecomply/pkg/logger"
	"github.com/alfanzaky/sitecomply/pkg/metrics"
)

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Named parameter prefixes keep patch and filter values apart.
const (
	setPrefix   = "set_"
	wherePrefix = "where_"
)

// DefaultTables are the remote tables the app writes to.
var DefaultTables = []string{
	domain.TableAssets,
	domain.TableIncidents,
	domain.TableAccidents,
	domain.TableProfiles,
	domain.TableSiteSettings,
	domain.TableWorkOrders,
	domain.TableMaintenanceLogs,
}

type rowGateway struct {
	db     *sqlx.DB
	tables map[string]bool
}

var _ domain.RowGateway = (*rowGateway)(nil)

// NewRowGateway creates the relational half of the remote gateway. Writes
// to tables outside the allowlist are rejected before any SQL is sent.
func NewRowGateway(db *sqlx.DB, tables ...string) domain.RowGateway {
	if len(tables) == 0 {
		tables = DefaultTables
	}
	allowed := make(map[string]bool, len(tables))
	for _, t := range tables {
		allowed[t] = true
	}
	return &rowGateway{db: db, tables: allowed}
}

func (g *rowGateway) Insert(ctx context.Context, table string, records []domain.Row) (err error) {
	start := time.Now()
	defer func() { metrics.RecordGatewayRequest("insert", table, time.Since(start).Seconds(), err) }()

	if err := g.checkTable(table); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := g.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin insert into %s: %w", table, err)
	}
	defer tx.Rollback()

	for _, row := range records {
		query, args, err := buildInsert(table, row)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, query, args); err != nil {
			logger.Error("Failed to insert row",
				logger.String("table", table),
				logger.ErrorField(err),
			)
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit insert into %s: %w", table, err)
	}

	logger.Debug("Rows inserted",
		logger.String("table", table),
		logger.Int("rows", len(records)),
	)
	return nil
}

func (g *rowGateway) Update(ctx context.Context, table string, patch domain.Row, filter domain.Filter) (err error) {
	start := time.Now()
	defer func() { metrics.RecordGatewayRequest("update", table, time.Since(start).Seconds(), err) }()

	if err := g.checkTable(table); err != nil {
		return err
	}

	query, args, err := buildUpdate(table, patch, filter)
	if err != nil {
		return err
	}

	res, err := g.db.NamedExecContext(ctx, query, args)
	if err != nil {
		logger.Error("Failed to update row",
			logger.String("table", table),
			logger.Any("filter", filter.Value),
			logger.ErrorField(err),
		)
		return fmt.Errorf("failed to update %s: %w", table, err)
	}

	g.logAffected(res, "update", table, filter)
	return nil
}

func (g *rowGateway) Delete(ctx context.Context, table string, filter domain.Filter) (err error) {
	start := time.Now()
	defer func() { metrics.RecordGatewayRequest("delete", table, time.Since(start).Seconds(), err) }()

	if err := g.checkTable(table); err != nil {
		return err
	}

	query, args, err := buildDelete(table, filter)
	if err != nil {
		return err
	}

	res, err := g.db.NamedExecContext(ctx, query, args)
	if err != nil {
		logger.Error("Failed to delete row",
			logger.String("table", table),
			logger.Any("filter", filter.Value),
			logger.ErrorField(err),
		)
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}

	g.logAffected(res, "delete", table, filter)
	return nil
}

// Ping checks the remote database is reachable.
func Ping(ctx context.Context, db *sqlx.DB) error {
	return db.PingContext(ctx)
}

// logAffected notes writes that matched nothing. A replayed update or
// delete whose row is already gone still counts as applied.
func (g *rowGateway) logAffected(res sql.Result, op, table string, filter domain.Filter) {
	n, err := res.RowsAffected()
	if err != nil || n > 0 {
		return
	}
	logger.Warn("Write matched no rows",
		logger.String("operation", op),
		logger.String("table", table),
		logger.String("column", filter.Column),
		logger.Any("value", filter.Value),
	)
}

func (g *rowGateway) checkTable(table string) error {
	if !identifierPattern.MatchString(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	if !g.tables[table] {
		return fmt.Errorf("table %q is not writable", table)
	}
	return nil
}

func buildInsert(table string, row domain.Row) (string, map[string]interface{}, error) {
	if len(row) == 0 {
		return "", nil, fmt.Errorf("insert into %s: empty row", table)
	}

	columns, err := sortedColumns(row)
	if err != nil {
		return "", nil, err
	}

	quoted := make([]string, len(columns))
	params := make([]string, len(columns))
	args := make(map[string]interface{}, len(columns))
	for i, col := range columns {
		quoted[i] = pq.QuoteIdentifier(col)
		params[i] = ":" + col
		v, err := sqlValue(row[col])
		if err != nil {
			return "", nil, fmt.Errorf("insert into %s: column %s: %w", table, col, err)
		}
		args[col] = v
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pq.QuoteIdentifier(table),
		strings.Join(quoted, ", "),
		strings.Join(params, ", "),
	)
	return query, args, nil
}

func buildUpdate(table string, patch domain.Row, filter domain.Filter) (string, map[string]interface{}, error) {
	if len(patch) == 0 {
		return "", nil, fmt.Errorf("update %s: empty patch", table)
	}
	if !identifierPattern.MatchString(filter.Column) {
		return "", nil, fmt.Errorf("update %s: invalid filter column %q", table, filter.Column)
	}

	columns, err := sortedColumns(patch)
	if err != nil {
		return "", nil, err
	}

	sets := make([]string, len(columns))
	args := make(map[string]interface{}, len(columns)+1)
	for i, col := range columns {
		sets[i] = fmt.Sprintf("%s = :%s%s", pq.QuoteIdentifier(col), setPrefix, col)
		v, err := sqlValue(patch[col])
		if err != nil {
			return "", nil, fmt.Errorf("update %s: column %s: %w", table, col, err)
		}
		args[setPrefix+col] = v
	}
	args[wherePrefix+filter.Column] = filter.Value

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = :%s%s",
		pq.QuoteIdentifier(table),
		strings.Join(sets, ", "),
		pq.QuoteIdentifier(filter.Column),
		wherePrefix, filter.Column,
	)
	return query, args, nil
}

func buildDelete(table string, filter domain.Filter) (string, map[string]interface{}, error) {
	if !identifierPattern.MatchString(filter.Column) {
		return "", nil, fmt.Errorf("delete from %s: invalid filter column %q", table, filter.Column)
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s = :%s%s",
		pq.QuoteIdentifier(table),
		pq.QuoteIdentifier(filter.Column),
		wherePrefix, filter.Column,
	)
	return query, map[string]interface{}{wherePrefix + filter.Column: filter.Value}, nil
}

func sortedColumns(row domain.Row) ([]string, error) {
	columns := make([]string, 0, len(row))
	for col := range row {
		if !identifierPattern.MatchString(col) {
			return nil, fmt.Errorf("invalid column name %q", col)
		}
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns, nil
}

// sqlValue stores nested objects and arrays as JSON text for json/jsonb columns.
func sqlValue(v interface{}) (interface{}, error) {
	switch v.(type) {
	case map[string]interface{}, []interface{}, domain.Row:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	default:
		return v, nil
	}
}
