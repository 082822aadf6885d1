// Package repository is a generic CRUD layer over sqlx. Column lists come from
// the `db` tags of the row type, including embedded structs such as
// model.Metadata. Reads go to the read pool and writes to the write pool.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"tutorhub/infras/otel"
	"tutorhub/infras/postgres"
	"tutorhub/shared/constant"
	"tutorhub/shared/dto"
	"tutorhub/shared/logger"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var errRequiredFilter = errors.New("required filter")

// IsPqError reports whether err wraps a postgres error with the given SQLSTATE code.
func IsPqError(err error, code string) bool {
	var pqErr *pq.Error

	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}

type Repository[T any] struct {
	db      *postgres.Connection
	otel    otel.Otel
	table   string
	entity  string
	primary string
	columns []string
}

func NewRepository[T any](entityName, tableName, primaryColumn string, db *postgres.Connection, otl otel.Otel) Repository[T] {
	return Repository[T]{
		db:      db,
		otel:    otl,
		table:   tableName,
		entity:  entityName,
		primary: primaryColumn,
		columns: dbColumns(reflect.TypeFor[T]()),
	}
}

func (repo *Repository[T]) scope(ctx context.Context, operation string) (context.Context, otel.Scope) {
	return repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.%s", constant.OtelRepositoryScopeName, repo.entity, operation))
}

func (repo *Repository[T]) fail(scope otel.Scope, action string, err error) error {
	logger.ErrorWithStack(err)
	scope.TraceError(err)

	return fmt.Errorf("failed to %s (%s): %w", action, repo.entity, err)
}

// read runs a named query against the read pool and scans into dest.
func (repo *Repository[T]) read(ctx context.Context, dest any, query string, args map[string]any, many bool) error {
	bound, params, err := sqlx.Named(query, args)
	if err != nil {
		return err //nolint:wrapcheck
	}

	bound = repo.db.Read.Rebind(bound)

	if many {
		return repo.db.Read.SelectContext(ctx, dest, bound, params...) //nolint:wrapcheck
	}

	return repo.db.Read.GetContext(ctx, dest, bound, params...) //nolint:wrapcheck
}

func (repo *Repository[T]) Insert(ctx context.Context, model T) error {
	ctx, scope := repo.scope(ctx, "Insert")
	defer scope.End()

	query := repo.insertQuery()
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if _, err := repo.db.Write.NamedExecContext(ctx, query, model); err != nil {
		return repo.fail(scope, "insert data", err)
	}

	return nil
}

func (repo *Repository[T]) Exist(ctx context.Context, filter dto.FilterGroup) (bool, error) {
	ctx, scope := repo.scope(ctx, "Exist")
	defer scope.End()

	where, args := whereClause(filter)
	if where == "" {
		return false, errRequiredFilter
	}

	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s%s)", repo.table, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var exist bool
	if err := repo.read(ctx, &exist, query, args, false); err != nil {
		return false, repo.fail(scope, "check exist data", err)
	}

	return exist, nil
}

// Get returns the zero T when no row matches.
func (repo *Repository[T]) Get(ctx context.Context, filter dto.FilterGroup, columns ...string) (T, error) {
	ctx, scope := repo.scope(ctx, "Get")
	defer scope.End()

	where, args := whereClause(filter)
	query := repo.selectQuery(columns, where, dto.QueryParams{})
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var model T

	err := repo.read(ctx, &model, query, args, false)
	if errors.Is(err, sql.ErrNoRows) {
		return model, nil
	}

	if err != nil {
		return model, repo.fail(scope, "get data", err)
	}

	return model, nil
}

func (repo *Repository[T]) GetAll(ctx context.Context, params dto.QueryParams, filter dto.FilterGroup, columns ...string) ([]T, error) {
	ctx, scope := repo.scope(ctx, "GetAll")
	defer scope.End()

	where, args := whereClause(filter)
	query := repo.selectQuery(columns, where, params)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if params.Limit > 0 {
		args["limit"] = params.Limit
		args["offset"] = params.Offset()
	}

	models := []T{}
	if err := repo.read(ctx, &models, query, args, true); err != nil {
		return models, repo.fail(scope, "get all data", err)
	}

	return models, nil
}

func (repo *Repository[T]) Count(ctx context.Context, filter dto.FilterGroup) (int, error) {
	ctx, scope := repo.scope(ctx, "Count")
	defer scope.End()

	where, args := whereClause(filter)
	query := fmt.Sprintf("SELECT COUNT(%s) FROM %s%s", repo.primary, repo.table, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var count int
	if err := repo.read(ctx, &count, query, args, false); err != nil {
		return 0, repo.fail(scope, "count data", err)
	}

	return count, nil
}

func (repo *Repository[T]) Update(ctx context.Context, mod map[string]any, filter dto.FilterGroup) error {
	_, err := repo.UpdateAffected(ctx, mod, filter)

	return err
}

// UpdateAffected behaves like Update and reports how many rows matched the filter.
// Callers put the expected prior state in the filter to get a compare-and-swap write.
func (repo *Repository[T]) UpdateAffected(ctx context.Context, mod map[string]any, filter dto.FilterGroup) (int64, error) {
	ctx, scope := repo.scope(ctx, "Update")
	defer scope.End()

	where, args := whereClause(filter)
	if where == "" {
		return 0, errRequiredFilter
	}

	query := repo.updateQuery(mod, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	maps.Copy(args, mod)

	return repo.exec(ctx, scope, query, args)
}

// QueryNamed runs a hand-written read statement and scans every row into dest.
func (repo *Repository[T]) QueryNamed(ctx context.Context, dest any, query string, args map[string]any) error {
	ctx, scope := repo.scope(ctx, "QueryNamed")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if err := repo.read(ctx, dest, query, args, true); err != nil {
		return repo.fail(scope, "query data", err)
	}

	return nil
}

// ExecNamed runs a hand-written write statement, for upserts the generic builders cannot express.
func (repo *Repository[T]) ExecNamed(ctx context.Context, query string, arg any) (int64, error) {
	ctx, scope := repo.scope(ctx, "ExecNamed")
	defer scope.End()

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	return repo.exec(ctx, scope, query, arg)
}

func (repo *Repository[T]) exec(ctx context.Context, scope otel.Scope, query string, arg any) (int64, error) {
	result, err := repo.db.Write.NamedExecContext(ctx, query, arg)
	if err != nil {
		return 0, repo.fail(scope, "exec statement", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, repo.fail(scope, "read affected rows", err)
	}

	return affected, nil
}

func (repo *Repository[T]) insertQuery() string {
	placeholders := make([]string, len(repo.columns))
	for i, column := range repo.columns {
		placeholders[i] = ":" + column
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", repo.table, strings.Join(repo.columns, ", "), strings.Join(placeholders, ", "))
}

// selectQuery lists the requested columns, or all of them when none are given.
// Unknown column names are dropped.
func (repo *Repository[T]) selectQuery(columns []string, where string, params dto.QueryParams) string {
	selected := repo.columns
	if len(columns) > 0 {
		selected = slices.DeleteFunc(slices.Clone(repo.columns), func(column string) bool {
			return !slices.Contains(columns, column)
		})
	}

	var query strings.Builder

	fmt.Fprintf(&query, "SELECT %s FROM %s%s", strings.Join(selected, ", "), repo.table, where)

	if params.SortBy != "" && slices.Contains(repo.columns, params.SortBy) {
		direction := dto.SortDirAsc
		if strings.EqualFold(params.SortDir, dto.SortDirDesc) {
			direction = dto.SortDirDesc
		}

		fmt.Fprintf(&query, " ORDER BY %s %s", params.SortBy, direction)
	}

	if params.Limit > 0 {
		query.WriteString(" LIMIT :limit OFFSET :offset")
	}

	return query.String()
}

func (repo *Repository[T]) updateQuery(mod map[string]any, where string) string {
	assignments := make([]string, 0, len(mod))
	for _, column := range slices.Sorted(maps.Keys(mod)) {
		assignments = append(assignments, fmt.Sprintf("%s = :%s", column, column))
	}

	return fmt.Sprintf("UPDATE %s SET %s%s", repo.table, strings.Join(assignments, ", "), where)
}

func whereClause(filter dto.FilterGroup) (string, map[string]any) {
	where, args := filter.GetWhereClause()
	if where == "" {
		return "", map[string]any{}
	}

	return " WHERE " + where, args
}

func dbColumns(reflectType reflect.Type) []string {
	var columns []string

	for i := range reflectType.NumField() {
		field := reflectType.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			columns = append(columns, dbColumns(field.Type)...)

			continue
		}

		if tag := field.Tag.Get("db"); tag != "" && tag != "-" {
			columns = append(columns, tag)
		}
	}

	return columns
}
