package datarecording

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
)

// QueryParams narrows a query.
type QueryParams struct {
	// Where holds the WHERE clause without the "WHERE" keyword, for example
	// "StartCycle > ? AND What = ?".
	Where string

	// Args holds the arguments for the placeholders in Where.
	Args []any

	// Limit is the maximum number of rows to return. 0 means no limit.
	Limit int

	// Offset is the number of rows to skip.
	Offset int

	// OrderBy holds the sort order without the "ORDER BY" keywords.
	OrderBy string
}

// DataReader reads back the tables of a recorded database.
type DataReader interface {
	// MapTable tells the reader which struct a table holds. A table must be
	// mapped before it is queried.
	MapTable(tableName string, sampleEntry any)

	// Query returns the matching rows as pointers to the mapped struct, and
	// the number of rows matching Where.
	Query(ctx context.Context, tableName string, params QueryParams) (
		results []any,
		totalCount int,
		err error,
	)

	// Close closes the database.
	Close() error
}

type sqliteReader struct {
	*sql.DB

	typeMap map[string]reflect.Type
}

// NewReader opens a database file for reading.
func NewReader(filename string) (DataReader, error) {
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, err
	}

	return NewReaderWithDB(db), nil
}

// NewReaderWithDB creates a reader over an open database.
func NewReaderWithDB(db *sql.DB) DataReader {
	return &sqliteReader{
		DB:      db,
		typeMap: make(map[string]reflect.Type),
	}
}

func (r *sqliteReader) MapTable(tableName string, sampleEntry any) {
	fieldNames(sampleEntry)

	r.typeMap[tableName] = reflect.TypeOf(sampleEntry)
}

func (r *sqliteReader) Query(
	ctx context.Context,
	tableName string,
	params QueryParams,
) ([]any, int, error) {
	structType, ok := r.typeMap[tableName]
	if !ok {
		return nil, 0, fmt.Errorf("no mapping found for table: %s", tableName)
	}

	where := ""
	if params.Where != "" {
		where = " WHERE " + params.Where
	}

	var totalCount int

	err := r.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+tableName+where, params.Args...).
		Scan(&totalCount)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM " + tableName + where

	if params.OrderBy != "" {
		query += " ORDER BY " + params.OrderBy
	}

	if params.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", params.Limit, params.Offset)
	}

	rows, err := r.QueryContext(ctx, query, params.Args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results, err := scanRows(rows, structType)
	if err != nil {
		return nil, 0, err
	}

	return results, totalCount, nil
}

func scanRows(rows *sql.Rows, structType reflect.Type) ([]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	fieldIndex := make(map[string]int)
	for i := 0; i < structType.NumField(); i++ {
		fieldIndex[structType.Field(i).Name] = i
	}

	var results []any

	for rows.Next() {
		ptr := reflect.New(structType)
		targets := make([]any, len(columns))

		for i, column := range columns {
			idx, ok := fieldIndex[column]
			if !ok {
				var discard any
				targets[i] = &discard

				continue
			}

			targets[i] = ptr.Elem().Field(idx).Addr().Interface()
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}

		results = append(results, ptr.Interface())
	}

	return results, rows.Err()
}
