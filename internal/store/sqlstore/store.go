package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Lumos-Labs-HQ/relgrid/internal/recordsvc"
	"github.com/Lumos-Labs-HQ/relgrid/internal/store/common"
)

// Store is the database/sql record service shared by MySQL and SQLite.
type Store struct {
	db         *sql.DB
	qb         squirrel.StatementBuilderType
	driverName string

	mu        sync.RWMutex
	metaByObj map[string][]recordsvc.RawFieldMeta
}

func NewMySQL() *Store {
	return &Store{
		qb:         squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		driverName: "mysql",
		metaByObj:  make(map[string][]recordsvc.RawFieldMeta),
	}
}

func NewSQLite() *Store {
	return &Store{
		qb:         squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		driverName: "sqlite3",
		metaByObj:  make(map[string][]recordsvc.RawFieldMeta),
	}
}

func (s *Store) Connect(ctx context.Context, url string) error {
	dsn := url
	if s.driverName == "mysql" {
		dsn = strings.TrimPrefix(dsn, "mysql://")
	}

	db, err := sql.Open(s.driverName, dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(3 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	s.db = db
	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) FetchFieldMetadata(ctx context.Context, objectName string) ([]recordsvc.RawFieldMeta, error) {
	s.mu.RLock()
	if cached, ok := s.metaByObj[objectName]; ok {
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	query, args, err := s.qb.
		Select("name", "label", "type", "required", "editable", "sortable", "filterable", "width", "picklist_values", "lookup_object").
		From(common.MetadataTable).
		Where(squirrel.Eq{"object_name": objectName}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build metadata query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query field metadata: %w", err)
	}
	defer rows.Close()

	var fields []recordsvc.RawFieldMeta
	for rows.Next() {
		var f recordsvc.RawFieldMeta
		var picklist string
		if err := rows.Scan(&f.Name, &f.Label, &f.Type, &f.Required, &f.Editable, &f.Sortable, &f.Filterable, &f.Width, &picklist, &f.LookupObject); err != nil {
			return nil, fmt.Errorf("failed to scan field metadata: %w", err)
		}
		f.PicklistValues = common.SplitPicklist(picklist)
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read field metadata: %w", err)
	}

	s.mu.Lock()
	s.metaByObj[objectName] = fields
	s.mu.Unlock()
	return fields, nil
}

func (s *Store) FetchRelatedRecords(ctx context.Context, q recordsvc.Query) (*recordsvc.Page, error) {
	table, err := common.TableName(q.ObjectName)
	if err != nil {
		return nil, err
	}
	if !common.IsValidIdentifier(q.RelationshipField) {
		return nil, fmt.Errorf("invalid relationship field: %s", q.RelationshipField)
	}
	if err := common.CheckFieldNames(q.FieldNames); err != nil {
		return nil, err
	}

	meta, err := s.FetchFieldMetadata(ctx, q.ObjectName)
	if err != nil {
		return nil, err
	}

	where := squirrel.And{squirrel.Eq{q.RelationshipField: q.ParentID}}
	if term := strings.TrimSpace(q.SearchTerm); term != "" {
		pattern := "%" + term + "%"
		var search squirrel.Or
		for _, col := range common.SearchColumns(meta) {
			// LIKE is case-insensitive on MySQL's default collation and
			// on SQLite for ASCII, close enough to ILIKE for grid search.
			search = append(search, squirrel.Like{col: pattern})
		}
		if len(search) > 0 {
			where = append(where, search)
		}
	}

	countQuery, countArgs, err := s.qb.Select("COUNT(*)").From(table).Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}

	selectCols := selectColumns(q.FieldNames, meta)
	builder := s.qb.Select(selectCols...).From(table).Where(where)
	if q.SortField != "" && common.IsValidIdentifier(q.SortField) {
		dir := "ASC"
		if strings.EqualFold(q.SortDirection, "desc") {
			dir = "DESC"
		}
		builder = builder.OrderBy(q.SortField + " " + dir)
	}
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = 10
	}
	pageNumber := q.PageNumber
	if pageNumber < 1 {
		pageNumber = 1
	}
	builder = builder.Limit(uint64(pageSize)).Offset(uint64((pageNumber - 1) * pageSize))

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build record query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := []recordsvc.Record{}
	for rows.Next() {
		values := make([]any, len(selectCols))
		scan := make([]any, len(selectCols))
		for i := range values {
			scan[i] = &values[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("failed to read record row: %w", err)
		}

		rec := recordsvc.Record{Fields: make(map[string]any, len(selectCols)-1)}
		for i, col := range selectCols {
			if col == "id" {
				rec.ID = fmt.Sprintf("%v", normalize(values[i]))
				continue
			}
			rec.Fields[col] = normalize(values[i])
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	return &recordsvc.Page{Records: records, TotalCount: total}, nil
}

func (s *Store) ValidateRecords(ctx context.Context, patches []recordsvc.Patch, objectName string) (*recordsvc.ValidationResult, error) {
	meta, err := s.FetchFieldMetadata(ctx, objectName)
	if err != nil {
		return nil, err
	}
	return common.ValidateRecords(patches, meta), nil
}

func (s *Store) SaveRecords(ctx context.Context, patches []recordsvc.Patch, objectName string) error {
	table, err := common.TableName(objectName)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, patch := range patches {
		if len(patch.Fields) == 0 {
			continue
		}
		for name := range patch.Fields {
			if !common.IsValidIdentifier(name) {
				return fmt.Errorf("invalid field name: %s", name)
			}
		}
		query, args, err := s.qb.Update(table).SetMap(patch.Fields).Where(squirrel.Eq{"id": patch.ID}).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to save record %s: %w", patch.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit save: %w", err)
	}
	return nil
}

func (s *Store) BulkUpdateRecords(ctx context.Context, recordIDs []string, fieldValues map[string]any, objectName string) error {
	table, err := common.TableName(objectName)
	if err != nil {
		return err
	}
	if len(recordIDs) == 0 || len(fieldValues) == 0 {
		return nil
	}
	for name := range fieldValues {
		if !common.IsValidIdentifier(name) {
			return fmt.Errorf("invalid field name: %s", name)
		}
	}

	query, args, err := s.qb.Update(table).SetMap(fieldValues).Where(squirrel.Eq{"id": recordIDs}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build bulk update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to bulk update records: %w", err)
	}
	return nil
}

func (s *Store) DeleteRecords(ctx context.Context, recordIDs []string, objectName string) error {
	table, err := common.TableName(objectName)
	if err != nil {
		return err
	}
	if len(recordIDs) == 0 {
		return nil
	}

	query, args, err := s.qb.Delete(table).Where(squirrel.Eq{"id": recordIDs}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}
	return nil
}

func (s *Store) EnsureMetadataTable(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS ` + common.MetadataTable + ` (
		object_name VARCHAR(255) NOT NULL,
		name VARCHAR(255) NOT NULL,
		label VARCHAR(255) NOT NULL DEFAULT '',
		type VARCHAR(32) NOT NULL DEFAULT 'text',
		required BOOLEAN NOT NULL DEFAULT FALSE,
		editable BOOLEAN NOT NULL DEFAULT FALSE,
		sortable BOOLEAN NOT NULL DEFAULT FALSE,
		filterable BOOLEAN NOT NULL DEFAULT FALSE,
		width INTEGER NOT NULL DEFAULT 0,
		picklist_values TEXT,
		lookup_object VARCHAR(255) NOT NULL DEFAULT '',
		position INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (object_name, name)
	)`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}
	return nil
}

func (s *Store) ReplaceFieldMetadata(ctx context.Context, objectName string, fields []recordsvc.RawFieldMeta) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	delQuery, delArgs, err := s.qb.Delete(common.MetadataTable).Where(squirrel.Eq{"object_name": objectName}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build metadata delete: %w", err)
	}
	if _, err := tx.ExecContext(ctx, delQuery, delArgs...); err != nil {
		return fmt.Errorf("failed to clear field metadata: %w", err)
	}

	for i, f := range fields {
		query, args, err := s.qb.Insert(common.MetadataTable).
			Columns("object_name", "name", "label", "type", "required", "editable", "sortable", "filterable", "width", "picklist_values", "lookup_object", "position").
			Values(objectName, f.Name, f.Label, f.Type, f.Required, f.Editable, f.Sortable, f.Filterable, f.Width, common.JoinPicklist(f.PicklistValues), f.LookupObject, i).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build metadata insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert field metadata for %s: %w", f.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit metadata: %w", err)
	}

	s.mu.Lock()
	delete(s.metaByObj, objectName)
	s.mu.Unlock()
	return nil
}

func (s *Store) EnsureObjectTable(ctx context.Context, objectName string, fields []recordsvc.RawFieldMeta) error {
	table, err := common.TableName(objectName)
	if err != nil {
		return err
	}

	cols := []string{"id VARCHAR(64) PRIMARY KEY"}
	for _, f := range fields {
		if !common.IsValidIdentifier(f.Name) {
			return fmt.Errorf("invalid field name: %s", f.Name)
		}
		cols = append(cols, fmt.Sprintf("%s %s", f.Name, common.ColumnType(f.Type)))
		if strings.EqualFold(f.Type, "lookup") || strings.EqualFold(f.Type, "reference") {
			cols = append(cols, fmt.Sprintf("%s_Name VARCHAR(255)", f.Name))
		}
	}

	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(cols, ", "))
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return nil
}

func (s *Store) InsertRecords(ctx context.Context, objectName string, records []recordsvc.Record) error {
	table, err := common.TableName(objectName)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		values := make(map[string]any, len(rec.Fields)+1)
		for name, value := range rec.Fields {
			if !common.IsValidIdentifier(name) {
				return fmt.Errorf("invalid field name: %s", name)
			}
			values[name] = value
		}
		values["id"] = rec.ID

		query, args, err := s.qb.Insert(table).SetMap(values).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert record %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit inserts: %w", err)
	}
	return nil
}

func selectColumns(fieldNames []string, meta []recordsvc.RawFieldMeta) []string {
	lookups := make(map[string]bool)
	for _, f := range meta {
		if strings.EqualFold(f.Type, "lookup") || strings.EqualFold(f.Type, "reference") {
			lookups[f.Name] = true
		}
	}

	cols := []string{"id"}
	for _, name := range fieldNames {
		cols = append(cols, name)
		if lookups[name] {
			cols = append(cols, name+"_Name")
		}
	}
	return cols
}

// normalize maps driver scan types onto the values the grid works with.
func normalize(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	default:
		return val
	}
}
