package store

import (
	"context"

	"github.com/Lumos-Labs-HQ/relgrid/internal/recordsvc"
)

// Store is a SQL-backed record service plus the lifecycle and schema
// management the CLI needs for seeding. The grid itself consumes only
// the embedded recordsvc.Service surface.
type Store interface {
	recordsvc.Service

	Connect(ctx context.Context, url string) error
	Close() error
	Ping(ctx context.Context) error

	// Schema management, used by seeding.
	EnsureMetadataTable(ctx context.Context) error
	ReplaceFieldMetadata(ctx context.Context, objectName string, fields []recordsvc.RawFieldMeta) error
	EnsureObjectTable(ctx context.Context, objectName string, fields []recordsvc.RawFieldMeta) error
	InsertRecords(ctx context.Context, objectName string, records []recordsvc.Record) error
}
