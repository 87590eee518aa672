package seeder

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/Lumos-Labs-HQ/relgrid/internal/config"
	"github.com/Lumos-Labs-HQ/relgrid/internal/recordsvc"
	"github.com/Lumos-Labs-HQ/relgrid/internal/store"
)

type Seeder struct {
	config    *config.Config
	store     store.Store
	generator *DataGenerator
}

func NewSeeder(cfg *config.Config) (*Seeder, error) {
	st := store.New(cfg.Database.Provider)

	dbURL, err := cfg.GetDatabaseURL()
	if err != nil {
		return nil, fmt.Errorf("failed to get database URL: %w", err)
	}

	if err := st.Connect(context.Background(), dbURL); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Seeder{
		config:    cfg,
		store:     st,
		generator: NewDataGenerator(),
	}, nil
}

func (s *Seeder) Close() error {
	return s.store.Close()
}

// Seed loads a dataset into the database: field metadata, the object
// table, the explicit records, and any generated filler records.
func (s *Seeder) Seed(ctx context.Context, ds *Dataset) error {
	color.Cyan("🌱 Seeding %s records...", ds.Object)

	meta := ds.FieldMeta()

	if err := s.store.EnsureMetadataTable(ctx); err != nil {
		return fmt.Errorf("failed to prepare metadata table: %w", err)
	}
	if err := s.store.ReplaceFieldMetadata(ctx, ds.Object, meta); err != nil {
		return fmt.Errorf("failed to store field metadata: %w", err)
	}
	color.Green("📋 Stored metadata for %d fields", len(meta))

	if err := s.store.EnsureObjectTable(ctx, ds.Object, meta); err != nil {
		return fmt.Errorf("failed to prepare object table: %w", err)
	}

	records := make([]recordsvc.Record, 0, len(ds.Records))
	for _, raw := range ds.Records {
		rec, err := explicitRecord(raw)
		if err != nil {
			return err
		}
		records = append(records, rec)
	}

	if ds.Generate != nil && ds.Generate.Count > 0 {
		color.Cyan("  📝 Generating %d filler records...", ds.Generate.Count)
		records = append(records, s.generateRecords(ds)...)
	}

	if len(records) == 0 {
		color.Yellow("⚠️  Dataset contains no records")
		return nil
	}

	if err := s.store.InsertRecords(ctx, ds.Object, records); err != nil {
		return fmt.Errorf("failed to insert records: %w", err)
	}

	color.Green("\n✅ Seeded %d %s records successfully!", len(records), ds.Object)
	return nil
}

// explicitRecord splits a YAML record map into ID and field values. An
// "id" key is optional; absent means one is assigned.
func explicitRecord(raw map[string]any) (recordsvc.Record, error) {
	rec := recordsvc.Record{Fields: make(map[string]any, len(raw))}
	for key, value := range raw {
		if key == "id" {
			rec.ID = fmt.Sprintf("%v", value)
			continue
		}
		rec.Fields[key] = value
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	return rec, nil
}

func (s *Seeder) generateRecords(ds *Dataset) []recordsvc.Record {
	records := make([]recordsvc.Record, 0, ds.Generate.Count)
	for i := 0; i < ds.Generate.Count; i++ {
		fields := make(map[string]any, len(ds.Fields)+1)
		parent := ds.Generate.ParentIDs[s.generator.rand.Intn(len(ds.Generate.ParentIDs))]
		fields[ds.RelationshipField] = parent

		for _, f := range ds.Fields {
			if f.Name == ds.RelationshipField {
				continue
			}
			fields[f.Name] = s.generator.GenerateForField(f)
		}

		records = append(records, recordsvc.Record{
			ID:     uuid.NewString(),
			Fields: fields,
		})
	}
	return records
}
