/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/uptrace/bun"
)

// MigrationManager coordinates schema migrations and data initialization.
type MigrationManager struct {
	db     *bun.DB
	logger Logger
	config *Config
}

// Migration is an applied migration record.
type Migration struct {
	bun.BaseModel `bun:"table:schema_migrations"`

	Version     string    `bun:"version,pk"`
	Name        string    `bun:"name"`
	AppliedAt   time.Time `bun:"applied_at"`
	Description string    `bun:"description"`
}

// MigrationFunc is a migration step executed within a transaction.
type MigrationFunc func(ctx context.Context, db bun.IDB) error

// MigrationItem describes a single migration version.
type MigrationItem struct {
	Version     string
	Name        string
	Description string
	Up          MigrationFunc
}

// NewMigrationManager returns a manager driven by cfg. A nil cfg means
// DefaultConfig.
func NewMigrationManager(db *bun.DB, logger Logger, cfg *Config) *MigrationManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = GetLogger()
	}
	return &MigrationManager{db: db, logger: logger, config: cfg}
}

// RunMigrations creates the tracking table if needed and applies every
// pending migration in ascending version order.
func (mm *MigrationManager) RunMigrations(ctx context.Context) error {
	if mm.db == nil {
		return ErrNotConnected
	}
	if _, ok := os.LookupEnv("BUNDEBUG_MIGRATION"); !ok {
		MuteQueryHooks(true)
		defer MuteQueryHooks(false)
	}

	if _, err := mm.db.NewCreateTable().Model((*Migration)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	pending := mm.migrations()
	sort.Slice(pending, func(i, j int) bool { return pending[i].Version < pending[j].Version })
	applied := 0
	for _, m := range pending {
		ran, err := mm.runMigration(ctx, m)
		if err != nil {
			return fmt.Errorf("migration %s_%s: %w", m.Version, m.Name, err)
		}
		if ran {
			applied++
		}
	}
	mm.logger.Info("migrations done", "applied", applied, "known", len(pending))
	return nil
}

// migrations lists the steps enabled by the configuration.
func (mm *MigrationManager) migrations() []MigrationItem {
	all := []struct {
		MigrationItem
		enabled bool
	}{
		{MigrationItem{"001", "create_base_tables", "tables of every registered model", mm.createBaseTables}, true},
		{MigrationItem{"002", "add_foreign_keys", "foreign key constraints", mm.addForeignKeys}, mm.config.DataMigrateConfig.EnableForeignKey},
		{MigrationItem{"003", "seed_initial_data", "SQL seed files", mm.seedInitialData}, mm.config.DataInitConfig.AutoInitOnMigration},
		{MigrationItem{"004", "add_query_indexes", "secondary indexes of registered models", mm.createIndexes}, true},
	}
	items := make([]MigrationItem, 0, len(all))
	for _, m := range all {
		if m.enabled {
			items = append(items, m.MigrationItem)
		}
	}
	return items
}

// runMigration applies m unless it is already recorded, reporting whether it ran.
func (mm *MigrationManager) runMigration(ctx context.Context, m MigrationItem) (bool, error) {
	done, err := mm.db.NewSelect().Model((*Migration)(nil)).Where("version = ?", m.Version).Exists(ctx)
	if err != nil || done {
		return false, err
	}

	err = mm.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := m.Up(ctx, tx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(&Migration{
			Version:     m.Version,
			Name:        m.Name,
			AppliedAt:   time.Now(),
			Description: m.Description,
		}).Exec(ctx)
		return err
	})
	if err != nil {
		return false, err
	}
	mm.logger.Info("migration applied", "version", m.Version, "name", m.Name)
	return true, nil
}

func (mm *MigrationManager) createBaseTables(ctx context.Context, db bun.IDB) error {
	for _, model := range RegisteredModelInstances() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table %T: %w", model, err)
		}
	}
	return nil
}

func (mm *MigrationManager) addForeignKeys(ctx context.Context, db bun.IDB) error {
	fkManager := NewConfigurableForeignKeyManager(mm.logger, mm.config.DataMigrateConfig.ForeignKeyFile)
	if errs := fkManager.ValidateConstraints(); len(errs) > 0 {
		for _, err := range errs {
			mm.logger.Warn("invalid foreign key", "error", err)
		}
		return fmt.Errorf("%d invalid foreign keys", len(errs))
	}
	mm.logger.Debug("adding foreign keys",
		"from_file", fkManager.FromFile(),
		"count", len(fkManager.ListAllConstraints()),
	)
	return fkManager.AddAllForeignKeys(ctx, db)
}

func (mm *MigrationManager) createIndexes(ctx context.Context, db bun.IDB) error {
	for _, idx := range RegisteredIndexes() {
		q := db.NewCreateIndex().Table(idx.Table).Index(idx.Name).Column(idx.Columns...)
		if idx.Unique {
			q = q.Unique()
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("create index %s: %w", idx.Name, err)
		}
	}
	return nil
}

// InitData runs the SQL seed files outside of the migration history.
func (mm *MigrationManager) InitData(ctx context.Context) error {
	if mm.db == nil {
		return ErrNotConnected
	}
	return mm.seedInitialData(ctx, mm.db)
}

func (mm *MigrationManager) seedInitialData(ctx context.Context, db bun.IDB) error {
	initCfg := mm.config.DataInitConfig
	sqlManager := NewSQLInitManager(db, initCfg.Environment)
	sqlManager.SetLogger(mm.logger)
	sqlManager.EnableTemplate(initCfg.EnableTemplate)
	if initCfg.Filepath != "" {
		sqlManager.SetSQLRootPath(initCfg.Filepath)
	}
	if _, err := sqlManager.ExecuteInitialization(ctx); err != nil {
		return fmt.Errorf("seed data: %w", err)
	}
	return nil
}

// GetAppliedMigrations returns migration records ordered by version.
func (mm *MigrationManager) GetAppliedMigrations(ctx context.Context) ([]Migration, error) {
	var migrations []Migration
	err := mm.db.NewSelect().
		Model(&migrations).
		Order("version ASC").
		Scan(ctx)
	return migrations, err
}
