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
	"path/filepath"
	"strings"
	"sync"

	"github.com/uptrace/bun"
	"gopkg.in/yaml.v3"
)

// ForeignKeyConstraint describes a foreign key relationship between tables.
type ForeignKeyConstraint struct {
	Table           string `yaml:"table"`
	Column          string `yaml:"column"`
	ReferenceTable  string `yaml:"reference_table"`
	ReferenceColumn string `yaml:"reference_column"`
	OnDelete        string `yaml:"on_delete,omitempty"` // CASCADE, RESTRICT, SET NULL, NO ACTION
	OnUpdate        string `yaml:"on_update,omitempty"`
	ConstraintName  string `yaml:"constraint_name,omitempty"`
}

var validActions = []string{"CASCADE", "RESTRICT", "SET NULL", "NO ACTION"}

// GenerateConstraintName returns the explicit name or a derived name.
func (fk *ForeignKeyConstraint) GenerateConstraintName() string {
	if fk.ConstraintName != "" {
		return fk.ConstraintName
	}
	return fmt.Sprintf("fk_%s_%s", fk.Table, fk.Column)
}

// GenerateSQL returns the ALTER TABLE statement to add the constraint.
func (fk *ForeignKeyConstraint) GenerateSQL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s)",
		fk.Table, fk.GenerateConstraintName(), fk.Column, fk.ReferenceTable, fk.ReferenceColumn)
	if fk.OnDelete != "" {
		fmt.Fprintf(&b, " ON DELETE %s", strings.ToUpper(fk.OnDelete))
	}
	if fk.OnUpdate != "" {
		fmt.Fprintf(&b, " ON UPDATE %s", strings.ToUpper(fk.OnUpdate))
	}
	return b.String()
}

func (fk *ForeignKeyConstraint) validate() []error {
	var errs []error
	if fk.Table == "" {
		errs = append(errs, fmt.Errorf("table name cannot be empty"))
	}
	if fk.Column == "" {
		errs = append(errs, fmt.Errorf("column name cannot be empty: %s", fk.Table))
	}
	if fk.ReferenceTable == "" {
		errs = append(errs, fmt.Errorf("reference table name cannot be empty: %s.%s", fk.Table, fk.Column))
	}
	if fk.ReferenceColumn == "" {
		errs = append(errs, fmt.Errorf("reference column name cannot be empty: %s.%s -> %s", fk.Table, fk.Column, fk.ReferenceTable))
	}
	for kind, action := range map[string]string{"delete": fk.OnDelete, "update": fk.OnUpdate} {
		if action != "" && !isValidAction(action) {
			errs = append(errs, fmt.Errorf("invalid %s policy: %s, constraint: %s", kind, action, fk.GenerateConstraintName()))
		}
	}
	return errs
}

func isValidAction(action string) bool {
	for _, a := range validActions {
		if strings.EqualFold(action, a) {
			return true
		}
	}
	return false
}

var (
	fkRegistry   []ForeignKeyConstraint
	fkRegistryMu sync.RWMutex
)

// RegisterForeignKeys adds code-defined constraints, usually from a model's init.
func RegisterForeignKeys(fks ...ForeignKeyConstraint) {
	fkRegistryMu.Lock()
	defer fkRegistryMu.Unlock()
	fkRegistry = append(fkRegistry, fks...)
}

// RegisteredForeignKeys returns a copy of the code-defined constraints.
func RegisteredForeignKeys() []ForeignKeyConstraint {
	fkRegistryMu.RLock()
	defer fkRegistryMu.RUnlock()
	out := make([]ForeignKeyConstraint, len(fkRegistry))
	copy(out, fkRegistry)
	return out
}

// ForeignKeyManager manages adding and validating foreign key constraints.
type ForeignKeyManager struct {
	constraints []ForeignKeyConstraint
	logger      Logger
}

// NewForeignKeyManager creates a manager with the registered constraints.
func NewForeignKeyManager(logger Logger) *ForeignKeyManager {
	return &ForeignKeyManager{
		constraints: RegisteredForeignKeys(),
		logger:      logger,
	}
}

// AddAllForeignKeys adds every constraint. Failures are logged and skipped,
// since a constraint may already exist or the dialect may not support ALTER.
func (fkm *ForeignKeyManager) AddAllForeignKeys(ctx context.Context, db bun.IDB) error {
	for _, constraint := range fkm.constraints {
		if _, err := db.ExecContext(ctx, constraint.GenerateSQL()); err != nil {
			if fkm.logger != nil {
				fkm.logger.Warn("Failed to add foreign key constraint", "constraint", constraint.GenerateConstraintName(), "error", err)
			}
			continue
		}
		if fkm.logger != nil {
			fkm.logger.Debug("Added foreign key constraint", "constraint", constraint.GenerateConstraintName())
		}
	}
	return nil
}

// ListAllConstraints returns all configured constraints.
func (fkm *ForeignKeyManager) ListAllConstraints() []ForeignKeyConstraint {
	return fkm.constraints
}

// ValidateConstraints checks the configured constraints for common issues.
func (fkm *ForeignKeyManager) ValidateConstraints() []error {
	var errs []error
	for i := range fkm.constraints {
		errs = append(errs, fkm.constraints[i].validate()...)
	}
	return errs
}

// ForeignKeyConfig is the YAML structure that lists foreign key constraints.
type ForeignKeyConfig struct {
	ForeignKeys []ForeignKeyConstraint `yaml:"foreign_keys"`
}

// ConfigurableForeignKeyManager loads constraints from a YAML file and falls
// back to the registered ones when the file is missing or unreadable.
type ConfigurableForeignKeyManager struct {
	*ForeignKeyManager
	configPath string
	fromFile   bool
}

func NewConfigurableForeignKeyManager(logger Logger, configPath string) *ConfigurableForeignKeyManager {
	m := &ConfigurableForeignKeyManager{
		ForeignKeyManager: NewForeignKeyManager(logger),
		configPath:        configPath,
	}
	if configPath == "" {
		return m
	}
	constraints, err := m.loadFromConfig()
	if err != nil {
		if logger != nil {
			logger.Debug("Using registered foreign key constraints", "config_path", configPath, "error", err)
		}
		return m
	}
	m.constraints = constraints
	m.fromFile = true
	return m
}

// FromFile reports whether the constraints came from the YAML file.
func (cfm *ConfigurableForeignKeyManager) FromFile() bool {
	return cfm.fromFile
}

func (cfm *ConfigurableForeignKeyManager) loadFromConfig() ([]ForeignKeyConstraint, error) {
	data, err := os.ReadFile(cfm.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read foreign key file: %w", err)
	}
	var cfg ForeignKeyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse foreign key file: %w", err)
	}
	return cfg.ForeignKeys, nil
}

// ExportToConfig writes the current constraints as YAML to outputPath.
func (cfm *ConfigurableForeignKeyManager) ExportToConfig(outputPath string) error {
	data, err := yaml.Marshal(&ForeignKeyConfig{ForeignKeys: cfm.constraints})
	if err != nil {
		return fmt.Errorf("failed to serialize foreign keys: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write foreign key file: %w", err)
	}
	return nil
}

// ExportForeignKeys writes the registered constraints to path in the format
// read back through foreign_key_file.
func ExportForeignKeys(path string) error {
	m := &ConfigurableForeignKeyManager{ForeignKeyManager: NewForeignKeyManager(GetLogger())}
	return m.ExportToConfig(path)
}
