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
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/uptrace/bun"
)

const commonSQLDir = "common"

var fileOrderPattern = regexp.MustCompile(`^(\d+)_`)

// SQLInitManager discovers and executes SQL files to seed data. Files under
// <root>/common run first, then files under <root>/environments/<env>; within
// a directory files run by their numeric "NN_" prefix.
type SQLInitManager struct {
	db             bun.IDB
	environment    string
	sqlRootPath    string
	enableTemplate bool
	logger         Logger
}

// SQLFileInfo describes a SQL file to be executed during initialization.
type SQLFileInfo struct {
	Path        string
	Name        string
	Order       int
	Environment string
	ModTime     time.Time
}

// ExecutionResult contains the outcome of executing a single SQL file.
type ExecutionResult struct {
	File         string
	Success      bool
	Error        error
	Duration     time.Duration
	RowsAffected int64
}

func NewSQLInitManager(db bun.IDB, environment string) *SQLInitManager {
	return &SQLInitManager{
		db:          db,
		environment: environment,
		sqlRootPath: "configs/sql",
		logger:      GetLogger(),
	}
}

func (s *SQLInitManager) SetSQLRootPath(path string) {
	s.sqlRootPath = path
}

// EnableTemplate makes files go through text/template with the process
// environment plus ENVIRONMENT and TIMESTAMP as data.
func (s *SQLInitManager) EnableTemplate(enable bool) {
	s.enableTemplate = enable
}

func (s *SQLInitManager) SetLogger(logger Logger) {
	s.logger = logger
}

// ExecuteInitialization runs all discovered SQL files and stops at the first failure.
func (s *SQLInitManager) ExecuteInitialization(ctx context.Context) ([]ExecutionResult, error) {
	files, err := s.GetSQLFiles()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		s.logger.Debug("no seed files", "root", s.sqlRootPath, "environment", s.environment)
		return nil, nil
	}

	results := make([]ExecutionResult, 0, len(files))
	var rows int64
	for _, file := range files {
		start := time.Now()
		n, err := s.executeFile(ctx, file)
		results = append(results, ExecutionResult{
			File:         file.Path,
			Success:      err == nil,
			Error:        err,
			Duration:     time.Since(start),
			RowsAffected: n,
		})
		if err != nil {
			s.logger.Error("seed file failed", "file", file.Path, "error", err)
			return results, fmt.Errorf("%s: %w", file.Path, err)
		}
		rows += n
		s.logger.Debug("seed file applied", "file", file.Path, "rows", n)
	}
	s.logger.Info("seed files applied", "files", len(results), "rows", rows, "environment", s.environment)
	return results, nil
}

// GetSQLFiles returns the SQL files from the common and environment directories.
// A missing directory contributes no files.
func (s *SQLInitManager) GetSQLFiles() ([]SQLFileInfo, error) {
	files, err := collectSQLFiles(filepath.Join(s.sqlRootPath, commonSQLDir), commonSQLDir)
	if err != nil {
		return nil, fmt.Errorf("list common seed files: %w", err)
	}
	if s.environment != "" {
		envFiles, err := collectSQLFiles(filepath.Join(s.sqlRootPath, "environments", s.environment), s.environment)
		if err != nil {
			return nil, fmt.Errorf("list %s seed files: %w", s.environment, err)
		}
		files = append(files, envFiles...)
	}

	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if (a.Environment == commonSQLDir) != (b.Environment == commonSQLDir) {
			return a.Environment == commonSQLDir
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.Name < b.Name
	})
	return files, nil
}

func collectSQLFiles(dir, environment string) ([]SQLFileInfo, error) {
	var files []SQLFileInfo
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		switch {
		case errors.Is(err, fs.ErrNotExist) && path == dir:
			return fs.SkipAll
		case err != nil:
			return err
		case d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), ".sql"):
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, SQLFileInfo{
			Path:        path,
			Name:        d.Name(),
			Order:       parseFileOrder(d.Name()),
			Environment: environment,
			ModTime:     info.ModTime(),
		})
		return nil
	})
	return files, err
}

// parseFileOrder reads the numeric "NN_" prefix; unnumbered files sort last.
func parseFileOrder(filename string) int {
	if m := fileOrderPattern.FindStringSubmatch(filename); m != nil {
		if order, err := strconv.Atoi(m[1]); err == nil {
			return order
		}
	}
	return 999
}

// executeFile runs the statements of one file in a single transaction and
// returns the rows they affected.
func (s *SQLInitManager) executeFile(ctx context.Context, file SQLFileInfo) (int64, error) {
	content, err := os.ReadFile(file.Path)
	if err != nil {
		return 0, err
	}
	text := string(content)
	if s.enableTemplate {
		if text, err = s.replaceEnvVariables(text); err != nil {
			return 0, err
		}
	}
	statements := splitSQLStatements(text)
	if len(statements) == 0 {
		return 0, nil
	}

	var rows int64
	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for i, stmt := range statements {
			res, err := tx.ExecContext(ctx, stmt)
			if err != nil {
				return fmt.Errorf("statement %d: %w", i+1, err)
			}
			if n, err := res.RowsAffected(); err == nil {
				rows += n
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return rows, nil
}

func (s *SQLInitManager) replaceEnvVariables(content string) (string, error) {
	tmpl, err := template.New("sql").Option("missingkey=zero").Parse(content)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	vars := make(map[string]string)
	for _, env := range os.Environ() {
		if k, v, ok := strings.Cut(env, "="); ok {
			vars[k] = v
		}
	}
	vars["ENVIRONMENT"] = s.environment
	vars["TIMESTAMP"] = time.Now().Format("2006-01-02 15:04:05")

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}

// splitSQLStatements splits content on lines ending with ";". Blank lines and
// "--" comment lines are dropped.
func splitSQLStatements(content string) []string {
	var statements []string
	var current strings.Builder

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString(" ")
		if strings.HasSuffix(line, ";") {
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
		}
	}
	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}
	return statements
}
