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
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"
)

const sqliteMemoryDSN = "file::memory:?cache=shared"

type poolManager struct {
	config          *Config
	db              *bun.DB
	sqlDB           *sql.DB
	logger          Logger
	mu              sync.RWMutex
	connected       bool
	lastError       error
	healthStatus    *HealthStatus
	reconnectTries  int
	stopHealthCheck chan struct{}
	healthCheckOnce sync.Once
	stopOnce        sync.Once
}

// NewDatabaseManager returns an AbstractDatabaseManager backed by bun.
// A nil config means DefaultConfig.
func NewDatabaseManager(config *Config) AbstractDatabaseManager {
	if config == nil {
		config = DefaultConfig()
	}
	return &poolManager{
		config:          config,
		logger:          GetLogger(),
		healthStatus:    &HealthStatus{},
		stopHealthCheck: make(chan struct{}),
	}
}

func (pm *poolManager) conn() *ConnectionConfig {
	return &pm.config.ConnectionConfig
}

func (pm *poolManager) Connect(ctx context.Context) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.connected && pm.db != nil {
		return nil
	}

	var err error
	pm.sqlDB, pm.db, err = pm.createConnection()
	if err != nil {
		pm.lastError = err
		return fmt.Errorf("connect %s: %w", pm.conn().Type, err)
	}
	pm.configureConnectionPool()

	ctxTimeout, cancel := context.WithTimeout(ctx, pm.conn().ConnectTimeout)
	defer cancel()
	if err := pm.db.PingContext(ctxTimeout); err != nil {
		pm.lastError = err
		_ = pm.db.Close()
		pm.db, pm.sqlDB = nil, nil
		return fmt.Errorf("ping %s: %w", pm.conn().Type, err)
	}

	pm.connected = true
	pm.lastError = nil

	if pm.conn().HealthCheckInterval > 0 {
		pm.startHealthCheck()
	}
	pm.logger.Info("database connected", "type", pm.conn().Type, "host", pm.conn().Host, "dbname", pm.conn().DBName)
	return nil
}

// dialect resolves the configured type to a database/sql driver name, its DSN
// and the matching bun dialect.
func (pm *poolManager) dialect() (driver, dsn string, d schema.Dialect, err error) {
	switch strings.ToLower(pm.conn().Type) {
	case "mysql":
		return "mysql", pm.mysqlDSN(), mysqldialect.New(), nil
	case "postgres", "postgresql":
		return "postgres", pm.postgresDSN(), pgdialect.New(), nil
	case "sqlite", "sqlite3":
		return sqliteshim.ShimName, pm.sqliteDSN(), sqlitedialect.New(), nil
	}
	return "", "", nil, fmt.Errorf("unsupported database type: %s", pm.conn().Type)
}

func (pm *poolManager) createConnection() (*sql.DB, *bun.DB, error) {
	cfg := pm.conn()
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 30 * time.Second
	}

	driver, dsn, dialect, err := pm.dialect()
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", driver, err)
	}
	db := bun.NewDB(sqlDB, dialect)
	pm.addQueryHooks(db)
	return sqlDB, db, nil
}

func (pm *poolManager) addQueryHooks(db *bun.DB) {
	cfg := pm.conn()
	if cfg.EnableQueryLog {
		if cfg.QueryLogMode == QueryLogColor {
			db.AddQueryHook(NewQueryHook(nil))
		} else {
			db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true), bundebug.FromEnv("BUNDEBUG")))
		}
	}
	if cfg.SlowQueryTime > 0 {
		db.AddQueryHook(NewSlowQueryHook(cfg.SlowQueryTime, pm.logger))
	}
}

// mysqlDSN always sets parseTime so DATETIME columns scan into time.Time.
func (pm *poolManager) mysqlDSN() string {
	cfg := pm.conn()
	charset := cfg.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local&timeout=%s&readTimeout=%s&writeTimeout=%s",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
		charset, cfg.ConnectTimeout, cfg.ReadTimeout, cfg.WriteTimeout)
}

func (pm *poolManager) postgresDSN() string {
	cfg := pm.conn()
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&connect_timeout=%d",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
		sslMode, int(cfg.ConnectTimeout.Seconds()))
}

// sqliteDSN maps DBName to "<name>.db", or to a shared in-memory database.
func (pm *poolManager) sqliteDSN() string {
	if pm.conn().IsMemory() {
		return sqliteMemoryDSN
	}
	return pm.conn().DBName + ".db"
}

func (pm *poolManager) configureConnectionPool() {
	if pm.sqlDB == nil {
		return
	}
	cfg := pm.conn()
	// An in-memory database lives only as long as its connection.
	if cfg.IsMemory() {
		pm.sqlDB.SetMaxOpenConns(1)
		pm.sqlDB.SetMaxIdleConns(1)
		pm.sqlDB.SetConnMaxLifetime(0)
		pm.sqlDB.SetConnMaxIdleTime(0)
		return
	}
	pm.sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	pm.sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	pm.sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	pm.sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
}

// Disconnect stops the health check and closes the connection.
func (pm *poolManager) Disconnect() error {
	pm.stopOnce.Do(func() { close(pm.stopHealthCheck) })
	return pm.closeConnection()
}

func (pm *poolManager) closeConnection() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.db == nil {
		return nil
	}
	err := pm.db.Close()
	pm.db, pm.sqlDB, pm.connected = nil, nil, false
	if err != nil {
		pm.logger.Error("close database", "error", err)
		return err
	}
	pm.logger.Info("database closed", "type", pm.conn().Type)
	return nil
}

func (pm *poolManager) Reconnect(ctx context.Context) error {
	if err := pm.closeConnection(); err != nil {
		pm.logger.Warn("close before reconnect", "error", err)
	}
	return pm.Connect(ctx)
}

func (pm *poolManager) Ping(ctx context.Context) error {
	pm.mu.RLock()
	db := pm.db
	pm.mu.RUnlock()
	if db == nil {
		return ErrNotConnected
	}
	return db.PingContext(ctx)
}

func (pm *poolManager) GetDB() *bun.DB {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.db
}

func (pm *poolManager) GetSQLDB() *sql.DB {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.sqlDB
}

func (pm *poolManager) HealthCheck(ctx context.Context) *HealthStatus {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	start := time.Now()
	status := &HealthStatus{
		CheckedAt: start,
		Type:      pm.conn().Type,
	}
	if pm.db == nil {
		status.LastError = ErrNotConnected.Error()
		pm.healthStatus = status
		return status
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pm.lastError = pm.db.PingContext(pingCtx)
	status.Latency = time.Since(start)
	status.Healthy = pm.lastError == nil
	status.Connected = status.Healthy
	if pm.lastError != nil {
		status.LastError = pm.lastError.Error()
	}
	status.Pool = newDBStats(pm.sqlDB.Stats())

	pm.healthStatus = status
	return status
}

func (pm *poolManager) startHealthCheck() {
	pm.healthCheckOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(pm.conn().HealthCheckInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
					status := pm.HealthCheck(ctx)
					cancel()
					if !status.Healthy && pm.conn().EnableReconnect {
						pm.handleReconnect()
					}
				case <-pm.stopHealthCheck:
					return
				}
			}
		}()
	})
}

// handleReconnect runs on the health check goroutine only.
func (pm *poolManager) handleReconnect() {
	cfg := pm.conn()
	if pm.reconnectTries >= cfg.MaxReconnectTries {
		pm.logger.Error("reconnect attempts exhausted", "tries", pm.reconnectTries)
		return
	}
	pm.reconnectTries++
	pm.logger.Info("reconnecting", "try", pm.reconnectTries)

	select {
	case <-time.After(cfg.ReconnectInterval):
	case <-pm.stopHealthCheck:
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()
	if err := pm.Reconnect(ctx); err != nil {
		pm.logger.Error("reconnect failed", "error", err, "try", pm.reconnectTries)
		return
	}
	pm.reconnectTries = 0
	pm.logger.Info("reconnected")
}

func (pm *poolManager) RunMigrations(ctx context.Context) error {
	db := pm.GetDB()
	if db == nil {
		return ErrNotConnected
	}
	return NewMigrationManager(db, pm.logger, pm.config).RunMigrations(ctx)
}

func (pm *poolManager) InitData(ctx context.Context) error {
	db := pm.GetDB()
	if db == nil {
		return ErrNotConnected
	}
	return NewMigrationManager(db, pm.logger, pm.config).InitData(ctx)
}

func (pm *poolManager) SetLogger(logger Logger) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.logger = logger
}
