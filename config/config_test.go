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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
  read_timeout: 3s
log:
  level: debug
database:
  connection:
    type: sqlite
    dbname: shop
  migrate:
    enable_migrate_on_startup: true
auth:
  jwt_secret: from-file
  token_ttl: 2h
`)
	t.Setenv("SERVER_ADDR", ":9100")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9100" || cfg.Server.ReadTimeout != 3*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.WriteTimeout != 15*time.Second {
		t.Errorf("default write timeout lost: %v", cfg.Server.WriteTimeout)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if cfg.Database.ConnectionConfig.Type != "sqlite" || cfg.Database.ConnectionConfig.DBName != "shop" {
		t.Errorf("database = %+v", cfg.Database.ConnectionConfig)
	}
	if cfg.Auth.JWTSecret != "from-env" || cfg.Auth.TokenTTL != 2*time.Hour {
		t.Errorf("auth = %+v", cfg.Auth)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	path := writeConfig(t, "server:\n  addr: \":8080\"\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected missing secret error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for explicit missing file")
	}
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	if err := os.WriteFile(env, []byte("JWT_SECRET=dotenv-secret\nTOKEN_TTL=30m\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")
	t.Setenv("TOKEN_TTL", "")
	os.Unsetenv("TOKEN_TTL")

	cfg, err := Load(writeConfig(t, "log:\n  level: warn\n"), env)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.JWTSecret != "dotenv-secret" || cfg.Auth.TokenTTL != 30*time.Minute {
		t.Errorf("auth = %+v", cfg.Auth)
	}
}
