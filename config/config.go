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

// Package config loads the application configuration from a YAML file, an
// optional .env file and the process environment, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/hongochai/shopbackend/api"
	"github.com/hongochai/shopbackend/auth"
	"github.com/hongochai/shopbackend/database"
	"github.com/hongochai/shopbackend/utils"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

type AuthOptions struct {
	JWTSecret     string        `yaml:"jwt_secret"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
	PurgeInterval time.Duration `yaml:"purge_interval"`
}

type Config struct {
	Server   api.Options      `yaml:"server"`
	Log      utils.LogOptions `yaml:"log"`
	Database database.Config  `yaml:"database"`
	Auth     AuthOptions      `yaml:"auth"`
}

func Default() *Config {
	return &Config{
		Server:   api.DefaultOptions(),
		Log:      utils.LogOptions{Level: "info", Format: "text", FileDir: "logs", MaxAgeDays: 7},
		Database: *database.DefaultConfig(),
		Auth: AuthOptions{
			TokenTTL:      auth.DefaultTokenTTL,
			PurgeInterval: time.Hour,
		},
	}
}

// Load reads path over the defaults, then applies .env and the environment.
// A missing file at path is only an error when path was given explicitly.
func Load(path string, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values from the environment. DB_* variables are
// applied later by the database factory.
func (c *Config) applyEnv() {
	c.Server.Addr = utils.EnvDefaultString("SERVER_ADDR", c.Server.Addr)
	c.Server.Mode = utils.EnvDefaultString("GIN_MODE", c.Server.Mode)
	c.Server.AllowOrigin = utils.EnvDefaultString("CORS_ALLOW_ORIGIN", c.Server.AllowOrigin)
	c.Log.Level = utils.EnvDefaultString("LOG_LEVEL", c.Log.Level)
	c.Log.Format = utils.EnvDefaultString("CONSOLE_LOG_FORMAT", c.Log.Format)
	c.Log.FileEnabled = utils.EnvDefaultBool("FILE_LOG_ENABLED", c.Log.FileEnabled)
	c.Auth.JWTSecret = utils.EnvDefaultString("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.TokenTTL = utils.EnvDefaultDuration("TOKEN_TTL", c.Auth.TokenTTL)
}

func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (JWT_SECRET) is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	return nil
}
