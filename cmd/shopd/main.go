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

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hongochai/shopbackend/api"
	"github.com/hongochai/shopbackend/auth"
	"github.com/hongochai/shopbackend/config"
	"github.com/hongochai/shopbackend/database"
	"github.com/hongochai/shopbackend/service"
	"github.com/hongochai/shopbackend/utils"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config (default "+config.DefaultPath+")")
	envFile := flag.String("env", "", "optional .env file (default .env)")
	seedEnv := flag.String("seed", "", "run the SQL seed files of this environment and exit")
	exportFKs := flag.String("export-fks", "", "write the registered foreign keys as YAML to this path and exit")
	flag.Parse()

	if *exportFKs != "" {
		if err := database.ExportForeignKeys(*exportFKs); err != nil {
			utils.NewLogger("MAIN").WithError(err).Fatal("export foreign keys")
		}
		return
	}

	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	cfg, err := config.Load(*configPath, envFiles...)
	if err != nil {
		utils.NewLogger("MAIN").WithError(err).Fatal("load config")
	}
	utils.Configure(cfg.Log)
	log := utils.NewLogger("MAIN")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(ctx, &cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("init database")
	}
	defer func() {
		if err := database.CloseDB(); err != nil {
			log.WithError(err).Warn("close database")
		}
	}()

	if *seedEnv != "" {
		if err := database.InitDataWithSQL(ctx, *seedEnv); err != nil {
			log.WithError(err).WithField("environment", *seedEnv).Fatal("seed data")
		}
		log.WithField("environment", *seedEnv).Info("seed data applied")
		return
	}

	issuer, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		log.WithError(err).Fatal("create token issuer")
	}
	svc := service.New(db, issuer)
	go purgeTokens(ctx, svc.Tokens, cfg.Auth.PurgeInterval)

	httpServer := api.NewServer(svc, cfg.Server).HTTPServer()
	go func() {
		log.WithField("addr", httpServer.Addr).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server error")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown error")
	}
}

// purgeTokens removes expired tokens every interval until ctx is done.
func purgeTokens(ctx context.Context, tokens *service.TokenService, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := tokens.PurgeExpired(ctx); err != nil {
				utils.NewLogger("MAIN").WithError(err).Warn("purge expired tokens")
			}
		}
	}
}
