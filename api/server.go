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

package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hongochai/shopbackend/model"
	"github.com/hongochai/shopbackend/service"
	"github.com/hongochai/shopbackend/utils"
)

var log = utils.NewLogger("HTTP")

// Options is the server section of the application configuration.
type Options struct {
	Addr            string        `yaml:"addr"`
	Mode            string        `yaml:"mode"` // debug, release, test
	AllowOrigin     string        `yaml:"allow_origin"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

func DefaultOptions() Options {
	return Options{
		Addr:            ":8080",
		Mode:            gin.ReleaseMode,
		AllowOrigin:     "*",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

type Server struct {
	engine *gin.Engine
	svc    *service.Services
	opts   Options
}

func NewServer(svc *service.Services, opts Options) *Server {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	registerValidators()

	r := gin.New()
	r.Use(RequestLogger(), gin.Recovery(), CORS(opts.AllowOrigin))
	s := &Server{engine: r, svc: svc, opts: opts}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

// HTTPServer wraps the engine in an http.Server configured from the options.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}
}

func (s *Server) registerRoutes() {
	requireAuth := RequireAuth(s.svc.Tokens)

	api := s.engine.Group("/api")
	api.GET("/health", s.health)

	auth := api.Group("/auth")
	{
		auth.POST("/register", s.register)
		auth.POST("/login", s.login)
		auth.GET("/me", requireAuth, s.me)
		auth.POST("/logout", requireAuth, s.logout)
	}

	users := api.Group("/users")
	registerCrud[model.User](users, s.svc.Users, bindUserCreate, bindUserUpdate, requireAuth, OwnAccount())

	categories := api.Group("/categories")
	categories.GET("/search", s.searchCategories)
	registerCrud[model.Category](categories, s.svc.Categories, bindJSON[model.Category], bindJSON[model.Category])

	products := api.Group("/products")
	products.GET("/category/:id", s.productsByCategory)
	registerCrud[model.Product](products, s.svc.Products, bindJSON[model.Product], bindJSON[model.Product])

	orders := api.Group("/orders")
	orders.POST("/checkout", s.checkout)
	orders.GET("/:id/details", s.orderWithDetails)
	registerCrud[model.Orders](orders, s.svc.Orders, bindJSON[model.Orders], bindJSON[model.Orders])

	details := api.Group("/order-details")
	details.GET("/order/:id", s.detailsByOrder)
	registerCrud[model.OrderDetail](details, s.svc.OrderDetails, bindJSON[model.OrderDetail], bindJSON[model.OrderDetail])

	sales := api.Group("/sales")
	sales.GET("/recent", s.recentSales)
	sales.POST("/import", s.importSales)
	registerCrud[model.Sale](sales, s.svc.Sales, bindJSON[model.Sale], bindJSON[model.Sale])

	tokens := api.Group("/tokens")
	registerCrud[model.Token](tokens, s.svc.Tokens, bindOwnToken, bindOwnToken, requireAuth, OwnTokens(s.svc.Tokens))
}
