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
	"github.com/hongochai/shopbackend/database"
	"github.com/hongochai/shopbackend/model"
)

func (s *Server) health(c *gin.Context) {
	status := database.GetHealthStatus(c)
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

func (s *Server) register(c *gin.Context) {
	var req model.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := s.svc.Users.RegisterUser(c, &req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

func (s *Server) login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := s.svc.Users.Authenticate(c, &req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}
	raw, token, err := s.svc.Tokens.IssueToken(c, u)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{Token: raw, ExpiresAt: token.ExpiresAt, User: u})
}

func (s *Server) me(c *gin.Context) {
	u, err := s.svc.Users.GetByID(c, currentToken(c).UserID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// logout revokes the token the request was made with.
func (s *Server) logout(c *gin.Context) {
	if err := s.svc.Tokens.Delete(c, currentToken(c).ID); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) searchCategories(c *gin.Context) {
	list, err := s.svc.Categories.SearchCategoriesByName(c, c.Query("name"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) productsByCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	list, err := s.svc.Products.GetByCategory(c, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) checkout(c *gin.Context) {
	var req model.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	o, err := s.svc.Orders.CreateOrderWithDetails(c, &req.Order, req.Details)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (s *Server) orderWithDetails(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	o, err := s.svc.Orders.GetWithDetails(c, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (s *Server) detailsByOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	list, err := s.svc.OrderDetails.GetByOrder(c, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// importSales saves a JSON array of sales; entries with an id replace the
// stored sale.
func (s *Server) importSales(c *gin.Context) {
	var sales []*model.Sale
	if err := c.ShouldBindJSON(&sales); err != nil {
		badRequest(c, err)
		return
	}
	if len(sales) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no sales to import"})
		return
	}
	saved, err := s.svc.Sales.ImportSales(c, sales)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (s *Server) recentSales(c *gin.Context) {
	list, err := s.svc.Sales.GetRecentSales(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
