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
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hongochai/shopbackend/model"
	"github.com/hongochai/shopbackend/service"
	"github.com/sirupsen/logrus"
)

const tokenKey = "token"

// RequestLogger logs one line per request with the request fields lifted by
// the JSON log formatter.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := log.WithFields(logrus.Fields{
			"req_method":   c.Request.Method,
			"req_uri":      c.Request.RequestURI,
			"client_ip":    c.ClientIP(),
			"status_code":  status,
			"latency_time": time.Since(start).String(),
		})
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request")
		case status >= http.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}

// CORS allows cross-origin calls from origin, answering preflight requests directly.
func CORS(origin string) gin.HandlerFunc {
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		if origin != "*" {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		h.Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RequireAuth rejects requests without a valid, unrevoked Bearer token.
func RequireAuth(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token format (must be Bearer)"})
			return
		}

		token, err := tokens.Validate(c, strings.TrimSpace(raw))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(tokenKey, token)
		c.Next()
	}
}

// OwnAccount restricts the :id routes of users to the caller's own account.
// It runs after RequireAuth; routes without :id pass through.
func OwnAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Param("id") == "" {
			return
		}
		id, ok := pathID(c)
		if !ok {
			c.Abort()
			return
		}
		if caller := currentToken(c); caller == nil || caller.UserID != id {
			abortWithError(c, errForbidden)
		}
	}
}

// OwnTokens restricts the :id routes of tokens to rows of the caller.
// It runs after RequireAuth; routes without :id pass through.
func OwnTokens(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Param("id") == "" {
			return
		}
		id, ok := pathID(c)
		if !ok {
			c.Abort()
			return
		}
		t, err := tokens.GetByID(c, id)
		if err != nil {
			abortWithError(c, err)
			return
		}
		if caller := currentToken(c); caller == nil || caller.UserID != t.UserID {
			abortWithError(c, errForbidden)
		}
	}
}

func currentToken(c *gin.Context) *model.Token {
	v, ok := c.Get(tokenKey)
	if !ok {
		return nil
	}
	t, _ := v.(*model.Token)
	return t
}
