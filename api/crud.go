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
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hongochai/shopbackend/model"
	"github.com/hongochai/shopbackend/service"
)

// decodeFunc reads an entity from the request body.
type decodeFunc[T any] func(c *gin.Context) (*T, error)

func bindJSON[T any](c *gin.Context) (*T, error) {
	var e T
	if err := c.ShouldBindJSON(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

func bindUserCreate(c *gin.Context) (*model.User, error) {
	var req model.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	return req.ToUser(), nil
}

// bindOwnToken decodes a token that must belong to the authenticated caller.
func bindOwnToken(c *gin.Context) (*model.Token, error) {
	t, err := bindJSON[model.Token](c)
	if err != nil {
		return nil, err
	}
	if caller := currentToken(c); caller == nil || caller.UserID != t.UserID {
		return nil, errForbidden
	}
	return t, nil
}

func bindUserUpdate(c *gin.Context) (*model.User, error) {
	var req model.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	return req.ToUser(), nil
}

type crudHandler[T model.Entity, PT model.EntityPtr[T]] struct {
	svc          service.Service[T]
	decodeCreate decodeFunc[T]
	decodeUpdate decodeFunc[T]
}

// registerCrud mounts create, list, get, update and delete for one resource.
// guards run before the mutating routes only.
func registerCrud[T model.Entity, PT model.EntityPtr[T]](g *gin.RouterGroup, svc service.Service[T], create, update decodeFunc[T], guards ...gin.HandlerFunc) {
	h := &crudHandler[T, PT]{svc: svc, decodeCreate: create, decodeUpdate: update}
	guards = guards[:len(guards):len(guards)]

	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.POST("", append(guards, h.create)...)
	g.PUT("/:id", append(guards, h.update)...)
	g.DELETE("/:id", append(guards, h.delete)...)
}

func (h *crudHandler[T, PT]) create(c *gin.Context) {
	e, err := h.decodeCreate(c)
	if err != nil {
		rejectBody(c, err)
		return
	}
	PT(e).SetID(0)
	created, err := h.svc.Create(c, e)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *crudHandler[T, PT]) list(c *gin.Context) {
	if c.Query("page") == "" {
		all, err := h.svc.GetAll(c)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, all)
		return
	}
	page, err1 := strconv.Atoi(c.Query("page"))
	size, err2 := strconv.Atoi(c.DefaultQuery("size", "20"))
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page or size"})
		return
	}
	p, err := h.svc.Page(c, page, size)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":       p.Items,
		"page":        p.Page,
		"size":        p.PageSize,
		"total":       p.Total,
		"total_pages": p.TotalPages(),
	})
}

func (h *crudHandler[T, PT]) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	e, err := h.svc.GetByID(c, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *crudHandler[T, PT]) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	e, err := h.decodeUpdate(c)
	if err != nil {
		rejectBody(c, err)
		return
	}
	PT(e).SetID(id)
	updated, err := h.svc.Update(c, e)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *crudHandler[T, PT]) delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c, id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// rejectBody answers 403 for a body the caller may not submit and 400 otherwise.
func rejectBody(c *gin.Context, err error) {
	if errors.Is(err, errForbidden) {
		abortWithError(c, err)
		return
	}
	badRequest(c, err)
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// pathID reads the :id parameter and answers 400 when it is not a positive integer.
func pathID(c *gin.Context) (int64, bool) {
	id, err := parseID(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
