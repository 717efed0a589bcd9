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
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/hongochai/shopbackend/auth"
	"github.com/hongochai/shopbackend/database"
	"github.com/hongochai/shopbackend/model"
	"github.com/hongochai/shopbackend/repository"
	"github.com/hongochai/shopbackend/service"
	"golang.org/x/crypto/bcrypt"
)

var registerOnce sync.Once

var errForbidden = errors.New("forbidden")

// registerValidators adds the custom binding rules used by the model tags.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err := v.RegisterValidation("orderstatus", validOrderStatus); err != nil {
			log.WithError(err).Error("register orderstatus validator")
		}
		if err := v.RegisterValidation("bcryptlen", fitsBcrypt); err != nil {
			log.WithError(err).Error("register bcryptlen validator")
		}
	})
}

func validOrderStatus(fl validator.FieldLevel) bool {
	return model.OrderStatus(fl.Field().Int()).IsValid()
}

// fitsBcrypt limits a password to the bytes bcrypt hashes, counted in UTF-8.
func fitsBcrypt(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= maxPasswordBytes
}

const maxPasswordBytes = 72

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, errForbidden):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, service.ErrEmptyOrder), errors.Is(err, bcrypt.ErrPasswordTooLong):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, service.ErrTokenRevoked):
		return http.StatusUnauthorized
	}
	if ok, kind := database.IsSqlError(err); ok {
		switch kind {
		case database.DuplicateKeyErr, database.ForeignKeyViolationErr:
			return http.StatusConflict
		case database.NotNullViolationErr, database.CheckConstraintViolationErr,
			database.DataTruncatedErr, database.InvalidTypeCastErr:
			return http.StatusBadRequest
		case database.NoRowsErr:
			return http.StatusNotFound
		}
	}
	return http.StatusInternalServerError
}

// abortWithError answers with the status mapped from err. Server errors are
// logged and their detail is not sent to the client.
func abortWithError(c *gin.Context, err error) {
	status := mapErrorToStatus(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("req_uri", c.Request.RequestURI).Error("request failed")
		c.AbortWithStatusJSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
