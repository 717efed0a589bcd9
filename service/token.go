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

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hongochai/shopbackend/auth"
	"github.com/hongochai/shopbackend/model"
	"github.com/hongochai/shopbackend/repository"
	"github.com/uptrace/bun"
)

// ErrTokenRevoked is returned for a well-formed token whose row is gone.
var ErrTokenRevoked = errors.New("token revoked")

type TokenService struct {
	*CrudService[model.Token]
	tokens *repository.TokenRepository
	issuer *auth.Issuer
}

func NewTokenService(db *bun.DB, issuer *auth.Issuer) *TokenService {
	tokens := repository.NewTokenRepository(db)
	return &TokenService{
		CrudService: NewCrudService[model.Token](tokens, model.MergeToken, "token"),
		tokens:      tokens,
		issuer:      issuer,
	}
}

// Create assigns a random value when t has none.
func (s *TokenService) Create(ctx context.Context, t *model.Token) (*model.Token, error) {
	if t.Value == "" {
		t.Value = uuid.NewString()
	}
	return s.CrudService.Create(ctx, t)
}

// IssueToken signs a JWT for user and records its id in the tokens table.
func (s *TokenService) IssueToken(ctx context.Context, user *model.User) (string, *model.Token, error) {
	raw, claims, err := s.issuer.Issue(user.ID)
	if err != nil {
		return "", nil, err
	}
	token := &model.Token{
		Value:     claims.ID,
		UserID:    user.ID,
		CreateAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if _, err := s.CrudService.Create(ctx, token); err != nil {
		return "", nil, err
	}
	return raw, token, nil
}

// Validate checks the signature and expiry of raw and that its row still exists.
func (s *TokenService) Validate(ctx context.Context, raw string) (*model.Token, error) {
	claims, err := s.issuer.Parse(raw)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.FindByValue(ctx, claims.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTokenRevoked
	}
	if err != nil {
		return nil, fmt.Errorf("validate token: %w", err)
	}
	return token, nil
}

// PurgeExpired deletes tokens that expired before now.
func (s *TokenService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.tokens.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("purge tokens: %w", err)
	}
	if n > 0 {
		log.WithField("count", n).Info("expired tokens purged")
	}
	return n, nil
}
