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

package model

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Token is an issued access token. Value is the JWT id; a token stays valid
// only while its row exists.
type Token struct {
	bun.BaseModel `bun:"table:tokens,alias:t"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Value     string    `bun:"token,notnull,unique" json:"token"`
	UserID    int64     `bun:"user_id,notnull" json:"user_id" binding:"required"`
	CreateAt  time.Time `bun:"create_at,nullzero,notnull,default:current_timestamp" json:"create_at"`
	ExpiresAt time.Time `bun:"expires_at,nullzero" json:"expires_at"`

	User *User `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
}

var _ bun.BeforeAppendModelHook = (*Token)(nil)

func (t Token) GetID() int64 { return t.ID }

func (t *Token) SetID(id int64) { t.ID = id }

func (t *Token) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	stampTimes(query, &t.CreateAt, nil)
	return nil
}

// MergeToken copies the creation time and the owning user.
func MergeToken(dst, src *Token) {
	dst.CreateAt = src.CreateAt
	dst.UserID = src.UserID
}
