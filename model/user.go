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

// User is a registered customer. Password holds the bcrypt hash and is never
// written to JSON.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id"`
	Username    string    `bun:"username,notnull,unique" json:"username"`
	Password    string    `bun:"password,notnull" json:"-"`
	Email       string    `bun:"email" json:"email"`
	FullName    string    `bun:"full_name" json:"full_name"`
	PhoneNumber string    `bun:"phone_number" json:"phone_number"`
	Address     string    `bun:"address" json:"address"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

var _ bun.BeforeAppendModelHook = (*User)(nil)

func (u User) GetID() int64 { return u.ID }

func (u *User) SetID(id int64) { u.ID = id }

func (u *User) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	stampTimes(query, &u.CreatedAt, &u.UpdatedAt)
	return nil
}

// MergeUser copies the profile fields of src into dst. The password is only
// replaced when src carries one; hashing is up to the caller.
func MergeUser(dst, src *User) {
	dst.Email = src.Email
	dst.FullName = src.FullName
	dst.PhoneNumber = src.PhoneNumber
	dst.Address = src.Address
	if src.Password != "" {
		dst.Password = src.Password
	}
}

// UserRequest is the JSON body accepted when creating, updating or
// registering a user.
type UserRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=64"`
	Password    string `json:"password" binding:"required,min=6,bcryptlen"`
	Email       string `json:"email" binding:"omitempty,email"`
	FullName    string `json:"full_name" binding:"max=128"`
	PhoneNumber string `json:"phone_number" binding:"max=32"`
	Address     string `json:"address" binding:"max=255"`
}

func (r *UserRequest) ToUser() *User {
	return &User{
		Username:    r.Username,
		Password:    r.Password,
		Email:       r.Email,
		FullName:    r.FullName,
		PhoneNumber: r.PhoneNumber,
		Address:     r.Address,
	}
}

// UserUpdateRequest is UserRequest with every field optional except the
// profile ones; the username never changes.
type UserUpdateRequest struct {
	Password    string `json:"password" binding:"omitempty,min=6,bcryptlen"`
	Email       string `json:"email" binding:"omitempty,email"`
	FullName    string `json:"full_name" binding:"max=128"`
	PhoneNumber string `json:"phone_number" binding:"max=32"`
	Address     string `json:"address" binding:"max=255"`
}

func (r *UserUpdateRequest) ToUser() *User {
	return &User{
		Password:    r.Password,
		Email:       r.Email,
		FullName:    r.FullName,
		PhoneNumber: r.PhoneNumber,
		Address:     r.Address,
	}
}

// LoginRequest carries credentials for login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
