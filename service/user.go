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

	"github.com/hongochai/shopbackend/auth"
	"github.com/hongochai/shopbackend/database"
	"github.com/hongochai/shopbackend/model"
	"github.com/hongochai/shopbackend/repository"
	"github.com/hongochai/shopbackend/utils"
	"github.com/uptrace/bun"
)

// ErrUsernameTaken is returned when registering an existing username.
var ErrUsernameTaken = errors.New("username already taken")

var log = utils.NewLogger("SERVICE")

// UserService stores passwords as bcrypt hashes.
type UserService struct {
	*CrudService[model.User]
	users  *repository.UserRepository
	tokens *repository.TokenRepository
}

func NewUserService(db *bun.DB) *UserService {
	users := repository.NewUserRepository(db)
	return &UserService{
		CrudService: NewCrudService[model.User](users, model.MergeUser, "user"),
		users:       users,
		tokens:      repository.NewTokenRepository(db),
	}
}

func hashIfPlain(u *model.User) error {
	if u.Password == "" || auth.IsHashed(u.Password) {
		return nil
	}
	hash, err := auth.HashPassword(u.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.Password = hash
	return nil
}

func (s *UserService) Create(ctx context.Context, u *model.User) (*model.User, error) {
	if err := hashIfPlain(u); err != nil {
		return nil, err
	}
	return s.CrudService.Create(ctx, u)
}

// Update copies the profile fields and, when u carries one, the re-hashed
// password. A new password revokes every token of the user.
func (s *UserService) Update(ctx context.Context, u *model.User) (*model.User, error) {
	if err := hashIfPlain(u); err != nil {
		return nil, err
	}
	updated, err := s.CrudService.Update(ctx, u)
	if err != nil || u.Password == "" {
		return updated, err
	}
	n, err := s.tokens.DeleteByUser(ctx, updated.ID)
	if err != nil {
		return nil, fmt.Errorf("revoke tokens of user %d: %w", updated.ID, err)
	}
	log.WithField("user_id", updated.ID).WithField("tokens", n).Info("password changed")
	return updated, nil
}

func (s *UserService) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("find user %q: %w", username, err)
	}
	return u, nil
}

// RegisterUser creates a user from req, failing with ErrUsernameTaken when the
// username exists.
func (s *UserService) RegisterUser(ctx context.Context, req *model.UserRequest) (*model.User, error) {
	exists, err := s.users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}
	if exists {
		return nil, ErrUsernameTaken
	}
	u, err := s.Create(ctx, req.ToUser())
	if err != nil {
		if is, kind := database.IsSqlError(err); is && kind == database.DuplicateKeyErr {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	log.WithField("user_id", u.ID).Info("user registered")
	return u, nil
}

// Authenticate returns the user when the credentials match, and nil without an
// error when they do not.
func (s *UserService) Authenticate(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	u, err := s.users.FindByUsername(ctx, req.Username)
	if errors.Is(err, repository.ErrNotFound) {
		log.WithField("username", req.Username).Info("login for unknown user")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	ok, err := auth.PasswordMatches(u.Password, req.Password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !ok {
		log.WithField("user_id", u.ID).Info("login with wrong password")
		return nil, nil
	}
	return u, nil
}

// LoginUser reports whether the credentials match a stored user.
func (s *UserService) LoginUser(ctx context.Context, req *model.LoginRequest) (bool, error) {
	u, err := s.Authenticate(ctx, req)
	return u != nil, err
}
