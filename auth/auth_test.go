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

package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	iss, err := NewIssuer("secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	raw, claims, err := iss.Issue(42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	parsed, err := iss.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.ID != claims.ID || parsed.ID == "" {
		t.Fatalf("jti %q != %q", parsed.ID, claims.ID)
	}
	if id, err := parsed.UserID(); err != nil || id != 42 {
		t.Fatalf("user id = %d, %v", id, err)
	}
}

func TestParseRejectsForeignAndExpiredTokens(t *testing.T) {
	iss, _ := NewIssuer("secret", time.Hour)
	other, _ := NewIssuer("other", time.Hour)
	raw, _, _ := other.Issue(1)
	if _, err := iss.Parse(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign signature accepted: %v", err)
	}

	past := time.Now().Add(-2 * time.Hour)
	old, _ := NewIssuer("secret", time.Hour)
	old.now = func() time.Time { return past }
	expired, _, _ := old.Issue(1)
	if _, err := iss.Parse(expired); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token accepted: %v", err)
	}
	if _, err := iss.Parse("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage accepted: %v", err)
	}
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	if _, err := NewIssuer("", 0); err == nil {
		t.Fatalf("expected error")
	}
	iss, _ := NewIssuer("s", 0)
	if iss.ttl != DefaultTokenTTL {
		t.Fatalf("ttl = %v", iss.ttl)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatal(err)
	}
	if !IsHashed(hash) || IsHashed("hunter22") {
		t.Fatalf("IsHashed wrong")
	}
	if ok, err := PasswordMatches(hash, "hunter22"); !ok || err != nil {
		t.Fatalf("match = %v, %v", ok, err)
	}
	if ok, err := PasswordMatches(hash, "wrong"); ok || err != nil {
		t.Fatalf("mismatch = %v, %v", ok, err)
	}
}
