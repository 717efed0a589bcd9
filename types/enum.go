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

package types

// Values reported by an enum outside its defined range.
const (
	UnknownNumber = -1
	UnknownName   = "unknown"
)

// BaseEnum is implemented by integer enums stored as numbers and shown by name.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// EnumNames lists the names of the valid values among 0..n-1.
func EnumNames[E BaseEnum](n int, of func(int) E) []string {
	var names []string
	for i := range n {
		if e := of(i); e.IsValid() {
			names = append(names, e.Name())
		}
	}
	return names
}
