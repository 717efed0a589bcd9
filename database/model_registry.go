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

package database

import (
	"reflect"
	"sort"
	"sync"
)

var defaultRegistry = &modelRegistry{}

// SQLModel is a bun model whose table is created by the base migration.
// Lower priorities are created first, so referenced tables precede the
// tables that point at them.
type SQLModel interface {
	Instance() interface{}
	Priority() int
}

type modelRegistry struct {
	models []SQLModel
	mutex  sync.RWMutex
}

func (r *modelRegistry) register(model SQLModel) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, m := range r.models {
		if reflect.TypeOf(m.Instance()) == reflect.TypeOf(model.Instance()) {
			return false
		}
	}
	r.models = append(r.models, model)
	return true
}

func (r *modelRegistry) sorted() []SQLModel {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	result := make([]SQLModel, len(r.models))
	copy(result, r.models)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Priority() < result[j].Priority()
	})
	return result
}

// ModelAdapter turns a bare struct pointer into an SQLModel.
type ModelAdapter struct {
	instance interface{}
	priority int
}

func NewModelAdapter(instance interface{}, priority int) SQLModel {
	return &ModelAdapter{instance: instance, priority: priority}
}

func (a *ModelAdapter) Instance() interface{} { return a.instance }

func (a *ModelAdapter) Priority() int { return a.priority }

// RegisterModel adds instance to the registry together with the foreign keys
// its table owns. Registering the same type twice is a no-op.
func RegisterModel(instance interface{}, priority int, fks ...ForeignKeyConstraint) {
	if defaultRegistry.register(NewModelAdapter(instance, priority)) && len(fks) > 0 {
		RegisterForeignKeys(fks...)
	}
}

// GetRegisteredModels returns the registered models by ascending priority.
func GetRegisteredModels() []SQLModel {
	return defaultRegistry.sorted()
}

// RegisteredModelInstances returns the struct pointers of GetRegisteredModels.
func RegisteredModelInstances() []interface{} {
	models := GetRegisteredModels()
	instances := make([]interface{}, len(models))
	for i, model := range models {
		instances[i] = model.Instance()
	}
	return instances
}

// IndexDef is a secondary index created by the index migration.
type IndexDef struct {
	Table   string
	Name    string
	Columns []string
	Unique  bool
}

var (
	indexMu sync.RWMutex
	indexes []IndexDef
)

// RegisterIndexes records indexes by name; a name already present is skipped.
func RegisterIndexes(defs ...IndexDef) {
	indexMu.Lock()
	defer indexMu.Unlock()
next:
	for _, d := range defs {
		for _, have := range indexes {
			if have.Name == d.Name {
				continue next
			}
		}
		indexes = append(indexes, d)
	}
}

func RegisteredIndexes() []IndexDef {
	indexMu.RLock()
	defer indexMu.RUnlock()
	return append([]IndexDef(nil), indexes...)
}
