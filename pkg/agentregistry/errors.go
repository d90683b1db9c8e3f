// Copyright 2025 The AWorld Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package agentregistry

import "errors"

var (
	// ErrNotFound is returned when a lookup finds no matching descriptor.
	ErrNotFound = errors.New("agentregistry: descriptor not found")
	// ErrInvalidDescriptor is returned when a descriptor fails validation.
	ErrInvalidDescriptor = errors.New("agentregistry: invalid descriptor")
	// ErrDuplicateInBatch is returned when register_many is given two
	// descriptors resolving to the same key.
	ErrDuplicateInBatch = errors.New("agentregistry: duplicate key within batch")
)

// RegistryError wraps a registry operation failure with the offending key.
type RegistryError struct {
	Op      string
	Key     string
	Message string
	Err     error
}

func (e *RegistryError) Error() string {
	if e.Key != "" {
		return "agentregistry: " + e.Op + " " + e.Key + ": " + e.Message
	}
	return "agentregistry: " + e.Op + ": " + e.Message
}

func (e *RegistryError) Unwrap() error { return e.Err }
