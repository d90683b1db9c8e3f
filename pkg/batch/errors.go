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

package batch

import "errors"

// ErrAgentNotFound is returned when a job names an agent that resolves
// through neither the registry nor a remote backend override.
var ErrAgentNotFound = errors.New("batch: agent not found")

// ConfigError reports a malformed or incomplete batch-job configuration,
// naming the offending field.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "batch: config: " + e.Message
	}
	return "batch: config: " + e.Field + " " + e.Message
}
