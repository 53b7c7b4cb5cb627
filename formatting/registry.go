// Copyright 2026 The HuggingFace Authors
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

package formatting

import (
	"fmt"
	"sort"
)

// Formatter names accepted by NewFormatter.
const (
	FormatNative = "native"
	FormatArray  = "array"
	FormatFrame  = "frame"
	FormatTensor = "tensor"
)

var formatterFactories = map[string]func(FormatConfig) any{
	FormatNative: func(FormatConfig) any { return NewNativeFormatter() },
	FormatArray:  func(cfg FormatConfig) any { return NewArrayFormatter(cfg) },
	FormatFrame:  func(cfg FormatConfig) any { return NewFrameFormatter(cfg) },
	FormatTensor: func(cfg FormatConfig) any { return NewTensorFormatter(cfg) },
}

// NewFormatter constructs the named formatter with the given config.
// The result is one of *NativeFormatter, *ArrayFormatter,
// *FrameFormatter or *TensorFormatter, and can be passed to
// FormatTable directly.
func NewFormatter(name string, config FormatConfig) (any, error) {
	factory, ok := formatterFactories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownFormatter, name, FormatterNames())
	}
	return factory(config), nil
}

// FormatterNames lists the registered formatter names, sorted.
func FormatterNames() []string {
	names := make([]string, 0, len(formatterFactories))
	for name := range formatterFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
