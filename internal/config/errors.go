// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "errors"

// Load failures that callers branch on. Validation failures are reported as
// validate.ValidationError instead.
var (
	ErrUnknownConfigField = errors.New("unknown config field")
	ErrMultipleDocuments  = errors.New("config file must contain a single YAML document")
	ErrUnsupportedFormat  = errors.New("unsupported config format (only YAML supported)")
)
