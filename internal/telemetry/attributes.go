// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys shared by spans across the service.
const (
	// HTTP attributes
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"

	// Session attributes
	SessionInputKey    = "session.input_id"
	SessionKindKey     = "session.kind"
	SessionHandleKey   = "session.handle"
	HardwareInputKey   = "hardware.input_id"
	TopologyChangeKey  = "topology.change"
	TopologyFailureKey = "topology.failures"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates admin HTTP span attributes.
func HTTPAttributes(method, route string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// SessionAttributes describes a session creation request.
func SessionAttributes(inputID, kind string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)
	if inputID != "" {
		attrs = append(attrs, attribute.String(SessionInputKey, inputID))
	}
	if kind != "" {
		attrs = append(attrs, attribute.String(SessionKindKey, kind))
	}
	return attrs
}

// HardwareAttributes describes the hardware input behind a passthrough session.
func HardwareAttributes(inputID string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(SessionKindKey, "passthrough"),
		attribute.String(HardwareInputKey, inputID),
	}
}

// TopologyAttributes describes one observer broadcast.
func TopologyAttributes(change string, failures int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(TopologyChangeKey, change),
		attribute.Int(TopologyFailureKey, failures),
	}
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
