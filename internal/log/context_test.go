// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		cid  string
		sid  string
	}{
		{name: "nil context", ctx: nil},
		{name: "empty context", ctx: context.Background()},
		{name: "correlation only", ctx: ContextWithCorrelationID(context.Background(), "c-1"), cid: "c-1"},
		{
			name: "both",
			ctx:  ContextWithSessionID(ContextWithCorrelationID(context.Background(), "c-2"), "s-2"),
			cid:  "c-2",
			sid:  "s-2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.cid, CorrelationIDFromContext(tt.ctx))
			assert.Equal(t, tt.sid, SessionIDFromContext(tt.ctx))
		})
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := ContextWithSessionID(ContextWithCorrelationID(context.Background(), "corr"), "sess")
	l := WithContext(ctx, base)
	l.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "corr", entry[FieldCorrelationID])
	assert.Equal(t, "sess", entry[FieldSessionID])
}

func TestWithContextWithoutFieldsReturnsSameLogger(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	l := WithContext(context.Background(), base)
	l.Info().Msg("plain")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, hasCorr := entry[FieldCorrelationID]
	assert.False(t, hasCorr)
}
