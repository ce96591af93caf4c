// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package manager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerRegistryRejectsAfterClose(t *testing.T) {
	var r workerRegistry
	ran := make(chan struct{})
	require.True(t, r.Go(func() { close(ran) }))
	<-ran

	require.NoError(t, r.CloseAndWait(context.Background()))
	assert.False(t, r.Go(func() { t.Error("worker started after close") }))
}

func TestWorkerRegistryBoundedJoin(t *testing.T) {
	var r workerRegistry
	release := make(chan struct{})
	require.True(t, r.Go(func() { <-release }))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := r.CloseAndWait(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	close(release)
	require.NoError(t, r.CloseAndWait(context.Background()))
}
