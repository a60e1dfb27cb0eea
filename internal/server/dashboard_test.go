package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardLifecycle(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	d := NewDashboard("0", handler, nil)

	t.Run("stop before start is a no-op", func(t *testing.T) {
		require.NoError(t, d.Stop(context.Background()))
		assert.False(t, d.Running())
	})

	t.Run("start once", func(t *testing.T) {
		assert.True(t, d.Start())
		assert.True(t, d.Running())
	})

	t.Run("second start is rejected", func(t *testing.T) {
		assert.False(t, d.Start())
	})

	t.Run("stop shuts the worker down", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		require.NoError(t, d.Stop(ctx))
		assert.False(t, d.Running())
	})
}
