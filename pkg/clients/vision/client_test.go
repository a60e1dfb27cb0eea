package vision

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbarry-dev/stationtrack/internal/config"
	"github.com/dbarry-dev/stationtrack/internal/domain/models"
)

func frameFixture() models.Frame {
	return models.Frame{Data: []byte{0xff, 0xd8}, MediaType: "image/jpeg"}
}

func newGateway(t *testing.T, handler http.Handler) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.VisionConfig{BaseURL: srv.URL})
}

func TestFrame(t *testing.T) {
	t.Run("returns encoded frame bytes", func(t *testing.T) {
		client := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/camera/frame", r.URL.Path)
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte{0xff, 0xd8, 0xff})
		}))

		frame, err := client.Frame(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []byte{0xff, 0xd8, 0xff}, frame.Data)
		assert.Equal(t, "image/jpeg", frame.MediaType)
		assert.False(t, frame.CapturedAt.IsZero())
	})

	t.Run("gone stream maps to ErrStreamEnded", func(t *testing.T) {
		client := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusGone)
		}))

		_, err := client.Frame(context.Background())
		assert.ErrorIs(t, err, ErrStreamEnded)
	})

	t.Run("empty body maps to ErrStreamEnded", func(t *testing.T) {
		client := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		_, err := client.Frame(context.Background())
		assert.ErrorIs(t, err, ErrStreamEnded)
	})
}

func TestDecode(t *testing.T) {
	client := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/decode", r.URL.Path)
		require.Equal(t, "image/jpeg", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"detections":[{"value":"ABC123","symbology":"QRCODE","polygon":[{"x":1,"y":2}]}]}`))
	}))

	detections, err := client.Decode(context.Background(), frameFixture())
	require.NoError(t, err)
	require.Len(t, detections, 1)
	assert.Equal(t, "ABC123", detections[0].Value)
	assert.Equal(t, "QRCODE", detections[0].Symbology)
	require.Len(t, detections[0].Polygon, 1)
	assert.Equal(t, 1, detections[0].Polygon[0].X)
}

func TestDecodeGatewayError(t *testing.T) {
	client := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"bad_image","message":"unsupported format"}}`))
	}))

	_, err := client.Decode(context.Background(), frameFixture())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestStopRequested(t *testing.T) {
	t.Run("stop flag set", func(t *testing.T) {
		client := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/controls/stop", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"stop":true}`))
		}))

		assert.True(t, client.StopRequested(context.Background()))
	})

	t.Run("transport failure reads as no stop", func(t *testing.T) {
		client := NewClient(config.VisionConfig{BaseURL: "http://127.0.0.1:1"})
		assert.False(t, client.StopRequested(context.Background()))
	})
}

func TestExtractText(t *testing.T) {
	client := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ocr", r.URL.Path)
		require.Equal(t, "true", r.URL.Query().Get("grayscale"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"LOT 4711"}`))
	}))

	text, err := client.ExtractText(context.Background(), []byte{0xff}, true)
	require.NoError(t, err)
	assert.Equal(t, "LOT 4711", text)
}

func TestReleaseCamera(t *testing.T) {
	var released bool
	client := newGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/camera/release", r.URL.Path)
		released = true
	}))

	require.NoError(t, client.ReleaseCamera(context.Background()))
	assert.True(t, released)
}
