package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/sports-registry/queue"
)

func TestGetExtensionFromContentType(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
		wantErr     bool
	}{
		{"image/jpeg", ".jpg", false},
		{"image/png", ".png", false},
		{"image/gif", ".gif", false},
		{"image/webp", ".webp", false},
		{"image/svg+xml", "", true},
		{"image/bmp", "", true},
		{"application/pdf", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			got, err := GetExtensionFromContentType(tt.contentType)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Petrov Ivan Sergeevich", fullName("Ivan", "Petrov", strPtr("Sergeevich")))
	assert.Equal(t, "Petrov Ivan", fullName("Ivan", "Petrov", nil))
}

func TestNotifier_NilIsNoop(t *testing.T) {
	var n *Notifier
	assert.NotPanics(t, func() {
		n.Changed(context.Background(), "sports", MsgSportsChanged, queue.EntityEvent{Entity: "sport"})
	})
}

func TestNotifier_SetsOccurredAt(t *testing.T) {
	n := newTestNotifier()
	n.Changed(context.Background(), "sports", MsgSportsChanged, queue.EntityEvent{Entity: "sport", ID: 1})

	require.Len(t, n.events.events, 1)
	assert.False(t, n.events.events[0].OccurredAt.IsZero())
	assert.Equal(t, 1, n.cache.invalidated)
}
