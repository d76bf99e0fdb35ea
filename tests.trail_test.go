package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestBoltTrail(t *testing.T) CirculationTrail {
	t.Helper()
	config := &Config{
		Trail: TrailConfig{
			Enable:     true,
			FilePath:   filepath.Join(t.TempDir(), "circulation.trail.db"),
			Timeout:    1 * time.Second,
			BucketName: "circulation.events",
		},
	}
	client, err := GetBoltTrailClient(config)
	require.NoError(t, err)
	trail := NewBoltTrail(zap.NewNop(), &config.Trail, client)
	t.Cleanup(func() { trail.Close() })
	return trail
}

func TestBoltTrail_RecordAndRecent(t *testing.T) {
	trail := newTestBoltTrail(t)
	ctx := context.Background()

	first := TrailEvent{Kind: TrailBorrow, MemberID: "M-AAAAA", BookID: "B-AAAAA", Title: "Dune", At: "2023-07-02 00:00:00"}
	second := TrailEvent{Kind: TrailReturn, MemberID: "M-AAAAA", BookID: "B-AAAAA", Title: "Dune", At: "2023-07-02 00:00:01"}
	require.NoError(t, trail.Record(ctx, first))
	require.NoError(t, trail.Record(ctx, second))

	events, err := trail.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, second, events[0])
	assert.Equal(t, first, events[1])
}

func TestBoltTrail_RecentHonorsLimit(t *testing.T) {
	trail := newTestBoltTrail(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, trail.Record(ctx, TrailEvent{Kind: TrailBorrow, BookID: "B-AAAAA"}))
	}

	events, err := trail.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestBoltTrail_RecentEmpty(t *testing.T) {
	trail := newTestBoltTrail(t)

	events, err := trail.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestGetBoltTrailClient_BadPath(t *testing.T) {
	config := &Config{
		Trail: TrailConfig{
			FilePath: filepath.Join(string(os.PathSeparator), "nonexistent", "nested", "trail.db"),
			Timeout:  100 * time.Millisecond,
		},
	}
	_, err := GetBoltTrailClient(config)
	assert.Error(t, err)
}
