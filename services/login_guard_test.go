package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lac-hong-legacy/authguard/model"
)

func TestGuardBlocksAfterThreshold(t *testing.T) {
	store := newTestStore(t)
	guard := newTestGuard(store)

	ip := "10.0.0.9"
	for i := 0; i < 4; i++ {
		guard.RecordFailure(ip, "alice", "wrong password", "test-agent")
		assert.False(t, guard.IsIPBlocked(ip), "attempt %d must not block yet", i+1)
	}

	guard.RecordFailure(ip, "alice", "wrong password", "test-agent")
	assert.True(t, guard.IsIPBlocked(ip), "fifth failure must trip the block")
}

func TestGuardSuccessClearsFailures(t *testing.T) {
	store := newTestStore(t)
	guard := newTestGuard(store)

	ip := "10.0.0.9"
	for i := 0; i < 3; i++ {
		guard.RecordFailure(ip, "alice", "wrong password", "test-agent")
	}

	guard.RecordSuccess(ip, "u-1", "alice", "test-agent")

	block, err := store.History().GetIPBlock(ip)
	require.NoError(t, err)
	assert.Equal(t, 0, block.AttemptCount)
	assert.Nil(t, block.BlockedUntil)
	assert.False(t, guard.IsIPBlocked(ip))
}

func TestGuardBlockExpires(t *testing.T) {
	store := newTestStore(t)
	guard := newTestGuard(store)

	ip := "10.0.0.9"
	past := time.Now().Add(-time.Minute)
	require.NoError(t, store.History().SaveIPBlock(&model.IPBlock{
		IPAddr:       ip,
		AttemptCount: 7,
		BlockedUntil: &past,
	}))

	assert.False(t, guard.IsIPBlocked(ip), "a lapsed block is no block")
}

func TestGuardClearBlock(t *testing.T) {
	store := newTestStore(t)
	guard := newTestGuard(store)

	ip := "10.0.0.9"
	for i := 0; i < 5; i++ {
		guard.RecordFailure(ip, "alice", "wrong password", "test-agent")
	}
	require.True(t, guard.IsIPBlocked(ip))

	require.NoError(t, guard.ClearBlock(ip))
	assert.False(t, guard.IsIPBlocked(ip))
}

func TestGuardFailuresOutsideWindowIgnored(t *testing.T) {
	store := newTestStore(t)
	guard := newTestGuard(store)

	ip := "10.0.0.9"

	// Stale failures from two days ago sit outside the tracking window.
	for i := 0; i < 10; i++ {
		require.NoError(t, store.History().AppendLoginHistory(&model.LoginHistory{
			LoginID:    "alice",
			IPAddr:     ip,
			Success:    false,
			FailReason: "wrong password",
			CreatedAt:  time.Now().Add(-48 * time.Hour),
		}))
	}

	guard.RecordFailure(ip, "alice", "wrong password", "test-agent")
	assert.False(t, guard.IsIPBlocked(ip), "stale failures must not count toward the threshold")
}

func TestGuardRecordsHistoryRows(t *testing.T) {
	store := newTestStore(t)
	guard := newTestGuard(store)

	guard.RecordFailure("10.0.0.9", "alice", "wrong password", "test-agent")
	guard.RecordSuccess("10.0.0.9", "u-1", "alice", "test-agent")

	var rows []model.LoginHistory
	require.NoError(t, store.Db().Order("created_at").Find(&rows).Error)
	require.Len(t, rows, 2)

	assert.False(t, rows[0].Success)
	assert.Equal(t, "wrong password", rows[0].FailReason)
	assert.True(t, rows[1].Success)
	require.NotNil(t, rows[1].UserID)
	assert.Equal(t, "u-1", *rows[1].UserID)
}
