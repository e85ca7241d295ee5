package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/sidhilynx/internal/common"
	"github.com/dmitrijs2005/sidhilynx/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	f := newFixture(t, nil)
	r := f.auth.Registry()
	ctx := context.Background()

	active, err := r.IsActive(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, active, "absent client is not active")

	c, created, err := r.Enroll(ctx, "cid", "SIDHI_U", "pk", models.AppMetadata{Platform: "ios"}, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, c.CreatedAt.Equal(epoch))

	again, created, err := r.Enroll(ctx, "cid", "SIDHI_OTHER", "pk", models.AppMetadata{}, "10.0.0.2")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "SIDHI_U", again.UserID, "loser observes the winner's record")

	active, _ = r.IsActive(ctx, "cid")
	assert.True(t, active)

	require.NoError(t, r.Revoke(ctx, "cid"))
	require.NoError(t, r.Revoke(ctx, "cid"))
	active, _ = r.IsActive(ctx, "cid")
	assert.False(t, active)

	assert.ErrorIs(t, r.Revoke(ctx, "missing"), common.ErrorNotFound)
	assert.ErrorIs(t, r.RecordActivity(ctx, "missing", "10.0.0.1"), common.ErrorNotFound)
}
