package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPHistory_AppendKeepsTenMostRecent(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	var h IPHistory

	for i := 0; i < 25; i++ {
		h = h.Append(IPSighting{IP: fmt.Sprintf("10.0.0.%d", i), SeenAt: base.Add(time.Duration(i) * time.Minute)})
		require.LessOrEqual(t, len(h), MaxIPHistory)
	}

	require.Len(t, h, MaxIPHistory)
	for i, s := range h {
		assert.Equal(t, fmt.Sprintf("10.0.0.%d", 15+i), s.IP)
		if i > 0 {
			assert.True(t, s.SeenAt.After(h[i-1].SeenAt), "history must stay chronological")
		}
	}
}

func TestIPHistory_AppendDoesNotAliasReceiver(t *testing.T) {
	h := IPHistory{{IP: "a"}, {IP: "b"}}
	h2 := h.Append(IPSighting{IP: "c"})
	h3 := h.Append(IPSighting{IP: "d"})

	assert.Equal(t, "c", h2[2].IP)
	assert.Equal(t, "d", h3[2].IP)
	assert.Len(t, h, 2)
}

func TestNewClient(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	c := NewClient("cid", "SIDHI_1", "ab", AppMetadata{Platform: "android"}, "1.2.3.4", now)

	assert.True(t, c.IsActive())
	assert.Equal(t, "1.2.3.4", c.IPFirstSeen)
	assert.Equal(t, "1.2.3.4", c.IPLastSeen)
	assert.Equal(t, IPHistory{{IP: "1.2.3.4", SeenAt: now}}, c.IPHistory)
	assert.Equal(t, now, c.CreatedAt)

	c.Status = ClientStatusRevoked
	assert.False(t, c.IsActive())

	var missing *Client
	assert.False(t, missing.IsActive())
}

func TestRefreshToken_Expired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tok := &RefreshToken{ExpiresAt: now}
	assert.True(t, tok.Expired(now))
	assert.False(t, tok.Expired(now.Add(-time.Second)))
}
