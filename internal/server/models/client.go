package models

import "time"

// ClientStatus is the lifecycle state of a device record.
type ClientStatus string

const (
	ClientStatusActive  ClientStatus = "active"
	ClientStatusRevoked ClientStatus = "revoked"
)

// MaxIPHistory bounds Client.IPHistory.
const MaxIPHistory = 10

// IPSighting records one address a client was seen from.
type IPSighting struct {
	IP     string    `json:"ip"`
	SeenAt time.Time `json:"seen_at"`
}

// IPHistory is ordered oldest first, most recent last.
type IPHistory []IPSighting

// Append adds s and keeps only the MaxIPHistory most recent entries. The
// receiver is not modified.
func (h IPHistory) Append(s IPSighting) IPHistory {
	out := make(IPHistory, 0, min(len(h)+1, MaxIPHistory))
	if drop := len(h) + 1 - MaxIPHistory; drop > 0 {
		h = h[drop:]
	}
	out = append(out, h...)
	return append(out, s)
}

// AppMetadata is supplied by the client app and stored verbatim.
type AppMetadata struct {
	Platform   string
	AppID      string
	AppName    string
	AppVersion string
}

// Client is a device record. UserID is set on creation and never changes.
type Client struct {
	ClientID    string
	UserID      string
	PublicKey   string
	App         AppMetadata
	Status      ClientStatus
	IPFirstSeen string
	IPLastSeen  string
	IPHistory   IPHistory
	CreatedAt   time.Time
	LastSeenAt  time.Time
}

// IsActive reports whether the device may authenticate.
func (c *Client) IsActive() bool {
	return c != nil && c.Status == ClientStatusActive
}

// NewClient builds the record written on first login from a device.
func NewClient(clientID, userID, publicKey string, app AppMetadata, ip string, now time.Time) *Client {
	return &Client{
		ClientID:    clientID,
		UserID:      userID,
		PublicKey:   publicKey,
		App:         app,
		Status:      ClientStatusActive,
		IPFirstSeen: ip,
		IPLastSeen:  ip,
		IPHistory:   IPHistory{{IP: ip, SeenAt: now}},
		CreatedAt:   now,
		LastSeenAt:  now,
	}
}
