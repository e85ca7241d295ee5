// Package keystore persists the device key and the current token pair of
// the reference client in a local SQLite file.
package keystore

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sidhilynx/internal/client/keystore/migrations"
	"github.com/dmitrijs2005/sidhilynx/internal/dbx"
	"github.com/dmitrijs2005/sidhilynx/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

const (
	keyDeviceSeed     = "device_seed"
	keyAccessToken    = "access_token"
	keyRefreshToken   = "refresh_token"
	keyIdentityHandle = "identity_handle"
)

// ErrNoSession is returned by Session when nothing has been stored yet.
var ErrNoSession = errors.New("not logged in")

// Session is the token pair obtained by the last successful login.
type Session struct {
	IdentityHandle string
	AccessToken    string
	RefreshToken   string
}

type Keystore struct {
	db   *sql.DB
	meta *metadataRepository
}

// Open opens (creating if needed) the keystore at path and applies the
// schema. Use ":memory:" in tests.
func Open(ctx context.Context, path string) (*Keystore, error) {
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection keeps ":memory:" databases alive across calls
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("keystore migrations: %w", err)
	}
	return &Keystore{db: db, meta: &metadataRepository{db: db}}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return err
	}
	_, err = provider.Up(ctx)
	return err
}

func (k *Keystore) Close() error {
	return k.db.Close()
}

// DeviceKey returns the device's private key, generating and storing one on
// first use. The key never changes afterwards, so neither does the client id
// the server derives from it.
func (k *Keystore) DeviceKey(ctx context.Context) (ed25519.PrivateKey, error) {
	seed, err := k.meta.get(ctx, keyDeviceSeed)
	if err != nil {
		return nil, err
	}
	if seed != nil {
		if len(seed) != ed25519.SeedSize {
			return nil, fmt.Errorf("stored device seed has %d bytes", len(seed))
		}
		return ed25519.NewKeyFromSeed(seed), nil
	}

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	if err := k.meta.set(ctx, keyDeviceSeed, priv.Seed()); err != nil {
		return nil, err
	}
	return priv, nil
}

// SaveSession replaces the stored session. An empty RefreshToken keeps the
// previous one, matching a refresh response without rotation.
func (k *Keystore) SaveSession(ctx context.Context, s Session) error {
	return dbx.WithTx(ctx, k.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		meta := &metadataRepository{db: tx}
		if s.IdentityHandle != "" {
			if err := meta.set(ctx, keyIdentityHandle, []byte(s.IdentityHandle)); err != nil {
				return err
			}
		}
		if err := meta.set(ctx, keyAccessToken, []byte(s.AccessToken)); err != nil {
			return err
		}
		if s.RefreshToken != "" {
			return meta.set(ctx, keyRefreshToken, []byte(s.RefreshToken))
		}
		return nil
	})
}

func (k *Keystore) Session(ctx context.Context) (*Session, error) {
	refresh, err := k.meta.get(ctx, keyRefreshToken)
	if err != nil {
		return nil, err
	}
	if refresh == nil {
		return nil, ErrNoSession
	}
	access, err := k.meta.get(ctx, keyAccessToken)
	if err != nil {
		return nil, err
	}
	handle, err := k.meta.get(ctx, keyIdentityHandle)
	if err != nil {
		return nil, err
	}
	return &Session{IdentityHandle: string(handle), AccessToken: string(access), RefreshToken: string(refresh)}, nil
}

// ClearSession forgets the tokens but keeps the device key.
func (k *Keystore) ClearSession(ctx context.Context) error {
	return k.meta.delete(ctx, keyAccessToken, keyRefreshToken, keyIdentityHandle)
}
