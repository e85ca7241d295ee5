package clients

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sidhilynx/internal/common"
	"github.com/dmitrijs2005/sidhilynx/internal/dbx"
	"github.com/dmitrijs2005/sidhilynx/internal/server/models"
)

const selectClient = `
	SELECT client_id, user_id, public_key, platform, app_id, app_name, app_version,
	       status, ip_first_seen, ip_last_seen, ip_history, created_at, last_seen_at
	FROM clients
`

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*models.Client, error) {
	c := &models.Client{}
	var status string
	var history []byte
	err := row.Scan(&c.ClientID, &c.UserID, &c.PublicKey,
		&c.App.Platform, &c.App.AppID, &c.App.AppName, &c.App.AppVersion,
		&status, &c.IPFirstSeen, &c.IPLastSeen, &history, &c.CreatedAt, &c.LastSeenAt)
	if err != nil {
		return nil, err
	}
	c.Status = models.ClientStatus(status)
	if len(history) > 0 {
		if err := json.Unmarshal(history, &c.IPHistory); err != nil {
			return nil, fmt.Errorf("decode ip_history: %w", err)
		}
	}
	return c, nil
}

func (r *PostgresRepository) Get(ctx context.Context, clientID string) (*models.Client, error) {
	c, err := scanClient(r.db.QueryRowContext(ctx, selectClient+`WHERE client_id = $1`, clientID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

// Create inserts the client unless the client_id is already enrolled. The
// conflict is resolved by the primary key, so concurrent enrollments of one
// device converge on a single row.
func (r *PostgresRepository) Create(ctx context.Context, client *models.Client) (*models.Client, bool, error) {
	history, err := json.Marshal(client.IPHistory)
	if err != nil {
		return nil, false, fmt.Errorf("encode ip_history: %w", err)
	}

	query := `
		INSERT INTO clients (client_id, user_id, public_key, platform, app_id, app_name, app_version,
		                     status, ip_first_seen, ip_last_seen, ip_history, created_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (client_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query,
		client.ClientID, client.UserID, client.PublicKey,
		client.App.Platform, client.App.AppID, client.App.AppName, client.App.AppVersion,
		string(client.Status), client.IPFirstSeen, client.IPLastSeen, string(history),
		client.CreatedAt, client.LastSeenAt)
	if err != nil {
		return nil, false, fmt.Errorf("error performing sql request: %v", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("db error: %w", err)
	}
	if n == 1 {
		return client, true, nil
	}

	stored, err := r.Get(ctx, client.ClientID)
	if err != nil {
		return nil, false, err
	}
	return stored, false, nil
}

// RecordActivity appends the sighting and keeps only the newest
// models.MaxIPHistory entries, all in one statement.
func (r *PostgresRepository) RecordActivity(ctx context.Context, clientID string, sighting models.IPSighting) error {
	entry, err := json.Marshal([]models.IPSighting{sighting})
	if err != nil {
		return fmt.Errorf("encode sighting: %w", err)
	}

	query := `
		UPDATE clients
		SET ip_last_seen = $2,
		    last_seen_at = $3,
		    ip_history = (
		        SELECT COALESCE(jsonb_agg(recent.entry ORDER BY recent.pos), '[]'::jsonb)
		        FROM (
		            SELECT h.entry, h.pos
		            FROM jsonb_array_elements(clients.ip_history || $4::jsonb) WITH ORDINALITY AS h(entry, pos)
		            ORDER BY h.pos DESC
		            LIMIT $5
		        ) AS recent
		    )
		WHERE client_id = $1
	`
	res, err := r.db.ExecContext(ctx, query, clientID, sighting.IP, sighting.SeenAt, string(entry), models.MaxIPHistory)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func (r *PostgresRepository) SetStatus(ctx context.Context, clientID string, status models.ClientStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE clients SET status = $2 WHERE client_id = $1`, clientID, string(status))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireOneRow(res)
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]*models.Client, error) {
	query := selectClient + `WHERE ($1 = '' OR user_id = $1) ORDER BY created_at, client_id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
