// Package repo stores campaign saves in sqlite. Every write also lands in the
// save journal so the history of a campaign can be inspected after the fact.
package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"watchcommander/internal/events"
	"watchcommander/internal/session"
)

var ErrNotFound = errors.New("not found")

// SaveStore implements session.Store over the saves table.
type SaveStore struct {
	DB     *sql.DB
	Events events.Writer
}

var _ session.Store = SaveStore{}

func (r SaveStore) now() time.Time {
	if r.Events.Now != nil {
		return r.Events.Now()
	}
	return time.Now()
}

func (r SaveStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := r.DB.QueryRowContext(ctx, `SELECT data FROM saves WHERE save_key=?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set upserts the save and journals it in one transaction.
func (r SaveStore) Set(ctx context.Context, key string, data []byte) error {
	doc := gjson.ParseBytes(data)
	day := int(doc.Get("day").Int())
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	_, err = tx.ExecContext(ctx, `INSERT INTO saves(save_key,data,day,updated_at) VALUES (?,?,?,?)
		ON CONFLICT(save_key) DO UPDATE SET data=excluded.data, day=excluded.day, updated_at=excluded.updated_at`,
		key, data, day, r.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert save: %w", err)
	}
	payload := events.Payload{
		"bytes":     len(data),
		"commander": doc.Get("commanderName").String(),
		"budget":    doc.Get("budget").Int(),
	}
	if err := r.Events.Append(ctx, tx, events.TypeCampaignSaved, key, day, payload); err != nil {
		return fmt.Errorf("journal save: %w", err)
	}
	return tx.Commit()
}

func (r SaveStore) Remove(ctx context.Context, key string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	res, err := tx.ExecContext(ctx, `DELETE FROM saves WHERE save_key=?`, key)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil
	}
	if err := r.Events.Append(ctx, tx, events.TypeCampaignRemoved, key, 0, nil); err != nil {
		return fmt.Errorf("journal remove: %w", err)
	}
	return tx.Commit()
}

// SaveInfo describes a stored save without its payload.
type SaveInfo struct {
	Key       string `json:"key"`
	Day       int    `json:"day"`
	Bytes     int    `json:"bytes"`
	UpdatedAt string `json:"updatedAt"`
}

func (r SaveStore) Info(ctx context.Context, key string) (SaveInfo, error) {
	info := SaveInfo{Key: key}
	err := r.DB.QueryRowContext(ctx, `SELECT day,LENGTH(data),updated_at FROM saves WHERE save_key=?`, key).
		Scan(&info.Day, &info.Bytes, &info.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return SaveInfo{}, ErrNotFound
	}
	return info, err
}

// JournalEntry is one row of the save journal.
type JournalEntry struct {
	ID      int64  `json:"id"`
	TS      string `json:"ts"`
	Type    string `json:"type"`
	SaveKey string `json:"saveKey"`
	Day     int    `json:"day"`
	Payload string `json:"payload,omitempty"`
}

// Journal returns the newest entries first. cursor, when positive, returns
// only entries older than that id.
func (r SaveStore) Journal(ctx context.Context, limit int, cursor int64, saveKey, evtType string) ([]JournalEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	clauses := []string{"1=1"}
	var args []any
	if saveKey != "" {
		clauses = append(clauses, "save_key=?")
		args = append(args, saveKey)
	}
	if evtType != "" {
		clauses = append(clauses, "type=?")
		args = append(args, evtType)
	}
	if cursor > 0 {
		clauses = append(clauses, "id<?")
		args = append(args, cursor)
	}
	where := "WHERE " + strings.Join(clauses, " AND ")
	query := fmt.Sprintf(`SELECT id,ts,type,save_key,day,payload_json FROM events %s ORDER BY id DESC LIMIT ?`, where)
	args = append(args, limit)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []JournalEntry
	for rows.Next() {
		var e JournalEntry
		var payload sql.NullString
		if err := rows.Scan(&e.ID, &e.TS, &e.Type, &e.SaveKey, &e.Day, &payload); err != nil {
			return nil, err
		}
		if payload.Valid {
			e.Payload = payload.String
		}
		res = append(res, e)
	}
	return res, rows.Err()
}
