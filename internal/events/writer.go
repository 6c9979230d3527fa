// Package events appends rows to the save journal.
package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const (
	TypeCampaignSaved   = "campaign.saved"
	TypeCampaignRemoved = "campaign.removed"
)

type Writer struct {
	Now func() time.Time
}

type Payload map[string]any

// Append writes one journal row inside tx.
func (w Writer) Append(ctx context.Context, tx *sql.Tx, evtType, saveKey string, day int, payload Payload) error {
	now := w.Now
	if now == nil {
		now = time.Now
	}
	ts := now().UTC().Format(time.RFC3339)
	if payload == nil {
		payload = Payload{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO events(ts,type,save_key,day,payload_json) VALUES (?,?,?,?,?)`,
		ts, evtType, saveKey, day, string(data))
	return err
}
