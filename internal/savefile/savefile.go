// Package savefile converts a campaign to and from its serialized save blob.
// Decoding is additive: fields missing from older saves are defaulted, never
// rejected, and unknown fields are ignored.
package savefile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"watchcommander/internal/domain"
)

var ErrInvalidSave = errors.New("invalid save")

// dateKeys are the object keys holding timestamps anywhere in the tree.
var dateKeys = map[string]bool{
	"createdAt":     true,
	"timestamp":     true,
	"lastEncounter": true,
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"Mon Jan 02 2006 15:04:05 GMT-0700",
}

// Encode serializes the campaign.
func Encode(s domain.GameState) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Decode reads a persisted save. now fills creation times that cannot be
// recovered and maxMissionsPerDay is applied when the save lacks one.
func Decode(data []byte, now time.Time, maxMissionsPerDay int) (domain.GameState, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return domain.GameState{}, fmt.Errorf("%w: empty", ErrInvalidSave)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return domain.GameState{}, fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}
	if _, ok := tree.(map[string]any); !ok {
		return domain.GameState{}, fmt.Errorf("%w: top level is not an object", ErrInvalidSave)
	}
	tree = coerce(tree)
	clean, err := json.Marshal(tree)
	if err != nil {
		return domain.GameState{}, fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}
	var s domain.GameState
	if err := json.Unmarshal(clean, &s); err != nil {
		return domain.GameState{}, fmt.Errorf("%w: %v", ErrInvalidSave, err)
	}
	domain.NormalizeState(&s, now, maxMissionsPerDay)
	return s, nil
}

// DecodeImport is Decode plus the checks a user-supplied file must pass
// before it may replace the running campaign.
func DecodeImport(data []byte, now time.Time, maxMissionsPerDay int) (domain.GameState, error) {
	if !gjson.ValidBytes(data) {
		return domain.GameState{}, fmt.Errorf("%w: not valid JSON", ErrInvalidSave)
	}
	root := gjson.ParseBytes(data)
	for _, key := range []string{"commanderName", "squadName"} {
		if v := root.Get(key); v.Type != gjson.String || strings.TrimSpace(v.Str) == "" {
			return domain.GameState{}, fmt.Errorf("%w: missing %s", ErrInvalidSave, key)
		}
	}
	if !root.Get("officers").IsArray() {
		return domain.GameState{}, fmt.Errorf("%w: officers must be an array", ErrInvalidSave)
	}
	return Decode(data, now, maxMissionsPerDay)
}

// coerce walks the decoded tree: numbers become integers and date-like
// values become RFC 3339 strings. Dates that cannot be read are dropped so
// the normalizer can default them.
func coerce(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, child := range x {
			if dateKeys[k] {
				if d, ok := coerceDate(child); ok {
					x[k] = d
				} else {
					delete(x, k)
				}
				continue
			}
			x[k] = coerce(child)
		}
		return x
	case []any:
		for i, child := range x {
			x[i] = coerce(child)
		}
		return x
	case json.Number:
		if _, err := x.Int64(); err == nil {
			return x
		}
		f, err := x.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return json.Number("0")
		}
		return json.Number(strconv.FormatInt(int64(math.Round(f)), 10))
	}
	return v
}

func coerceDate(v any) (string, bool) {
	switch x := v.(type) {
	case json.Number:
		// epoch milliseconds
		ms, err := x.Float64()
		if err != nil || ms <= 0 {
			return "", false
		}
		return time.UnixMilli(int64(ms)).UTC().Format(time.RFC3339Nano), true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return "", false
		}
		if i := strings.Index(s, " ("); i > 0 {
			s = s[:i] // "... GMT+0000 (Coordinated Universal Time)"
		}
		if _, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return s, true
		}
		for _, layout := range dateLayouts[1:] {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC().Format(time.RFC3339Nano), true
			}
		}
	}
	return "", false
}
