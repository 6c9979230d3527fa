package swatsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal Watch Commander HTTP API client.
type Client struct {
	BaseURL     string
	BasePath    string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults. Generation calls can be slow, so
// the timeout is generous.
func New(baseURL, token string) *Client {
	return &Client{
		BaseURL:     baseURL,
		BasePath:    "/v0",
		BearerToken: token,
		Timeout:     90 * time.Second,
	}
}

// Officer represents the API officer model (partial).
type Officer struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Rank           string `json:"rank"`
	Specialization string `json:"specialization"`
	Status         string `json:"status"`
	Morale         int    `json:"morale"`
	Health         int    `json:"health"`
}

// Mission represents the API mission model (partial).
type Mission struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Type             string   `json:"type"`
	Priority         string   `json:"priority"`
	RiskLevel        int      `json:"riskLevel"`
	RequiredOfficers int      `json:"requiredOfficers"`
	Status           string   `json:"status"`
	AssignedOfficers []string `json:"assignedOfficers"`
}

// MissionEvent is one step of a deployed mission (partial).
type MissionEvent struct {
	ID          string `json:"id"`
	MissionID   string `json:"missionId"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Options     []struct {
		ID    string `json:"id"`
		Label string `json:"label"`
	} `json:"options"`
	Resolved bool `json:"resolved"`
}

// Campaign is the persisted game state (partial).
type Campaign struct {
	CommanderName          string         `json:"commanderName"`
	SquadName              string         `json:"squadName"`
	Day                    int            `json:"day"`
	Budget                 int            `json:"budget"`
	Reputation             int            `json:"reputation"`
	MissionsAttemptedToday int            `json:"missionsAttemptedToday"`
	MaxMissionsPerDay      int            `json:"maxMissionsPerDay"`
	Officers               []Officer      `json:"officers"`
	ActiveMissions         []Mission      `json:"activeMissions"`
	CompletedMissions      []Mission      `json:"completedMissions"`
	CurrentMissionEvents   []MissionEvent `json:"currentMissionEvents"`
}

// Snapshot is the campaign plus the session observables.
type Snapshot struct {
	State          Campaign `json:"state"`
	IsLoading      bool     `json:"isLoading"`
	IsAdvancingDay bool     `json:"isAdvancingDay"`
	Error          string   `json:"error,omitempty"`
}

// DayReport summarizes a completed shift rotation.
type DayReport struct {
	Day           int      `json:"day"`
	Payroll       int      `json:"payroll"`
	CityFunding   int      `json:"cityFunding"`
	NetBudget     int      `json:"netBudget"`
	ExpiredOffers int      `json:"expiredOffers"`
	Recovered     []string `json:"recovered"`
}

// Decision is the result of answering a mission event.
type Decision struct {
	MissionComplete bool     `json:"missionComplete"`
	Success         bool     `json:"success"`
	Mission         Mission  `json:"mission"`
	Casualties      []string `json:"casualties"`
	Injuries        []string `json:"injuries"`
	Snapshot        Snapshot `json:"snapshot"`
}

// JournalEntry is one save-history row.
type JournalEntry struct {
	ID      int64  `json:"id"`
	TS      string `json:"ts"`
	Type    string `json:"type"`
	SaveKey string `json:"saveKey"`
	Day     int    `json:"day"`
}

// PaginatedJournal wraps journal listings with cursors.
type PaginatedJournal struct {
	Items      []JournalEntry `json:"items"`
	NextCursor string         `json:"next_cursor"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error: status=%d code=%s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// State returns the current snapshot.
func (c *Client) State(ctx context.Context) (Snapshot, error) {
	var resp Snapshot
	err := c.do(ctx, http.MethodGet, "state", nil, &resp)
	return resp, err
}

// StartCampaign replaces the campaign with a fresh one.
func (c *Client) StartCampaign(ctx context.Context, commander, squad string) (Snapshot, error) {
	body := map[string]any{
		"commanderName": commander,
		"squadName":     squad,
	}
	var resp Snapshot
	err := c.do(ctx, http.MethodPost, "campaign", body, &resp)
	return resp, err
}

// RecruitOfficer hires one officer; specialization may be empty.
func (c *Client) RecruitOfficer(ctx context.Context, specialization string) (Snapshot, error) {
	body := map[string]any{}
	if specialization != "" {
		body["specialization"] = specialization
	}
	var resp Snapshot
	err := c.do(ctx, http.MethodPost, "officers", body, &resp)
	return resp, err
}

// GenerateMission requests a briefing from dispatch.
func (c *Client) GenerateMission(ctx context.Context) (Snapshot, error) {
	var resp Snapshot
	err := c.do(ctx, http.MethodPost, "missions", nil, &resp)
	return resp, err
}

// AssignOfficers deploys officers on a mission.
func (c *Client) AssignOfficers(ctx context.Context, missionID string, officerIDs []string) (Snapshot, error) {
	body := map[string]any{"officerIds": officerIDs}
	var resp Snapshot
	endpoint := fmt.Sprintf("missions/%s/assign", url.PathEscape(missionID))
	err := c.do(ctx, http.MethodPost, endpoint, body, &resp)
	return resp, err
}

// GenerateMissionEvent advances a deployed mission.
func (c *Client) GenerateMissionEvent(ctx context.Context, missionID string) (Snapshot, error) {
	var resp Snapshot
	endpoint := fmt.Sprintf("missions/%s/events", url.PathEscape(missionID))
	err := c.do(ctx, http.MethodPost, endpoint, nil, &resp)
	return resp, err
}

// MakeDecision answers a mission event. directive is only read for the
// custom option.
func (c *Client) MakeDecision(ctx context.Context, eventID, optionID, directive string) (Decision, error) {
	body := map[string]any{"optionId": optionID}
	if directive != "" {
		body["directive"] = directive
	}
	var resp Decision
	endpoint := fmt.Sprintf("mission-events/%s/decision", url.PathEscape(eventID))
	err := c.do(ctx, http.MethodPost, endpoint, body, &resp)
	return resp, err
}

// AdvanceDay ends the shift.
func (c *Client) AdvanceDay(ctx context.Context) (DayReport, Snapshot, error) {
	var resp struct {
		Report   DayReport `json:"report"`
		Snapshot Snapshot  `json:"snapshot"`
	}
	err := c.do(ctx, http.MethodPost, "day/advance", nil, &resp)
	return resp.Report, resp.Snapshot, err
}

// Export downloads the save file.
func (c *Client) Export(ctx context.Context) ([]byte, error) {
	var raw json.RawMessage
	err := c.do(ctx, http.MethodGet, "campaign/export", nil, &raw)
	return raw, err
}

// Import replaces the campaign with a save file.
func (c *Client) Import(ctx context.Context, save []byte) (Snapshot, error) {
	var resp Snapshot
	err := c.do(ctx, http.MethodPost, "campaign/import", json.RawMessage(save), &resp)
	return resp, err
}

// JournalPage returns a page of save history.
func (c *Client) JournalPage(ctx context.Context, limit int, cursor string) (PaginatedJournal, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	endpoint := "campaign/journal"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var resp PaginatedJournal
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(b)}
		var env struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(b, &env) == nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	base := strings.TrimRight(c.BaseURL, "/")
	if p := strings.Trim(c.BasePath, "/"); p != "" {
		base += "/" + p
	}
	return base
}
