// Package session owns the running campaign. It serializes every state
// replacement, persists after each one and exposes the loading, day-advance
// and error observables the presentation layer renders.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"watchcommander/internal/config"
	"watchcommander/internal/domain"
	"watchcommander/internal/engine"
	"watchcommander/internal/gateway"
	"watchcommander/internal/metrics"
	"watchcommander/internal/savefile"
)

var (
	ErrDayInProgress       = errors.New("shift rotation already in progress")
	ErrDescriptionRequired = errors.New("mission description is required")
	ErrMessageRequired     = errors.New("message is required")
	ErrOptionNotFound      = errors.New("option not found")
)

// Options configures Open. Gateway is required; the rest default.
type Options struct {
	Config  *config.Config
	Engine  *engine.Engine
	Gateway *gateway.Gateway
	Store   Store
	Logger  logrus.FieldLogger
	Metrics *metrics.Collector
}

// Snapshot is what observers see after every change.
type Snapshot struct {
	State          domain.GameState `json:"state"`
	IsLoading      bool             `json:"isLoading"`
	IsAdvancingDay bool             `json:"isAdvancingDay"`
	Error          string           `json:"error,omitempty"`
}

type Session struct {
	eng     engine.Engine
	gw      *gateway.Gateway
	store   Store
	key     string
	rules   config.Rules
	log     logrus.FieldLogger
	metrics *metrics.Collector

	mu        sync.Mutex
	state     domain.GameState
	loading   int
	advancing bool
	lastErr   string
	// epoch changes whenever the campaign is replaced wholesale; late
	// background results from an older epoch are dropped.
	epoch   uint64
	subs    map[int]func(Snapshot)
	nextSub int
	clock   *cron.Cron

	bg sync.WaitGroup
}

// Open restores the saved campaign from the store. A missing or unreadable
// save starts a blank campaign instead of failing.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.Gateway == nil {
		return nil, errors.New("session: gateway is required")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	eng := engine.New(cfg)
	if opts.Engine != nil {
		eng = *opts.Engine
		if eng.Config == nil {
			eng.Config = cfg
		}
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Session{
		eng:     eng,
		gw:      opts.Gateway,
		store:   opts.Store,
		key:     cfg.Campaign.SaveKey,
		rules:   cfg.Rules,
		log:     log.WithField("component", "session"),
		metrics: opts.Metrics,
		subs:    map[int]func(Snapshot){},
	}
	if s.store == nil {
		s.store = NewMemoryStore()
	}
	if s.key == "" {
		s.key = config.DefaultSaveKey
	}
	s.state = s.load(ctx)
	s.observe(s.state)
	return s, nil
}

func (s *Session) now() time.Time {
	if s.eng.Now != nil {
		return s.eng.Now()
	}
	return time.Now()
}

func (s *Session) load(ctx context.Context) domain.GameState {
	data, ok, err := s.store.Get(ctx, s.key)
	switch {
	case err != nil:
		s.log.WithError(err).Warn("reading save failed; starting a blank campaign")
	case ok:
		st, err := savefile.Decode(data, s.now(), s.rules.MaxMissionsPerDay)
		if err == nil {
			s.log.WithFields(logrus.Fields{"commander": st.CommanderName, "day": st.Day}).Info("campaign restored")
			return st
		}
		s.log.WithError(err).Warn("save is unreadable; starting a blank campaign")
	}
	return s.eng.NewCampaign()
}

// State returns a copy of the current campaign.
func (s *Session) State() domain.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		State:          s.state.Clone(),
		IsLoading:      s.loading > 0,
		IsAdvancingDay: s.advancing,
		Error:          s.lastErr,
	}
}

// Subscribe calls fn with a fresh snapshot after every change until the
// returned cancel func is called. fn runs on the goroutine that made the change.
func (s *Session) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Session) notify() {
	s.mu.Lock()
	if len(s.subs) == 0 {
		s.mu.Unlock()
		return
	}
	snap := s.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

// ClearError empties the error slot without touching the campaign.
func (s *Session) ClearError() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
	s.notify()
}

// Wait blocks until background work such as suspect capture has finished.
func (s *Session) Wait() { s.bg.Wait() }

// Close stops the shift clock and waits for background work.
func (s *Session) Close() {
	s.mu.Lock()
	c := s.clock
	s.clock = nil
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
	s.bg.Wait()
}

// begin starts a commander action that calls the generator: it clears the
// error slot and raises the loading flag until the returned func runs.
func (s *Session) begin() func() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
	return s.busy()
}

// busy raises the loading flag; the returned func lowers it.
func (s *Session) busy() func() {
	s.mu.Lock()
	s.loading++
	s.mu.Unlock()
	s.notify()
	return func() {
		s.mu.Lock()
		s.loading--
		s.mu.Unlock()
		s.notify()
	}
}

// update applies fn to whatever state is current when the lock is taken,
// then replaces and persists it. A failing fn changes nothing.
func (s *Session) update(ctx context.Context, fn func(domain.GameState) (domain.GameState, error)) error {
	s.mu.Lock()
	next, err := fn(s.state)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.replaceLocked(ctx, next)
	s.mu.Unlock()
	s.notify()
	return nil
}

// reset swaps in a different campaign and retires pending background work.
func (s *Session) reset(ctx context.Context, next domain.GameState) {
	s.mu.Lock()
	s.epoch++
	s.lastErr = ""
	s.replaceLocked(ctx, next)
	s.mu.Unlock()
	s.notify()
}

func (s *Session) replaceLocked(ctx context.Context, next domain.GameState) {
	s.state = next
	s.persistLocked(ctx)
	s.observe(next)
}

// persistLocked writes the whole campaign. Nothing is written before a
// commander has taken over.
func (s *Session) persistLocked(ctx context.Context) {
	if s.state.CommanderName == "" {
		return
	}
	data, err := savefile.Encode(s.state)
	if err == nil {
		err = s.store.Set(context.WithoutCancel(ctx), s.key, data)
	}
	if err != nil {
		s.log.WithError(err).Error("saving campaign failed")
		s.lastErr = "Failed to save campaign: " + err.Error()
	}
}

func (s *Session) observe(st domain.GameState) {
	if s.metrics == nil {
		return
	}
	counts := map[string]int{}
	statuses := make([]string, 0, len(domain.OfficerStatuses))
	for _, o := range st.Officers {
		counts[string(o.Status)]++
	}
	for _, status := range domain.OfficerStatuses {
		statuses = append(statuses, string(status))
	}
	s.metrics.ObserveCampaign(st.Budget, st.Reputation, counts, statuses)
}

var failureMessages = map[string]string{
	"StartNewGame":           "Failed to open the campaign",
	"RecruitOfficer":         "Failed to recruit officer",
	"GenerateMission":        "Failed to generate mission",
	"CreateCustomMission":    "Failed to create custom mission",
	"GenerateMissionEvent":   "Failed to generate mission event",
	"MakeDecision":           "Failed to resolve decision",
	"GenerateCommunityEvent": "Failed to generate community event",
	"InterrogateSuspect":     "Interrogation failed",
	"ResolveInterrogation":   "Failed to conclude interrogation",
	"ProcessTrial":           "Failed to process trial",
	"CreateNemesis":          "Failed to create nemesis",
	"TriggerNemesisMission":  "Failed to trigger nemesis mission",
	"GenerateRandomEvent":    "Failed to generate random event",
}

// done records the outcome of a commander action. Every failure fills the
// error slot; generation failures also leave an Error entry in the campaign log.
func (s *Session) done(ctx context.Context, action string, err error) error {
	s.metrics.RecordAction(action, err)
	entry := s.log.WithField("action", action)
	if err == nil {
		entry.Debug("action ok")
		return nil
	}
	entry.WithError(err).Warn("action failed")

	msg := err.Error()
	var gwErr *gateway.Error
	isGateway := errors.As(err, &gwErr)
	if isGateway {
		prefix, ok := failureMessages[action]
		if !ok {
			prefix = "Failed to contact dispatch"
		}
		msg = fmt.Sprintf("%s: %s", prefix, gwErr.Reason)
	}
	s.mu.Lock()
	s.lastErr = msg
	if isGateway {
		s.state = s.eng.AppendLog(s.state, domain.LogError, msg)
		s.persistLocked(ctx)
	}
	s.mu.Unlock()
	s.notify()
	return err
}

// sleep waits d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
