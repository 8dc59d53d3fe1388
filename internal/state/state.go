package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"voiceguard/internal/cascade"
	"voiceguard/internal/domain"
	"voiceguard/internal/ports"
	"voiceguard/internal/roster"
	"voiceguard/internal/trigger"
)

// Store keys.
const (
	KeySession         = "session"
	KeyContacts        = "contacts"
	KeyLogs            = "logs"
	KeyEmergencyNumber = "emergency_number"
	KeyLanguage        = "language"
)

const (
	DefaultEmergencyNumber = "911"
	LogRetention           = 7 * 24 * time.Hour
	dateLayout             = "2006-01-02"
)

var (
	ErrNoSession    = errors.New("no active session; sign up first")
	ErrInvalidValue = errors.New("value must not be empty")
	ErrInvalidPlan  = errors.New("unknown plan")
)

// State is the application-level owner of the roster, emergency number,
// language, session and incident log. Every mutation re-reads the store
// before changing anything and writes the affected key back, so several
// processes can share one store.
type State struct {
	store  ports.KVStore
	logger *zap.Logger
	now    func() time.Time
	newID  func() string

	mu              sync.Mutex
	roster          *roster.Roster
	logs            []domain.LogEntry
	emergencyNumber string
	language        string
	session         *domain.Session
}

// Option customizes a State.
type Option func(*State)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *State) { s.now = now }
}

// WithIDGenerator overrides log entry id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *State) { s.newID = newID }
}

// Load reads every key from the store, drops logs older than the retention
// window and writes the filtered log back.
func Load(ctx context.Context, store ports.KVStore, logger *zap.Logger, opts ...Option) (*State, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &State{
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Refresh re-reads every key so changes made through another process sharing
// the store become visible.
func (s *State) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reload(ctx)
}

// reload replaces the in-memory copy with the stored values. The caller holds
// s.mu, and nothing is replaced when a read fails.
func (s *State) reload(ctx context.Context) error {
	var session *domain.Session
	var stored domain.Session
	ok, err := s.loadJSON(ctx, KeySession, &stored)
	if err != nil {
		return err
	}
	if ok {
		session = &stored
	}

	var contacts []domain.Contact
	if _, err := s.loadJSON(ctx, KeyContacts, &contacts); err != nil {
		return err
	}
	r, dropped := roster.New(contacts)
	for _, c := range dropped {
		s.logger.Warn("dropping stored contact outside slot limits",
			zap.String("contact_id", c.ID),
			zap.String("type", string(c.Type)),
		)
	}

	emergencyNumber, err := s.loadString(ctx, KeyEmergencyNumber, DefaultEmergencyNumber)
	if err != nil {
		return err
	}
	language, err := s.loadString(ctx, KeyLanguage, trigger.DefaultLanguage)
	if err != nil {
		return err
	}

	var logs []domain.LogEntry
	if _, err := s.loadJSON(ctx, KeyLogs, &logs); err != nil {
		return err
	}
	cutoff := s.now().Add(-LogRetention).UnixMilli()
	kept := make([]domain.LogEntry, 0, len(logs))
	for _, entry := range logs {
		if entry.Timestamp > cutoff {
			kept = append(kept, entry)
		}
	}
	if purged := len(logs) - len(kept); purged > 0 {
		if err := s.saveJSON(ctx, KeyLogs, kept); err != nil {
			return err
		}
		s.logger.Info("purged expired incident logs", zap.Int("count", purged))
	}

	s.session = session
	s.roster = r
	s.emergencyNumber = emergencyNumber
	s.language = language
	s.logs = kept
	return nil
}

func (s *State) loadString(ctx context.Context, key string, fallback string) (string, error) {
	value, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("loading %s: %w", key, err)
	}
	if !ok || value == "" {
		return fallback, nil
	}
	return value, nil
}

func (s *State) loadJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("loading %s: %w", key, err)
	}
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

func (s *State) saveJSON(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.save(ctx, key, string(payload))
}

func (s *State) save(ctx context.Context, key string, value string) error {
	if err := s.store.Set(ctx, key, value); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

// AddContact fills a roster slot and persists the roster.
func (s *State) AddContact(ctx context.Context, kind domain.ContactType, name string, phone string) (domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.reload(ctx); err != nil {
		return domain.Contact{}, err
	}
	contact, err := s.roster.Add(kind, name, phone)
	if err != nil {
		return domain.Contact{}, err
	}
	if err := s.saveJSON(ctx, KeyContacts, s.roster.Contacts()); err != nil {
		s.roster.Remove(contact.ID)
		return domain.Contact{}, err
	}
	s.logger.Info("contact added", zap.String("contact_id", contact.ID), zap.String("type", string(kind)))
	return contact, nil
}

// RemoveContact deletes a contact by id. Unknown ids are a no-op.
func (s *State) RemoveContact(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.reload(ctx); err != nil {
		return err
	}
	prev := s.roster.Contacts()
	if !s.roster.Remove(id) {
		return nil
	}
	if err := s.saveJSON(ctx, KeyContacts, s.roster.Contacts()); err != nil {
		s.roster, _ = roster.New(prev)
		return err
	}
	s.logger.Info("contact removed", zap.String("contact_id", id))
	return nil
}

// Contacts returns the roster snapshot.
func (s *State) Contacts() []domain.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.Contacts()
}

// SOSContact returns the SOS contact when one is set.
func (s *State) SOSContact() (domain.Contact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.SOS()
}

// NormalContacts returns the normal contacts by rank.
func (s *State) NormalContacts() []domain.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.Normals()
}

// EmergencyNumber returns the configured emergency number.
func (s *State) EmergencyNumber() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emergencyNumber
}

// SetEmergencyNumber replaces the emergency number.
func (s *State) SetEmergencyNumber(ctx context.Context, number string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if number == "" {
		return ErrInvalidValue
	}
	if err := s.reload(ctx); err != nil {
		return err
	}
	if err := s.save(ctx, KeyEmergencyNumber, number); err != nil {
		return err
	}
	s.emergencyNumber = number
	return nil
}

// Language returns the active trigger-phrase language.
func (s *State) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// SetLanguage selects the trigger-phrase language.
func (s *State) SetLanguage(ctx context.Context, language string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if language == "" {
		return ErrInvalidValue
	}
	if err := s.reload(ctx); err != nil {
		return err
	}
	if err := s.save(ctx, KeyLanguage, language); err != nil {
		return err
	}
	s.language = language
	return nil
}

// Logs returns the incident log, newest first.
func (s *State) Logs() []domain.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.LogEntry, len(s.logs))
	copy(out, s.logs)
	return out
}

// ClearLogs removes every incident log entry.
func (s *State) ClearLogs(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, KeyLogs); err != nil {
		return fmt.Errorf("clearing logs: %w", err)
	}
	s.logs = nil
	return nil
}

// RecordIncident computes the cascade for the stored roster, prepends an
// immutable log entry to the stored log and persists it. Manual and voice
// incidents both come through here.
func (s *State) RecordIncident(ctx context.Context, incident domain.IncidentType) (domain.LogEntry, []domain.CascadeRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.reload(ctx); err != nil {
		return domain.LogEntry{}, nil, err
	}

	var sos *domain.Contact
	if c, ok := s.roster.SOS(); ok {
		sos = &c
	}
	normals := s.roster.Normals()

	entry := cascade.NewLogEntry(s.newID(), s.now(), incident, sos, normals, s.emergencyNumber)
	rows := cascade.Compute(incident, sos, normals, s.emergencyNumber)

	updated := make([]domain.LogEntry, 0, len(s.logs)+1)
	updated = append(updated, entry)
	updated = append(updated, s.logs...)
	if err := s.saveJSON(ctx, KeyLogs, updated); err != nil {
		return domain.LogEntry{}, nil, err
	}
	s.logs = updated

	s.logger.Warn("incident recorded",
		zap.String("log_id", entry.ID),
		zap.String("type", string(incident)),
		zap.String("sos_contact", entry.Details.SOSContactName),
		zap.Int("normal_contacts", len(normals)),
	)
	return entry, rows, nil
}
