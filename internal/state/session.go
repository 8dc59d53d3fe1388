package state

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"voiceguard/internal/domain"
	"voiceguard/internal/roster"
	"voiceguard/internal/trigger"
)

// Signup starts a one-month trial session for email.
func (s *State) Signup(ctx context.Context, email string) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.TrimSpace(email)
	if email == "" {
		return domain.Session{}, ErrInvalidValue
	}

	start := s.now()
	session := domain.Session{
		Email:          email,
		TrialStartDate: start.Format(dateLayout),
		TrialEndDate:   start.AddDate(0, 1, 0).Format(dateLayout),
		IsLoggedIn:     true,
		IsTrialActive:  true,
		PlanType:       domain.PlanTrial,
	}
	if err := s.saveJSON(ctx, KeySession, session); err != nil {
		return domain.Session{}, err
	}
	s.session = &session
	s.logger.Info("session started", zap.String("plan", string(session.PlanType)), zap.String("trial_end", session.TrialEndDate))
	return session, nil
}

// Session returns the current session.
func (s *State) Session() (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return domain.Session{}, false
	}
	return *s.session, true
}

// SetPermissions records the device permission grants.
func (s *State) SetPermissions(ctx context.Context, perms domain.Permissions) error {
	return s.updateSession(ctx, func(session *domain.Session) {
		session.PermissionsGranted = perms
	})
}

// Upgrade switches the plan and re-activates it.
func (s *State) Upgrade(ctx context.Context, plan domain.PlanType) error {
	switch plan {
	case domain.PlanTrial, domain.PlanMonthly, domain.PlanYearly:
	default:
		return ErrInvalidPlan
	}
	return s.updateSession(ctx, func(session *domain.Session) {
		session.PlanType = plan
		session.IsTrialActive = true
	})
}

func (s *State) updateSession(ctx context.Context, mutate func(*domain.Session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.reload(ctx); err != nil {
		return err
	}
	if s.session == nil {
		return ErrNoSession
	}
	updated := *s.session
	mutate(&updated)
	if err := s.saveJSON(ctx, KeySession, updated); err != nil {
		return err
	}
	s.session = &updated
	return nil
}

// Logout wipes every persisted key and resets to defaults.
func (s *State) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{KeySession, KeyContacts, KeyLogs, KeyEmergencyNumber, KeyLanguage} {
		if err := s.store.Delete(ctx, key); err != nil {
			return err
		}
	}
	s.session = nil
	s.roster, _ = roster.New(nil)
	s.logs = nil
	s.emergencyNumber = DefaultEmergencyNumber
	s.language = trigger.DefaultLanguage
	return nil
}

// PlanActive reports whether the plan currently allows voice monitoring.
// Paid plans stay active; a trial lapses after its end date.
func PlanActive(session domain.Session, now time.Time) bool {
	if !session.IsTrialActive {
		return false
	}
	if session.PlanType != domain.PlanTrial {
		return true
	}
	end, err := time.ParseInLocation(dateLayout, session.TrialEndDate, now.Location())
	if err != nil {
		return false
	}
	return now.Before(end.AddDate(0, 0, 1))
}

// MonitorPreconditions reports the gating inputs for voice monitoring.
func (s *State) MonitorPreconditions() domain.MonitorPreconditions {
	s.mu.Lock()
	defer s.mu.Unlock()

	pre := domain.MonitorPreconditions{Language: s.language}
	if s.session == nil {
		return pre
	}
	pre.MicrophoneGranted = s.session.PermissionsGranted.Microphone
	pre.PlanActive = PlanActive(*s.session, s.now())
	return pre
}
