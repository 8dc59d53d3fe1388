package cascade

import (
	"time"

	"voiceguard/internal/domain"
)

const (
	// NotSet names a missing SOS contact.
	NotSet = "Not Set"
	// NotConfigured names an empty emergency number.
	NotConfigured = "Not Configured"
)

// Compute decides which recipients receive which actions for an incident.
// Rows are ordered SOS first, then normals by rank, then the emergency line.
// Missing recipients still produce rows so the intended protocol is auditable.
func Compute(incident domain.IncidentType, sos *domain.Contact, normals []domain.Contact, emergencyNumber string) []domain.CascadeRow {
	return rowsFor(incident, snapshot(sos, normals, emergencyNumber))
}

// FromLog re-derives the cascade recorded by a log entry.
func FromLog(entry domain.LogEntry) []domain.CascadeRow {
	return rowsFor(entry.Type, entry.Details)
}

func rowsFor(incident domain.IncidentType, details domain.LogDetails) []domain.CascadeRow {
	sosName := details.SOSContactName
	if sosName == "" {
		sosName = NotSet
	}

	rows := make([]domain.CascadeRow, 0, len(details.NormalContactNames)+2)
	rows = append(rows, domain.CascadeRow{
		Tier:    1,
		Role:    domain.RoleSOS,
		Label:   "SOS Contact (Primary)",
		Name:    sosName,
		Actions: []domain.Action{domain.ActionCall, domain.ActionSMS, domain.ActionLocation},
	})

	for i, name := range details.NormalContactNames {
		actions := normalActions(incident, i)
		if len(actions) == 0 {
			continue
		}
		role, label := normalRole(i)
		rows = append(rows, domain.CascadeRow{
			Tier:    i + 2,
			Role:    role,
			Label:   label,
			Name:    name,
			Actions: actions,
		})
	}

	// The emergency line sits outside the contact tiers.
	line := domain.CascadeRow{
		Role:    domain.RoleEmergencyLine,
		Label:   "Emergency Line",
		Name:    details.EmergencyNumber,
		Actions: []domain.Action{},
	}
	if line.Name == "" {
		line.Name = NotConfigured
	}
	if incident == domain.IncidentManualSOS {
		line.Actions = []domain.Action{domain.ActionCall}
	} else {
		line.Bypassed = true
	}
	return append(rows, line)
}

func normalActions(incident domain.IncidentType, rank int) []domain.Action {
	if incident == domain.IncidentManualSOS {
		return []domain.Action{domain.ActionSMS, domain.ActionLocation}
	}
	switch rank {
	case 0:
		return []domain.Action{domain.ActionSMS, domain.ActionLocation}
	case 1:
		return []domain.Action{domain.ActionSMS}
	default:
		return nil
	}
}

func normalRole(rank int) (domain.RecipientRole, string) {
	switch rank {
	case 0:
		return domain.RoleSecondary, "Secondary"
	case 1:
		return domain.RoleTertiary, "Tertiary"
	default:
		return domain.RoleCircle, "Contact"
	}
}

// NewLogEntry snapshots the roster into an immutable log record.
func NewLogEntry(id string, now time.Time, incident domain.IncidentType, sos *domain.Contact, normals []domain.Contact, emergencyNumber string) domain.LogEntry {
	return domain.LogEntry{
		ID:        id,
		Date:      now.Format("Jan 2"),
		Time:      now.Format("15:04"),
		Timestamp: now.UnixMilli(),
		Type:      incident,
		Details:   snapshot(sos, normals, emergencyNumber),
	}
}

func snapshot(sos *domain.Contact, normals []domain.Contact, emergencyNumber string) domain.LogDetails {
	details := domain.LogDetails{
		SOSContactName:     NotSet,
		NormalContactNames: make([]string, len(normals)),
		EmergencyNumber:    emergencyNumber,
	}
	if sos != nil && sos.Name != "" {
		details.SOSContactName = sos.Name
	}
	for i, c := range normals {
		details.NormalContactNames[i] = c.Name
	}
	return details
}
