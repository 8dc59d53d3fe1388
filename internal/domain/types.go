package domain

// ContactType identifies which roster slot a contact occupies.
type ContactType string

const (
	ContactTypeSOS    ContactType = "SOS Contact"
	ContactTypeNormal ContactType = "Normal Contact"
)

// Contact is a single roster member. Contacts are never edited in place.
type Contact struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Phone string      `json:"phone"`
	Type  ContactType `json:"type"`
}

// IncidentType identifies what raised an incident.
type IncidentType string

const (
	IncidentVoiceTrigger IncidentType = "Voice Trigger"
	IncidentManualSOS    IncidentType = "Manual SOS"
)

// Action is one intended response toward a recipient.
type Action string

const (
	ActionCall     Action = "Call"
	ActionSMS      Action = "SMS"
	ActionLocation Action = "Location"
)

// RecipientRole is the cascade tier a row belongs to.
type RecipientRole string

const (
	RoleSOS           RecipientRole = "sos"
	RoleSecondary     RecipientRole = "secondary"
	RoleTertiary      RecipientRole = "tertiary"
	RoleCircle        RecipientRole = "circle"
	RoleEmergencyLine RecipientRole = "emergency_line"
)

// CascadeRow is one recipient line of a computed notification cascade.
type CascadeRow struct {
	Tier     int           `json:"tier"`
	Role     RecipientRole `json:"role"`
	Label    string        `json:"label"`
	Name     string        `json:"name"`
	Actions  []Action      `json:"actions"`
	Bypassed bool          `json:"bypassed,omitempty"`
}

// LogDetails is the roster snapshot captured when an incident fires.
type LogDetails struct {
	SOSContactName     string   `json:"sosContact"`
	NormalContactNames []string `json:"normalContacts"`
	EmergencyNumber    string   `json:"emergencyNumber"`
}

// LogEntry is an immutable audit record of one incident.
type LogEntry struct {
	ID        string       `json:"id"`
	Date      string       `json:"date"`
	Timestamp int64        `json:"timestamp"`
	Time      string       `json:"time"`
	Type      IncidentType `json:"type"`
	Details   LogDetails   `json:"details"`
}

// PlanType is the subscription tier of a session.
type PlanType string

const (
	PlanTrial   PlanType = "Trial"
	PlanMonthly PlanType = "Monthly"
	PlanYearly  PlanType = "Yearly"
)

// Permissions records which device permissions the user granted.
type Permissions struct {
	Microphone bool `json:"microphone"`
	Location   bool `json:"location"`
}

// Session holds account and plan state.
type Session struct {
	Email              string      `json:"email"`
	TrialStartDate     string      `json:"trialStartDate"`
	TrialEndDate       string      `json:"trialEndDate"`
	IsLoggedIn         bool        `json:"isLoggedIn"`
	IsTrialActive      bool        `json:"isTrialActive"`
	PlanType           PlanType    `json:"planType"`
	PermissionsGranted Permissions `json:"permissionsGranted"`
}

// MonitorState models the voice monitoring lifecycle.
type MonitorState string

const (
	MonitorStateIdle       MonitorState = "idle"
	MonitorStateMonitoring MonitorState = "monitoring"
	MonitorStateListening  MonitorState = "listening"
)

// MonitorStateReason provides a structured reason for state transitions.
type MonitorStateReason string

const (
	MonitorReasonToggledOn        MonitorStateReason = "toggled_on"
	MonitorReasonStreamOpened     MonitorStateReason = "stream_opened"
	MonitorReasonToggledOff       MonitorStateReason = "toggled_off"
	MonitorReasonPermissionDenied MonitorStateReason = "permission_denied"
	MonitorReasonPlanExpired      MonitorStateReason = "plan_expired"
	MonitorReasonStartFailed      MonitorStateReason = "start_failed"
	MonitorReasonStreamFailed     MonitorStateReason = "stream_failed"
	MonitorReasonStreamClosed     MonitorStateReason = "stream_closed"
	MonitorReasonLanguageChanged  MonitorStateReason = "language_changed"
	MonitorReasonContextCancelled MonitorStateReason = "context_cancelled"
)

// ErrorCode identifies non-fatal backend errors.
type ErrorCode string

const (
	ErrorCodeStartup     ErrorCode = "startup"
	ErrorCodeStream      ErrorCode = "stream"
	ErrorCodeAudioStop   ErrorCode = "audio_stop"
	ErrorCodeAudioStream ErrorCode = "audio_stream"
	ErrorCodeIncident    ErrorCode = "incident"
)

// SpeechEventKind tags an inbound event from a transcription session.
type SpeechEventKind string

const (
	SpeechEventOpened       SpeechEventKind = "opened"
	SpeechEventTranscript   SpeechEventKind = "transcript"
	SpeechEventTurnComplete SpeechEventKind = "turn_complete"
	SpeechEventError        SpeechEventKind = "error"
	SpeechEventClosed       SpeechEventKind = "closed"
)

// SpeechEvent is one inbound event from a streaming transcription session.
type SpeechEvent struct {
	Kind SpeechEventKind `json:"kind"`
	Text string          `json:"text,omitempty"`
	Err  error           `json:"-"`
}

// Status summarizes the current monitor status.
type Status struct {
	State    MonitorState `json:"state"`
	Active   bool         `json:"active"`
	Language string       `json:"language,omitempty"`
}

// MonitorPreconditions gates whether voice monitoring may run.
type MonitorPreconditions struct {
	MicrophoneGranted bool
	PlanActive        bool
	Language          string
}
