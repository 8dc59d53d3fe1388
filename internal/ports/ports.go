package ports

import (
	"context"
	"io"

	"voiceguard/internal/domain"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live capture session.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// StreamingConfig describes provider-agnostic streaming settings.
type StreamingConfig struct {
	SampleRate int
	Channels   int
	Encoding   string
	Language   string
}

// StreamingSession is an active provider websocket session. Events are
// delivered in arrival order and the channel is closed when the session ends.
type StreamingSession interface {
	SendAudio(chunk []byte) error
	CloseSend() error
	Events() <-chan domain.SpeechEvent
	Wait() error
	Close() error
}

// TranscriptionProvider starts streaming transcription sessions.
type TranscriptionProvider interface {
	StartStreaming(ctx context.Context, cfg StreamingConfig) (StreamingSession, error)
}

// KVStore is the external key-value persistence boundary.
type KVStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}

// IncidentRecorder turns an incident into a persisted log entry.
type IncidentRecorder interface {
	RecordIncident(ctx context.Context, incident domain.IncidentType) (domain.LogEntry, []domain.CascadeRow, error)
}

// PreconditionSource reports the gating inputs for voice monitoring.
type PreconditionSource interface {
	MonitorPreconditions() domain.MonitorPreconditions
}

// PhraseCatalog resolves the trigger phrases for a language.
type PhraseCatalog interface {
	Phrases(language string) []string
}

// EventSink receives monitor state and incident notifications.
type EventSink interface {
	MonitorStateChanged(state domain.MonitorState, reason domain.MonitorStateReason)
	LiveTranscript(text string)
	IncidentRaised(entry domain.LogEntry, rows []domain.CascadeRow)
	MonitorError(code domain.ErrorCode, detail string)
}
