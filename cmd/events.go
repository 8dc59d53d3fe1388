package cmd

import (
	"fmt"
	"io"
	"sync"

	"voiceguard/internal/domain"
)

// terminalSink prints monitor events as they arrive.
type terminalSink struct {
	mu  sync.Mutex
	out io.Writer
}

func newTerminalSink(out io.Writer) *terminalSink {
	return &terminalSink{out: out}
}

func (s *terminalSink) MonitorStateChanged(state domain.MonitorState, reason domain.MonitorStateReason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	message := stateReasonMessage(reason)
	if message == "" {
		fmt.Fprintf(s.out, "[%s]\n", state)
		return
	}
	fmt.Fprintf(s.out, "[%s] %s\n", state, message)
}

func (s *terminalSink) LiveTranscript(text string) {
	if text == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "  heard: %s\n", text)
}

func (s *terminalSink) IncidentRaised(entry domain.LogEntry, rows []domain.CascadeRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "!! %s incident at %s %s\n", entry.Type, entry.Date, entry.Time)
	writeCascade(s.out, rows)
}

func (s *terminalSink) MonitorError(code domain.ErrorCode, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	message := errorMessage(code, detail)
	if detail == "" || detail == message {
		fmt.Fprintf(s.out, "error: %s\n", message)
		return
	}
	fmt.Fprintf(s.out, "error: %s (%s)\n", message, detail)
}

func stateReasonMessage(reason domain.MonitorStateReason) string {
	switch reason {
	case domain.MonitorReasonToggledOn:
		return "Voice activation on"
	case domain.MonitorReasonStreamOpened:
		return "Listening for trigger phrases"
	case domain.MonitorReasonToggledOff:
		return "Voice activation off"
	case domain.MonitorReasonPermissionDenied:
		return "Microphone permission required"
	case domain.MonitorReasonPlanExpired:
		return "Plan expired; upgrade to use voice activation"
	case domain.MonitorReasonStartFailed:
		return "Voice activation failed to start"
	case domain.MonitorReasonStreamFailed:
		return "Speech stream failed"
	case domain.MonitorReasonStreamClosed:
		return "Speech stream closed"
	case domain.MonitorReasonLanguageChanged:
		return "Language changed; restarting"
	case domain.MonitorReasonContextCancelled:
		return "Voice activation stopped"
	default:
		return ""
	}
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeStream:
		return "Speech stream issue"
	case domain.ErrorCodeAudioStop:
		return "Audio stop issue"
	case domain.ErrorCodeAudioStream:
		return "Audio streaming issue"
	case domain.ErrorCodeIncident:
		return "Incident could not be logged"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}

// discardSink drops events for commands that never start monitoring.
type discardSink struct{}

func (discardSink) MonitorStateChanged(domain.MonitorState, domain.MonitorStateReason) {}
func (discardSink) LiveTranscript(string) {}
func (discardSink) IncidentRaised(domain.LogEntry, []domain.CascadeRow) {}
func (discardSink) MonitorError(domain.ErrorCode, string) {}
