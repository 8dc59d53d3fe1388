package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"voiceguard/internal/domain"
	"voiceguard/internal/ports"
)

// incidentDispatcher records a voice-triggered incident and forwards the
// result to the event sink.
type incidentDispatcher struct {
	recorder ports.IncidentRecorder
	events   ports.EventSink
	logger   *zap.Logger
}

func newIncidentDispatcher(recorder ports.IncidentRecorder, events ports.EventSink, logger *zap.Logger) incidentDispatcher {
	return incidentDispatcher{recorder: recorder, events: events, logger: logger}
}

func (d incidentDispatcher) Dispatch(ctx context.Context, incident domain.IncidentType) error {
	entry, rows, err := d.recorder.RecordIncident(ctx, incident)
	if err != nil {
		d.logger.Error("failed to record incident", zap.String("type", string(incident)), zap.Error(err))
		d.events.MonitorError(domain.ErrorCodeIncident, fmt.Sprintf("failed to record incident: %v", err))
		return err
	}
	d.events.IncidentRaised(entry, rows)
	return nil
}
