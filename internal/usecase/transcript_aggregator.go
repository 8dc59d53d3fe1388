package usecase

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"voiceguard/internal/domain"
)

var errStreamClosed = errors.New("speech stream closed")

// consumeSpeechEvents handles every event of one session in arrival order.
// It returns on a stream error or close, leaving teardown to the supervisor.
func (c *MonitorController) consumeSpeechEvents(active *activeSession) {
	defer close(active.eventsDone)

	for event := range active.stream.Events() {
		switch event.Kind {
		case domain.SpeechEventOpened:
			if active.setState(domain.MonitorStateListening) {
				c.logger.Info("speech stream opened", zap.String("language", active.language))
				c.events.MonitorStateChanged(domain.MonitorStateListening, domain.MonitorReasonStreamOpened)
			}
		case domain.SpeechEventTranscript:
			c.handleChunk(active, event.Text)
		case domain.SpeechEventTurnComplete:
			active.matcher.TurnComplete()
			active.scheduleDisplayClear(c.cfg.DisplayGrace, func() {
				c.events.LiveTranscript("")
			})
		case domain.SpeechEventError:
			err := event.Err
			if err == nil {
				err = errors.New("speech provider reported an error")
			}
			active.fail(err)
			return
		case domain.SpeechEventClosed:
			active.fail(errStreamClosed)
			return
		}
	}
	active.fail(errStreamClosed)
}

func (c *MonitorController) handleChunk(active *activeSession, chunk string) {
	if chunk == "" {
		return
	}
	active.cancelDisplayClear()

	if !active.matcher.Feed(chunk) {
		c.events.LiveTranscript(strings.TrimSpace(active.matcher.Buffer()))
		return
	}

	c.logger.Warn("trigger phrase detected", zap.String("language", active.language))
	c.events.LiveTranscript("")
	_ = c.dispatcher.Dispatch(context.WithoutCancel(active.ctx), domain.IncidentVoiceTrigger)
}
