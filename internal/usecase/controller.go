package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"voiceguard/internal/domain"
	"voiceguard/internal/ports"
	"voiceguard/internal/trigger"
)

var (
	ErrPermissionDenied = errors.New("microphone permission not granted")
	ErrPlanExpired      = errors.New("plan is not active; upgrade to use voice activation")
	ErrStreamFailure    = errors.New("speech stream failure")
)

const DefaultDisplayGrace = 2 * time.Second

// Config controls voice monitoring behavior.
type Config struct {
	Audio        ports.AudioConfig
	Streaming    ports.StreamingConfig
	ChunkSize    int
	DisplayGrace time.Duration
}

// MonitorController runs at most one voice monitoring session, feeding the
// transcript into a trigger matcher and raising a voice incident on a match.
type MonitorController struct {
	audio         ports.AudioCapture
	provider      ports.TranscriptionProvider
	phrases       ports.PhraseCatalog
	preconditions ports.PreconditionSource
	events        ports.EventSink
	dispatcher    incidentDispatcher
	logger        *zap.Logger
	cfg           Config

	// lifecycle serializes Start, Stop and Reevaluate.
	lifecycle sync.Mutex

	mu      sync.Mutex
	current *activeSession
}

func NewMonitorController(
	audio ports.AudioCapture,
	provider ports.TranscriptionProvider,
	phrases ports.PhraseCatalog,
	preconditions ports.PreconditionSource,
	recorder ports.IncidentRecorder,
	events ports.EventSink,
	logger *zap.Logger,
	cfg Config,
) *MonitorController {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	if cfg.DisplayGrace <= 0 {
		cfg.DisplayGrace = DefaultDisplayGrace
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MonitorController{
		audio:         audio,
		provider:      provider,
		phrases:       phrases,
		preconditions: preconditions,
		events:        events,
		dispatcher:    newIncidentDispatcher(recorder, events, logger),
		logger:        logger,
		cfg:           cfg,
	}
}

// Start opens the speech stream and microphone. It is a no-op while a session
// is already open; gating changes for an open session go through Reevaluate. A failure to open either leaves the monitor idle and is
// not retried.
func (c *MonitorController) Start(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	if c.isOpen() {
		return nil
	}
	pre := c.preconditions.MonitorPreconditions()
	if reason, err := checkPreconditions(pre); err != nil {
		c.events.MonitorStateChanged(domain.MonitorStateIdle, reason)
		return err
	}
	return c.startLocked(ctx, pre)
}

func (c *MonitorController) isOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

func (c *MonitorController) startLocked(ctx context.Context, pre domain.MonitorPreconditions) error {
	if c.isOpen() {
		return nil
	}

	streamCfg := c.cfg.Streaming
	streamCfg.Language = trigger.LanguageCode(pre.Language)

	sessionCtx, cancel := context.WithCancel(ctx)
	stream, err := c.provider.StartStreaming(sessionCtx, streamCfg)
	if err != nil {
		cancel()
		return c.startFailed(fmt.Errorf("%w: opening speech stream: %v", ErrStreamFailure, err))
	}

	audioSession, err := c.audio.Start(sessionCtx, c.cfg.Audio)
	if err != nil {
		_ = stream.Close()
		cancel()
		return c.startFailed(fmt.Errorf("%w: opening microphone: %v", ErrStreamFailure, err))
	}

	active := &activeSession{
		ctx:        sessionCtx,
		cancel:     cancel,
		audio:      audioSession,
		stream:     stream,
		matcher:    trigger.NewMatcher(c.phrases.Phrases(pre.Language)),
		language:   pre.Language,
		state:      domain.MonitorStateMonitoring,
		eventsDone: make(chan struct{}),
		audioDone:  make(chan struct{}),
		finished:   make(chan struct{}),
	}

	c.mu.Lock()
	c.current = active
	c.mu.Unlock()

	c.logger.Info("voice monitoring started", zap.String("language", pre.Language))
	c.events.MonitorStateChanged(domain.MonitorStateMonitoring, domain.MonitorReasonToggledOn)

	go c.consumeSpeechEvents(active)
	go pumpAudioChunks(active.ctx, active.audio, active.stream, c.cfg.ChunkSize, c.events, active.audioDone)
	go c.supervise(active)
	return nil
}

func (c *MonitorController) startFailed(err error) error {
	c.logger.Error("voice monitoring failed to start", zap.Error(err))
	c.events.MonitorError(domain.ErrorCodeStartup, err.Error())
	c.events.MonitorStateChanged(domain.MonitorStateIdle, domain.MonitorReasonStartFailed)
	return err
}

// Stop releases every resource of the open session before returning.
func (c *MonitorController) Stop() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	active := c.detach()
	if active == nil {
		return
	}
	c.teardown(active)
	c.logger.Info("voice monitoring stopped")
	c.events.MonitorStateChanged(domain.MonitorStateIdle, domain.MonitorReasonToggledOff)
}

// Reevaluate re-checks the monitoring preconditions against the open
// session. It stops the session when they no longer hold and returns the
// gating error, and restarts it when the language changed.
func (c *MonitorController) Reevaluate(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	active := c.current
	c.mu.Unlock()
	if active == nil {
		return nil
	}

	pre := c.preconditions.MonitorPreconditions()
	if reason, err := checkPreconditions(pre); err != nil {
		if c.detachIf(active) {
			c.teardown(active)
		}
		c.events.MonitorStateChanged(domain.MonitorStateIdle, reason)
		return err
	}
	if pre.Language == active.language {
		return nil
	}

	if c.detachIf(active) {
		c.teardown(active)
	}
	c.logger.Info("restarting voice monitoring for new language",
		zap.String("from", active.language),
		zap.String("to", pre.Language),
	)
	c.events.MonitorStateChanged(domain.MonitorStateIdle, domain.MonitorReasonLanguageChanged)
	return c.startLocked(ctx, pre)
}

// Status returns the current monitor status.
func (c *MonitorController) Status() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return domain.Status{State: domain.MonitorStateIdle, Active: false}
	}
	return domain.Status{
		State:    c.current.getState(),
		Active:   true,
		Language: c.current.language,
	}
}

// Done is closed once the session open at call time has ended and its final
// state change was reported. It returns nil when idle.
func (c *MonitorController) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	return c.current.finished
}

// supervise tears the session down when its stream ends or its context is
// cancelled, unless Stop or Reevaluate already detached it.
func (c *MonitorController) supervise(active *activeSession) {
	defer close(active.finished)

	reason := domain.MonitorReasonStreamClosed
	select {
	case <-active.eventsDone:
		if err := active.failed(); err != nil && !errors.Is(err, errStreamClosed) {
			reason = domain.MonitorReasonStreamFailed
		}
	case <-active.ctx.Done():
		reason = domain.MonitorReasonContextCancelled
	}

	c.lifecycle.Lock()
	if !c.detachIf(active) {
		c.lifecycle.Unlock()
		return
	}
	c.teardown(active)
	c.lifecycle.Unlock()

	if reason != domain.MonitorReasonContextCancelled {
		detail := "speech stream closed"
		if err := active.failed(); err != nil {
			detail = err.Error()
		}
		if streamErr := active.stream.Wait(); streamErr != nil && reason == domain.MonitorReasonStreamClosed {
			reason = domain.MonitorReasonStreamFailed
			detail = streamErr.Error()
		}
		c.logger.Warn("speech stream ended", zap.String("reason", string(reason)), zap.String("detail", detail))
		c.events.MonitorError(domain.ErrorCodeStream, detail)
	}
	c.events.MonitorStateChanged(domain.MonitorStateIdle, reason)
}

// detach clears the current session and returns it.
func (c *MonitorController) detach() *activeSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	active := c.current
	c.current = nil
	return active
}

// detachIf clears the current session only when it is still active.
func (c *MonitorController) detachIf(active *activeSession) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != active {
		return false
	}
	c.current = nil
	return true
}

func (c *MonitorController) teardown(active *activeSession) {
	active.cancel()
	active.cancelDisplayClear()
	if err := active.audio.Stop(); err != nil {
		c.events.MonitorError(domain.ErrorCodeAudioStop, "failed to stop audio capture cleanly")
	}
	_ = active.stream.Close()
	<-active.eventsDone
	<-active.audioDone
	active.matcher.Reset()
	active.setState(domain.MonitorStateIdle)
}

func checkPreconditions(pre domain.MonitorPreconditions) (domain.MonitorStateReason, error) {
	if !pre.MicrophoneGranted {
		return domain.MonitorReasonPermissionDenied, ErrPermissionDenied
	}
	if !pre.PlanActive {
		return domain.MonitorReasonPlanExpired, ErrPlanExpired
	}
	return "", nil
}
