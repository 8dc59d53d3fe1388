package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"voiceguard/internal/domain"
	"voiceguard/internal/ports"
)

var englishPhrases = []string{"This is an emergency, please help me", "I need help right now"}

func readyPreconditions() *fakePreconditions {
	return &fakePreconditions{pre: domain.MonitorPreconditions{
		MicrophoneGranted: true,
		PlanActive:        true,
		Language:          "English (US)",
	}}
}

type monitorFixture struct {
	controller    *MonitorController
	audio         *fakeAudioCapture
	provider      *fakeProvider
	preconditions *fakePreconditions
	recorder      *fakeRecorder
	events        *fakeEventSink
	phrases       *fakePhrases
}

func newMonitorFixture(streams []ports.StreamingSession, audio []ports.AudioSession, cfg Config) *monitorFixture {
	f := &monitorFixture{
		audio:         &fakeAudioCapture{sessions: audio},
		provider:      &fakeProvider{sessions: streams},
		preconditions: readyPreconditions(),
		recorder:      &fakeRecorder{},
		events:        &fakeEventSink{},
		phrases: &fakePhrases{byLanguage: map[string][]string{
			"English (US)": englishPhrases,
			"Spanish":      {"Estoy en peligro, ayuda"},
		}},
	}
	f.controller = NewMonitorController(f.audio, f.provider, f.phrases, f.preconditions, f.recorder, f.events, nil, cfg)
	return f
}

func TestMonitorStartRequiresMicrophonePermission(t *testing.T) {
	t.Parallel()

	f := newMonitorFixture(nil, nil, Config{})
	f.preconditions.set(domain.MonitorPreconditions{MicrophoneGranted: false, PlanActive: true})

	err := f.controller.Start(context.Background())
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if f.provider.callCount() != 0 || f.audio.callCount() != 0 {
		t.Fatalf("expected no resources to be opened")
	}
	if status := f.controller.Status(); status.State != domain.MonitorStateIdle || status.Active {
		t.Fatalf("unexpected status: %+v", status)
	}
	if last := f.events.lastState(); last.reason != domain.MonitorReasonPermissionDenied {
		t.Fatalf("unexpected reason: %s", last.reason)
	}
}

func TestMonitorStartRequiresActivePlan(t *testing.T) {
	t.Parallel()

	f := newMonitorFixture(nil, nil, Config{})
	f.preconditions.set(domain.MonitorPreconditions{MicrophoneGranted: true, PlanActive: false})

	err := f.controller.Start(context.Background())
	if !errors.Is(err, ErrPlanExpired) {
		t.Fatalf("expected ErrPlanExpired, got %v", err)
	}
	if f.provider.callCount() != 0 {
		t.Fatalf("provider must not be called when the plan is inactive")
	}
}

func TestMonitorStartIsNoOpWhileOpen(t *testing.T) {
	t.Parallel()

	stream := newFakeStreamingSession()
	f := newMonitorFixture(
		[]ports.StreamingSession{stream, newFakeStreamingSession()},
		[]ports.AudioSession{newFakeAudioSession(), newFakeAudioSession()},
		Config{},
	)

	if err := f.controller.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := f.controller.Start(context.Background()); err != nil {
		t.Fatalf("second start failed: %v", err)
	}
	defer f.controller.Stop()

	if f.provider.callCount() != 1 {
		t.Fatalf("expected one provider call, got %d", f.provider.callCount())
	}
	status := f.controller.Status()
	if status.State != domain.MonitorStateMonitoring || !status.Active || status.Language != "English (US)" {
		t.Fatalf("unexpected status: %+v", status)
	}
	if lang := stream.config().Language; lang != "en-US" {
		t.Fatalf("expected provider language code en-US, got %q", lang)
	}
}

func TestMonitorStartWhileOpenIgnoresGatingChange(t *testing.T) {
	t.Parallel()

	audio := newFakeAudioSession()
	f := newMonitorFixture([]ports.StreamingSession{newFakeStreamingSession()}, []ports.AudioSession{audio}, Config{})

	if err := f.controller.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer f.controller.Stop()
	f.preconditions.set(domain.MonitorPreconditions{MicrophoneGranted: false, PlanActive: true, Language: "English (US)"})

	if err := f.controller.Start(context.Background()); err != nil {
		t.Fatalf("expected start on an open session to be a no-op, got %v", err)
	}
	if status := f.controller.Status(); !status.Active {
		t.Fatalf("expected session to stay open, got %+v", status)
	}
	if last := f.events.lastState(); last.state != domain.MonitorStateMonitoring {
		t.Fatalf("expected no idle transition, got %+v", last)
	}
	if audio.stops() != 0 {
		t.Fatalf("expected audio to stay open")
	}
}

func TestMonitorStopReleasesResources(t *testing.T) {
	t.Parallel()

	stream := newFakeStreamingSession()
	audio := newFakeAudioSession()
	f := newMonitorFixture([]ports.StreamingSession{stream}, []ports.AudioSession{audio}, Config{})

	if err := f.controller.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	done := f.controller.Done()
	f.controller.Stop()
	f.controller.Stop()

	if audio.stops() != 1 {
		t.Fatalf("expected audio to be stopped once, got %d", audio.stops())
	}
	if stream.closes() != 1 {
		t.Fatalf("expected stream to be closed once, got %d", stream.closes())
	}
	if status := f.controller.Status(); status.Active {
		t.Fatalf("expected idle after stop: %+v", status)
	}
	if last := f.events.lastState(); last.state != domain.MonitorStateIdle || last.reason != domain.MonitorReasonToggledOff {
		t.Fatalf("unexpected final state: %+v", last)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("done channel was not closed after stop")
	}
	if errs := f.events.snapshotErrors(); len(errs) != 0 {
		t.Fatalf("stop must not report errors: %+v", errs)
	}
}

func TestMonitorOpenedEventMovesToListening(t *testing.T) {
	t.Parallel()

	stream := newFakeStreamingSession()
	f := newMonitorFixture([]ports.StreamingSession{stream}, []ports.AudioSession{newFakeAudioSession()}, Config{})

	if err := f.controller.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer f.controller.Stop()

	stream.push(domain.SpeechEvent{Kind: domain.SpeechEventOpened})
	waitFor(t, func() bool {
		return f.controller.Status().State == domain.MonitorStateListening
	})

	states := f.events.snapshotStates()
	if states[0].reason != domain.MonitorReasonToggledOn || states[1].reason != domain.MonitorReasonStreamOpened {
		t.Fatalf("unexpected transitions: %+v", states)
	}
}

func TestMonitorVoiceMatchRecordsOneIncident(t *testing.T) {
	t.Parallel()

	stream := newFakeStreamingSession()
	f := newMonitorFixture([]ports.StreamingSession{stream}, []ports.AudioSession{newFakeAudioSession()}, Config{})

	if err := f.controller.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer f.controller.Stop()

	stream.push(domain.SpeechEvent{Kind: domain.SpeechEventOpened})
	stream.push(domain.SpeechEvent{Kind: domain.SpeechEventTranscript, Text: "This is an em"})
	stream.push(domain.SpeechEvent{Kind: domain.SpeechEventTranscript, Text: "ergency, please help me"})
	stream.push(domain.SpeechEvent{Kind: domain.SpeechEventTranscript, Text: " please"})

	waitFor(t, func() bool { return len(f.events.snapshotTranscripts()) == 3 })

	if got := f.recorder.snapshot(); len(got) != 1 || got[0] != domain.IncidentVoiceTrigger {
		t.Fatalf("expected exactly one voice incident, got %v", got)
	}
	if incidents := f.events.snapshotIncidents(); len(incidents) != 1 || incidents[0].ID != "log-1" {
		t.Fatalf("expected incident event for recorded entry, got %+v", incidents)
	}

	transcripts := f.events.snapshotTranscripts()
	want := []string{"This is an em", "", "please"}
	for i := range want {
		if transcripts[i] != want[i] {
			t.Fatalf("transcript %d: got %q want %q", i, transcripts[i], want[i])
		}
	}
	if status := f.controller.Status(); status.State != domain.MonitorStateListening {
		t.Fatalf("monitoring should continue after a match: %+v", status)
	}
}

func TestMonitorIncidentFailureIsReported(t *testing.T) {
	t.Parallel()

	stream := newFakeStreamingSession()
	f := newMonitorFixture([]ports.StreamingSession{stream}, []ports.AudioSession{newFakeAudioSession()}, Config{})
	f.recorder.err = errors.New("disk full")

	if err := f.controller.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer f.controller.Stop()

	stream.push(domain.SpeechEvent{Kind: domain.SpeechEventTranscript, Text: "I need help right now"})
	waitFor(t, func() bool { return len(f.events.snapshotErrors()) == 1 })

	if errs := f.events.snapshotErrors(); errs[0].code != domain.ErrorCodeIncident {
		t.Fatalf("expected incident error, got %+v", errs)
	}
	if len(f.events.snapshotIncidents()) != 0 {
		t.Fatalf("failed incident must not be raised")
	}
}

func TestMonitorStreamErrorReturnsToIdleWithoutRetry(t *testing.T) {
	t.Parallel()

	stream := newFakeStreamingSession()
	audio := newFakeAudioSession()
	f := newMonitorFixture(
		[]ports.StreamingSession{stream, newFakeStreamingSession()},
		[]ports.AudioSession{audio, newFakeAudioSession()},
		Config{},
	)

	if err := f.controller.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	done := f.controller.Done()

	stream.push(domain.SpeechEvent{Kind: domain.SpeechEventOpened})
	stream.push(domain.SpeechEvent{Kind: domain.SpeechEventError, Err: errors.New("quota exceeded")})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("session did not end after stream error")
	}

	if status := f.controller.Status(); status.Active {
		t.Fatalf("expected idle after stream error: %+v", status)
	}
	last := f.events.lastState()
	if last.state != domain.MonitorStateIdle || last.reason != domain.MonitorReasonStreamFailed {
		t.Fatalf("unexpected final state: %+v", last)
	}
	errs := f.events.snapshotErrors()
	if len(errs) == 0 || errs[len(errs)-1].code != domain.ErrorCodeStream || errs[len(errs)-1].detail != "quota exceeded" {
		t.Fatalf("expected stream error event, got %+v", errs)
	}
	if audio.stops() != 1 {
		t.Fatalf("expected audio to be released")
	}

	time.Sleep(20 * time.Millisecond)
	if f.provider.callCount() != 1 {
		t.Fatalf("stream must not be retried, provider calls=%d", f.provider.callCount())
	}
}

func TestMonitorStreamCloseReturnsToIdle(t *testing.T) {
	t.Parallel()

	stream := newFakeStreamingSession()
	f := newMonitorFixture([]ports.StreamingSession{stream}, []ports.AudioSession{newFakeAudioSession()}, Config{})

	if err := f.controller.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	done := f.controller.Done()
	stream.push(domain.SpeechEvent{Kind: domain.SpeechEventClosed})
	<-done

	if last := f.events.lastState(); last.reason != domain.MonitorReasonStreamClosed {
		t.Fatalf("expected stream_closed, got %+v", last)
	}
}

func TestMonitorStartFailureLeavesIdle(t *testing.T) {
	t.Parallel()

	f := newMonitorFixture(nil, nil, Config{})
	f.provider.err = errors.New("dial failed")

	err := f.controller.Start(context.Background())
	if !errors.Is(err, ErrStreamFailure) {
		t.Fatalf("expected ErrStreamFailure, got %v", err)
	}
	if f.audio.callCount() != 0 {
		t.Fatalf("microphone must not open when the stream fails")
	}
	if status := f.controller.Status(); status.Active {
		t.Fatalf("expected idle: %+v", status)
	}
	if errs := f.events.snapshotErrors(); len(errs) != 1 || errs[0].code != domain.ErrorCodeStartup {
		t.Fatalf("expected startup error, got %+v", errs)
	}
}

func TestMonitorMicrophoneFailureClosesStream(t *testing.T) {
	t.Parallel()

	stream := newFakeStreamingSession()
	f := newMonitorFixture([]ports.StreamingSession{stream}, nil, Config{})
	f.audio.err = errors.New("device busy")

	err := f.controller.Start(context.Background())
	if !errors.Is(err, ErrStreamFailure) {
		t.Fatalf("expected ErrStreamFailure, got %v", err)
	}
	if stream.closes() != 1 {
		t.Fatalf("expected stream to be closed after microphone failure")
	}
}

func TestMonitorTurnCompleteClearsDisplayAfterGrace(t *testing.T) {
	t.Parallel()

	stream := newFakeStreamingSession()
	f := newMonitorFixture([]ports.StreamingSession{stream}, []ports.AudioSession{newFakeAudioSession()}, Config{DisplayGrace: 20 * time.Millisecond})

	if err := f.controller.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer f.controller.Stop()

	stream.push(domain.SpeechEvent{Kind: domain.SpeechEventTranscript, Text: "hello"})
	stream.push(domain.SpeechEvent{Kind: domain.SpeechEventTurnComplete})
	stream.push(domain.SpeechEvent{Kind: domain.SpeechEventTranscript, Text: "I need"})

	waitFor(t, func() bool { return len(f.events.snapshotTranscripts()) == 2 })
	transcripts := f.events.snapshotTranscripts()
	if transcripts[1] != "I need" {
		t.Fatalf("turn complete must clear the matching buffer, got %q", transcripts[1])
	}

	stream.push(domain.SpeechEvent{Kind: domain.SpeechEventTurnComplete})
	waitFor(t, func() bool {
		got := f.events.snapshotTranscripts()
		return len(got) == 3 && got[2] == ""
	})
}

func TestMonitorNewChunkCancelsDisplayClear(t *testing.T) {
	t.Parallel()

	stream := newFakeStreamingSession()
	f := newMonitorFixture([]ports.StreamingSession{stream}, []ports.AudioSession{newFakeAudioSession()}, Config{DisplayGrace: 100 * time.Millisecond})

	if err := f.controller.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer f.controller.Stop()

	stream.push(domain.SpeechEvent{Kind: domain.SpeechEventTranscript, Text: "hello"})
	stream.push(domain.SpeechEvent{Kind: domain.SpeechEventTurnComplete})
	stream.push(domain.SpeechEvent{Kind: domain.SpeechEventTranscript, Text: "again"})

	waitFor(t, func() bool { return len(f.events.snapshotTranscripts()) == 2 })
	time.Sleep(250 * time.Millisecond)

	transcripts := f.events.snapshotTranscripts()
	if len(transcripts) != 2 || transcripts[1] != "again" {
		t.Fatalf("pending clear should have been cancelled, got %q", transcripts)
	}
}

func TestMonitorReevaluateStopsWhenPlanExpires(t *testing.T) {
	t.Parallel()

	audio := newFakeAudioSession()
	f := newMonitorFixture([]ports.StreamingSession{newFakeStreamingSession()}, []ports.AudioSession{audio}, Config{})

	if err := f.controller.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	f.preconditions.set(domain.MonitorPreconditions{MicrophoneGranted: true, PlanActive: false, Language: "English (US)"})

	err := f.controller.Reevaluate(context.Background())
	if !errors.Is(err, ErrPlanExpired) {
		t.Fatalf("expected ErrPlanExpired, got %v", err)
	}
	if f.controller.Status().Active {
		t.Fatalf("expected monitor to stop")
	}
	if audio.stops() != 1 {
		t.Fatalf("expected audio release on reevaluate")
	}
}

func TestMonitorReevaluateRestartsOnLanguageChange(t *testing.T) {
	t.Parallel()

	first := newFakeStreamingSession()
	second := newFakeStreamingSession()
	f := newMonitorFixture(
		[]ports.StreamingSession{first, second},
		[]ports.AudioSession{newFakeAudioSession(), newFakeAudioSession()},
		Config{},
	)

	if err := f.controller.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer f.controller.Stop()

	if err := f.controller.Reevaluate(context.Background()); err != nil {
		t.Fatalf("unchanged reevaluate failed: %v", err)
	}
	if f.provider.callCount() != 1 {
		t.Fatalf("unchanged preconditions must not restart")
	}

	f.preconditions.set(domain.MonitorPreconditions{MicrophoneGranted: true, PlanActive: true, Language: "Spanish"})
	if err := f.controller.Reevaluate(context.Background()); err != nil {
		t.Fatalf("reevaluate failed: %v", err)
	}

	if first.closes() != 1 {
		t.Fatalf("expected the first stream to be closed")
	}
	if f.provider.callCount() != 2 {
		t.Fatalf("expected restart, provider calls=%d", f.provider.callCount())
	}
	if status := f.controller.Status(); status.Language != "Spanish" {
		t.Fatalf("unexpected language: %+v", status)
	}

	second.push(domain.SpeechEvent{Kind: domain.SpeechEventTranscript, Text: "estoy en peligro, ayuda"})
	waitFor(t, func() bool { return len(f.recorder.snapshot()) == 1 })
}

func TestMonitorContextCancellationTearsDown(t *testing.T) {
	t.Parallel()

	stream := newFakeStreamingSession()
	audio := newFakeAudioSession()
	f := newMonitorFixture([]ports.StreamingSession{stream}, []ports.AudioSession{audio}, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	if err := f.controller.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	done := f.controller.Done()
	cancel()
	<-done

	if audio.stops() != 1 || stream.closes() != 1 {
		t.Fatalf("expected resources to be released on cancellation")
	}
	if last := f.events.lastState(); last.reason != domain.MonitorReasonContextCancelled {
		t.Fatalf("unexpected reason: %+v", last)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

type fakePreconditions struct {
	mu  sync.Mutex
	pre domain.MonitorPreconditions
}

func (f *fakePreconditions) set(pre domain.MonitorPreconditions) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pre = pre
}

func (f *fakePreconditions) MonitorPreconditions() domain.MonitorPreconditions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pre
}

type fakePhrases struct {
	byLanguage map[string][]string
}

func (f *fakePhrases) Phrases(language string) []string {
	return f.byLanguage[language]
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []domain.IncidentType
	err   error
}

func (f *fakeRecorder) RecordIncident(_ context.Context, incident domain.IncidentType) (domain.LogEntry, []domain.CascadeRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.LogEntry{}, nil, f.err
	}
	f.calls = append(f.calls, incident)
	entry := domain.LogEntry{ID: "log-" + string(rune('0'+len(f.calls))), Type: incident}
	return entry, []domain.CascadeRow{{Tier: 1, Role: domain.RoleSOS}}, nil
}

func (f *fakeRecorder) snapshot() []domain.IncidentType {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.IncidentType(nil), f.calls...)
}

type fakeAudioCapture struct {
	mu       sync.Mutex
	sessions []ports.AudioSession
	err      error
	calls    int
}

func (f *fakeAudioCapture) Start(_ context.Context, _ ports.AudioConfig) (ports.AudioSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.calls > len(f.sessions) {
		return nil, errors.New("no audio session configured")
	}
	return f.sessions[f.calls-1], nil
}

func (f *fakeAudioCapture) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeAudioSession yields its chunks and then blocks like a live microphone
// until Stop is called.
type fakeAudioSession struct {
	mu        sync.Mutex
	chunks    [][]byte
	index     int
	stopCalls int
	stopErr   error
	stopped   chan struct{}
}

func newFakeAudioSession(chunks ...[]byte) *fakeAudioSession {
	return &fakeAudioSession{chunks: chunks, stopped: make(chan struct{})}
}

func (f *fakeAudioSession) Read(p []byte) (int, error) {
	f.mu.Lock()
	if f.index < len(f.chunks) {
		n := copy(p, f.chunks[f.index])
		f.index++
		f.mu.Unlock()
		return n, nil
	}
	f.mu.Unlock()
	<-f.stopped
	return 0, io.EOF
}

func (f *fakeAudioSession) Close() error { return nil }

func (f *fakeAudioSession) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopCalls++
	if f.stopCalls == 1 {
		close(f.stopped)
	}
	return f.stopErr
}

func (f *fakeAudioSession) stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopCalls
}

type fakeProvider struct {
	mu       sync.Mutex
	sessions []ports.StreamingSession
	err      error
	calls    int
}

func (f *fakeProvider) StartStreaming(_ context.Context, cfg ports.StreamingConfig) (ports.StreamingSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.calls > len(f.sessions) {
		return nil, errors.New("no stream session configured")
	}
	session := f.sessions[f.calls-1]
	if fake, ok := session.(*fakeStreamingSession); ok {
		fake.setConfig(cfg)
	}
	return session, nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeStreamingSession struct {
	mu         sync.Mutex
	events     chan domain.SpeechEvent
	cfg        ports.StreamingConfig
	sent       int
	waitErr    error
	closeCalls int
	closed     bool
}

func newFakeStreamingSession() *fakeStreamingSession {
	return &fakeStreamingSession{events: make(chan domain.SpeechEvent, 16)}
}

func (f *fakeStreamingSession) push(event domain.SpeechEvent) {
	f.events <- event
}

func (f *fakeStreamingSession) setConfig(cfg ports.StreamingConfig) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfg = cfg
}

func (f *fakeStreamingSession) config() ports.StreamingConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg
}

func (f *fakeStreamingSession) SendAudio(_ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent++
	return nil
}

func (f *fakeStreamingSession) CloseSend() error { return nil }

func (f *fakeStreamingSession) Events() <-chan domain.SpeechEvent { return f.events }

func (f *fakeStreamingSession) Wait() error { return f.waitErr }

func (f *fakeStreamingSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCalls++
	if !f.closed {
		close(f.events)
		f.closed = true
	}
	return nil
}

func (f *fakeStreamingSession) closes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closeCalls
}

type fakeEventSink struct {
	mu sync.Mutex

	states      []stateEvent
	transcripts []string
	incidents   []domain.LogEntry
	errors      []errEvent
}

type stateEvent struct {
	state  domain.MonitorState
	reason domain.MonitorStateReason
}

type errEvent struct {
	code   domain.ErrorCode
	detail string
}

func (f *fakeEventSink) MonitorStateChanged(state domain.MonitorState, reason domain.MonitorStateReason) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, stateEvent{state: state, reason: reason})
}

func (f *fakeEventSink) LiveTranscript(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transcripts = append(f.transcripts, text)
}

func (f *fakeEventSink) IncidentRaised(entry domain.LogEntry, _ []domain.CascadeRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.incidents = append(f.incidents, entry)
}

func (f *fakeEventSink) MonitorError(code domain.ErrorCode, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, errEvent{code: code, detail: detail})
}

func (f *fakeEventSink) snapshotStates() []stateEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]stateEvent(nil), f.states...)
}

func (f *fakeEventSink) lastState() stateEvent {
	states := f.snapshotStates()
	if len(states) == 0 {
		return stateEvent{}
	}
	return states[len(states)-1]
}

func (f *fakeEventSink) snapshotTranscripts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.transcripts...)
}

func (f *fakeEventSink) snapshotIncidents() []domain.LogEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.LogEntry(nil), f.incidents...)
}

func (f *fakeEventSink) snapshotErrors() []errEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]errEvent(nil), f.errors...)
}
