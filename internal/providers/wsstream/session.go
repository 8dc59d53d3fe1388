// Package wsstream runs a bidirectional speech-transcription session over a
// websocket. Provider packages supply a Codec for their wire format.
package wsstream

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"voiceguard/internal/domain"
)

// Codec translates between PCM audio, provider frames and speech events.
type Codec interface {
	// EncodeAudio returns the frame that carries one PCM chunk.
	EncodeAudio(chunk []byte) (messageType int, payload []byte, err error)
	// CloseMessage returns the frame that ends the audio stream, if any.
	CloseMessage() (messageType int, payload []byte, ok bool)
	// Decode maps one inbound frame to events. A non-nil error ends the
	// session with that error.
	Decode(payload []byte) ([]domain.SpeechEvent, error)
}

// Session implements ports.StreamingSession on top of a websocket.
type Session struct {
	conn  *websocket.Conn
	codec Codec

	events chan domain.SpeechEvent
	audio  chan []byte
	done   chan struct{}
	stop   chan struct{}

	wg sync.WaitGroup

	errMu sync.Mutex
	err   error

	closeSendOnce sync.Once
	closeOnce     sync.Once
	sendMu        sync.RWMutex
	sendClosed    bool
}

// Start runs the read and write loops on conn. When opened is true an Opened
// event is delivered first, for providers that have no handshake message.
// The session closes when ctx is cancelled.
func Start(ctx context.Context, conn *websocket.Conn, codec Codec, opened bool) *Session {
	s := &Session{
		conn:   conn,
		codec:  codec,
		events: make(chan domain.SpeechEvent, 64),
		audio:  make(chan []byte, 32),
		done:   make(chan struct{}),
		stop:   make(chan struct{}),
	}
	if opened {
		s.events <- domain.SpeechEvent{Kind: domain.SpeechEventOpened}
	}

	s.wg.Add(2)
	go s.readLoop()
	go s.writeLoop()
	go func() {
		s.wg.Wait()
		close(s.events)
		close(s.done)
		_ = conn.Close()
	}()

	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-s.done:
		}
	}()

	return s
}

func (s *Session) SendAudio(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}

	// The read lock is held across the send so CloseSend cannot close the
	// channel underneath it.
	s.sendMu.RLock()
	defer s.sendMu.RUnlock()
	if s.sendClosed {
		return errors.New("audio stream is already closed")
	}

	copied := append([]byte(nil), chunk...)
	select {
	case s.audio <- copied:
		return nil
	case <-s.stop:
		return errors.New("session closed")
	case <-s.done:
		if err := s.waitErr(); err != nil {
			return err
		}
		return errors.New("session closed")
	}
}

func (s *Session) CloseSend() error {
	s.closeSendOnce.Do(func() {
		s.sendMu.Lock()
		s.sendClosed = true
		close(s.audio)
		s.sendMu.Unlock()
	})
	return nil
}

func (s *Session) Events() <-chan domain.SpeechEvent {
	return s.events
}

func (s *Session) Wait() error {
	<-s.done
	return s.waitErr()
}

// Close tears the connection down and waits for both loops to exit.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
		_ = s.CloseSend()
		_ = s.conn.Close()
	})
	<-s.done
	return s.waitErr()
}

func (s *Session) stopping() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

func (s *Session) waitErr() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *Session) setErr(err error) {
	if err == nil || isNormalClose(err) {
		return
	}

	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func isNormalClose(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	)
}

func (s *Session) writeLoop() {
	defer s.wg.Done()

	for chunk := range s.audio {
		messageType, payload, err := s.codec.EncodeAudio(chunk)
		if err != nil {
			s.setErr(fmt.Errorf("failed to encode audio: %w", err))
			return
		}
		if err := s.conn.WriteMessage(messageType, payload); err != nil {
			if !s.stopping() {
				s.setErr(fmt.Errorf("failed to send audio: %w", err))
			}
			return
		}
	}

	if s.stopping() {
		return
	}
	if messageType, payload, ok := s.codec.CloseMessage(); ok {
		if err := s.conn.WriteMessage(messageType, payload); err != nil {
			s.setErr(fmt.Errorf("failed to close stream: %w", err))
		}
	}
}

func (s *Session) readLoop() {
	defer s.wg.Done()

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			if s.stopping() || isNormalClose(err) {
				s.emit(domain.SpeechEvent{Kind: domain.SpeechEventClosed})
				return
			}
			err = fmt.Errorf("failed to read provider event: %w", err)
			s.setErr(err)
			s.emit(domain.SpeechEvent{Kind: domain.SpeechEventError, Err: err})
			return
		}

		events, err := s.codec.Decode(payload)
		for _, event := range events {
			s.emit(event)
		}
		if err != nil {
			s.setErr(err)
			s.emit(domain.SpeechEvent{Kind: domain.SpeechEventError, Err: err})
			return
		}
	}
}

// emit blocks until the consumer takes the event or the session is closed,
// so no event is dropped while the session is live.
func (s *Session) emit(event domain.SpeechEvent) {
	select {
	case s.events <- event:
	case <-s.stop:
	}
}
