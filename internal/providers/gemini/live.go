// Package gemini streams microphone audio to the Gemini Live API and
// surfaces its input-audio transcription.
package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"voiceguard/internal/domain"
	"voiceguard/internal/ports"
	"voiceguard/internal/providers/wsstream"
)

const (
	defaultBaseURL = "wss://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.5-flash-native-audio-preview-12-2025"
	liveMethod     = "/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"
)

// Config controls Gemini Live websocket settings.
type Config struct {
	APIKey     string
	APIBaseURL string
	Model      string
}

// Provider implements ports.TranscriptionProvider for the Gemini Live API.
type Provider struct {
	cfg Config
}

func NewProvider(cfg Config) *Provider {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	return &Provider{cfg: cfg}
}

func (p *Provider) StartStreaming(ctx context.Context, cfg ports.StreamingConfig) (ports.StreamingSession, error) {
	if strings.TrimSpace(p.cfg.APIKey) == "" {
		return nil, errors.New("gemini API key is not configured")
	}

	wsURL, err := buildLiveURL(p.cfg)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Gemini Live websocket: %w", err)
	}

	if err := conn.WriteJSON(newSetupMessage(p.cfg.Model)); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to send Gemini Live setup: %w", err)
	}

	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return wsstream.Start(ctx, conn, codec{mimeType: fmt.Sprintf("audio/pcm;rate=%d", sampleRate)}, false), nil
}

func buildLiveURL(cfg Config) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}

	liveURL, err := url.Parse(base + liveMethod)
	if err != nil {
		return "", fmt.Errorf("invalid Gemini API base URL: %w", err)
	}
	query := liveURL.Query()
	query.Set("key", cfg.APIKey)
	liveURL.RawQuery = query.Encode()
	return liveURL.String(), nil
}

type setupMessage struct {
	Setup setup `json:"setup"`
}

type setup struct {
	Model                   string           `json:"model"`
	GenerationConfig        generationConfig `json:"generationConfig"`
	InputAudioTranscription struct{}         `json:"inputAudioTranscription"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities"`
}

// newSetupMessage asks for input-audio transcription only; the model's own
// audio replies are ignored.
func newSetupMessage(model string) setupMessage {
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}
	return setupMessage{Setup: setup{
		Model:            model,
		GenerationConfig: generationConfig{ResponseModalities: []string{"AUDIO"}},
	}}
}

type realtimeInputMessage struct {
	RealtimeInput realtimeInput `json:"realtimeInput"`
}

type realtimeInput struct {
	MediaChunks    []mediaChunk `json:"mediaChunks,omitempty"`
	AudioStreamEnd bool         `json:"audioStreamEnd,omitempty"`
}

type mediaChunk struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type serverMessage struct {
	SetupComplete *struct{} `json:"setupComplete"`
	ServerContent *struct {
		InputTranscription *struct {
			Text string `json:"text"`
		} `json:"inputTranscription"`
		TurnComplete bool `json:"turnComplete"`
	} `json:"serverContent"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type codec struct {
	mimeType string
}

func (c codec) EncodeAudio(chunk []byte) (int, []byte, error) {
	payload, err := json.Marshal(realtimeInputMessage{RealtimeInput: realtimeInput{
		MediaChunks: []mediaChunk{{MimeType: c.mimeType, Data: base64.StdEncoding.EncodeToString(chunk)}},
	}})
	if err != nil {
		return 0, nil, err
	}
	return websocket.TextMessage, payload, nil
}

func (c codec) CloseMessage() (int, []byte, bool) {
	return websocket.TextMessage, []byte(`{"realtimeInput":{"audioStreamEnd":true}}`), true
}

// Decode maps one Live API server message. Transcription text is forwarded
// untrimmed because chunks carry their own word spacing.
func (c codec) Decode(payload []byte) ([]domain.SpeechEvent, error) {
	var msg serverMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, nil
	}

	if msg.Error != nil {
		message := strings.TrimSpace(msg.Error.Message)
		if message == "" {
			message = fmt.Sprintf("gemini returned error code %d", msg.Error.Code)
		}
		return nil, errors.New(message)
	}

	var events []domain.SpeechEvent
	if msg.SetupComplete != nil {
		events = append(events, domain.SpeechEvent{Kind: domain.SpeechEventOpened})
	}
	if content := msg.ServerContent; content != nil {
		if content.InputTranscription != nil && content.InputTranscription.Text != "" {
			events = append(events, domain.SpeechEvent{Kind: domain.SpeechEventTranscript, Text: content.InputTranscription.Text})
		}
		if content.TurnComplete {
			events = append(events, domain.SpeechEvent{Kind: domain.SpeechEventTurnComplete})
		}
	}
	return events, nil
}
