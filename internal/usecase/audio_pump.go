package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"

	"voiceguard/internal/domain"
	"voiceguard/internal/ports"
)

// pumpAudioChunks forwards microphone PCM to the speech stream until capture
// ends. Errors caused by teardown (ctx cancelled) are not reported.
func pumpAudioChunks(
	ctx context.Context,
	audio ports.AudioSession,
	stream ports.StreamingSession,
	chunkSize int,
	events ports.EventSink,
	done chan struct{},
) {
	defer close(done)

	if chunkSize < 256 {
		chunkSize = 4096
	}

	buf := make([]byte, chunkSize)
	for {
		n, err := audio.Read(buf)
		if n > 0 {
			if sendErr := stream.SendAudio(buf[:n]); sendErr != nil {
				if ctx.Err() == nil {
					events.MonitorError(domain.ErrorCodeAudioStream, fmt.Sprintf("failed to stream audio: %v", sendErr))
				}
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				events.MonitorError(domain.ErrorCodeAudioStream, fmt.Sprintf("audio capture error: %v", err))
			}
			return
		}
	}
}
