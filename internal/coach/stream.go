package coach

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/intervu-ai/intervu/internal/domain"
)

// StreamConfig tunes live frame analysis.
type StreamConfig struct {
	VolumeThreshold float64       // sustained smoothed RMS below this raises "speak up"
	SilenceFloor    float64       // RMS below this counts as silence for speech detection
	Smoothing       float64       // EMA weight of the newest frame, in (0, 1]
	EmitInterval    time.Duration // minimum gap between emitted events
	SustainWindow   time.Duration // how long the level must stay quiet before alerting
	SpeechFrames    int           // consecutive loud frames to enter speech
	SilenceFrames   int           // consecutive quiet frames to leave speech
}

// DefaultStreamConfig returns settings tuned for 16kHz 20-60ms PCM frames.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		VolumeThreshold: 0.02,
		SilenceFloor:    0.008,
		Smoothing:       0.2,
		EmitInterval:    250 * time.Millisecond,
		SustainWindow:   1500 * time.Millisecond,
		SpeechFrames:    3,
		SilenceFrames:   30,
	}
}

// StreamAnalyzer processes live audio frames and produces coaching events.
// Speech detection uses hysteresis so the is_speaking flag does not
// flicker at the silence boundary.
type StreamAnalyzer struct {
	cfg StreamConfig
	now func() time.Time

	mu           sync.Mutex
	smoothed     float64
	primed       bool
	inSpeech     bool
	speechCount  int
	silenceCount int
	quietSince   time.Time
	lastEmit     time.Time
	rmsSum       float64
	frames       int
	dropped      int
}

// NewStreamAnalyzer creates an analyzer with the given settings.
// Zero-valued fields fall back to DefaultStreamConfig.
func NewStreamAnalyzer(cfg StreamConfig) *StreamAnalyzer {
	def := DefaultStreamConfig()
	if cfg.VolumeThreshold == 0 {
		cfg.VolumeThreshold = def.VolumeThreshold
	}
	if cfg.SilenceFloor == 0 {
		cfg.SilenceFloor = def.SilenceFloor
	}
	if cfg.Smoothing <= 0 || cfg.Smoothing > 1 {
		cfg.Smoothing = def.Smoothing
	}
	if cfg.EmitInterval == 0 {
		cfg.EmitInterval = def.EmitInterval
	}
	if cfg.SustainWindow == 0 {
		cfg.SustainWindow = def.SustainWindow
	}
	if cfg.SpeechFrames == 0 {
		cfg.SpeechFrames = def.SpeechFrames
	}
	if cfg.SilenceFrames == 0 {
		cfg.SilenceFrames = def.SilenceFrames
	}
	return &StreamAnalyzer{cfg: cfg, now: time.Now}
}

// Run consumes PCM16 frames until the input channel closes or the context
// is cancelled, whichever comes first. The returned event channel closes
// when processing stops; no events are emitted after that. Events are
// dropped rather than queued when the receiver lags, so frame processing
// never blocks the rest of the turn lifecycle.
func (a *StreamAnalyzer) Run(ctx context.Context, frames <-chan []byte) <-chan domain.StreamingCoachingEvent {
	events := make(chan domain.StreamingCoachingEvent, 16)
	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case frame, ok := <-frames:
				if !ok {
					return
				}
				ev, emit := a.process(frame)
				if !emit {
					continue
				}
				select {
				case events <- ev:
				default:
				}
			}
		}
	}()
	return events
}

// process analyzes one frame and reports whether an event is due.
func (a *StreamAnalyzer) process(frame []byte) (domain.StreamingCoachingEvent, bool) {
	samples, err := DecodePCM16(frame)
	if err != nil {
		a.mu.Lock()
		a.dropped++
		dropped := a.dropped
		a.mu.Unlock()
		slog.Debug("Dropping malformed audio frame", "size", len(frame), "dropped_total", dropped)
		return domain.StreamingCoachingEvent{}, false
	}

	level := RMS(samples)
	now := a.now()

	a.mu.Lock()
	defer a.mu.Unlock()

	a.frames++
	a.rmsSum += level

	if !a.primed {
		a.smoothed = level
		a.primed = true
	} else {
		a.smoothed = a.cfg.Smoothing*level + (1-a.cfg.Smoothing)*a.smoothed
	}

	a.updateSpeaking(level)

	alert := ""
	if a.smoothed < a.cfg.VolumeThreshold {
		if a.quietSince.IsZero() {
			a.quietSince = now
		} else if now.Sub(a.quietSince) >= a.cfg.SustainWindow {
			alert = AlertVolumeLow
		}
	} else {
		a.quietSince = time.Time{}
	}

	if !a.lastEmit.IsZero() && now.Sub(a.lastEmit) < a.cfg.EmitInterval {
		return domain.StreamingCoachingEvent{}, false
	}
	a.lastEmit = now

	return domain.StreamingCoachingEvent{
		VolumeLevel: a.smoothed,
		IsSpeaking:  a.inSpeech,
		Alert:       alert,
	}, true
}

// updateSpeaking applies hysteresis around the silence floor.
// Caller must hold a.mu.
func (a *StreamAnalyzer) updateSpeaking(level float64) {
	if a.inSpeech {
		if level < a.cfg.SilenceFloor {
			a.silenceCount++
			a.speechCount = 0
			if a.silenceCount >= a.cfg.SilenceFrames {
				a.inSpeech = false
				a.silenceCount = 0
			}
		} else {
			a.silenceCount = 0
		}
		return
	}
	if level >= a.cfg.SilenceFloor {
		a.speechCount++
		a.silenceCount = 0
		if a.speechCount >= a.cfg.SpeechFrames {
			a.inSpeech = true
			a.speechCount = 0
		}
	} else {
		a.speechCount = 0
	}
}

// MeanVolume returns the average frame RMS observed so far.
func (a *StreamAnalyzer) MeanVolume() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.frames == 0 {
		return 0
	}
	return a.rmsSum / float64(a.frames)
}

// Reset clears all accumulated state for a new capture.
func (a *StreamAnalyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.smoothed = 0
	a.primed = false
	a.inSpeech = false
	a.speechCount = 0
	a.silenceCount = 0
	a.quietSince = time.Time{}
	a.lastEmit = time.Time{}
	a.rmsSum = 0
	a.frames = 0
	a.dropped = 0
}
