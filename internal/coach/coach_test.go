package coach

import (
	"math"
	"strings"
	"testing"

	"github.com/intervu-ai/intervu/internal/domain"
)

func TestAnalyzeWPM(t *testing.T) {
	tests := []struct {
		name     string
		words    int
		duration float64
		wantWPM  float64
	}{
		{"normal pace", 20, 10.0, 120},
		{"fast pace", 30, 10.0, 180},
		{"slow pace", 10, 10.0, 60},
		{"duration floored at one second", 5, 0.2, 300},
		{"zero duration floored", 2, 0, 120},
	}

	c := New(DefaultConfig())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			transcript := strings.TrimSpace(strings.Repeat("word ", tc.words))
			result := c.Analyze(transcript, tc.duration)
			if math.Abs(result.WordsPerMinute-tc.wantWPM) > 0.01 {
				t.Errorf("WPM = %.2f, want %.2f", result.WordsPerMinute, tc.wantWPM)
			}
			if !result.WPMEstimated {
				t.Error("transcript-only analysis must flag WPM as estimated")
			}
		})
	}
}

func TestAnalyzePaceAlerts(t *testing.T) {
	c := New(DefaultConfig())

	// 30 words in 10s = 180 WPM, above the 160 threshold.
	fast := c.Analyze(strings.Repeat("word ", 30), 10.0)
	if fast.AlertLevel != domain.AlertWarning || fast.PrimaryAlert != AlertPaceFast {
		t.Errorf("fast pace: got level=%s alert=%q", fast.AlertLevel, fast.PrimaryAlert)
	}

	// 10 words in 10s = 60 WPM, below the 100 threshold.
	slow := c.Analyze(strings.Repeat("word ", 10), 10.0)
	if slow.AlertLevel != domain.AlertWarning || slow.PrimaryAlert != AlertPaceSlow {
		t.Errorf("slow pace: got level=%s alert=%q", slow.AlertLevel, slow.PrimaryAlert)
	}

	// 20 words in 10s = 120 WPM, inside the band.
	ok := c.Analyze(strings.Repeat("word ", 20), 10.0)
	if ok.AlertLevel != domain.AlertOK || ok.PrimaryAlert != "" {
		t.Errorf("normal pace: got level=%s alert=%q", ok.AlertLevel, ok.PrimaryAlert)
	}
}

func TestAlertPriorityPaceBeatsFillers(t *testing.T) {
	c := New(DefaultConfig())

	// 220 WPM and heavy fillers at once: the pace alert must win.
	words := make([]string, 0, 22)
	for i := 0; i < 11; i++ {
		words = append(words, "um", "word")
	}
	transcript := strings.Join(words, " ")
	result := c.Analyze(transcript, 6.0) // 22 words / 6s = 220 WPM

	if result.FillerCount < 5 {
		t.Fatalf("expected heavy fillers in fixture, got %d", result.FillerCount)
	}
	if result.PrimaryAlert != AlertPaceFast {
		t.Errorf("primary alert = %q, want pace alert", result.PrimaryAlert)
	}
}

func TestAnalyzeFillerDensityAlert(t *testing.T) {
	c := New(DefaultConfig())

	// 24 words at normal pace, 6 fillers: density 0.25 over the 0.08 ratio.
	transcript := "um so I think um that we should um use a hash map because um lookups are um constant time on average um yes"
	result := c.Analyze(transcript, 12.0)

	if result.AlertLevel != domain.AlertWarning {
		t.Fatalf("level = %s, want warning", result.AlertLevel)
	}
	if result.PrimaryAlert != AlertFillers {
		t.Errorf("primary alert = %q, want filler alert", result.PrimaryAlert)
	}
}

func TestAnalyzeNoSpeech(t *testing.T) {
	c := New(DefaultConfig())

	tests := []string{"", "   ", "\n\t"}
	for _, transcript := range tests {
		result := c.Analyze(transcript, 5.0)
		if result.AlertLevel != domain.AlertOK {
			t.Errorf("silent capture must classify OK, got %s", result.AlertLevel)
		}
		if result.PrimaryAlert != AlertNoSpeech {
			t.Errorf("primary alert = %q, want no-speech message", result.PrimaryAlert)
		}
		if result.WordsPerMinute != 0 {
			t.Errorf("WPM = %f, want 0", result.WordsPerMinute)
		}
	}
}

func TestAnalyzeAudioVolume(t *testing.T) {
	c := New(DefaultConfig())

	// 20 words in 10s = 120 WPM, so only the volume dimension can trigger.
	transcript := "I used a hash map for constant time lookups since the cache layer needed fast reads under heavy concurrent load"

	quiet := []float64{0.001, 0.002, -0.001, 0.0015}
	result := c.AnalyzeAudio(transcript, 10.0, quiet)
	if !result.VolumeMeasured {
		t.Fatal("volume must be flagged as measured when samples are provided")
	}
	if result.PrimaryAlert != AlertVolumeLow {
		t.Errorf("primary alert = %q, want volume alert", result.PrimaryAlert)
	}
	if result.WPMEstimated {
		t.Error("audio-backed analysis must not flag WPM as estimated")
	}

	loud := []float64{0.1, -0.15, 0.2, -0.1, 0.12}
	result = c.AnalyzeAudio(transcript, 10.0, loud)
	if result.AlertLevel != domain.AlertOK {
		t.Errorf("normal volume at normal pace: got level=%s alert=%q", result.AlertLevel, result.PrimaryAlert)
	}
}

func TestRMS(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Errorf("RMS(nil) = %f, want 0", got)
	}
	// Constant amplitude: RMS equals the amplitude.
	if got := RMS([]float64{0.5, -0.5, 0.5, -0.5}); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("RMS = %f, want 0.5", got)
	}
}

func TestDecodePCM16(t *testing.T) {
	samples, err := DecodePCM16([]byte{0x00, 0x40}) // 16384 LE
	if err != nil {
		t.Fatalf("DecodePCM16: %v", err)
	}
	if math.Abs(samples[0]-0.5) > 0.001 {
		t.Errorf("sample = %f, want 0.5", samples[0])
	}

	for _, frame := range [][]byte{nil, {}, {0x01}} {
		if _, err := DecodePCM16(frame); err == nil {
			t.Errorf("DecodePCM16(%v) should fail", frame)
		}
	}
}
