package coach

// Alert messages surfaced to the candidate. At most one is chosen per result.
const (
	AlertPaceFast  = "Slow down. Take a breath between thoughts."
	AlertPaceSlow  = "Pick up the pace. Try to be more concise."
	AlertFillers   = "Watch the fillers. Too many \"um\" and \"like\"."
	AlertVolumeLow = "Speak up. Your voice is coming through quietly."
	AlertNoSpeech  = "No speech detected."
)

// alertRule pairs a trigger with its message. Rules are evaluated in
// priority order and the first match wins, so the tie-break policy is
// the order of this list rather than buried control flow.
type alertRule struct {
	triggered func(cfg Config, m metrics) bool
	message   string
}

var alertRules = []alertRule{
	{
		triggered: func(cfg Config, m metrics) bool { return m.wpm > cfg.WPMFast },
		message:   AlertPaceFast,
	},
	{
		triggered: func(cfg Config, m metrics) bool { return m.wpm < cfg.WPMSlow },
		message:   AlertPaceSlow,
	},
	{
		triggered: func(cfg Config, m metrics) bool {
			return m.wordCount > 0 && float64(m.fillerCount)/float64(m.wordCount) > cfg.FillerWarnRatio
		},
		message: AlertFillers,
	},
	{
		triggered: func(cfg Config, m metrics) bool {
			return m.volumeMeasured && m.volume < cfg.VolumeThreshold
		},
		message: AlertVolumeLow,
	},
}

// firstAlert returns the highest-priority triggered alert, if any.
func (c *Coach) firstAlert(m metrics) (string, bool) {
	for _, rule := range alertRules {
		if rule.triggered(c.cfg, m) {
			return rule.message, true
		}
	}
	return "", false
}
