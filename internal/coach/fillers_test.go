package coach

import "testing"

func TestCountFillers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"clean answer", "I implemented a REST API using Flask and PostgreSQL", 0},
		{"um with punctuation", "Um, like, I used a linked list", 2},
		{"substring never counts", "most likely the unlikely case", 0},
		{"case insensitive", "UM Uh LIKE", 3},
		{"multi-word phrase", "So you know I was thinking you know about it", 2},
		{"apostrophe filler", "it was y'know pretty hard", 1},
		{"phrase boundary", "I know you already", 0},
		{"mixed", "I think um that um we should um do this", 3},
		{"kind of whole phrase only", "this kind of kindness", 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CountFillers(tc.text); got != tc.want {
				t.Errorf("CountFillers(%q) = %d, want %d", tc.text, got, tc.want)
			}
		})
	}
}
