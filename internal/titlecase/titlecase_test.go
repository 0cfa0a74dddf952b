package titlecase

import (
	"io"
	"log/slog"
	"testing"
	"unicode"

	"github.com/matsen/proceedings/internal/diag"
)

func quietCollector() *diag.Collector {
	return diag.NewCollector(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmart(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"the art of music", "The Art of Music"},
		{"a study of mir", "A Study of Mir"},
		{"Co-operation and co-author", "Co-operation and Co-Author"},
		{"re-enable the model", "Re-enable the Model"},
		{"music: the key to everything", "Music: The Key to Everything"},
		{"iphone apps for musicians", "iPhone Apps for Musicians"},
		{"fMRI of listeners", "fMRI of Listeners"},
		{"state-of-the-art methods", "State-of-the-Art Methods"},
		{"rhythm - the beat as pulse", "Rhythm - The Beat as Pulse"},
		{"MIR: a survey", "MIR: A Survey"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Smart(tt.in, nil)
			if got != tt.want {
				t.Errorf("Smart(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSmartFlagsAmbiguousWords(t *testing.T) {
	d := quietCollector()
	got := Smart("deep learning for music", d)
	if got != "Deep Learning for Music" {
		t.Errorf("Smart() = %q", got)
	}
	if d.Count(diag.TitleAmbiguous) != 1 {
		t.Errorf("ambiguous diagnostics = %d, want 1", d.Count(diag.TitleAmbiguous))
	}
}

func TestSmartAllCapsIsFlagged(t *testing.T) {
	d := quietCollector()
	got := Smart("AN INTRODUCTION TO MIR", d)
	if got != "An Introduction To Mir" {
		t.Errorf("Smart() = %q, want %q", got, "An Introduction To Mir")
	}
	if d.Count(diag.TitleAllCaps) != 1 {
		t.Errorf("all-caps diagnostics = %d, want 1", d.Count(diag.TitleAllCaps))
	}
	if d.Count(diag.TitleAmbiguous) != 1 {
		t.Errorf("ambiguous diagnostics = %d, want 1 for %q", d.Count(diag.TitleAmbiguous), "To")
	}
}

func TestSmartIsIdempotent(t *testing.T) {
	titles := []string{
		"the art of music",
		"AN INTRODUCTION TO MIR",
		"Co-operation and co-author",
		"state-of-the-art methods for beat tracking",
		"music: the key to everything",
		"fMRI study with iOS devices",
	}
	for _, title := range titles {
		once := Smart(title, nil)
		twice := Smart(once, nil)
		if once != twice {
			t.Errorf("Smart(Smart(%q)) = %q, want %q", title, twice, once)
		}
	}
}

func TestSmartOnlyPromotes(t *testing.T) {
	// None of these contain always-lowercase words or are fully uppercase.
	titles := []string{
		"deep learning for music",
		"fMRI study with iOS devices",
		"Co-operation between agents",
		"MIR: a survey",
		"Neural Audio Synthesis via DDSP",
	}
	for _, title := range titles {
		got := []rune(Smart(title, nil))
		in := []rune(title)
		if len(got) != len(in) {
			t.Fatalf("Smart(%q) changed length: %q", title, string(got))
		}
		for i, r := range in {
			if unicode.IsUpper(r) && !unicode.IsUpper(got[i]) {
				t.Errorf("Smart(%q) demoted %q at %d: %q", title, r, i, string(got))
			}
		}
	}
}

func TestUpperInitial(t *testing.T) {
	tests := map[string]string{
		"music":   "Music",
		"iOS":     "iOS",
		"(music)": "(Music)",
		"3d":      "3d",
		"":        "",
	}
	for in, want := range tests {
		if got := upperInitial(in); got != want {
			t.Errorf("upperInitial(%q) = %q, want %q", in, got, want)
		}
	}
}
