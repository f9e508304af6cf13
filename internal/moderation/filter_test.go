package moderation

import "testing"

func TestNewFilter(t *testing.T) {
	f := NewFilter()
	if f == nil {
		t.Fatal("NewFilter returned nil")
	}
	if f.TermCount() == 0 {
		t.Fatal("NewFilter created an empty filter")
	}
}

func TestNewFilterWithTerms_CleansInput(t *testing.T) {
	f := NewFilterWithTerms([]string{"  Badword ", "", "OFFENSIVE"})
	if f.TermCount() != 2 {
		t.Fatalf("expected 2 terms after cleaning, got %d", f.TermCount())
	}
	if res := f.Check("what a badword that is"); !res.Blocked {
		t.Error("trimmed term should still match")
	}
	if res := f.Check("that was offensive"); !res.Blocked {
		t.Error("lowercased term should still match")
	}
}

func TestCheck_ProhibitedTerm(t *testing.T) {
	f := NewFilterWithTerms([]string{"badword"})

	res := f.Check("you absolute badword")
	if !res.Blocked {
		t.Fatal("expected blocked")
	}
	if res.Reason != "prohibited_term" {
		t.Errorf("expected reason prohibited_term, got %q", res.Reason)
	}
	if res.Term != "badword" {
		t.Errorf("expected matched term badword, got %q", res.Term)
	}
}

func TestCheck_CaseInsensitive(t *testing.T) {
	f := NewFilterWithTerms([]string{"badword"})

	for _, text := range []string{"BADWORD", "BadWord here", "say badWORD!"} {
		if res := f.Check(text); !res.Blocked {
			t.Errorf("expected %q to be blocked", text)
		}
	}
}

func TestCheck_WordBoundaries(t *testing.T) {
	f := NewFilterWithTerms([]string{"ass"})

	if res := f.Check("you ass"); !res.Blocked {
		t.Error("expected whole-word match to block")
	}
	if res := f.Check("ass!"); !res.Blocked {
		t.Error("expected punctuation boundary to block")
	}
	if res := f.Check("nice assessment"); res.Blocked {
		t.Error("substring inside a longer word should not block")
	}
	if res := f.Check("classic"); res.Blocked {
		t.Error("substring inside a longer word should not block")
	}
}

func TestCheck_MultiWordTerm(t *testing.T) {
	f := NewFilterWithTerms([]string{"kill yourself"})

	if res := f.Check("just kill yourself already"); !res.Blocked {
		t.Error("expected multi-word term to block")
	}
	if res := f.Check("kill yourselfish tendencies"); res.Blocked {
		t.Error("multi-word term needs a trailing boundary")
	}
}

func TestCheck_CleanTextPasses(t *testing.T) {
	f := NewFilter()

	for _, text := range []string{
		"hello there",
		"how is everyone doing today",
		"version v2.0 is out",
	} {
		if res := f.Check(text); res.Blocked {
			t.Errorf("expected %q to pass, blocked on %q", text, res.Term)
		}
	}
}
