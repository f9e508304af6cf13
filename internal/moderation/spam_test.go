package moderation

import "testing"

func checkSpam(t *testing.T, text string) FilterResult {
	t.Helper()
	f := NewFilterWithTerms(nil)
	return f.Check(text)
}

func TestSpam_URLsBlocked(t *testing.T) {
	for _, text := range []string{
		"visit https://spam.example.com now",
		"go to www.freestuff.ru",
		"check scam.xyz/win",
	} {
		res := checkSpam(t, text)
		if !res.Blocked {
			t.Errorf("expected %q to be blocked", text)
			continue
		}
		if res.Term != "url" {
			t.Errorf("expected url pattern for %q, got %q", text, res.Term)
		}
	}
}

func TestSpam_VersionStringsNotURLs(t *testing.T) {
	for _, text := range []string{"upgraded to v2.0 today", "pi is 3.14"} {
		if res := checkSpam(t, text); res.Blocked {
			t.Errorf("expected %q to pass, blocked on %q", text, res.Term)
		}
	}
}

func TestSpam_PhoneNumbersBlocked(t *testing.T) {
	for _, text := range []string{
		"call me at +1-555-123-4567",
		"my number is (555) 123-4567",
		"text 555.123.4567",
	} {
		res := checkSpam(t, text)
		if !res.Blocked {
			t.Errorf("expected %q to be blocked", text)
			continue
		}
		if res.Term != "phone" {
			t.Errorf("expected phone pattern for %q, got %q", text, res.Term)
		}
	}
}

func TestSpam_ShortNumbersPass(t *testing.T) {
	for _, text := range []string{"i scored 100 points", "room 42 is free"} {
		if res := checkSpam(t, text); res.Blocked {
			t.Errorf("expected %q to pass, blocked on %q", text, res.Term)
		}
	}
}

func TestSpam_CharFlood(t *testing.T) {
	if res := checkSpam(t, "hellooooo"); !res.Blocked || res.Term != "char_flood" {
		t.Errorf("expected char_flood, got %+v", res)
	}
	if res := checkSpam(t, "helloooo"); res.Blocked {
		t.Errorf("four repeats should pass, got %+v", res)
	}
}

func TestSpam_WordFlood(t *testing.T) {
	if res := checkSpam(t, "buy buy buy"); !res.Blocked || res.Term != "word_flood" {
		t.Errorf("expected word_flood, got %+v", res)
	}
	if res := checkSpam(t, "Buy BUY buy"); !res.Blocked {
		t.Error("word flood should be case-insensitive")
	}
	if res := checkSpam(t, "buy buy now"); res.Blocked {
		t.Errorf("two repeats should pass, got %+v", res)
	}
}

func TestSpam_ReasonIsSpamPattern(t *testing.T) {
	res := checkSpam(t, "aaaaaaa")
	if res.Reason != "spam_pattern" {
		t.Errorf("expected reason spam_pattern, got %q", res.Reason)
	}
}
