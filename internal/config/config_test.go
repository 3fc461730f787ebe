package config

import "testing"

func TestParseHHMM(t *testing.T) {
	h, m, err := ParseHHMM("23:59")
	if err != nil || h != 23 || m != 59 {
		t.Fatalf("want 23:59, got %d:%d err=%v", h, m, err)
	}
	for _, bad := range []string{"", "23", "24:00", "12:60", "ab:cd", "1:2:3"} {
		if _, _, err := ParseHHMM(bad); err == nil {
			t.Fatalf("want error for %q", bad)
		}
	}
}

func TestIsAdmin(t *testing.T) {
	cfg := Config{AdminIDs: []int64{514900377, 781710702}}
	if !cfg.IsAdmin(514900377) {
		t.Fatal("known admin rejected")
	}
	if cfg.IsAdmin(1) {
		t.Fatal("unknown user accepted")
	}
}
