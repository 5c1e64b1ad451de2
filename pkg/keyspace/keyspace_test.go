package keyspace

import (
	"testing"
	"time"
)

func TestDetectGame(t *testing.T) {
	tests := []struct {
		name     string
		uid      int64
		wantGame Game
		wantOK   bool
	}{
		{"nine digits leading 6 is hsr", 600000001, StarRail, true},
		{"nine digits leading 1 is zzz", 100000002, ZenlessZoneZero, true},
		{"nine digits leading 8 is gi", 800000000, GenshinImpact, true},
		{"nine digits leading 2 is gi", 200000000, GenshinImpact, true},
		{"nine digits leading 9 is gi", 900000000, GenshinImpact, true},
		{"too short", 42, "", false},
		{"eight digits", 60000000, "", false},
		{"ten digits", 6000000000, "", false},
		{"zero", 0, "", false},
		{"negative", -600000001, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game, ok := DetectGame(tt.uid)
			if ok != tt.wantOK {
				t.Fatalf("DetectGame(%d) ok = %v, want %v", tt.uid, ok, tt.wantOK)
			}
			if game != tt.wantGame {
				t.Errorf("DetectGame(%d) = %q, want %q", tt.uid, game, tt.wantGame)
			}
		})
	}
}

func TestTTL(t *testing.T) {
	tests := []struct {
		game Game
		want time.Duration
	}{
		{GenshinImpact, 5 * time.Minute},
		{StarRail, 5 * time.Minute},
		{ZenlessZoneZero, 15 * time.Minute},
		{IdentityV, 5 * time.Minute},
		{Game("unknown"), DefaultTTL},
	}

	for _, tt := range tests {
		if got := TTL(tt.game); got != tt.want {
			t.Errorf("TTL(%q) = %v, want %v", tt.game, got, tt.want)
		}
	}
}

func TestKey(t *testing.T) {
	if got := Key(GenshinImpact, 800000000); got != "gi:800000000" {
		t.Errorf("Key = %q, want %q", got, "gi:800000000")
	}
	if got := Key(IdentityV, 12345); got != "idv:12345" {
		t.Errorf("Key = %q, want %q", got, "idv:12345")
	}
}

func TestIsShowcase(t *testing.T) {
	for _, game := range []Game{GenshinImpact, StarRail, ZenlessZoneZero} {
		if !IsShowcase(game) {
			t.Errorf("IsShowcase(%q) = false, want true", game)
		}
	}
	if IsShowcase(IdentityV) {
		t.Error("IsShowcase(idv) = true, want false")
	}
	if IsShowcase(Game("wow")) {
		t.Error("IsShowcase(wow) = true, want false")
	}
}
