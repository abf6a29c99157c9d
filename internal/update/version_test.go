package update

import "testing"

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		name   string
		a, b   string
		want   int
		wantOK bool
	}{
		{"equal", "1.2.3", "1.2.3", 0, true},
		{"v prefix on one side", "v1.2.3", "1.2.3", 0, true},
		{"patch bump", "1.2.3", "1.2.4", -1, true},
		{"major beats minor", "2.0.0", "1.9.9", 1, true},
		{"numeric not lexical", "1.10.0", "1.9.0", 1, true},
		{"prerelease below release", "1.0.0-beta.1", "1.0.0", -1, true},
		{"whitespace trimmed", " 1.0.0 ", "1.0.0", 0, true},
		{"empty", "", "1.0.0", 0, false},
		{"garbage", "latest", "1.0.0", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CompareVersions(tt.a, tt.b)
			if ok != tt.wantOK {
				t.Fatalf("CompareVersions(%q, %q) ok = %v, want %v", tt.a, tt.b, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Fatalf("CompareVersions(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDirection(t *testing.T) {
	tests := []struct {
		local, remote, want string
	}{
		{"1.0.0", "1.0.0", DirectionSame},
		{"1.0.0", "1.1.0", DirectionUpgrade},
		{"2.0.0", "1.1.0", DirectionDowngrade},
		{"dev", "1.1.0", DirectionUnknown},
	}
	for _, tt := range tests {
		if got := Direction(tt.local, tt.remote); got != tt.want {
			t.Errorf("Direction(%q, %q) = %q, want %q", tt.local, tt.remote, got, tt.want)
		}
	}
}
