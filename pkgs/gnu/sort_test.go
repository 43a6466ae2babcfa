package gnu

import "testing"

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0", "2.0", -1},
		{"2.0", "1.0", 1},
		{"1.0", "1.0", 0},
		{"1.2.10", "1.2.9", 1},
		{"1.10", "1.9", 1},
		{"2", "10", -1},

		// leading zeros are ignored
		{"1.01", "1.1", 0},
		{"001", "01", 0},

		{"", "", 0},
		{"1", "", 1},
		{"", "1", -1},

		// '~' sorts before everything, including the end of the string
		{"1.0~rc1", "1.0", -1},
		{"~", "", -1},

		{"1a", "1b", -1},
		{"1.0a", "1.0", 1},
		{"1.0.0-rc10", "1.0.0-rc9", 1},
		{"2.6.32", "2.6.32.1", -1},
		{"1.0.0", "1.0.0.0", -1},
		{"1-2", "1.2", -1},
		{"1_2", "1.2", 1},

		// date-stamped releases
		{"cci.20130801", "cci.20130802", -1},
		{"cci.20130801", "cci.20130801", 0},
		{"1.1.1w", "1.1.1", 1},
	}
	for _, tt := range tests {
		if got := Compare(tt.a, tt.b); got != tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCompareAntisymmetric(t *testing.T) {
	vers := []string{"", "0", "1", "1.0", "1.0~rc1", "1.0a", "1.10", "1.9", "cci.20130801", "v2"}
	for _, a := range vers {
		for _, b := range vers {
			if Compare(a, b) != -Compare(b, a) {
				t.Errorf("Compare(%q, %q) = %d but Compare(%q, %q) = %d", a, b, Compare(a, b), b, a, Compare(b, a))
			}
		}
	}
}
