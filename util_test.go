package theoraclip

import "testing"

func TestPotCeil(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 4},
		{4, 4},
		{5, 8},
		{1023, 1024},
		{1024, 1024},
		{1025, 2048},
	}
	for _, c := range cases {
		if got := potCeil(c.in); got != c.want {
			t.Errorf("potCeil(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}
