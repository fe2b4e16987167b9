package usecase

import "testing"

func TestPredictionPoints(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name                   string
		predHome, predAway     int
		actualHome, actualAway int
		want                   int
	}{
		{"exact win", 2, 1, 2, 1, 5},
		{"exact draw", 1, 1, 1, 1, 5},
		{"exact nil nil", 0, 0, 0, 0, 5},
		{"outcome plus home leg", 2, 0, 2, 1, 3},
		{"outcome plus away leg", 3, 1, 2, 1, 3},
		{"outcome only", 1, 0, 3, 1, 2},
		{"outcome only no exact leg", 1, 0, 2, 1, 2},
		{"draw outcome only", 2, 2, 0, 0, 2},
		{"single leg wrong outcome", 2, 1, 2, 3, 1},
		{"away leg wrong outcome", 0, 1, 3, 1, 1},
		{"complete miss", 0, 2, 3, 1, 0},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := PredictionPoints(tc.predHome, tc.predAway, tc.actualHome, tc.actualAway)
			if got != tc.want {
				t.Fatalf("PredictionPoints(%d,%d vs %d,%d) = %d, want %d",
					tc.predHome, tc.predAway, tc.actualHome, tc.actualAway, got, tc.want)
			}
		})
	}
}
