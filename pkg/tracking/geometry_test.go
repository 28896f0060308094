package tracking

import (
	"errors"
	"image"
	"math"
	"testing"
)

func TestCenter(t *testing.T) {
	tests := []struct {
		w, h int
		want image.Point
	}{
		{100, 100, image.Pt(50, 50)},
		{101, 99, image.Pt(50, 49)},
		{1, 1, image.Pt(0, 0)},
		{1280, 720, image.Pt(640, 360)},
	}
	for _, tc := range tests {
		if got := Center(tc.w, tc.h); got != tc.want {
			t.Errorf("Center(%d, %d) = %v, want %v", tc.w, tc.h, got, tc.want)
		}
	}
}

func TestDistanceToCenter_Scenario(t *testing.T) {
	d, c, err := DistanceToCenter(image.Pt(80, 20), 100, 100)
	if err != nil {
		t.Fatalf("DistanceToCenter: %v", err)
	}
	if c != image.Pt(50, 50) {
		t.Errorf("center = %v, want (50,50)", c)
	}
	if math.Abs(d-42.43) > 0.01 {
		t.Errorf("distance = %.4f, want ≈ 42.43", d)
	}
}

func TestDistanceToCenter_ZeroOnlyAtCenter(t *testing.T) {
	const w, h = 64, 48
	c := Center(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d, _, err := DistanceToCenter(image.Pt(x, y), w, h)
			if err != nil {
				t.Fatalf("DistanceToCenter: %v", err)
			}
			atCenter := image.Pt(x, y) == c
			if atCenter && d != 0 {
				t.Errorf("distance at center = %v, want 0", d)
			}
			if !atCenter && d <= 0 {
				t.Errorf("distance at (%d,%d) = %v, want > 0", x, y, d)
			}
		}
	}
}

func TestDistanceToCenter_SymmetricUnderReflection(t *testing.T) {
	const w, h = 100, 80
	c := Center(w, h)
	points := []image.Point{{0, 0}, {80, 20}, {99, 79}, {50, 10}, {13, 67}}
	for _, p := range points {
		mirror := image.Pt(2*c.X-p.X, 2*c.Y-p.Y)
		d1, _, _ := DistanceToCenter(p, w, h)
		d2, _, _ := DistanceToCenter(mirror, w, h)
		if math.Abs(d1-d2) > 1e-9 {
			t.Errorf("d(%v) = %v, d(%v) = %v, want equal", p, d1, mirror, d2)
		}
	}
}

func TestDistanceToCenter_InvalidDimension(t *testing.T) {
	for _, dims := range [][2]int{{0, 10}, {10, 0}, {-1, 5}, {0, 0}} {
		_, _, err := DistanceToCenter(image.Pt(0, 0), dims[0], dims[1])
		if !errors.Is(err, ErrInvalidDimension) {
			t.Errorf("%dx%d: got %v, want ErrInvalidDimension", dims[0], dims[1], err)
		}
	}
}

func TestVerticalPositionToAngle(t *testing.T) {
	tests := []struct {
		name string
		y, h int
		max  float64
		want float64
	}{
		{name: "scenario", y: 20, h: 100, max: 90, want: 18},
		{name: "top row", y: 0, h: 480, max: 90, want: 0},
		{name: "full height", y: 480, h: 480, max: 90, want: 90},
		{name: "middle", y: 240, h: 480, max: 90, want: 45},
		{name: "other max", y: 50, h: 100, max: 180, want: 90},
		{name: "below frame clamps", y: 700, h: 480, max: 90, want: 90},
		{name: "above frame clamps", y: -5, h: 480, max: 90, want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := VerticalPositionToAngle(tc.y, tc.h, tc.max)
			if err != nil {
				t.Fatalf("VerticalPositionToAngle: %v", err)
			}
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestVerticalPositionToAngle_MonotonicAndBounded(t *testing.T) {
	const h = 720
	prev := -1.0
	for y := 0; y <= h; y++ {
		a, err := VerticalPositionToAngle(y, h, DefaultMaxAngle)
		if err != nil {
			t.Fatalf("VerticalPositionToAngle: %v", err)
		}
		if a < 0 || a > DefaultMaxAngle {
			t.Fatalf("y=%d: angle %v outside [0, %v]", y, a, DefaultMaxAngle)
		}
		if a < prev {
			t.Fatalf("y=%d: angle %v decreased from %v", y, a, prev)
		}
		prev = a
	}
}

func TestVerticalPositionToAngle_InvalidHeight(t *testing.T) {
	for _, h := range []int{0, -10} {
		if _, err := VerticalPositionToAngle(5, h, 90); !errors.Is(err, ErrInvalidDimension) {
			t.Errorf("h=%d: got %v, want ErrInvalidDimension", h, err)
		}
	}
}
