package detection

import (
	"errors"
	"image"
	"testing"

	"gocv.io/x/gocv"
)

// uniformGray returns a w x h single-channel frame filled with level.
func uniformGray(w, h int, level uint8) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(float64(level), 0, 0, 0), h, w, gocv.MatTypeCV8U)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestValidateRadius(t *testing.T) {
	for _, r := range []int{0, -1, 2, 4, -3, 40} {
		err := ValidateRadius(r)
		if !errors.Is(err, ErrInvalidKernel) {
			t.Errorf("ValidateRadius(%d) = %v, want ErrInvalidKernel", r, err)
		}
		var ke *KernelError
		if !errors.As(err, &ke) || ke.Radius != r {
			t.Errorf("ValidateRadius(%d): expected *KernelError with radius, got %v", r, err)
		}
	}
	for _, r := range []int{1, 3, 41} {
		if err := ValidateRadius(r); err != nil {
			t.Errorf("ValidateRadius(%d) = %v, want nil", r, err)
		}
	}
}

func TestSmoothing_String(t *testing.T) {
	if None.String() != "none" {
		t.Errorf("None.String() = %q", None.String())
	}
	if Gaussian(41).String() != "gaussian(41)" {
		t.Errorf("Gaussian(41).String() = %q", Gaussian(41).String())
	}
	if !None.IsNone() || Gaussian(3).IsNone() {
		t.Error("IsNone mismatch")
	}
}

func TestLocateBrightest_StrictMaximum(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		at   image.Point
	}{
		{name: "scenario pixel", w: 100, h: 100, at: image.Pt(80, 20)},
		{name: "origin", w: 64, h: 48, at: image.Pt(0, 0)},
		{name: "bottom right", w: 64, h: 48, at: image.Pt(63, 47)},
		{name: "wide frame", w: 320, h: 10, at: image.Pt(300, 5)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			frame := uniformGray(tc.w, tc.h, 10)
			defer frame.Close()
			frame.SetUCharAt(tc.at.Y, tc.at.X, 255)

			got, err := LocateBrightest(frame, None)
			if err != nil {
				t.Fatalf("LocateBrightest: %v", err)
			}
			if got != tc.at {
				t.Errorf("got %v, want %v", got, tc.at)
			}
		})
	}
}

func TestLocateBrightest_TieBreakRowMajor(t *testing.T) {
	frame := uniformGray(50, 50, 10)
	defer frame.Close()

	// Same intensity at three places; (30, 5) is first in row-major order.
	frame.SetUCharAt(5, 30, 200)
	frame.SetUCharAt(5, 40, 200)
	frame.SetUCharAt(20, 2, 200)

	want := image.Pt(30, 5)
	for i := 0; i < 3; i++ {
		got, err := LocateBrightest(frame, None)
		if err != nil {
			t.Fatalf("LocateBrightest: %v", err)
		}
		if got != want {
			t.Fatalf("call %d: got %v, want %v", i, got, want)
		}
	}
}

func TestLocateBrightest_UniformFrameReturnsOrigin(t *testing.T) {
	frame := uniformGray(30, 20, 77)
	defer frame.Close()

	got, err := LocateBrightest(frame, None)
	if err != nil {
		t.Fatalf("LocateBrightest: %v", err)
	}
	if got != image.Pt(0, 0) {
		t.Errorf("uniform frame: got %v, want (0,0)", got)
	}
}

func TestLocateBrightest_Color(t *testing.T) {
	t.Run("bgr", func(t *testing.T) {
		frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(10, 10, 10, 0), 40, 60, gocv.MatTypeCV8UC3)
		defer frame.Close()
		for c := 0; c < 3; c++ {
			frame.SetUCharAt3(12, 45, c, 250)
		}

		got, err := LocateBrightest(frame, None)
		if err != nil {
			t.Fatalf("LocateBrightest: %v", err)
		}
		if got != image.Pt(45, 12) {
			t.Errorf("got %v, want (45,12)", got)
		}
	})

	t.Run("bgra", func(t *testing.T) {
		frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(10, 10, 10, 255), 40, 60, gocv.MatTypeCV8UC4)
		defer frame.Close()
		for c := 0; c < 3; c++ {
			frame.SetUCharAt3(30, 7, c, 250)
		}

		got, err := LocateBrightest(frame, None)
		if err != nil {
			t.Fatalf("LocateBrightest: %v", err)
		}
		if got != image.Pt(7, 30) {
			t.Errorf("got %v, want (7,30)", got)
		}
	})
}

func TestLocateBrightest_KernelValidation(t *testing.T) {
	frame := uniformGray(100, 100, 10)
	defer frame.Close()
	frame.SetUCharAt(20, 80, 255)

	for _, r := range []int{0, -1, 2, 4} {
		if _, err := LocateBrightest(frame, Gaussian(r)); !errors.Is(err, ErrInvalidKernel) {
			t.Errorf("Gaussian(%d): got %v, want ErrInvalidKernel", r, err)
		}
	}
	for _, r := range []int{1, 3, 41} {
		if _, err := LocateBrightest(frame, Gaussian(r)); err != nil {
			t.Errorf("Gaussian(%d): unexpected error %v", r, err)
		}
	}
}

func TestLocateBrightest_Smoothed(t *testing.T) {
	frame := uniformGray(100, 100, 10)
	defer frame.Close()
	frame.SetUCharAt(20, 80, 255)

	got, err := LocateBrightest(frame, Gaussian(41))
	if err != nil {
		t.Fatalf("LocateBrightest: %v", err)
	}
	if abs(got.X-80) > 2 || abs(got.Y-20) > 2 {
		t.Errorf("smoothed spot %v not within 2px of (80,20)", got)
	}
}

func TestLocateBrightest_SmoothingIgnoresHotPixel(t *testing.T) {
	frame := uniformGray(120, 120, 10)
	defer frame.Close()

	// A broad, slightly dimmer region and a single saturated hot pixel.
	for y := 63; y < 78; y++ {
		for x := 23; x < 38; x++ {
			frame.SetUCharAt(y, x, 200)
		}
	}
	frame.SetUCharAt(10, 100, 255)

	naive, err := LocateBrightest(frame, None)
	if err != nil {
		t.Fatalf("naive: %v", err)
	}
	if naive != image.Pt(100, 10) {
		t.Errorf("naive = %v, want the hot pixel (100,10)", naive)
	}

	robust, err := LocateBrightest(frame, Gaussian(41))
	if err != nil {
		t.Fatalf("robust: %v", err)
	}
	if abs(robust.X-30) > 3 || abs(robust.Y-70) > 3 {
		t.Errorf("robust = %v, want near region center (30,70)", robust)
	}
}

func TestLocateBrightest_DoesNotModifyFrame(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(10, 20, 30, 0), 30, 30, gocv.MatTypeCV8UC3)
	defer frame.Close()
	frame.SetUCharAt3(3, 4, 2, 255)

	before := frame.Clone()
	defer before.Close()

	if _, err := LocateBrightest(frame, Gaussian(5)); err != nil {
		t.Fatalf("LocateBrightest: %v", err)
	}
	if frame.Channels() != 3 {
		t.Fatalf("frame channels changed to %d", frame.Channels())
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(frame, before, &diff)
	gray, err := Grayscale(diff)
	if err != nil {
		t.Fatalf("Grayscale: %v", err)
	}
	defer gray.Close()
	if n := gocv.CountNonZero(gray); n != 0 {
		t.Errorf("frame modified: %d pixels differ", n)
	}
}

func TestLocateBrightest_BadFrames(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()
	if _, err := LocateBrightest(empty, None); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("empty frame: got %v, want ErrEmptyFrame", err)
	}

	twoChan := gocv.NewMatWithSize(10, 10, gocv.MatTypeCV8UC2)
	defer twoChan.Close()
	if _, err := LocateBrightest(twoChan, None); !errors.Is(err, ErrUnsupportedFrame) {
		t.Errorf("2-channel frame: got %v, want ErrUnsupportedFrame", err)
	}
}
