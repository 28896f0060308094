package detection

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// LocateBrightest returns the pixel coordinate of maximal intensity in frame
// under the given smoothing policy. Multi-channel frames are reduced to
// luminance first. Ties resolve to the first pixel in row-major order.
//
// The frame is never modified.
func LocateBrightest(frame gocv.Mat, smoothing Smoothing) (image.Point, error) {
	// Reject bad kernels before touching OpenCV, which aborts on even sizes.
	if err := smoothing.Validate(); err != nil {
		return image.Point{}, err
	}
	if frame.Empty() || frame.Rows() <= 0 || frame.Cols() <= 0 {
		return image.Point{}, ErrEmptyFrame
	}

	gray, err := Grayscale(frame)
	if err != nil {
		return image.Point{}, err
	}
	defer gray.Close()

	if smoothing.IsNone() {
		_, _, _, maxLoc := gocv.MinMaxLoc(gray)
		return maxLoc, nil
	}

	// Blur in float32 so rounding back to 8 bits cannot flatten the peak
	// into a plateau of tied maxima.
	field := gocv.NewMat()
	defer field.Close()
	gray.ConvertTo(&field, gocv.MatTypeCV32F)

	blurred := gocv.NewMat()
	defer blurred.Close()
	k := smoothing.Radius
	gocv.GaussianBlur(field, &blurred, image.Pt(k, k), 0, 0, gocv.BorderDefault)

	_, _, _, maxLoc := gocv.MinMaxLoc(blurred)
	return maxLoc, nil
}

// Grayscale returns a single-channel copy of frame. The caller owns the
// returned Mat.
func Grayscale(frame gocv.Mat) (gocv.Mat, error) {
	gray := gocv.NewMat()
	switch frame.Channels() {
	case 1:
		frame.CopyTo(&gray)
	case 3:
		gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	case 4:
		gocv.CvtColor(frame, &gray, gocv.ColorBGRAToGray)
	default:
		gray.Close()
		return gocv.NewMat(), fmt.Errorf("%w: %d channels", ErrUnsupportedFrame, frame.Channels())
	}
	return gray, nil
}
