// Package display renders cycle results onto frames and shows them in
// desktop windows.
package display

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-suntrack/pkg/tracking"
)

// Style controls overlay drawing.
type Style struct {
	CircleColor     color.RGBA
	CircleThickness int
	NaiveRadius     int // marker radius on the naive view

	TextColor     color.RGBA
	FontScale     float64
	TextThickness int
}

// Text anchors
var (
	labelOrigin   = image.Pt(10, 30)
	messageOrigin = image.Pt(10, 70)
)

// DefaultStyle draws a thick red ring and white text.
func DefaultStyle() Style {
	return Style{
		CircleColor:     color.RGBA{R: 255, A: 255},
		CircleThickness: 15,
		NaiveRadius:     5,
		TextColor:       color.RGBA{R: 255, G: 255, B: 255, A: 255},
		FontScale:       1,
		TextThickness:   2,
	}
}

// AnnotateNaive returns a BGR copy of frame with a small ring at the naive
// spot and the "Naive" label. The caller owns the result.
func AnnotateNaive(frame gocv.Mat, res tracking.CycleResult, style Style) (gocv.Mat, error) {
	img, err := toBGR(frame)
	if err != nil {
		return img, err
	}
	gocv.Circle(&img, res.Naive.Spot, style.NaiveRadius, style.CircleColor, style.CircleThickness)
	putText(&img, res.Naive.Label, labelOrigin, style)
	return img, nil
}

// AnnotateRobust returns a BGR copy of frame with a kernel-sized ring at the
// robust spot, the "Robust" label and the classification text.
func AnnotateRobust(frame gocv.Mat, res tracking.CycleResult, style Style) (gocv.Mat, error) {
	img, err := toBGR(frame)
	if err != nil {
		return img, err
	}
	gocv.Circle(&img, res.Robust.Spot, res.KernelRadius, style.CircleColor, style.CircleThickness)
	putText(&img, res.Robust.Label, labelOrigin, style)
	putText(&img, res.Message, messageOrigin, style)
	return img, nil
}

// EncodeJPEG encodes img for the dashboard.
func EncodeJPEG(img gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

func putText(img *gocv.Mat, text string, org image.Point, style Style) {
	gocv.PutTextWithParams(img, text, org, gocv.FontHersheySimplex, style.FontScale,
		style.TextColor, style.TextThickness, gocv.LineAA, false)
}

// toBGR copies frame into a 3-channel image so colored overlays render.
func toBGR(frame gocv.Mat) (gocv.Mat, error) {
	img := gocv.NewMat()
	switch frame.Channels() {
	case 1:
		gocv.CvtColor(frame, &img, gocv.ColorGrayToBGR)
	case 3:
		frame.CopyTo(&img)
	case 4:
		gocv.CvtColor(frame, &img, gocv.ColorBGRAToBGR)
	default:
		img.Close()
		return gocv.NewMat(), fmt.Errorf("cannot annotate %d-channel frame", frame.Channels())
	}
	return img, nil
}
