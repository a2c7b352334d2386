package acrobot

import (
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
)

// Render draws the current configuration of the Acrobot onto a size x
// size image. The fixed base is drawn at the centre of the image, and
// the goal height is drawn as a horizontal line.
func (a *Acrobot) Render(size int) image.Image {
	dc := gg.NewContext(size, size)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	// Two links plus a margin must fit within half the image
	scale := float64(size) / (2.2 * (LinkLength1 + LinkLength2))
	cx, cy := float64(size)/2, float64(size)/2

	// Image coordinates grow downwards, so heights are negated
	toImage := func(x, y float64) (float64, float64) {
		return cx + x*scale, cy - y*scale
	}

	theta1, theta2 := a.state.AtVec(0), a.state.AtVec(1)
	x1 := LinkLength1 * math.Sin(theta1)
	y1 := -LinkLength1 * math.Cos(theta1)
	x2 := x1 + LinkLength2*math.Sin(theta1+theta2)
	y2 := y1 - LinkLength2*math.Cos(theta1+theta2)

	// Goal line
	gx0, gy := toImage(-(LinkLength1 + LinkLength2), GoalHeight)
	gx1, _ := toImage(LinkLength1+LinkLength2, GoalHeight)
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1)
	dc.DrawLine(gx0, gy, gx1, gy)
	dc.Stroke()

	// Links
	px0, py0 := toImage(0, 0)
	px1, py1 := toImage(x1, y1)
	px2, py2 := toImage(x2, y2)
	dc.SetRGB(0, 0.4, 0.4)
	dc.SetLineWidth(scale / 10)
	dc.DrawLine(px0, py0, px1, py1)
	dc.DrawLine(px1, py1, px2, py2)
	dc.Stroke()

	// Joints
	dc.SetRGB(0.8, 0.8, 0)
	dc.DrawCircle(px0, py0, scale/10)
	dc.DrawCircle(px1, py1, scale/10)
	dc.Fill()

	return dc.Image()
}

// SavePNG renders the current configuration of the Acrobot and saves
// it as a PNG image at path
func (a *Acrobot) SavePNG(path string, size int) error {
	if err := gg.SavePNG(path, a.Render(size)); err != nil {
		return fmt.Errorf("savePNG: could not save frame: %v", err)
	}
	return nil
}
