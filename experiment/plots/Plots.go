// Package plots implements plotting of experiment data
package plots

import (
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// MovingAverage returns the mean of the last window elements of data
// at each index. Indices with fewer than window previous elements are
// averaged over the elements available.
func MovingAverage(data []float64, window int) []float64 {
	if window <= 0 {
		panic(fmt.Sprintf("movingAverage: window must be positive, have %v",
			window))
	}

	avg := make([]float64, len(data))
	for i := range data {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		avg[i] = stat.Mean(data[start:i+1], nil)
	}
	return avg
}

// ReturnCurve plots the return of each episode and the moving average
// of returns over window episodes, and saves the plot to filename. The
// image format is determined by the extension of filename.
func ReturnCurve(returns []float64, window int, threshold float64,
	filename string) error {
	if len(returns) == 0 {
		return fmt.Errorf("returnCurve: no returns to plot")
	}

	p := plot.New()
	p.Title.Text = "Episodic Return"
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = "Return"

	raw, err := plotter.NewLine(points(returns))
	if err != nil {
		return fmt.Errorf("returnCurve: could not create line: %v", err)
	}
	raw.Color = color.RGBA{R: 160, G: 160, B: 200, A: 255}

	avg, err := plotter.NewLine(points(MovingAverage(returns, window)))
	if err != nil {
		return fmt.Errorf("returnCurve: could not create line: %v", err)
	}
	avg.Color = color.RGBA{B: 160, A: 255}
	avg.Width = vg.Points(2)

	goal, err := plotter.NewLine(plotter.XYs{
		{X: 1, Y: threshold},
		{X: float64(len(returns)), Y: threshold},
	})
	if err != nil {
		return fmt.Errorf("returnCurve: could not create line: %v", err)
	}
	goal.Color = color.RGBA{R: 200, A: 255}
	goal.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(plotter.NewGrid(), raw, avg, goal)
	p.Legend.Add("return", raw)
	p.Legend.Add(fmt.Sprintf("mean of last %v", window), avg)
	p.Legend.Add("threshold", goal)
	p.Legend.Top = false

	if err := p.Save(8*vg.Inch, 5*vg.Inch, filename); err != nil {
		return fmt.Errorf("returnCurve: could not save plot: %v", err)
	}
	return nil
}

// points converts data to plotter.XYs with 1-indexed x coordinates
func points(data []float64) plotter.XYs {
	pts := make(plotter.XYs, len(data))
	for i := range data {
		pts[i].X = float64(i + 1)
		pts[i].Y = data[i]
	}
	return pts
}
