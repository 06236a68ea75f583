package app

import (
	"image/color"
	"testing"
)

func TestChartRender_PlotsSeries(t *testing.T) {
	r, err := NewChartRenderer(400, 200, "")
	if err != nil {
		t.Fatalf("NewChartRenderer() error = %v", err)
	}

	img, err := r.Render([]Series{
		{Label: "altitude (km)", Color: color.RGBA{0, 140, 60, 255}, Values: []int{100, 150, 200, 150}},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != 400 || bounds.Dy() != 200 {
		t.Fatalf("chart size = %dx%d, want 400x200", bounds.Dx(), bounds.Dy())
	}

	// The series line must show up somewhere inside the plot area.
	want := color.RGBA{0, 140, 60, 255}
	found := false
	for y := topBorder; y < 200-bottomBorder && !found; y++ {
		for x := leftBorder; x < 400-rightBorder; x++ {
			if img.RGBAAt(x, y) == want {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("series color not found in the plot area")
	}
}

func TestChartRender_Empty(t *testing.T) {
	r, err := NewChartRenderer(400, 200, "")
	if err != nil {
		t.Fatalf("NewChartRenderer() error = %v", err)
	}

	if _, err := r.Render(nil); err == nil {
		t.Fatal("Render() succeeded with no series")
	}
}

func TestChartRender_SingleFrame(t *testing.T) {
	r, err := NewChartRenderer(400, 200, "")
	if err != nil {
		t.Fatalf("NewChartRenderer() error = %v", err)
	}

	_, err = r.Render([]Series{
		{Label: "speed", Color: color.RGBA{230, 120, 0, 255}, Values: []int{5}},
	})
	if err == nil {
		t.Fatal("Render() succeeded with a single data point")
	}
}

func TestChartRender_ConstantSeries(t *testing.T) {
	r, err := NewChartRenderer(400, 200, "")
	if err != nil {
		t.Fatalf("NewChartRenderer() error = %v", err)
	}

	// A constant series must not divide by a zero value range.
	if _, err := r.Render([]Series{
		{Label: "speed", Color: color.RGBA{230, 120, 0, 255}, Values: []int{5, 5, 5}},
	}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
}
