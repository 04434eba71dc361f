// Package export renders trajectories to interchange formats: CSV for
// downstream estimators and SVG phase portraits for quick inspection.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// WriteCSV streams the trajectory with one column per state variable.
func WriteCSV(w io.Writer, traj *mat.Dense, header []string) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	rows, cols := traj.Dims()
	if len(header) == cols {
		if err := cw.Write(header); err != nil {
			return err
		}
	}

	row := make([]string, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			row[j] = strconv.FormatFloat(traj.At(i, j), 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}

// PhaseSVG draws column y against column x as a polyline.
func PhaseSVG(traj *mat.Dense, xCol, yCol, width, height int) (string, error) {
	rows, cols := traj.Dims()
	if xCol < 0 || xCol >= cols || yCol < 0 || yCol >= cols {
		return "", fmt.Errorf("export: columns (%d,%d) out of range for %d-column trajectory", xCol, yCol, cols)
	}
	if rows == 0 {
		return "", fmt.Errorf("export: empty trajectory")
	}

	xMin, xMax := math.Inf(1), math.Inf(-1)
	yMin, yMax := math.Inf(1), math.Inf(-1)
	for i := 0; i < rows; i++ {
		x, y := traj.At(i, xCol), traj.At(i, yCol)
		xMin, xMax = math.Min(xMin, x), math.Max(xMax, x)
		yMin, yMax = math.Min(yMin, y), math.Max(yMax, y)
	}
	xSpan := xMax - xMin
	ySpan := yMax - yMin
	if xSpan == 0 {
		xSpan = 1
	}
	if ySpan == 0 {
		ySpan = 1
	}

	const margin = 10.0
	w := float64(width)
	h := float64(height)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<polyline fill="none" stroke="#00ff00" stroke-width="1" points="`, width, height, width, height))

	for i := 0; i < rows; i++ {
		px := margin + (traj.At(i, xCol)-xMin)/xSpan*(w-2*margin)
		// SVG y axis points down.
		py := h - margin - (traj.At(i, yCol)-yMin)/ySpan*(h-2*margin)
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(fmt.Sprintf("%.1f,%.1f", px, py))
	}

	sb.WriteString(`"/>
</svg>
`)
	return sb.String(), nil
}
