package svgcal

import (
	"fmt"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo/float"
)

// drawStars marks overtime with small stars along the cell's top edge,
// right to left, five at most.
func drawStars(canvas *svg.SVG, x, y float64, count int) {
	const size = 8.0
	if count > 5 {
		count = 5
	}
	for i := 0; i < count; i++ {
		cx := x + cellWidth - (size+2)*float64(i+1)
		cy := y + size + 2
		canvas.Path(starPath(cx, cy, size), "fill:#2E7D32")
	}
}

// starPath builds a five pointed star centered on (cx, cy), alternating
// between outer and inner radius starting from the top point.
func starPath(cx, cy, size float64) string {
	var b strings.Builder
	for j := 0; j < 5; j++ {
		angle := float64(-90+j*72) * math.Pi / 180
		inner := angle + 36*math.Pi/180

		outerX := cx + size/2*math.Cos(angle)
		outerY := cy + size/2*math.Sin(angle)
		innerX := cx + size/4*math.Cos(inner)
		innerY := cy + size/4*math.Sin(inner)

		if j == 0 {
			fmt.Fprintf(&b, "M %g,%g", outerX, outerY)
		} else {
			fmt.Fprintf(&b, " L %g,%g", outerX, outerY)
		}
		fmt.Fprintf(&b, " L %g,%g", innerX, innerY)
	}
	b.WriteString(" Z")
	return b.String()
}

// sickIconPaths is a 24x24 thermometer-and-patient glyph.
var sickIconPaths = []string{
	"M16.3188 4.39811C16.2142 4.63431 16.1229 4.86707 16.0449 5.0964C14.8581 4.39956 13.4757 4 12 4C8.26861 4 5.13388 6.55463 4.24939 10.0103C3.32522 10.0868 2.51988 10.5821 2.02371 11.306C2.38011 6.10691 6.71045 2 12 2C13.7733 2 15.4388 2.46156 16.8829 3.27111C16.6426 3.71554 16.4546 4.09121 16.3188 4.39811Z",
	"M16.6694 9.62311C16.782 9.7483 16.8987 9.86257 17.0193 9.96593C16.9678 9.9932 16.915 10.0195 16.8609 10.0447C16.35 10.2824 15.6778 10.438 14.9463 10.242C14.2147 10.046 13.7104 9.57517 13.3868 9.11381C13.0676 8.65868 12.8921 8.16974 12.8252 7.82758L14.2973 7.53961C14.3274 7.69373 14.4264 7.98373 14.6149 8.25248C14.799 8.51501 15.0357 8.71304 15.3345 8.7931C15.5814 8.85925 15.8319 8.83445 16.0755 8.7475C16.2274 9.06007 16.4253 9.35194 16.6694 9.62311Z",
	"M12 22C7.62613 22 3.90811 19.1919 2.55043 15.2802C3.07478 15.729 3.75574 16 4.50001 16C4.68514 16 4.86636 15.9832 5.04222 15.9511C6.41837 18.3693 9.01875 20 12 20C16.4183 20 20 16.4183 20 12C20 11.5146 19.9568 11.0392 19.8739 10.5776C20.4168 10.4171 20.9024 10.0989 21.3306 9.62311C21.4357 9.50632 21.5323 9.38569 21.6203 9.26122C21.8676 10.1316 22 11.0503 22 12C22 17.5228 17.5229 22 12 22Z",
	"M9.70411 7.53961C9.67396 7.69373 9.57502 7.98373 9.38652 8.25248C9.20239 8.51501 8.96567 8.71304 8.66689 8.7931C8.36811 8.87315 8.0641 8.82001 7.77337 8.68472C7.47575 8.54623 7.24507 8.34455 7.1419 8.22615L6.01101 9.21159C6.24005 9.47444 6.63649 9.81014 7.14052 10.0447C7.65143 10.2824 8.32358 10.438 9.05512 10.242C9.78666 10.046 10.291 9.57517 10.6146 9.11381C10.9338 8.65868 11.1093 8.16974 11.1762 7.82758L9.70411 7.53961Z",
	"M8.99481 13.4947C9.79184 12.6977 10.8728 12.2499 12 12.2499C13.1272 12.2499 14.2082 12.6977 15.0052 13.4947C15.8022 14.2917 16.25 15.3727 16.25 16.4999V17.2499H7.75001V16.4999C7.75001 16.2383 7.77413 15.9792 7.82113 15.7256L5.5016 14.7315C5.20706 14.9023 4.86495 15 4.5 15C3.39543 15 2.5 14.1046 2.5 13C2.5 11.8954 3.39543 11 4.5 11C5.59904 11 6.49103 11.8865 6.49993 12.9834L8.63815 13.8998C8.74775 13.7581 8.86677 13.6227 8.99481 13.4947ZM11.9683 15.7499C11.8933 15.4605 11.6899 15.2077 11.3939 15.0809L10.0896 14.5218C10.6018 14.0271 11.2866 13.7499 12 13.7499C12.7294 13.7499 13.4288 14.0396 13.9446 14.5554C14.2793 14.8901 14.5189 15.3024 14.6458 15.7499H11.9683Z",
	"M19 9C18.45 9 17.9792 8.80417 17.5875 8.4125C17.1958 8.02083 17 7.55 17 7C17 6.55 17.125 6.07083 17.375 5.5625C17.625 5.05417 18.1667 4.2 19 3C19.8333 4.2 20.375 5.05417 20.625 5.5625C20.875 6.07083 21 6.55 21 7C21 7.55 20.8042 8.02083 20.4125 8.4125C20.0208 8.80417 19.55 9 19 9Z",
}

// leaveIconPaths is a 48x48 sun-over-beach glyph drawn with strokes.
var leaveIconPaths = []string{
	"M4 24H7",
	"M10 10L12 12",
	"M24 4V7",
	"M14 24C14 18.4776 18.4776 14 24 14C29.5224 14 34 18.4776 34 24C34 27.3674 32.3357 30.3458 29.785 32.1578",
	"M38 10L36 12",
	"M44 24L41 24",
	"M37.9814 37.982L36.3614 36.362",
	"M23.4999 28C20.4999 28 14 28.2 14 31C14 33.8 18.6058 33.7908 20.9998 34C23 34.1747 26.4624 35.6879 25.9999 38C24.9998 43 8.99982 42 4.99994 42",
}

// drawSickIcon places the sickness glyph beside the hours text, scaled down
// from 24x24 to 16x16.
func drawSickIcon(canvas *svg.SVG, x, y float64) {
	canvas.Gtransform(fmt.Sprintf("translate(%g,%g) scale(0.67)", x+cellWidth-32, y+24))
	for _, d := range sickIconPaths {
		canvas.Path(d, "fill:#9575CD")
	}
	canvas.Gend()
}

// drawLeaveIcon places the annual leave glyph beside the hours text, scaled
// down from 48x48 to 16x16.
func drawLeaveIcon(canvas *svg.SVG, x, y float64) {
	canvas.Gtransform(fmt.Sprintf("translate(%g,%g) scale(0.33)", x+cellWidth-32, y+24))
	for _, d := range leaveIconPaths {
		canvas.Path(d, "stroke:#1976D2;stroke-width:4;stroke-linecap:round;stroke-linejoin:round;fill:none")
	}
	canvas.Gend()
}
