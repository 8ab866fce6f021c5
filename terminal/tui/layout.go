package tui

// SplitH divides r into columns proportional to weights
// The last column absorbs rounding so the columns always cover r
func SplitH(r Region, weights ...float64) []Region {
	if len(weights) == 0 {
		return nil
	}
	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		total = 1
	}

	out := make([]Region, len(weights))
	x := 0
	for i, w := range weights {
		width := r.W - x
		if i < len(weights)-1 {
			width = min(int(float64(r.W)*w/total+0.5), r.W-x)
		}
		out[i] = r.Sub(x, 0, width, r.H)
		x += width
	}
	return out
}

// SplitVFixed cuts r after topH rows
func SplitVFixed(r Region, topH int) (top, bottom Region) {
	topH = min(max(topH, 0), r.H)
	return r.Sub(0, 0, r.W, topH), r.Sub(0, topH, r.W, r.H-topH)
}
