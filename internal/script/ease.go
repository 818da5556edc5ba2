package script

// ValidEase reports whether kind names a known easing ("" means linear).
func ValidEase(kind string) bool {
	switch kind {
	case "", "linear", "smooth", "cubic":
		return true
	}
	return false
}

// ease maps progress u in [0,1] through the named curve. "smooth" is
// smoothstep, "cubic" is smootherstep; both start and end at rest.
func ease(kind string, u float64) float64 {
	switch {
	case u <= 0:
		return 0
	case u >= 1:
		return 1
	}
	switch kind {
	case "smooth":
		return u * u * (3 - 2*u)
	case "cubic":
		return u * u * u * (u*(u*6-15) + 10)
	}
	return u
}

// path returns frames pointer positions from a toward b. The first point is
// one step past a and the last is exactly b.
func path(a, b Point, frames int, kind string) []Point {
	if frames < 1 {
		frames = 1
	}
	out := make([]Point, frames)
	for i := range out {
		k := ease(kind, float64(i+1)/float64(frames))
		out[i] = Point{X: a.X + (b.X-a.X)*k, Y: a.Y + (b.Y-a.Y)*k}
	}
	out[frames-1] = b
	return out
}
