package mix

import "github.com/coreman2200/funtimes-ftmixer/internal/region"

// Slots is the number of image slots the backend mixes.
const Slots = 4

// WeightScale converts UI slider units (0..100) to backend weights (0..1).
const WeightScale = 100.0

// RegionPayload is the region as the backend reads it.
type RegionPayload struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FromRegion converts a normalized region to its wire form.
func FromRegion(r region.Region) RegionPayload {
	return RegionPayload{X: r.X, Y: r.Y, Width: r.W, Height: r.H}
}

// Request is the canonical process_ft body: per-axis arrays for all slots,
// tagged with the port it was built for and a sequence id so a late response
// can be recognized as stale.
type Request struct {
	RequestID       uint64         `json:"request_id"`
	Port            int            `json:"port"`
	Mode            Mode           `json:"mode"`
	Weights1        [Slots]float64 `json:"weights_1"`
	Weights2        [Slots]float64 `json:"weights_2"`
	RegionSettings1 [Slots]Policy  `json:"region_settings_1"`
	RegionSettings2 [Slots]Policy  `json:"region_settings_2"`
	RegionEnabled   bool           `json:"region_enabled"`
	Region          RegionPayload  `json:"region"`
}

// Response is the process_ft (and component) reply.
type Response struct {
	ImageData string `json:"image_data"`
	RequestID uint64 `json:"request_id,omitempty"`
	Error     string `json:"error,omitempty"`
}
