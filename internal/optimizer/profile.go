package optimizer

// Profile describes one optimized output variant: the longest-edge cap in
// pixels and the JPEG quality it is encoded at.
type Profile struct {
	MaxDimension int
	Quality      int
	Format       string
}

// ProfileNames lists the fixed profiles in processing order.
var ProfileNames = []string{"thumbnail", "preview", "full"}

// Profiles is the compiled-in size configuration table.
var Profiles = map[string]Profile{
	"thumbnail": {MaxDimension: 200, Quality: 80, Format: "jpeg"},
	"preview":   {MaxDimension: 800, Quality: 85, Format: "jpeg"},
	"full":      {MaxDimension: 1920, Quality: 90, Format: "jpeg"},
}

// ResizeDimensions calculates target dimensions that preserve the aspect
// ratio while keeping the longer edge within maxDimension. The image is
// never upscaled: if the longer edge is already within the cap the original
// dimensions come back unchanged. The secondary edge is derived from the
// aspect ratio and truncated to an integer.
func ResizeDimensions(width, height, maxDimension int) (int, int) {
	aspectRatio := float64(width) / float64(height)

	if width > height {
		// Landscape
		newWidth := width
		if maxDimension < newWidth {
			newWidth = maxDimension
		}
		return newWidth, int(float64(newWidth) / aspectRatio)
	}

	// Portrait or square
	newHeight := height
	if maxDimension < newHeight {
		newHeight = maxDimension
	}
	return int(float64(newHeight) * aspectRatio), newHeight
}
