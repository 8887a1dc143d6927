package render

// Format is an output image format supported by the PlantUML server.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ContentType returns the MIME type stored alongside an artifact of this format.
func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	default:
		return "image/svg+xml"
	}
}

// ParseFormat normalizes a client-supplied format string, defaulting to SVG.
func ParseFormat(s string) Format {
	if s == string(FormatPNG) {
		return FormatPNG
	}
	return FormatSVG
}
