package codec

import "strings"

// supportedExtensions is the fixed allow-list of upload filename suffixes.
// Classification is filename-based only; content is never sniffed here, so
// a renamed file passes classification and is rejected later by Normalize.
// This is a documented limitation, not an oversight.
var supportedExtensions = []string{
	".png", ".jpg", ".jpeg", ".webp", ".bmp", ".gif", ".tif", ".tiff", ".svg",
}

// IsSupported reports whether the filename ends in one of the supported
// image extensions, case-insensitively.
func IsSupported(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range supportedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
