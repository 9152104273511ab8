package responses

import "mime"

const (
	ContentTypeJSON        = "application/json"
	ContentTypePDF         = "application/pdf"
	ContentTypeSpreadsheet = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// IsBlob reports whether a response of this content type is kept as raw bytes
func IsBlob(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch mediaType {
	case ContentTypePDF, ContentTypeSpreadsheet:
		return true
	default:
		return false
	}
}
