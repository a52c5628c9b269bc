package gallery

// Entry is a stored gallery item. URL points at the generated video
// (typically a gs:// URI); BytesBase64Encoded is set when the API returned
// the video inline instead.
type Entry struct {
	URL                string `json:"url,omitempty"`
	MimeType           string `json:"mimeType"`
	BytesBase64Encoded string `json:"bytesBase64Encoded,omitempty"`
	Operation          string `json:"operation,omitempty"`
	Timestamp          int64  `json:"timestamp"`
	Date               string `json:"date"`
}

// dateLayout is the human-readable timestamp format stored alongside the
// unix timestamp.
const dateLayout = "2006-01-02 15:04:05"

// DefaultMaxEntries caps the gallery; the oldest entries are dropped first.
const DefaultMaxEntries = 50
