package mode

// Mode selects the index a search runs against.
type Mode string

// Search mode constants.
const (
	// Metadata searches the bibliographic metadata index.
	Metadata Mode = "metadata"
	// Fulltext searches the OCR/transcription page index.
	Fulltext Mode = "fulltext"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Metadata || m == Fulltext
}

// FromFlag maps the fulltext query flag to a mode.
func FromFlag(fulltext bool) Mode {
	if fulltext {
		return Fulltext
	}
	return Metadata
}
