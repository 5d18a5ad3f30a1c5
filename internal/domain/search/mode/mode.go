package mode

// Mode is how a result set is ordered.
type Mode string

// Search mode constants.
const (
	// Browse orders by the configured ordering attributes.
	Browse Mode = "browse"
	// Fuzzy ranks by trigram similarity to the search text.
	Fuzzy Mode = "fuzzy"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Browse || m == Fuzzy
}
