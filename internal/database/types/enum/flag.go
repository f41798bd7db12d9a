package enum

// FlagSource identifies which detection tier produced a flag event.
type FlagSource int

const (
	// FlagSourcePattern indicates the offline keyword/regex detector fired.
	FlagSourcePattern FlagSource = iota
	// FlagSourceClassifier indicates the LLM safety classifier fired.
	FlagSourceClassifier
	// FlagSourceModeration indicates the out-of-band vendor moderation gate fired.
	FlagSourceModeration
)

// String returns the source name stored in flag records.
func (s FlagSource) String() string {
	switch s {
	case FlagSourcePattern:
		return "pattern"
	case FlagSourceClassifier:
		return "classifier"
	case FlagSourceModeration:
		return "moderation"
	}

	return "pattern"
}
