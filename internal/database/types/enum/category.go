package enum

// CrisisCategory classifies the kind of concern a detector found in a message.
type CrisisCategory int

const (
	// CategoryNone indicates no concern was detected.
	CategoryNone CrisisCategory = iota
	// CategorySI indicates suicidal ideation, intent, or planning.
	CategorySI
	// CategorySH indicates non-suicidal self-harm intent or planning.
	CategorySH
	// CategoryHI indicates intent to harm others or violence.
	CategoryHI
	// CategoryEA indicates an abuse disclosure (physical, sexual, emotional, or safety threat).
	CategoryEA
	// CategoryModeration indicates a generic policy violation with no crisis classification.
	CategoryModeration
)

// String returns the short category code used in flag records and model prompts.
func (c CrisisCategory) String() string {
	switch c {
	case CategorySI:
		return "SI"
	case CategorySH:
		return "SH"
	case CategoryHI:
		return "HI"
	case CategoryEA:
		return "EA"
	case CategoryModeration:
		return "MODERATION"
	case CategoryNone:
		return "NONE"
	}

	return "NONE"
}

// CrisisCategoryFromString parses a category code. Unknown codes map to CategoryNone.
func CrisisCategoryFromString(s string) CrisisCategory {
	switch s {
	case "SI":
		return CategorySI
	case "SH":
		return CategorySH
	case "HI":
		return CategoryHI
	case "EA":
		return CategoryEA
	case "MODERATION":
		return CategoryModeration
	}

	return CategoryNone
}
