package detection

// MisinformationKeywords are the words checked by CheckMisinformation
var MisinformationKeywords = []string{"fake", "hoax", "rumour", "scam"}

var misinformation = NewMatcher("misinformation", MisinformationKeywords...)

// MisinformationResult is the body returned by the misinformation check
type MisinformationResult struct {
	Detected bool     `json:"misinfo_detected"`
	Keywords []string `json:"keywords"`
}

// CheckMisinformation flags text containing any misinformation keyword
func CheckMisinformation(text string) MisinformationResult {
	flags := misinformation.Match(text)
	return MisinformationResult{
		Detected: len(flags) > 0,
		Keywords: flags,
	}
}
