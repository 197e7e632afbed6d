package detection

// PhishingPatterns are the phishing-indicator words checked by Scan
var PhishingPatterns = []string{"urgent", "password", "bank", "click", "verify"}

var awareness = NewMatcher("awareness", PhishingPatterns...)

// ScanResult is the body returned by the awareness scan
type ScanResult struct {
	Alerts []string `json:"alerts"`
}

// Scan reports which phishing indicators appear in text
func Scan(text string) ScanResult {
	return ScanResult{Alerts: awareness.Match(text)}
}
