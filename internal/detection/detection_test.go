package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan_PhishingMessage(t *testing.T) {
	res := Scan("Please verify your bank account urgently")

	assert.Equal(t, []string{"urgent", "bank", "verify"}, res.Alerts)
	assert.NotContains(t, res.Alerts, "password")
	assert.NotContains(t, res.Alerts, "click")
}

func TestScan_CaseInsensitive(t *testing.T) {
	res := Scan("CLICK HERE to reset your PassWord")
	assert.Equal(t, []string{"password", "click"}, res.Alerts)
}

func TestScan_SubstringNotWordBoundary(t *testing.T) {
	res := Scan("online banking")
	assert.Equal(t, []string{"bank"}, res.Alerts)
}

func TestScan_NoMatches(t *testing.T) {
	for _, text := range []string{"", "hello there", "the weather is nice today"} {
		res := Scan(text)
		require.NotNil(t, res.Alerts, "text %q", text)
		assert.Empty(t, res.Alerts, "text %q", text)
	}
}

func TestScan_EveryPatternIsFound(t *testing.T) {
	for _, p := range PhishingPatterns {
		res := Scan("xx" + p + "yy")
		assert.Contains(t, res.Alerts, p)
	}
}

func TestCheckMisinformation_Detected(t *testing.T) {
	res := CheckMisinformation("this is a hoax and a scam")

	assert.True(t, res.Detected)
	assert.Equal(t, []string{"hoax", "scam"}, res.Keywords)
}

func TestCheckMisinformation_ListOrderNotTextOrder(t *testing.T) {
	res := CheckMisinformation("Scam! Total FAKE news, just a rumour")
	assert.True(t, res.Detected)
	assert.Equal(t, []string{"fake", "rumour", "scam"}, res.Keywords)
}

func TestCheckMisinformation_Clean(t *testing.T) {
	res := CheckMisinformation("The council meets on Tuesday.")

	assert.False(t, res.Detected)
	require.NotNil(t, res.Keywords)
	assert.Empty(t, res.Keywords)
}

func TestMatcher_LowersTermsAndDropsEmpty(t *testing.T) {
	m := NewMatcher("custom", "ALPHA", "", "Beta")

	assert.Equal(t, "custom", m.Name())
	assert.Equal(t, []string{"alpha", "beta"}, m.Terms())
	assert.Equal(t, []string{"beta"}, m.Match("so BETA"))
}

func TestMatcher_UnicodeLowering(t *testing.T) {
	m := NewMatcher("unicode", "straße")
	assert.Equal(t, []string{"straße"}, m.Match("HAUPTSTRAßE 5"))
}

func TestMatcher_TermsIsACopy(t *testing.T) {
	m := NewMatcher("copy", "one")
	terms := m.Terms()
	terms[0] = "changed"
	assert.Equal(t, []string{"one"}, m.Terms())
}
