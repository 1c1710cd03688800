package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldText(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"Vestido Rojo", "vestido rojo"},
		{"  Écharpe   en laine ", "echarpe en laine"},
		{"ZAPATILLAS de MUJER", "zapatillas de mujer"},
		{"Año\tnuevo", "ano nuevo"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, FoldText(tc.input))
		})
	}
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Light Blue", Capitalize("light blue"))
	assert.Equal(t, "Leopard Print", Capitalize("leopard print"))
}

func TestHostname(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"https://www.zara.com/es/en/dress-p123.html", "zara.com"},
		{"http://Shop.Example.COM:8080/item", "shop.example.com"},
		{"www2.hm.com/en_gb/productpage.123.html", "www2.hm.com"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, Hostname(tc.input))
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	got, err := NormalizeURL("  WWW.Mango.com/item#reviews ")
	require.NoError(t, err)
	assert.Equal(t, "https://www.mango.com/item", got)

	_, err = NormalizeURL("")
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidURL, CodeOf(err))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "abc", TruncateString("abc", 5))
	assert.Equal(t, "ab...", TruncateString("abcdefgh", 5))
	assert.Equal(t, "añ", TruncateString("año", 2))
}

func TestStructuredErrorMatching(t *testing.T) {
	sentinel := NewError(ErrCodeNoName, "no name").WithoutStackTrace().Build()
	err := fmt.Errorf("extract: %w", NewError(ErrCodeNoName, "nothing matched").
		WithContext("url", "https://example.com").Build())

	assert.True(t, errors.Is(err, sentinel))
	assert.Equal(t, ErrCodeNoName, CodeOf(err))
	assert.Equal(t, ErrCodeInternal, CodeOf(errors.New("plain")))
	assert.Equal(t, "No product name could be found on that page.", GetUserFriendlyMessage(err))
}

func TestWrapErrorKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapError(cause, ErrCodeFetchFailed, "fetch failed")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "FETCH_FAILED")
	assert.NotEmpty(t, err.StackTrace)
}

func TestComponentLoggerDoesNotPanic(t *testing.T) {
	ConfigureLogging("debug", "json")
	defer ConfigureLogging("info", "console")

	l := NewComponentLogger("test").WithFields(map[string]interface{}{"host": "zara.com"})
	l.Debugf("resolved %d selectors", 3)
	NewNopLogger().WithField("k", "v").Error("discarded")
}
