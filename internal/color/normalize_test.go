package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		raw      string
		expected Name
	}{
		{"red", "Red"},
		{"RED", "Red"},
		{"rojo", "Red"},
		{"Rouge", "Red"},
		{"rosso", "Red"},
		{"light blue", "Light Blue"},
		{"Azul claro", "Light Blue"},
		{"bleu clair", "Light Blue"},
		{"Hellblau", "Light Blue"},
		{"vert foncé", "Dark Green"},
		{"gris oscuro", "Dark Grey"},
		{"Gray", "Grey"},
		{"Azul marino", "Navy"},
		{"Bleu marine", "Navy"},
		{"Weiß", "White"},
		{"Négro", "Black"},
		{"Leopard", "Leopard Print"},
		{"estampado de leopardo", "Leopard Print"},
		{"Snakeskin effect", "Snake Print"},
		{"Flores", "Floral Print"},
		{"Animal print", "Animal Print"},
		{"burgundy velvet", "Burgundy"},
		{"Deep Sky Blue", "Deep Sky Blue"},
		{"Sky", "Sky Blue"},
		{"multicolour", "Multicolor"},
		{"Verde oliva", "Olive"},
		{"Navy Blue", "Navy"},
		{"Light Navy Blue", "Light Navy"},
		{"pink and blue stripes", "Pink"},
		{"blue and pink stripes", "Blue"},
		{"Colored red", "Red"},
		{"Blackish", "Black"},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			got, ok := Normalize(tc.raw)
			require.True(t, ok)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestNormalizeUnrecognised(t *testing.T) {
	for _, raw := range []string{"", "   ", "unrecognizable_xyz", "---", "Colored", "Bluetooth", "Unpinked"} {
		got, ok := Normalize(raw)
		assert.False(t, ok, "raw %q normalized to %q", raw, got)
		assert.Empty(t, got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	names := []string{"Light Blue", "Dark Red", "Pale Pink", "Bright Yellow", "Deep Purple"}
	for _, s := range Palette() {
		names = append(names, s.Name)
	}

	for _, raw := range names {
		t.Run(raw, func(t *testing.T) {
			first, ok := Normalize(raw)
			require.True(t, ok)
			second, ok := Normalize(string(first))
			require.True(t, ok)
			assert.Equal(t, first, second)
			assert.Equal(t, raw, string(first))
		})
	}
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "#FF0000", Display("Red"))
	assert.Equal(t, "#0000FF", Display("Light Blue"))
	assert.Equal(t, "pattern-leopard", Display("Leopard Print"))
	assert.Equal(t, "", Display("Unknown"))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("red", "Red"))
	assert.True(t, Equal("rojo", "rouge"))
	assert.True(t, Equal("", ""))
	assert.True(t, Equal("Some Odd Shade", "some odd shade"))
	assert.False(t, Equal("red", "blue"))
	assert.False(t, Equal("light blue", "blue"))
	assert.True(t, Equal("Navy Blue", "azul marino"))
}

func TestPaletteIsCopy(t *testing.T) {
	p := Palette()
	p[0].Name = "Changed"
	assert.Equal(t, "Black", Palette()[0].Name)
}
