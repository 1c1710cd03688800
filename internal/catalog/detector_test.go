package catalog

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	testCases := []struct {
		text        string
		category    string
		subcategory string
	}{
		{"Vestido largo de fiesta", "clothes", "dresses"},
		{"Robe longue fleurie", "clothes", "dresses"},
		{"Abito da sera", "clothes", "dresses"},
		{"Evening Gown", "clothes", "dresses"},
		{"Zapatillas deportivas blancas", "shoes", "sneakers"},
		{"Chelsea boots", "shoes", "boots"},
		{"Sandalias de tacón", "shoes", "heels"},
		{"Bolso de mano", "bags", "handbags"},
		{"Mochila de piel", "bags", "backpacks"},
		{"Crop top", "clothes", "tops"},
		{"Sweatshirt oversize", "clothes", "sweaters"},
		{"Basic T-Shirt", "clothes", "t-shirts"},
		{"Camicia di lino", "clothes", "shirts"},
		{"Baggy jeans", "clothes", "jeans"},
		{"Bootcut jeans", "clothes", "jeans"},
		{"Pantalón corto", "clothes", "shorts"},
		{"Jupe plissée", "clothes", "skirts"},
		{"Trench coat", "clothes", "coats"},
		{"Chaqueta de cuero", "clothes", "jackets"},
		{"Swimsuit", "clothes", "swimwear"},
		{"Adidas tracksuit", "clothes", "sportswear"},
		{"Two-piece suit in wool", "clothes", "suits"},
		{"Basic top, black", "clothes", "tops"},
		{"Top.", "clothes", "tops"},
		{"(Bra) lace", "clothes", "lingerie"},
		{"Soutien-gorge", "clothes", "lingerie"},
		{"T-shirt/tee", "clothes", "t-shirts"},
		{"Boucles d'oreilles dorées", "jewelry", "earrings"},
		{"Écharpe en laine", "accessories", "scarves"},
		{"Gold hoop earrings", "jewelry", "earrings"},
	}

	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			got := Detect(tc.text)
			assert.Equal(t, tc.category, got.Category())
			assert.Equal(t, tc.subcategory, got.Subcategory())
		})
	}
}

func TestDetectPriorityOrder(t *testing.T) {
	// shoes (priority 2) beat outerwear (priority 6)
	got := Detect("black leather jacket boots")
	assert.Equal(t, "shoes", got.Category())
	assert.Equal(t, "boots", got.Subcategory())

	// dresses (priority 1) beat shoes (priority 2)
	assert.Equal(t, "dresses", Detect("floral dress with sandals").Subcategory())

	// bags (priority 3) beat tops (priority 4)
	assert.Equal(t, "totes", Detect("t-shirt print tote").Subcategory())
}

func TestDetectDefaultsToOther(t *testing.T) {
	for _, text := range []string{"", "   ", "unrecognizable_xyz", "wardrobe essentials"} {
		got := Detect(text)
		assert.True(t, got.IsOther(), "text %q resolved to %s", text, got)
		assert.Equal(t, "clothes", got.Category())
		assert.Equal(t, "other", got.Subcategory())
		assert.Equal(t, "Other", got.DisplayName())
	}
}

func TestExplain(t *testing.T) {
	m, ok := Explain("Black leather jacket boots")
	require.True(t, ok)
	assert.Equal(t, "shoes", m.Group)
	assert.Equal(t, "boots", m.Keyword)

	_, ok = Explain("nothing to see")
	assert.False(t, ok)
}

func TestFromLabel(t *testing.T) {
	assert.Equal(t, "dresses", FromLabel("dresses").Subcategory())
	assert.Equal(t, "jackets", FromLabel("Jacket").Subcategory())
	assert.Equal(t, "sneakers", FromLabel("zapatillas").Subcategory())
	assert.True(t, FromLabel("").IsOther())
	assert.True(t, FromLabel("other").IsOther())
}

func TestProductTypeJSON(t *testing.T) {
	data, err := json.Marshal(Detect("vestido"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"category":"clothes","subcategory":"dresses","name":"Dress"}`, string(data))
}

func TestKeywordsAreFolded(t *testing.T) {
	for _, g := range Groups() {
		for _, e := range g.Entries {
			require.NotEmpty(t, e.Keywords, "group %s entry %s", g.Name, e.Type)
			for _, kw := range e.Keywords {
				assert.Equal(t, strings.ToLower(kw), kw, "keyword %q must be lower case", kw)
				assert.NotContains(t, kw, "é")
				for _, r := range kw {
					assert.True(t, r == ' ' || unicode.IsLetter(r) || unicode.IsDigit(r),
						"keyword %q can only hold letters, digits and spaces", kw)
				}
				assert.NotContains(t, kw, "  ", "keyword %q", kw)
			}
		}
	}
}

func TestGroupsOrder(t *testing.T) {
	var names []string
	for _, g := range Groups() {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"dresses", "shoes", "bags", "tops", "bottoms", "outerwear", "generic"}, names)
}
