package color

import (
	"strings"
	"unicode"
)

// phrases are folded multi-word color terms replaced before single words.
var phrases = []struct{ from, to string }{
	{"azul marino", "navy"},
	{"azul cielo", "sky blue"},
	{"azul klein", "royal blue"},
	{"bleu marine", "navy"},
	{"bleu ciel", "sky blue"},
	{"blu navy", "navy"},
	{"blu notte", "navy"},
	{"azzurro cielo", "sky blue"},
	{"blanco roto", "ivory"},
	{"blanc casse", "ivory"},
	{"verde oliva", "olive"},
	{"vert olive", "olive"},
	{"verde botella", "forest green"},
	{"verde menta", "mint"},
	{"vert menthe", "mint"},
	{"rosa palo", "dusty pink"},
	{"vieux rose", "dusty pink"},
	{"rosa antico", "dusty pink"},
	{"navy blue", "navy"},
	{"animal print", "animal"},
	{"off white", "ivory"},
	{"rose gold", "gold"},
}

// words maps folded foreign (es, fr, it, pt, de) color, modifier and
// pattern terms, plus English spelling variants, to English.
var words = map[string]string{
	// es
	"negro": "black", "negra": "black", "negros": "black", "negras": "black",
	"blanco": "white", "blanca": "white", "blancos": "white", "blancas": "white",
	"rojo": "red", "roja": "red", "rojos": "red", "rojas": "red",
	"azul": "blue", "azules": "blue",
	"verde": "green", "verdes": "green",
	"amarillo": "yellow", "amarilla": "yellow",
	"rosa": "pink", "rosado": "pink", "rosada": "pink",
	"morado": "purple", "morada": "purple",
	"lila": "lilac",
	"gris": "grey", "grises": "grey",
	"marron": "brown", "marrones": "brown",
	"naranja": "orange",
	"dorado": "gold", "dorada": "gold",
	"plateado": "silver", "plateada": "silver",
	"granate": "burgundy", "burdeos": "burgundy",
	"crudo": "cream", "cruda": "cream",
	"caqui": "khaki",
	"turquesa": "turquoise",
	"fucsia": "fuchsia",
	"mostaza": "mustard",
	"vino": "wine",
	"marino": "navy",
	"claro": "light", "clara": "light",
	"oscuro": "dark", "oscura": "dark",
	"palido": "pale", "palida": "pale",
	"intenso": "deep", "intensa": "deep",
	"leopardo": "leopard", "tigre": "tiger", "serpiente": "snake", "cebra": "zebra",
	"flores": "floral", "florido": "floral", "florida": "floral",
	"multicolores": "multicolor",

	// fr
	"noir": "black", "noire": "black",
	"blanc": "white", "blanche": "white",
	"rouge": "red",
	"bleu": "blue", "bleue": "blue",
	"vert": "green", "verte": "green",
	"jaune": "yellow",
	"rose": "pink",
	"violet": "purple", "violette": "purple", "mauve": "lilac",
	"dore": "gold", "doree": "gold",
	"argente": "silver", "argentee": "silver",
	"bordeaux": "burgundy",
	"ecru": "cream",
	"kaki": "khaki",
	"clair": "light", "claire": "light",
	"fonce": "dark", "foncee": "dark",
	"zebre": "zebra", "serpent": "snake",
	"fleuri": "floral", "fleurie": "floral", "fleurs": "floral",

	// it
	"nero": "black", "nera": "black",
	"bianco": "white", "bianca": "white",
	"rosso": "red", "rossa": "red",
	"blu": "blue", "azzurro": "sky blue", "azzurra": "sky blue",
	"giallo": "yellow", "gialla": "yellow",
	"viola": "purple",
	"grigio": "grey", "grigia": "grey",
	"marrone": "brown",
	"arancione": "orange",
	"oro": "gold", "argento": "silver",
	"chiaro": "light", "chiara": "light",
	"scuro": "dark", "scura": "dark",
	"serpente": "snake", "zebrato": "zebra", "leopardato": "leopard", "tigrato": "tiger",
	"floreale": "floral", "fiori": "floral",

	// pt
	"preto": "black", "preta": "black",
	"branco": "white", "branca": "white",
	"vermelho": "red", "vermelha": "red",
	"amarelo": "yellow", "amarela": "yellow",
	"cinza": "grey",
	"roxo": "purple", "roxa": "purple",
	"castanho": "brown",
	"laranja": "orange",
	"escuro": "dark", "escura": "dark",

	// de
	"schwarz": "black",
	"weiss": "white", "weiß": "white",
	"rot": "red",
	"blau": "blue", "hellblau": "light blue", "dunkelblau": "dark blue",
	"grun": "green", "dunkelgrun": "dark green",
	"gelb": "yellow",
	"grau": "grey", "hellgrau": "light grey", "dunkelgrau": "dark grey",
	"braun": "brown",
	"hell": "light", "dunkel": "dark",
	"schlange": "snake",

	// en variants
	"gray": "grey",
	"multi": "multicolor", "multicolour": "multicolor", "multicoloured": "multicolor", "multicolored": "multicolor",
	"snakeskin": "snake",
	"flower": "floral", "flowers": "floral", "flowered": "floral",
	"leo": "leopard",
	"maroon": "burgundy", "bordo": "burgundy",
	"tan": "camel",
}

// translate rewrites folded text into English color vocabulary and moves
// a trailing modifier to the front ("blue light" -> "light blue").
func translate(folded string) string {
	tokens := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(tokens) == 0 {
		return ""
	}

	padded := " " + strings.Join(tokens, " ") + " "
	for _, p := range phrases {
		padded = strings.ReplaceAll(padded, " "+p.from+" ", " "+p.to+" ")
	}

	var out []string
	for _, tok := range strings.Fields(padded) {
		if en, ok := words[tok]; ok {
			out = append(out, strings.Fields(en)...)
			continue
		}
		out = append(out, tok)
	}

	if n := len(out); n >= 2 && isModifier(out[n-1]) && !isModifier(out[0]) {
		out = append([]string{out[n-1]}, out[:n-1]...)
	}
	return strings.Join(out, " ")
}
