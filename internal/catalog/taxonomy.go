package catalog

// Entry maps an ordered keyword list to one product type.
type Entry struct {
	Type     ProductType
	Keywords []string
}

// Group is one priority level of the taxonomy.
type Group struct {
	Name    string
	Entries []Entry
}

// Groups returns a copy of the ordered taxonomy.
func Groups() []Group {
	out := make([]Group, len(taxonomy))
	for i, g := range taxonomy {
		entries := make([]Entry, len(g.Entries))
		for j, e := range g.Entries {
			entries[j] = Entry{Type: e.Type, Keywords: append([]string(nil), e.Keywords...)}
		}
		out[i] = Group{Name: g.Name, Entries: entries}
	}
	return out
}

// Keywords are stored folded (lower case, no diacritics, words joined by
// single spaces) and matched as substrings of the space-padded word list of
// the text. Within an entry and within a group, order is significant:
// "sweatshirt" must precede "tshirt", "t shirt" must precede "shirt",
// "swimsuit" and "tracksuit" must precede "suit ".
//
// Languages: English, Spanish, French, Italian, with a few German/Dutch
// retailer labels.
var taxonomy = []Group{
	{
		Name: "dresses",
		Entries: []Entry{
			{newType("clothes", "dresses", "Dress"), []string{
				"dress", "gown", "vestido", " robe", "vestito", "abito", "kleid", "jurk",
			}},
		},
	},
	{
		Name: "shoes",
		Entries: []Entry{
			{newType("shoes", "sneakers", "Sneakers"), []string{
				"sneaker", "trainer", "zapatilla", "baskets ", "scarpe da ginnastica", "tennis shoe",
			}},
			{newType("shoes", "boots", "Boots"), []string{
				"boots", " boot ", "bootie", "botas", "bota ", "botin", "bottine", "bottes", "stivale", "stivaletto", "stiefel",
			}},
			{newType("shoes", "heels", "Heels"), []string{
				"heel", "tacon", "stiletto", "escarpin", "pumps", "decollete", "salon ",
			}},
			{newType("shoes", "sandals", "Sandals"), []string{
				"sandal", "sandalia", "sandale", "sandalo", "chancla", "flip flop", "espadrille", "alpargata",
			}},
			{newType("shoes", "loafers", "Loafers"), []string{
				"loafer", "mocasin", "mocassin", "mocassino", "slipper", "mule",
			}},
			{newType("shoes", "flats", "Flats"), []string{
				"ballerina", "bailarina", "ballerine", "ballet flat",
			}},
			{newType("shoes", "shoes", "Shoes"), []string{
				"shoe", "zapato", "chaussure", "scarpa", "scarpe", "calzado", "schuh",
			}},
		},
	},
	{
		Name: "bags",
		Entries: []Entry{
			{newType("bags", "clutches", "Clutch"), []string{
				"clutch", "cartera de mano", "pochette", "minaudiere",
			}},
			{newType("bags", "backpacks", "Backpack"), []string{
				"backpack", "mochila", "sac a dos", "zaino", "rucksack",
			}},
			{newType("bags", "totes", "Tote Bag"), []string{
				"tote", "shopper", "capazo", "cabas",
			}},
			{newType("bags", "crossbody", "Crossbody Bag"), []string{
				"crossbody", "cross body", "bandolera", "bandouliere", "tracolla",
			}},
			{newType("bags", "handbags", "Handbag"), []string{
				"handbag", "bag ", "bags ", "bolso", "bolsa", "borsa", " sac ", "purse", "tasche",
			}},
		},
	},
	{
		Name: "tops",
		Entries: []Entry{
			{newType("clothes", "sweaters", "Sweater"), []string{
				"sweatshirt", "sweater", "jumper", "pullover", "jersey", "sueter", " pull ", "maglione",
				"cardigan", "hoodie", "sudadera", "felpa", "knit",
			}},
			{newType("clothes", "t-shirts", "T-Shirt"), []string{
				"t shirt", "tshirt", "tee shirt", " tee ", "camiseta", "maglietta",
			}},
			{newType("clothes", "shirts", "Shirt"), []string{
				"shirt", "blouse", "blusa", "camisa", "chemise", "chemisier", "camicia", "camicetta",
			}},
			{newType("clothes", "tops", "Top"), []string{
				" top ", " tops ", "crop top", "bodysuit", " body ", "camisole", "tank", "polo", "corset", "bustier",
			}},
		},
	},
	{
		Name: "bottoms",
		Entries: []Entry{
			{newType("clothes", "jeans", "Jeans"), []string{
				"jeans", "vaquero", " jean ", "denim pant", "mom fit", "skinny",
			}},
			{newType("clothes", "shorts", "Shorts"), []string{
				"shorts", "bermuda", " short ", "pantalon corto", "pantaloncini",
			}},
			{newType("clothes", "skirts", "Skirt"), []string{
				"skirt", "falda", "jupe", "gonna", "minifalda",
			}},
			{newType("clothes", "trousers", "Trousers"), []string{
				"trouser", "pants", " pant ", "pantalon", "chino", "legging", "jogger", "culotte",
			}},
		},
	},
	{
		Name: "outerwear",
		Entries: []Entry{
			{newType("clothes", "coats", "Coat"), []string{
				"coat", "abrigo", "manteau", "cappotto", "parka", "trench", "gabardina",
			}},
			{newType("clothes", "jackets", "Jacket"), []string{
				"jacket", "chaqueta", "cazadora", " veste ", "giacca", "giubbotto", "blazer", "americana",
				"bomber", "anorak", "puffer", "plumifero", "doudoune", "piumino", "chaleco", "gilet", "jacke",
			}},
		},
	},
	{
		Name: "generic",
		Entries: []Entry{
			{newType("clothes", "swimwear", "Swimwear"), []string{
				"bikini", "swimsuit", "swimwear", "banador", "maillot de bain", "costume da bagno", "trikini",
			}},
			{newType("clothes", "jumpsuits", "Jumpsuit"), []string{
				"jumpsuit", "playsuit", "romper", "overall", " mono ", "combinaison", " tuta ",
			}},
			{newType("clothes", "sportswear", "Sportswear"), []string{
				"tracksuit", "chandal", "activewear", "sportswear", "survetement",
			}},
			{newType("clothes", "suits", "Suit"), []string{
				"suit ", "traje", "tuxedo", "esmoquin", " completo ", "tailleur",
			}},
			{newType("clothes", "lingerie", "Lingerie"), []string{
				"lingerie", " bra ", "sujetador", "soutien gorge", "reggiseno", "lenceria", "underwear",
				"panties", "briefs", "pijama", "pajama", "pyjama",
			}},
			{newType("clothes", "socks", "Socks"), []string{
				"sock", "calcetin", "chaussette", "calzino", "calzini", "tights", "medias", "collant",
			}},
			{newType("accessories", "hats", "Hat"), []string{
				" hat ", " cap ", "beanie", "gorra", "gorro", "sombrero", "chapeau", "cappello", "beret", "boina",
			}},
			{newType("accessories", "scarves", "Scarf"), []string{
				"scarf", "bufanda", "foulard", "echarpe", "sciarpa", "panuelo", "stole",
			}},
			{newType("accessories", "belts", "Belt"), []string{
				"belt", "cinturon", "ceinture", "cintura", "gurtel",
			}},
			{newType("accessories", "sunglasses", "Sunglasses"), []string{
				"sunglasses", "gafas", "lunettes", "occhiali",
			}},
			{newType("accessories", "gloves", "Gloves"), []string{
				"glove", "guante", "gant ", "gants", "guanti",
			}},
			{newType("accessories", "watches", "Watch"), []string{
				"watch", "reloj", "montre", "orologio",
			}},
			{newType("jewelry", "necklaces", "Necklace"), []string{
				"necklace", "pendant", "collier", "collana", "colgante", "choker",
			}},
			{newType("jewelry", "earrings", "Earrings"), []string{
				"earring", "pendiente", "boucles d oreilles", "boucle d oreille", "orecchin", "aretes",
			}},
			{newType("jewelry", "bracelets", "Bracelet"), []string{
				"bracelet", "pulsera", "bracciale", "bangle",
			}},
			{newType("jewelry", "rings", "Ring"), []string{
				" ring ", " rings ", "anillo", "bague", "anello", "sortija",
			}},
			{newType("jewelry", "jewelry", "Jewelry"), []string{
				"jewel", "joya", "bijou", "gioiell", "bisuteria",
			}},
			{newType("accessories", "accessories", "Accessory"), []string{
				"accessor", "accesorio", "accessoire", "accessori", "hair clip", "headband", "diadema",
			}},
		},
	},
}
