// internal/adapters/localkb/knowledge.go
package localkb

import "time"

// Entry is one curated knowledge base item about Mato Grosso do Sul.
type Entry struct {
	ID        string
	Title     string
	Content   string
	Category  string
	Keywords  []string
	Source    string
	UpdatedAt time.Time
}

var curatedAt = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

// defaultEntries is the curated MS tourism knowledge base.
var defaultEntries = []Entry{
	{
		ID:       "bonito",
		Title:    "Bonito - Capital do Ecoturismo",
		Content:  "Bonito é o principal destino de ecoturismo do Brasil, famoso por suas águas cristalinas. Principais atrativos: Rio da Prata (flutuação), Gruta do Lago Azul, Buraco das Araras, Rio Sucuri e Balneário Municipal. Os passeios exigem agendamento prévio com agências credenciadas e a cidade fica a cerca de 300 km de Campo Grande.",
		Category: "destinations",
		Keywords: []string{"bonito", "ecoturismo", "flutuação", "gruta", "rio da prata", "águas cristalinas", "mergulho"},
		Source:   "https://visitms.com.br",
	},
	{
		ID:       "pantanal",
		Title:    "Pantanal - Maior Planície Alagável do Mundo",
		Content:  "O Pantanal sul-mato-grossense é patrimônio natural da humanidade, ideal para observação de fauna: onças, jacarés, araras-azuis e mais de 600 espécies de aves. Acesso pelas portas de entrada Corumbá, Miranda e Aquidauana. Melhor época para observação de animais: seca, de maio a setembro.",
		Category: "destinations",
		Keywords: []string{"pantanal", "fauna", "onça", "jacaré", "arara", "safari", "pesca", "natureza"},
		Source:   "https://visitms.com.br",
	},
	{
		ID:       "campo-grande",
		Title:    "Campo Grande - Cidade Morena",
		Content:  "Capital de Mato Grosso do Sul e portão de entrada do estado. Atrativos: Parque das Nações Indígenas, Mercado Municipal (onde provar o sobá), Feira Central, Bioparque Pantanal (maior aquário de água doce do mundo) e Museu das Culturas Dom Bosco. O aeroporto internacional recebe voos diários das principais capitais.",
		Category: "destinations",
		Keywords: []string{"campo grande", "capital", "bioparque", "feira central", "mercado municipal", "parque das nações"},
		Source:   "https://visitms.com.br",
	},
	{
		ID:       "corumba",
		Title:    "Corumbá - Capital do Pantanal",
		Content:  "Corumbá fica às margens do Rio Paraguai, na fronteira com a Bolívia. É a principal porta de entrada do Pantanal e polo de pesca esportiva. Atrativos: Porto Geral, Forte Coimbra, Estrada Parque e barcos-hotel para safáris fluviais.",
		Category: "destinations",
		Keywords: []string{"corumbá", "rio paraguai", "pesca", "porto geral", "fronteira", "bolívia", "barco-hotel"},
		Source:   "https://visitms.com.br",
	},
	{
		ID:       "tres-lagoas",
		Title:    "Três Lagoas - Cidade das Águas",
		Content:  "Três Lagoas, na divisa com São Paulo, é conhecida pela pesca esportiva no Rio Sucuriú e pelas lagoas urbanas. A Festa do Folclore, em agosto, é um dos maiores eventos culturais do estado.",
		Category: "destinations",
		Keywords: []string{"três lagoas", "tres lagoas", "pesca", "lagoa", "folclore", "sucuriú"},
		Source:   "https://visitms.com.br",
	},
	{
		ID:       "dourados",
		Title:    "Dourados - Portal da Grande Fronteira",
		Content:  "Segunda maior cidade do estado, Dourados é polo do agronegócio e da cultura indígena, com a Reserva Indígena de Dourados. Gastronomia marcada pela influência paraguaia: chipa e sopa paraguaia.",
		Category: "destinations",
		Keywords: []string{"dourados", "indígena", "fronteira", "chipa", "agronegócio"},
		Source:   "https://visitms.com.br",
	},
	{
		ID:       "gastronomia",
		Title:    "Gastronomia Sul-Mato-Grossense",
		Content:  "A culinária de MS mistura influências paraguaias, bolivianas e japonesas. Pratos típicos: sobá (Campo Grande), chipa, sopa paraguaia, espetinho, churrasco pantaneiro, pintado e pacu assado. O tereré, bebida gelada de erva-mate, é patrimônio cultural do estado.",
		Category: "food",
		Keywords: []string{"gastronomia", "sobá", "tereré", "chipa", "sopa paraguaia", "pintado", "pacu", "comida", "culinária"},
		Source:   "https://visitms.com.br",
	},
	{
		ID:       "rota-bioceanica",
		Title:    "Rota Bioceânica",
		Content:  "Corredor rodoviário que liga MS aos portos do Chile passando por Paraguai e Argentina, com travessia pela ponte de Porto Murtinho. Deve impulsionar o turismo de fronteira e reduzir o tempo de exportação ao mercado asiático.",
		Category: "infrastructure",
		Keywords: []string{"rota bioceânica", "rota bioceanica", "porto murtinho", "fronteira", "chile", "paraguai"},
		Source:   "https://fundtur.ms.gov.br",
	},
	{
		ID:       "eventos",
		Title:    "Principais Eventos de MS",
		Content:  "Calendário anual: Festival de Inverno de Bonito (julho/agosto), Festa do Sobá em Campo Grande, Festa do Folclore de Três Lagoas (agosto), Festival América do Sul em Corumbá e o Carnaval de Corumbá, o mais tradicional do Centro-Oeste.",
		Category: "events",
		Keywords: []string{"eventos", "festival", "festival de inverno", "festa do sobá", "carnaval", "folclore"},
		Source:   "https://fundtur.ms.gov.br",
	},
	{
		ID:       "cultura",
		Title:    "Cultura e Tradições",
		Content:  "A cultura sul-mato-grossense une raízes indígenas (terena, guarani-kaiowá, kadiwéu), influência paraguaia na música (polca e chamamé) e a tradição pantaneira. Destaques: cerâmica kadiwéu, viola de cocho e o Museu das Culturas Dom Bosco em Campo Grande.",
		Category: "culture",
		Keywords: []string{"cultura", "indígena", "terena", "guarani", "kadiwéu", "chamamé", "museu", "tradição"},
		Source:   "https://visitms.com.br",
	},
}

func init() {
	for i := range defaultEntries {
		defaultEntries[i].UpdatedAt = curatedAt
	}
}
