// internal/classify/rules.go
package classify

import "tourism-router/internal/models"

// topicOrder fixes the tie-break order so classification is deterministic
// regardless of map iteration.
var topicOrder = []models.Topic{
	models.TopicDestinations,
	models.TopicLodging,
	models.TopicFood,
	models.TopicEvents,
	models.TopicWeather,
	models.TopicTransport,
	models.TopicCulture,
	models.TopicShopping,
	models.TopicInfrastructure,
}

// topicTerms maps each topic to the lowercase terms that vote for it.
// Multi-word terms are matched as substrings of the normalized question.
var topicTerms = map[models.Topic][]string{
	models.TopicDestinations: {
		"bonito", "pantanal", "campo grande", "corumbá", "corumba",
		"três lagoas", "tres lagoas", "dourados", "ponta porã", "ponta pora",
		"jardim", "miranda", "aquidauana", "gruta", "cachoeira", "flutuação",
		"flutuacao", "rota bioceânica", "rota bioceanica", "destino", "passeio",
	},
	models.TopicLodging: {
		"hotel", "pousada", "hospedagem", "hostel", "resort", "onde ficar",
		"acomodação", "acomodacao", "diária", "diaria",
	},
	models.TopicFood: {
		"restaurante", "comida", "gastronomia", "sobá", "soba", "tereré",
		"terere", "churrasco", "peixe", "onde comer", "culinária", "culinaria",
		"sopa paraguaia", "chipa",
	},
	models.TopicEvents: {
		"evento", "eventos", "festival", "show", "festa", "agenda",
		"programação", "programacao", "festival de inverno",
	},
	models.TopicWeather: {
		"clima", "tempo", "chuva", "temperatura", "previsão", "previsao",
		"calor", "frio",
	},
	models.TopicTransport: {
		"ônibus", "onibus", "voo", "aeroporto", "rodoviária", "rodoviaria",
		"como chegar", "transporte", "estrada", "aluguel de carro", "distância",
		"distancia",
	},
	models.TopicCulture: {
		"cultura", "museu", "história", "historia", "indígena", "indigena",
		"arte", "tradição", "tradicao", "artesanato",
	},
	models.TopicShopping: {
		"compras", "shopping", "loja", "lojas", "feira", "mercado",
		"souvenir", "lembrança", "lembranca",
	},
	models.TopicInfrastructure: {
		"banco", "hospital", "farmácia", "farmacia", "posto de saúde",
		"posto de saude", "internet", "segurança", "seguranca", "delegacia",
	},
}

// moodRule maps lexical cues to a mood and, for urgent cues, an elevated
// urgency. Rules are evaluated in order; the first match wins.
type moodRule struct {
	terms   []string
	mood    models.Mood
	urgency models.Urgency
}

var moodRules = []moodRule{
	{
		terms:   []string{"urgente", "urgência", "urgencia", "rápido", "rapido", "agora", "hoje mesmo", "preciso já", "preciso ja"},
		mood:    models.MoodUrgent,
		urgency: models.UrgencyHigh,
	},
	{
		terms:   []string{"não sei", "nao sei", "confuso", "confusa", "perdido", "perdida", "não entendi", "nao entendi"},
		mood:    models.MoodConfused,
		urgency: models.UrgencyNormal,
	},
	{
		terms:   []string{"!", "incrível", "incrivel", "maravilhoso", "maravilhosa", "demais", "amei", "adorei"},
		mood:    models.MoodExcited,
		urgency: models.UrgencyNormal,
	},
}

// intentRule maps interrogative cues to an intent; first match wins.
type intentRule struct {
	terms      []string
	intent     models.Intent
	prefixOnly bool
}

var intentRules = []intentRule{
	{
		terms:      []string{"oi", "olá", "ola", "bom dia", "boa tarde", "boa noite", "tudo bem"},
		intent:     models.IntentGreeting,
		prefixOnly: true,
	},
	{
		terms:  []string{"melhor", "melhores", "recomenda", "recomendação", "recomendacao", "vale a pena", "sugere", "sugestão", "sugestao"},
		intent: models.IntentRecommendation,
	},
	{
		terms:  []string{"como", "onde", "quando", "quanto custa", "preciso de"},
		intent: models.IntentGuidance,
	},
	{
		terms:  []string{"o que", "quais", "qual", "existe", "tem "},
		intent: models.IntentInformation,
	},
}

// stopwords excluded from the extracted keyword set.
var stopwords = map[string]bool{
	"para": true, "pela": true, "pelo": true, "como": true, "onde": true,
	"quando": true, "quais": true, "qual": true, "sobre": true, "porque": true,
	"mais": true, "menos": true, "muito": true, "com": true, "sem": true,
	"uma": true, "umas": true, "uns": true, "que": true, "das": true,
	"dos": true, "nas": true, "nos": true, "essa": true, "esse": true,
	"está": true, "esta": true, "são": true, "ser": true, "tem": true,
}
