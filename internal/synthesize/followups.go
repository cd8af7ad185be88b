// internal/synthesize/followups.go
package synthesize

import "tourism-router/internal/models"

// Follow-up prompt sets per topic. The generic set backs every topic that
// has no dedicated one.
var topicFollowUps = map[models.Topic][]string{
	models.TopicDestinations: {
		"Quer saber como chegar até lá?",
		"Posso sugerir passeios na região?",
		"Quer dicas de hospedagem por perto?",
	},
	models.TopicLodging: {
		"Prefere hotel ou pousada?",
		"Quer opções em outra faixa de preço?",
		"Posso indicar hospedagens perto dos principais passeios?",
	},
	models.TopicFood: {
		"Quer conhecer outros pratos típicos de MS?",
		"Posso indicar onde provar sobá em Campo Grande?",
		"Quer sugestões de restaurantes na região?",
	},
	models.TopicEvents: {
		"Quer saber a programação completa?",
		"Posso avisar sobre outros eventos na mesma época?",
		"Quer dicas de onde ficar durante o evento?",
	},
	models.TopicTransport: {
		"Quer saber os horários de saída?",
		"Prefere ir de carro ou de ônibus?",
		"Posso explicar o trajeto a partir de Campo Grande?",
	},
	models.TopicWeather: {
		"Quer saber a melhor época para visitar?",
		"Posso sugerir passeios para dias de chuva?",
		"Quer dicas do que levar na mala?",
	},
	models.TopicCulture: {
		"Quer conhecer os museus da região?",
		"Posso contar mais sobre a história de MS?",
		"Quer sugestões de experiências culturais?",
	},
	models.TopicShopping: {
		"Quer saber o horário da Feira Central?",
		"Posso indicar onde comprar artesanato regional?",
		"Quer dicas de lembranças típicas de MS?",
	},
	models.TopicGeneral: {
		"Quer dicas sobre algum destino em Mato Grosso do Sul?",
		"Posso ajudar com hospedagem, passeios ou gastronomia?",
		"Quer saber o que fazer em Bonito ou no Pantanal?",
	},
}

// Clarifying prompts used when the user sounds lost, regardless of topic.
var clarifyingFollowUps = []string{
	"Quer que eu explique de outra forma?",
	"Posso detalhar alguma parte da resposta?",
	"Me conta um pouco mais do que você procura?",
}

// followUps picks 2-3 prompts for the topic, adjusted by mood. Confused
// users get clarifying prompts before topic suggestions.
func followUps(topic models.Topic, mood models.Mood) []string {
	base, ok := topicFollowUps[topic]
	if !ok {
		base = topicFollowUps[models.TopicGeneral]
	}

	if mood == models.MoodConfused {
		return []string{clarifyingFollowUps[0], clarifyingFollowUps[1], base[0]}
	}

	return base[:3]
}

// Fallback suggestions steer the user somewhere useful when no source had
// verified information.
var fallbackSuggestions = map[models.Topic]string{
	models.TopicDestinations: "Posso falar sobre Bonito, Pantanal, Campo Grande, Corumbá e outros destinos de MS.",
	models.TopicLodging:      "Posso ajudar a procurar hospedagem em Bonito, Campo Grande ou no Pantanal.",
	models.TopicFood:         "Posso contar sobre o sobá, o tereré, a chipa e outros sabores de MS.",
	models.TopicEvents:       "Posso falar sobre o Festival de Inverno de Bonito e outros eventos do estado.",
	models.TopicTransport:    "Posso explicar como chegar aos principais destinos a partir de Campo Grande.",
	models.TopicWeather:      "Posso falar sobre a melhor época para visitar cada região de MS.",
	models.TopicCulture:      "Posso contar sobre a cultura sul-mato-grossense e seus museus.",
	models.TopicShopping:     "Posso indicar a Feira Central de Campo Grande e o artesanato regional.",
	models.TopicGeneral:      "Posso ajudar com destinos, hospedagem, gastronomia e passeios em Mato Grosso do Sul.",
}

func fallbackSuggestion(topic models.Topic) string {
	if s, ok := fallbackSuggestions[topic]; ok {
		return s
	}
	return fallbackSuggestions[models.TopicGeneral]
}
