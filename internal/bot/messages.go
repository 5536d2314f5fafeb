package bot

// User-facing texts of the locator conversation.
const (
	msgAskPhone = "Olá! 👋 Vou te ajudar a encontrar pontos de venda perto de você.\n" +
		"Para começar, me envie seu telefone com DDD (ou compartilhe seu contato)."
	msgInvalidPhone = "⚠️ Telefone inválido. Envie um número com pelo menos 9 dígitos."

	msgAskFamily     = "Qual família de produto você procura?"
	msgInvalidOption = "Por favor, escolha uma das opções do teclado."

	msgAskSKU      = "Qual produto você procura?"
	msgNoSKUs      = "Não encontrei produtos para essa família. Escolha outra família:"
	msgAskBairro   = "Em qual bairro você está?"
	msgNoBairros   = "Esse produto não tem pontos de venda cadastrados. Escolha outro produto:"
	msgNoPDVs      = "Nenhum ponto de venda encontrado."
	msgStoreFailed = "❌ Ocorreu um erro ao registrar sua interação."

	msgCancelled = "Conversa cancelada. Envie /start quando quiser recomeçar. 👋"
	msgHelp      = "🤖 Localizador de pontos de venda\n\n" +
		"/start — iniciar uma busca por pontos de venda\n" +
		"/cancel — cancelar a conversa atual\n" +
		"/help — mostrar esta mensagem"
)
