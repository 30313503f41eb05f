package rag

import "fmt"

const systemPrompt = `Ты - помощник, который отвечает на вопросы по конспектам лекций.
Правила:
1. Опирайся ТОЛЬКО на предоставленные конспекты
2. Используй простой и понятный язык
3. Если в конспектах нет ответа - скажи об этом
4. Цитируй источники (файл и страница)
5. Оформи ответ в Markdown:
           - Делай структурированные абзацы и списки.
           - Встроенные формулы записывай в формате $ ... $.
           - Формулы на отдельной строке записывай в формате:
             $$ ... $$
           - НЕ используй квадратные скобки вокруг формул вида [ Y = f(X) ] и НЕ дублируй формулы текстом.
`

// Answers returned without calling the model
const (
	NoResultsAnswer = "К сожалению, я не нашёл релевантной информации в конспектах."
	NotFoundAnswer  = "Информация по этому вопросу не найдена."
)

const previewLength = 80

func userMessage(context, question string) string {
	return fmt.Sprintf("Контекст из конспектов:\n%s\n\nВопрос: %s\n\nОтветь на вопрос на основе контекста выше.",
		context, question)
}

func llmErrorAnswer(err error) string {
	return fmt.Sprintf("Ошибка при обращении к LLM: %v", err)
}

// preview returns the first previewLength characters of text followed by an ellipsis
func preview(text string) string {
	runes := []rune(text)
	if len(runes) > previewLength {
		runes = runes[:previewLength]
	}
	return string(runes) + "..."
}
