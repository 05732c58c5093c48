// Package blocks содержит реализации типов блоков workflow.
//
// Каждый блок получает входы с уже подставленными placeholder-ами,
// выполняет действие и возвращает выходы (map[string]string), которые
// мержатся в outputs-карту run-а. Условные блоки (IfCondition,
// UrlStatusCheck) дополнительно возвращают взятую ветку.
//
// Типы блоков:
//
//   - ManualTriggerBlock — точка входа, ничего не делает
//   - TextInputWebhook   — публикует статический текст
//   - IfCondition        — сравнение двух значений, ветвление
//   - HTTPRequest        — произвольный HTTP-запрос
//   - UrlStatusCheck     — GET-проверка кода ответа, ветвление
//   - SlackWebhook       — сообщение в Slack incoming webhook
//
// Registry — фабрика обработчиков по тегу типа:
//
//	registry := blocks.DefaultRegistry()
//	h, err := registry.Get("IfCondition")
//
// Retry-логики в блоках нет: доставка шагов at-least-once, повторное
// выполнение приходит снаружи.
package blocks
