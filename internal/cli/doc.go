// Package cli — команды утилиты cascade.
//
// Пакет состоит из трёх частей:
//
//   - Client — тонкий HTTP-клиент поверх Cascade API. Свои типы
//     запросов/ответов, internal/api не импортируется: CLI живёт
//     только на публичном контракте.
//   - Output — вывод таблицей (tabwriter) или JSON по флагу --json.
//     Данные идут в stdout, служебные сообщения в stderr, так что
//     `cascade run list --json | jq .` работает как ожидается.
//   - Фабрики команд NewWorkflowCmd, NewRunCmd, NewScheduleCmd —
//     cobra-группы по ресурсам. Каждая принимает clientFn/outputFn,
//     потому что значения PersistentFlags известны только после
//     парсинга, то есть уже внутри RunE.
package cli
