// Package engine содержит движок диспетчеризации workflow.
//
// Включает:
//   - plan.go     — валидация definition и топологическое планирование
//   - template.go — подстановка placeholder-ов {{nodeId.key}}
//   - state.go    — сериализуемое состояние выполнения + pruning веток
//   - engine.go   — цикл диспетчеризации (машина состояний одного run)
//
// Движок выполняет ровно один узел за шаг, строго в топологическом
// порядке, и продолжается либо in-process (Engine.Run), либо через
// внешнюю очередь (Continuer): State полностью сериализуем, поэтому
// каждый шаг может выполняться в другом процессе. Движок не ходит
// в БД и не знает о транспорте — события прогресса уходят через
// внедрённый events.Sink.
package engine
