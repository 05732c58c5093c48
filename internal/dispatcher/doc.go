// Package dispatcher содержит потребителя очереди продолжений.
//
// Один шаг — одно сообщение: диспетчер восстанавливает сериализованный
// ExecutionState, выполняет голову очереди через engine.Step и
// подтверждает сообщение. Продолжение (следующий шаг) публикует сам
// движок через mq.StepContinuer, поэтому run мигрирует между
// диспетчерами свободно.
//
// Гарантия — at-least-once: ack после шага, сбой процесса приводит к
// повторному выполнению текущего шага, не к потере run-а. Отмена
// проверяется по статусу run в БД перед каждым шагом.
package dispatcher
