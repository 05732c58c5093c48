// Package scheduler запускает workflow по расписанию.
//
// Каждый тик (раз в секунду) планировщик выбирает schedules с истекшим
// next_due_at, для каждого создаёт run и публикует его начальное
// состояние в очередь шагов — дальше run ничем не отличается от
// запущенного через API.
//
// Лидер среди экземпляров выбирается снаружи: main бинаря держит
// pg_try_advisory_lock и зовёт Tick только пока владеет блокировкой.
// Сам пакет про выборы ничего не знает.
package scheduler
