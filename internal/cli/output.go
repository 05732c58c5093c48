package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// Output печатает результаты команд: таблицей для человека или JSON
// для скриптов (--json). Данные идут в stdout, служебные сообщения —
// в stderr, чтобы вывод можно было передавать по конвейеру.
type Output struct {
	json bool
	out  io.Writer
	msg  io.Writer
}

// NewOutput создаёт Output в табличном либо JSON-режиме.
func NewOutput(jsonMode bool) *Output {
	return &Output{json: jsonMode, out: os.Stdout, msg: os.Stderr}
}

// Print выводит результат в формате текущего режима.
func (o *Output) Print(headers []string, rows [][]string, jsonData any) {
	if o.json {
		o.JSON(jsonData)
	} else {
		o.Table(headers, rows)
	}
}

// Table печатает выровненную таблицу с заголовком и разделителем.
func (o *Output) Table(headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(o.out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	sep := make([]string, len(headers))
	for i, h := range headers {
		sep[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(sep, "\t"))

	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

// JSON печатает значение с отступами.
func (o *Output) JSON(v any) {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// Success печатает подтверждение в stderr.
func (o *Output) Success(text string) {
	fmt.Fprintln(o.msg, text)
}

// Error печатает сообщение об ошибке в stderr.
func (o *Output) Error(text string) {
	fmt.Fprintln(o.msg, "Error: "+text)
}
