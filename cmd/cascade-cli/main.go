// cascade — CLI для Cascade API.
//
// Все команды ходят в HTTP API (--api-url); напрямую в БД или брокер
// CLI не лезет. --json переключает вывод с таблиц на JSON.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Cascade/internal/cli"
)

// version подставляется через -ldflags при сборке релиза.
var version = "dev"

func main() {
	var (
		apiURL     string
		jsonOutput bool
	)

	root := &cobra.Command{
		Use:           "cascade",
		Short:         "Cascade workflow automation CLI",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "API server URL")
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	// Флаги парсятся после конструирования команд, поэтому клиент и
	// вывод создаются лениво внутри RunE.
	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	root.AddCommand(
		cli.NewWorkflowCmd(clientFn, outputFn),
		cli.NewRunCmd(clientFn, outputFn),
		cli.NewScheduleCmd(clientFn, outputFn),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
