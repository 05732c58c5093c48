package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var workflowHeaders = []string{"ID", "NAME", "USER", "CREATED"}

func workflowRow(wf *WorkflowResponse) []string {
	return []string{wf.ID, wf.Name, wf.UserID, wf.CreatedAt}
}

// NewWorkflowCmd создаёт группу команд для управления workflows.
func NewWorkflowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Manage workflows",
	}

	cmd.AddCommand(
		newWorkflowListCmd(clientFn, outputFn),
		newWorkflowCreateCmd(clientFn, outputFn),
		newWorkflowShowCmd(clientFn, outputFn),
		newWorkflowUpdateCmd(clientFn, outputFn),
		newWorkflowDeleteCmd(clientFn, outputFn),
		newWorkflowPlanCmd(clientFn, outputFn),
	)

	return cmd
}

func newWorkflowListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all workflows",
		RunE: func(cmd *cobra.Command, args []string) error {
			workflows, err := clientFn().ListWorkflows()
			if err != nil {
				return err
			}

			rows := make([][]string, len(workflows))
			for i := range workflows {
				rows[i] = workflowRow(&workflows[i])
			}

			outputFn().Print(workflowHeaders, rows, workflows)
			return nil
		},
	}
}

// readDefinitionFile читает и проверяет JSON-файл с definition.
func readDefinitionFile(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition file: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("definition file is not valid JSON")
	}
	return json.RawMessage(data), nil
}

func newWorkflowCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name, userID, definitionFile string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new workflow from a definition file",
		RunE: func(cmd *cobra.Command, args []string) error {
			definition, err := readDefinitionFile(definitionFile)
			if err != nil {
				return err
			}

			wf, err := clientFn().CreateWorkflow(CreateWorkflowRequest{
				Name:       name,
				UserID:     userID,
				Definition: definition,
			})
			if err != nil {
				return err
			}

			out := outputFn()
			out.Success(fmt.Sprintf("Workflow created: %s", wf.ID))
			out.Print(workflowHeaders, [][]string{workflowRow(wf)}, wf)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Workflow name (required)")
	cmd.Flags().StringVar(&userID, "user", "", "Owner user ID")
	cmd.Flags().StringVar(&definitionFile, "definition-file", "", "Path to definition JSON file (required)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("definition-file")

	return cmd
}

func newWorkflowShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show workflow details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := clientFn().GetWorkflow(args[0])
			if err != nil {
				return err
			}

			outputFn().Print(workflowHeaders, [][]string{workflowRow(wf)}, wf)
			return nil
		},
	}
}

func newWorkflowUpdateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name, definitionFile string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := UpdateWorkflowRequest{}
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("definition-file") {
				definition, err := readDefinitionFile(definitionFile)
				if err != nil {
					return err
				}
				req.Definition = definition
			}

			wf, err := clientFn().UpdateWorkflow(args[0], req)
			if err != nil {
				return err
			}

			out := outputFn()
			out.Success("Workflow updated")
			out.Print(workflowHeaders, [][]string{workflowRow(wf)}, wf)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New workflow name")
	cmd.Flags().StringVar(&definitionFile, "definition-file", "", "Path to new definition JSON file")

	return cmd
}

func newWorkflowDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := clientFn().DeleteWorkflow(args[0]); err != nil {
				return err
			}

			outputFn().Success(fmt.Sprintf("Workflow deleted: %s", args[0]))
			return nil
		},
	}
}

// newWorkflowPlanCmd показывает детерминированный порядок выполнения
// узлов без запуска workflow.
func newWorkflowPlanCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "plan ID",
		Short: "Show execution order without running",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := clientFn().PlanWorkflow(args[0])
			if err != nil {
				return err
			}

			rows := make([][]string, len(plan.Order))
			for i, id := range plan.Order {
				rows[i] = []string{fmt.Sprintf("%d", i+1), id}
			}

			out := outputFn()
			out.Success(fmt.Sprintf("Execution order: %s", strings.Join(plan.Order, " -> ")))
			out.Print([]string{"POSITION", "NODE"}, rows, plan)
			return nil
		},
	}
}
