// File: cmd/render.go
package cmd

import (
	"fmt"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/codetriage/api/schemas"
	"github.com/xkilldash9x/codetriage/internal/observability"
	"github.com/xkilldash9x/codetriage/internal/orchestrator"
	"github.com/xkilldash9x/codetriage/internal/reporting"
	"github.com/xkilldash9x/codetriage/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// newRenderCmd creates the `render` command. It runs the full transform
// pipeline offline: a detection-result JSON file in, both artifacts out.
func newRenderCmd() *cobra.Command {
	var (
		taskID       string
		filePath     string
		analysisType string
		outDir       string
	)

	renderCmd := &cobra.Command{
		Use:   "render [result-file]",
		Short: "Generates the narrative report and structured payload from a detection-result file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read result file: %w", err)
			}

			var result schemas.DetectionResult
			if err := json.Unmarshal(raw, &result); err != nil {
				return fmt.Errorf("failed to parse detection result: %w", err)
			}

			if taskID == "" {
				taskID = orchestrator.NewTaskID()
			}

			in := reporting.ReportInput{
				TaskID:       taskID,
				FilePath:     filePath,
				AnalysisType: schemas.AnalysisType(analysisType),
				Result:       &result,
				GeneratedAt:  time.Now().UTC(),
			}

			artifacts, err := store.NewFileStore(outDir, logger)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			narrative := reporting.SelectGenerator(reporting.NewNarrativeGenerator()).Generate(in)
			if err := artifacts.SaveNarrative(ctx, taskID, narrative); err != nil {
				return err
			}

			payload, err := reporting.BuildPayload(in).ToJSON()
			if err != nil {
				return fmt.Errorf("failed to serialize payload: %w", err)
			}
			if err := artifacts.SavePayload(ctx, taskID, payload); err != nil {
				return err
			}

			logger.Info("Artifacts written",
				zap.String("task_id", taskID),
				zap.String("dir", outDir))
			fmt.Printf("Artifacts written to %s (task id %s)\n", outDir, taskID)
			return nil
		},
	}

	renderCmd.Flags().StringVar(&taskID, "task-id", "", "Task id to key the artifacts by. Generated when unset.")
	renderCmd.Flags().StringVar(&filePath, "file-path", "", "Analyzed file or project path recorded in the reports.")
	renderCmd.Flags().StringVar(&analysisType, "analysis-type", "file", "Analysis type: file or project.")
	renderCmd.Flags().StringVarP(&outDir, "out", "o", ".", "Directory to write the artifacts into.")

	return renderCmd
}
