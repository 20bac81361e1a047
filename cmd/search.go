package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/salary-spy/internal/export"
	"github.com/spigell/salary-spy/internal/lookup"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Look up salaries for a company and role",
	Run: func(cmd *cobra.Command, _ []string) {
		search(cmd)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringP("company", "c", "", "company name to match (substring, case-insensitive)")
	searchCmd.Flags().StringP("role", "r", "", "job title to match (substring, case-insensitive)")
	searchCmd.Flags().StringP("output", "o", outputTable, "output format: table or json")
	searchCmd.Flags().String("xlsx", "", "also write the result to the given xlsx file")
	searchCmd.Flags().BoolP("interactive", "i", false, "ask for company and role when both are omitted")
}

func search(cmd *cobra.Command) {
	ctx := context.Background()

	logger, _, gateway := bootstrap(ctx)
	defer gateway.Close()

	company, _ := cmd.Flags().GetString("company")
	role, _ := cmd.Flags().GetString("role")
	output, _ := cmd.Flags().GetString("output")
	xlsxPath, _ := cmd.Flags().GetString("xlsx")
	interactive, _ := cmd.Flags().GetBool("interactive")

	output = strings.ToLower(strings.TrimSpace(output))
	if output != outputTable && output != outputJSON {
		logger.Fatal("unsupported output format", zap.String("output", output))
	}

	if interactive && strings.TrimSpace(company) == "" && strings.TrimSpace(role) == "" {
		var err error
		company, role, err = promptTerms()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				logger.Info("exiting", zap.String("reason", "prompt cancelled"))
				return
			}
			logger.Fatal("reading search terms", zap.Error(err))
		}
	}

	res, err := lookup.New(gateway, logger).Lookup(ctx, company, role)
	if err != nil {
		logger.Fatal("looking up salaries", zap.Error(err))
	}

	switch output {
	case outputJSON:
		pretty, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			logger.Fatal("encoding result", zap.Error(err))
		}
		fmt.Fprintln(os.Stdout, string(pretty))
	default:
		if err := renderResult(res); err != nil {
			log.Fatalf("rendering result: %v", err)
		}
	}

	if xlsxPath != "" {
		if err := export.SaveXLSX(xlsxPath, res); err != nil {
			logger.Fatal("exporting result", zap.Error(err), zap.String("file", xlsxPath))
		}
		logger.Info("result exported", zap.String("file", xlsxPath), zap.Int("records", len(res.Decision.Records)))
	}
}

func promptTerms() (string, string, error) {
	company, err := (&promptui.Prompt{Label: "Company (empty for any)"}).Run()
	if err != nil {
		return "", "", err
	}

	role, err := (&promptui.Prompt{Label: "Role (empty for any)"}).Run()
	if err != nil {
		return "", "", err
	}

	return company, role, nil
}
