package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"lecture-rag/internal/models"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	askQuestion    string
	askInteractive bool
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a question about the lecture notes",
	Long: `Answers a single question given with -q, or reads questions one per
line with -i until "exit" or "quit".`,
	Args: cobra.NoArgs,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "question to answer")
	askCmd.Flags().BoolVarP(&askInteractive, "interactive", "i", false, "run in interactive mode")
	rootCmd.AddCommand(askCmd)
}

type asker interface {
	Ask(ctx context.Context, question string) (models.Answer, error)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if !askInteractive && strings.TrimSpace(askQuestion) == "" {
		return errors.New("question is required in non-interactive mode, use -q 'your question'")
	}

	ctx := context.Background()

	index, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer index.Close()

	service, err := newService(index)
	if err != nil {
		return err
	}

	if askInteractive {
		return runInteractiveMode(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), service)
	}

	answer, err := service.Ask(ctx, askQuestion)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatAnswer(answer))
	return nil
}

func runInteractiveMode(ctx context.Context, in io.Reader, out io.Writer, service asker) error {
	scanner := bufio.NewScanner(in)
	prompt := color.New(color.FgCyan, color.Bold)

	fmt.Fprintln(out, "Lecture notes assistant - ask questions about your lectures (type 'exit' to quit)")

	for {
		prompt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			break
		}
		if input == "" {
			continue
		}

		startTime := time.Now()
		answer, err := service.Ask(ctx, input)
		if err != nil {
			color.New(color.FgRed).Fprintf(out, "Error: %v\n", err)
			continue
		}
		log.Debug("Query processed", zap.Duration("elapsed", time.Since(startTime)))

		fmt.Fprint(out, formatAnswer(answer))
	}

	return scanner.Err()
}

func formatAnswer(answer models.Answer) string {
	var sb strings.Builder

	sb.WriteString(answer.Answer)
	sb.WriteString("\n")

	if len(answer.Citations) > 0 {
		sb.WriteString("\n")
		sb.WriteString(color.New(color.Faint).Sprint("Sources:"))
		sb.WriteString("\n")
		for i, c := range answer.Citations {
			sb.WriteString(fmt.Sprintf("  %d. %s, page %d\n", i+1, c.SourceFile, c.LogicalPage))
		}
	}

	return sb.String()
}
