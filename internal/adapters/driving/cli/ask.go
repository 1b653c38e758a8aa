package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragserve/internal/logger"
)

// defaultAskUser owns documents uploaded from the command line.
const defaultAskUser = "cli"

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question about a document",
	Long: `Index a document and answer one question about it, without starting
the HTTP API. The index is cached under the root directory, so asking again
about the same document skips embedding.

Examples:
  ragserve ask --file handbook.pdf "How many vacation days do I get?"
  ragserve ask --file notes.md --user alice "Summarise the action items"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringP("file", "f", "", "document to index (pdf, txt, md, docx, html)")
	askCmd.Flags().StringP("user", "u", defaultAskUser, "user id the document is stored under")
	_ = askCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	user, _ := cmd.Flags().GetString("user")
	question := strings.Join(args, " ")
	if strings.TrimSpace(question) == "" {
		return errors.New("question must not be empty")
	}

	settings, err := loadSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	engine, err := newEngine(settings)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer func() {
		if cerr := engine.Close(); cerr != nil {
			logger.Warn("Closing pipeline: %v", cerr)
		}
	}()

	ctx := cmd.Context()
	if err := engine.Load(ctx); err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	chat := engine.Chat()
	result, err := chat.UploadDocument(ctx, user, filepath.Base(path), f)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	logger.Debug("Indexed %s: %d chunks (cache hit: %t)", result.Path, result.Chunks, result.CacheHit)

	answer, err := chat.Ask(ctx, user, question)
	if err != nil {
		return fmt.Errorf("failed to answer: %w", err)
	}

	cmd.Println(answer)
	return nil
}
