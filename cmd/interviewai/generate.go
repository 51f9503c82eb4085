package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"interviewai/internal/extract"
	"interviewai/internal/generation"
)

type generateOptions struct {
	resume string
	role   string
	skills string
	years  string
}

func newGenerateCmd(configPath *string) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate interview questions for a resume file",
		Long: "Generate interview questions for a resume. PDF and DOCX files are " +
			"extracted like uploads; any other file, or - for stdin, is read as plain text.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), *configPath, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&opts.resume, "resume", "r", "", "resume file (.pdf, .docx, text, or - for stdin)")
	cmd.Flags().StringVar(&opts.role, "role", "", "target role")
	cmd.Flags().StringVar(&opts.skills, "skills", "", "skills to focus on")
	cmd.Flags().StringVar(&opts.years, "years", "", "years of experience")
	_ = cmd.MarkFlagRequired("resume")
	return cmd
}

func runGenerate(ctx context.Context, configPath string, opts generateOptions, stdin io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		return err
	}

	text, err := readResume(opts.resume, stdin)
	if err != nil {
		return err
	}
	text, _ = extract.Truncate(text, cfg.Upload.MaxResumeLength)

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	svc, closeLLM, err := newGenerationService(cfg, store, logger)
	if err != nil {
		return err
	}
	defer closeLLM()

	resp, err := svc.Generate(ctx, generation.Request{
		Resume: text,
		Role:   opts.role,
		Skills: opts.skills,
		Years:  opts.years,
	})
	if err != nil {
		return err
	}

	for i, q := range resp.Questions {
		fmt.Fprintf(out, "%d. %s\n", i+1, q)
	}
	if len(resp.FallbackMessages) > 0 || resp.Cached {
		fmt.Fprintln(out)
	}
	for _, m := range resp.FallbackMessages {
		fmt.Fprintf(out, "  %s\n", m)
	}
	if resp.Cached {
		fmt.Fprintln(out, "  (from cache)")
	}
	return nil
}

func readResume(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read resume: %w", err)
	}

	ext := extract.Ext(path)
	if !extract.Supported(ext) {
		return string(data), nil
	}
	text, err := extract.Extract(data, ext)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", errors.New("no text found in " + path)
	}
	return text, nil
}
