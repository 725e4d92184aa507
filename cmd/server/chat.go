package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"diabetes-assistant/internal/assessment"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant in the terminal",
	Long: `Chat with the assistant in the terminal.

While a question is open, answer with the option number. Other commands:
  /start             start a new assessment
  /doctors <place>   search for specialists near a location
  /quit              exit

Anything else is sent as a chat message, for example
"find doctors in Pune" or "what is insulin resistance".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		reportDir, _ := cmd.Flags().GetString("report-dir")

		// Logs go to stderr so they do not interleave with the conversation.
		logger := newLogger(os.Stderr, "warn")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		return runChat(ctx, a.svc, cmd.InOrStdin(), cmd.OutOrStdout(), reportDir)
	},
}

func init() {
	chatCmd.Flags().String("report-dir", ".", "directory the PDF report is written to")
	rootCmd.AddCommand(chatCmd)
}

// chatREPL prints the transcript incrementally and maps input lines to
// service calls.
type chatREPL struct {
	svc       assessment.Service
	out       io.Writer
	reportDir string

	printed   int
	hadReport bool
}

func runChat(ctx context.Context, svc assessment.Service, in io.Reader, out io.Writer, reportDir string) error {
	sess, err := svc.CreateSession(ctx)
	if err != nil {
		return err
	}
	c := &chatREPL{svc: svc, out: out, reportDir: reportDir}
	if err := c.show(sess); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			return nil
		}

		next, err := c.handle(ctx, sess, line)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			fmt.Fprintf(out, "! %v\n", err)
			continue
		}
		sess = next
		if err := c.show(sess); err != nil {
			return err
		}
	}
}

func (c *chatREPL) handle(ctx context.Context, sess *assessment.Session, line string) (*assessment.Session, error) {
	switch {
	case line == "/start":
		return c.svc.StartAssessment(ctx, sess.ID)
	case strings.HasPrefix(line, "/doctors"):
		return c.svc.SearchDoctors(ctx, sess.ID, strings.TrimSpace(strings.TrimPrefix(line, "/doctors")))
	}

	if q, ok := sess.Assessment.Current(c.svc.Catalog()); ok {
		if n, err := strconv.Atoi(line); err == nil {
			if n < 1 || n > len(q.Options) {
				return nil, fmt.Errorf("choose an option between 1 and %d", len(q.Options))
			}
			return c.svc.SelectOption(ctx, sess.ID, q.Key, q.Options[n-1].Label)
		}
	}
	return c.svc.SendMessage(ctx, sess.ID, line)
}

func (c *chatREPL) show(sess *assessment.Session) error {
	for _, m := range sess.Transcript[c.printed:] {
		prefix := "assistant"
		if m.Role == assessment.RoleUser {
			prefix = "you"
		}
		fmt.Fprintf(c.out, "[%s] %s\n", prefix, m.Content)
	}
	c.printed = len(sess.Transcript)

	if sess.LastError != "" {
		fmt.Fprintf(c.out, "! %s\n", sess.LastError)
	}

	if q, ok := sess.Assessment.Current(c.svc.Catalog()); ok {
		if sess.Assessment.Phase == assessment.PhaseFailed {
			fmt.Fprintf(c.out, "Answer %q again to retry:\n", q.Key)
		}
		for i, o := range q.Options {
			fmt.Fprintf(c.out, "  %d) %s\n", i+1, o.Label)
		}
	}

	if sess.Report != nil && !c.hadReport {
		path := filepath.Join(c.reportDir, sess.Report.FileName)
		if err := os.WriteFile(path, sess.Report.Data, 0o644); err != nil {
			return fmt.Errorf("saving report: %w", err)
		}
		fmt.Fprintf(c.out, "Report saved to %s (%d page(s))\n", path, sess.Report.Pages)
	}
	c.hadReport = sess.Report != nil
	return nil
}
