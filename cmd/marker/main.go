// Command marker marks plain-text submissions from the command line.
//
//	marker mark <file> [-memo file] [-student name] [-assignment name] [-remote]
//	marker plan <files...>
//	marker watch <dir> [-memo file] [-existing]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"

	"github.com/mind-engage/mindengage-marker/internal/batch"
	"github.com/mind-engage/mindengage-marker/internal/config"
	"github.com/mind-engage/mindengage-marker/internal/inbox"
	"github.com/mind-engage/mindengage-marker/internal/marking"
)

const usage = `usage:
  marker mark <file> [-memo file] [-student name] [-assignment name] [-remote]
  marker plan <files...>
  marker watch <dir> [-memo file] [-existing]`

var errUsage = errors.New(usage)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.Red.Sprint("error:"), err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(cfg.LogLevel)

	switch args[0] {
	case "mark":
		return markCmd(ctx, cfg, log, args[1:], out)
	case "plan":
		return planCmd(args[1:], out)
	case "watch":
		return watchCmd(ctx, log, args[1:])
	default:
		return errUsage
	}
}

// parse lets flags and positional arguments be mixed.
func parse(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			return pos, nil
		}
		pos = append(pos, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

func readMemo(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

func markCmd(ctx context.Context, cfg config.Config, log *slog.Logger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("mark", flag.ContinueOnError)
	memoPath := fs.String("memo", "", "marking memo file")
	student := fs.String("student", "", "student name")
	assignment := fs.String("assignment", "", "assignment name")
	remote := fs.Bool("remote", false, "mark with the configured LLM")
	pos, err := parse(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return errUsage
	}
	b, err := os.ReadFile(pos[0])
	if err != nil {
		return err
	}
	memo, err := readMemo(*memoPath)
	if err != nil {
		return err
	}
	doc := marking.Document{Text: string(b), StudentName: *student, Assignment: *assignment}

	if *remote {
		e, err := cfg.RemoteEngine(log)
		if err != nil {
			return err
		}
		rep, err := e.Mark(ctx, doc, memo)
		if err != nil {
			return errors.New(marking.UserMessage(err))
		}
		fmt.Fprintln(out, rep.Text)
		if len(rep.Failed) > 0 {
			fmt.Fprintln(out, color.Yellow.Sprintf("%d of %d sections unavailable", len(rep.Failed), rep.Chunks))
		}
		return nil
	}

	rep, err := marking.NewLocalEngine(nil).Mark(doc, memo)
	if err != nil {
		return errors.New(marking.UserMessage(err))
	}
	fmt.Fprintln(out, marking.Render(rep))
	return nil
}

var riskStyle = map[batch.Risk]color.Color{
	batch.RiskLow:    color.Green,
	batch.RiskMedium: color.Yellow,
	batch.RiskHigh:   color.Red,
}

func planCmd(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	texts := make([]string, 0, len(args))
	for _, p := range args {
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		texts = append(texts, string(b))
	}
	plan := batch.Recommend(texts)

	fmt.Fprintln(out, color.Bold.Sprint("Batch plan"))
	for i, p := range plan.Profiles {
		fmt.Fprintf(out, "  %-30s %6d tokens  %-10s %s\n", args[i], p.EstimatedTokens, p.Category, riskStyle[p.Risk].Sprint(p.Risk))
	}
	fmt.Fprintf(out, "Risk: %s\n", riskStyle[plan.Risk].Sprint(plan.Risk))
	fmt.Fprintf(out, "Recommended batch size: %d (%d batches)\n", plan.RecommendedBatchSize, plan.TotalBatches)
	fmt.Fprintf(out, "Estimated time per batch: %s\n", plan.EstimatedTimeText)
	fmt.Fprintf(out, "Reason: %s\n", plan.Reason)
	if !plan.Processable() {
		tooLarge := lo.Filter(args, func(_ string, i int) bool { return plan.Profiles[i].Category == batch.TooLarge })
		return fmt.Errorf("cannot process batch, too large: %s", strings.Join(tooLarge, ", "))
	}
	return nil
}

func watchCmd(ctx context.Context, log *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	memoPath := fs.String("memo", "", "marking memo file")
	existing := fs.Bool("existing", false, "also mark files already in the directory")
	pos, err := parse(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return errUsage
	}
	memo, err := readMemo(*memoPath)
	if err != nil {
		return err
	}
	opts := []inbox.Option{inbox.WithMemo(memo)}
	if *existing {
		opts = append(opts, inbox.WithExisting())
	}
	return inbox.New(log, marking.NewLocalEngine(nil), opts...).Run(ctx, pos[0])
}
