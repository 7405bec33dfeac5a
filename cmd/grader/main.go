// Command grader runs one grading pass (plus the bookmark sync) and exits.
// Exit status is 0 on success, including a feed with no completed games.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"SavantGrader/internal/app"
	"SavantGrader/internal/config"
	"SavantGrader/internal/lock"
	"SavantGrader/internal/service"

	"github.com/sirupsen/logrus"
)

type options struct {
	skipBookmarks bool
	feedPath      string
	scoresPath    string
}

// jobs the pieces of a wired app one batch run uses
type jobs struct {
	logger    *logrus.Logger
	grade     func(context.Context) (*service.RunSummary, error)
	bookmarks func(context.Context) (*service.BookmarkSyncSummary, error)
	close     func()
}

func main() {
	var opts options
	flag.BoolVar(&opts.skipBookmarks, "skip-bookmarks", false, "do not sync bookmark results after grading")
	flag.StringVar(&opts.feedPath, "feed", "", "markdown file to grade from (overrides feed.path)")
	flag.StringVar(&opts.scoresPath, "scores", "", "NHL API schedule json to take final scores from (overrides scores.path)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Stderr, opts, setup)
	stop()
	os.Exit(code)
}

// setup loads config and wires the app
func setup(opts options) (*jobs, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if opts.feedPath != "" {
		cfg.Feed.Path = opts.feedPath
	}
	if opts.scoresPath != "" {
		cfg.Scores.Path = opts.scoresPath
	}
	logger := app.NewLogger(&cfg.Log)

	a, err := app.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &jobs{
		logger:    logger,
		grade:     a.Grading.Run,
		bookmarks: a.BookmarkSync.Run,
		close:     a.Close,
	}, nil
}

func run(ctx context.Context, stderr io.Writer, opts options, setup func(options) (*jobs, error)) int {
	j, err := setup(opts)
	if err != nil {
		return fail(stderr, err)
	}
	if j.close != nil {
		defer j.close()
	}

	summary, err := j.grade(ctx)
	if errors.Is(err, lock.ErrNotAcquired) {
		j.logger.Warn("another grading run holds the lock, nothing to do")
		return 0
	}
	if err != nil {
		return fail(stderr, err)
	}
	j.logger.Infof("graded %d bet(s): %d won, %d lost, %d pushed, %+.3f units",
		summary.Graded, summary.Wins, summary.Losses, summary.Pushes, summary.Profit)

	if !opts.skipBookmarks {
		if _, err := j.bookmarks(ctx); err != nil {
			return fail(stderr, err)
		}
	}
	return 0
}

func fail(stderr io.Writer, err error) int {
	fmt.Fprintln(stderr, "💥 GRADING FAILED")
	fmt.Fprintf(stderr, "   %v\n", err)
	return 1
}
