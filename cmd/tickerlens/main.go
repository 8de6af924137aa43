package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bobmcallan/tickerlens/internal/app"
	"github.com/bobmcallan/tickerlens/internal/common"
	"github.com/bobmcallan/tickerlens/internal/interfaces"
)

// demoQueries exercises each intent once.
var demoQueries = []string{
	"How has Nvidia stock changed in the last week?",
	"What is the current price of Apple?",
	"Tell me something about Google's stock.",
	"Did Amazon's price go up last month?",
	"How has Tesla stock changed in the last year?",
}

func main() {
	var (
		configPath  = flag.String("config", "", "path to config file")
		query       = flag.String("q", "", "answer a single query and exit")
		demo        = flag.Bool("demo", false, "run the built-in demo queries and exit")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(common.GetFullVersion())
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.NewApp(ctx, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	common.PrintBanner(a.Config, a.Logger)

	switch {
	case *query != "":
		fmt.Println(a.Query.ProcessQuery(ctx, *query))
	case *demo:
		runDemo(ctx, a)
	default:
		runInteractive(ctx, a)
	}
}

func runDemo(ctx context.Context, a *app.App) {
	for _, q := range demoQueries {
		fmt.Printf("\nQuery: %s\n", q)
		fmt.Printf("Response: %s\n", a.Query.ProcessQuery(ctx, q))
	}
}

func runInteractive(ctx context.Context, a *app.App) {
	interact(ctx, os.Stdin, os.Stdout, a.Query)
}

// interact runs the prompt loop. Input is read on a separate goroutine so a
// cancelled context ends the loop even while waiting for a line.
func interact(ctx context.Context, in io.Reader, out io.Writer, query interfaces.QueryService) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintln(out, "Ask about a stock (empty line to quit):")
	for {
		fmt.Fprint(out, "> ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			q := strings.TrimSpace(line)
			if q == "" {
				return
			}
			fmt.Fprintln(out, query.ProcessQuery(ctx, q))
		}
	}
}
