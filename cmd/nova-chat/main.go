package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/flood-nova/internal/assistant"
	"github.com/couchcryptid/flood-nova/internal/config"
	"github.com/couchcryptid/flood-nova/internal/domain"
	"github.com/couchcryptid/flood-nova/internal/observability"
)

func main() {
	lat := flag.Float64("lat", 0, "latitude reported when the location option is chosen")
	lon := flag.Float64("lon", 0, "longitude reported when the location option is chosen")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	// Stdout belongs to the conversation.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	engine := assistant.NewEngine(logger, observability.NewMetricsForTesting(),
		assistant.WithReplyDelay(cfg.ReplyDelay),
		assistant.WithLocateTimeout(cfg.LocateTimeout),
	)

	opts := []assistant.SessionOption{
		assistant.WithNotifier(assistant.NotifierFunc(func(msg string, sev assistant.Severity) {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", sev, msg)
		})),
	}
	if positionFlagsSet() {
		opts = append(opts, assistant.WithLocator(assistant.StaticLocator(domain.Coordinates{Latitude: *lat, Longitude: *lon})))
	}

	session := engine.NewSession(opts...)
	defer session.Close()

	last := session.Transcript()[0]
	printMessage(last)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "bye" || input == "quit" || input == "exit" {
			break
		}

		var turn *assistant.Turn
		if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(last.Options) {
			turn, err = session.SubmitOption(last.Options[n-1])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			fmt.Printf("you: %s\n", turn.User.Text)
		} else {
			turn, err = session.SubmitText(input)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			if turn.Corrected {
				fmt.Printf("you: %s\n", turn.User.Text)
			}
		}

		<-turn.Done()
		last = turn.Reply
		printMessage(last)
	}

	fmt.Println("Stay safe!")
}

func positionFlagsSet() bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "lat" || f.Name == "lon" {
			set = true
		}
	})
	return set
}

func printMessage(m domain.Message) {
	fmt.Printf("\nnova: %s\n", m.Text)
	for i, opt := range m.Options {
		fmt.Printf("  %d. %s\n", i+1, opt)
	}
	fmt.Println()
}
