package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"ticket_desk/pkg/config"
	"ticket_desk/pkg/gateway"
	"ticket_desk/pkg/logging"
	"ticket_desk/pkg/preset"
	"ticket_desk/pkg/query"
	"ticket_desk/pkg/ui"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	fs := pflag.NewFlagSet("td", pflag.ExitOnError)
	config.RegisterClientFlags(fs)
	startPreset := fs.String("preset", "", "Start with this filter preset")
	listPresets := fs.Bool("list-presets", false, "Print the available presets and exit")
	help := fs.BoolP("help", "h", false, "Show help")
	versionFlag := fs.Bool("version", false, "Show version")
	_ = fs.Parse(os.Args[1:])

	if *help {
		fmt.Println("Usage: td [options]")
		fmt.Println("\nA terminal client for the support ticket service.")
		fs.PrintDefaults()
		os.Exit(0)
	}
	if *versionFlag {
		fmt.Printf("td %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.FromFlags(fs)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	presets, err := preset.Load(cfg.UI.Presets)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading presets: %v\n", err)
		os.Exit(1)
	}
	if *listPresets {
		for _, p := range presets.List() {
			fmt.Printf("%-14s %s\n", p.Name, p.Description)
		}
		os.Exit(0)
	}

	var initial query.Query
	if *startPreset != "" {
		p, ok := presets.Get(*startPreset)
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown preset %q (try --list-presets)\n", *startPreset)
			os.Exit(1)
		}
		initial = p.Query()
	}

	// The terminal belongs to the UI, so logs only go to a file.
	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	client, err := gateway.New(cfg.API.BaseURL,
		gateway.WithTimeout(cfg.API.Timeout),
		gateway.WithLogger(logger.Named("gateway")),
		gateway.WithUserAgent("td/"+version),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger.Info("starting",
		zap.String("version", version),
		zap.String("api", client.BaseURL()),
		zap.Stringer("query", initial),
	)

	m := ui.NewModel(ui.Options{
		Backend:        client,
		Logger:         logger.Named("ui"),
		Query:          initial,
		Debounce:       cfg.Classifier.Debounce,
		MinDescription: cfg.Classifier.MinLength,
		Presets:        presets,
		Theme:          cfg.UI.Theme,
		BoardView:      cfg.UI.View == "board",
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("program exited", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error running td: %v\n", err)
		os.Exit(1)
	}
}
