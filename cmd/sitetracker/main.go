package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imshahrukh/sitetracker/internal/app"
	"github.com/imshahrukh/sitetracker/internal/model"
	"github.com/imshahrukh/sitetracker/internal/store"
	"github.com/imshahrukh/sitetracker/internal/tasks"
	"github.com/imshahrukh/sitetracker/internal/view"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to config file")
	dbPath := flag.String("db", "", "override database path")
	flag.Parse()

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	st, err := store.Init(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open task database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	svc := tasks.New(st)
	vs := view.New()
	defer vs.Release()

	p := tea.NewProgram(app.New(st, svc, vs, cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "application error: %v\n", err)
		os.Exit(1)
	}
}
