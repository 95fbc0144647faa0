package main

import (
	"context"
	"flag"
	"log"
	"os"

	"VacancyPulse/internal/di"
	"VacancyPulse/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	input := flag.String("input", "", "vacancy CSV export, overrides engine.input")
	vacancy := flag.String("vacancy", "", "vacancy name filter, overrides engine.vacancy")
	serve := flag.Bool("serve", false, "serve reports over HTTP instead of a single run")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *input != "" {
		cfg.Engine.Input = *input
	}
	if *vacancy != "" {
		cfg.Engine.Vacancy = *vacancy
	}
	if *serve {
		cfg.Server.Enabled = true
	}

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	err = app.Run(context.Background())
	cleanup()
	if err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
