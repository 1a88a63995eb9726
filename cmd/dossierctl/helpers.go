package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/MrJamesThe3rd/dossier/internal/app"
	"github.com/MrJamesThe3rd/dossier/internal/config"
	"github.com/MrJamesThe3rd/dossier/internal/logging"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	logging.Init(level, cfg.Log.Format)

	return cfg, nil
}

func openApp(ctx context.Context) (*app.App, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	a, err := app.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open: %w", err)
	}

	return a, cfg, nil
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

func printTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return lipgloss.NewStyle().Padding(0, 1)
		})

	fmt.Fprintln(w, t.Render())
}
