package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

func main() {
	theme := flag.String("theme", "", "Markdown rendering theme: auto, light, or dark")
	configPath := flag.String("config", "", "Path to config.yaml (defaults to the user config dir)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, cfgPath := loadPopupConfig(*configPath)
	if *theme != "" {
		cfg.Theme = string(markdownThemeFromString(*theme))
	}
	setMarkdownTheme(markdownThemeFromString(cfg.Theme))

	events := newEventLogger(filepath.Join(resolveConfigDir(), "popup-events.ndjson"))

	store, err := openPopupStore(resolveConfigDir())
	if err != nil {
		fmt.Fprintln(os.Stderr, "error: open store:", err)
		os.Exit(1)
	}
	defer store.Close()

	api := newAPIClient(cfg.BaseURL, time.Duration(cfg.TimeoutSeconds)*time.Second)

	events.Emit("popup_opened", map[string]string{"base_url": cfg.BaseURL})
	if _, err := tea.NewProgram(
		initialModel(cfg, store, api, events),
		tea.WithAltScreen(),
	).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if err := savePopupConfig(cfg, cfgPath); err != nil {
		events.Error("config_save_failed", err)
	}
	events.Emit("popup_closed", nil)
}
