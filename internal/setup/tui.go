// Package setup provides the terminal configuration wizard that writes
// a starter config.yaml.
package setup

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

var (
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1)
)

// RunTUI walks the operator through the server settings and writes the
// result to config.yaml in the working directory.
func RunTUI() error {
	var (
		listenAddr   = ":8080"
		cacheTTLStr  = "30s"
		walDir       = "./wal/ledgers"
		ratePlatform string
		confirm      bool
	)

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("BULLIONBOOK CONFIG WIZARD"))

	fmt.Println(stepStyle.Render("STEP 1: SERVER"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Listen address").
				Description("host:port the ledger API binds to").
				Value(&listenAddr).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("listen address cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("WAL directory").
				Description("Where ledger and transaction records are persisted").
				Value(&walDir),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Println(stepStyle.Render("STEP 2: READ CACHE"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Cache TTL").
				Description("Duration string (e.g. 0s, 30s, 5m); 0 disables caching").
				Value(&cacheTTLStr).
				Validate(func(s string) error {
					d, err := time.ParseDuration(s)
					if err != nil {
						return err
					}
					if d < 0 {
						return fmt.Errorf("TTL must not be negative")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Println(stepStyle.Render("STEP 3: RATE SOURCE"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Advisory gold rate source").
				Options(
					huh.NewOption("None", ""),
					huh.NewOption("Binance (PAXG spot)", "binance"),
					huh.NewOption("Bybit (PAXG spot)", "bybit"),
				).
				Value(&ratePlatform),
		),
	).Run()
	if err != nil {
		return err
	}

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Write config.yaml?").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("aborted by user")
	}

	out := map[string]any{
		"listen_addr": listenAddr,
		"cache_ttl":   cacheTTLStr,
		"wal_dir":     walDir,
	}
	if ratePlatform != "" {
		out["rate_platform"] = ratePlatform
	}

	payload, err := yaml.Marshal(out)
	if err != nil {
		return err
	}
	if err := os.WriteFile("config.yaml", payload, 0o644); err != nil {
		return err
	}

	fmt.Println(stepStyle.Render("config.yaml written, start the server with: bullionbook --config config.yaml"))
	return nil
}
