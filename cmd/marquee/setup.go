package main

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/mmcdole/marquee/internal/config"
)

// runSetupFlow asks for a TMDB API key on first start and saves it
func runSetupFlow(cfg *config.Config, configPath string) error {
	fmt.Println()
	fmt.Println("Welcome to Marquee!")
	fmt.Println()
	fmt.Println("Marquee needs a TMDB API key (https://www.themoviedb.org/settings/api).")

	var apiKey string
	for apiKey == "" {
		fmt.Print("Enter your API key: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		apiKey = strings.TrimSpace(string(raw))
		if apiKey == "" {
			fmt.Println("API key cannot be empty. Please try again.")
		}
	}
	cfg.TMDB.APIKey = apiKey

	save := config.SaveConfig
	if configPath != "" {
		save = func(c *config.Config) error { return config.SaveConfigTo(configPath, c) }
	}
	if err := save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	return nil
}
