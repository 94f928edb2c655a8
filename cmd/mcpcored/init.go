package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/forgemcp/mcpcore/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Long:  "Walks through a short form and writes a config.json with the answers.",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	defaultPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	var (
		name            = "mcpcore"
		serverVersion   = "0.1.0"
		idleTimeoutSecs = "1800"
		enableTools     = true
		enablePrompts   = false
		enableResources = false
		enableLogging   = false
	)

	orange := lipgloss.AdaptiveColor{Light: "#EA580C", Dark: "#FB923C"}
	formTheme := huh.ThemeBase16()
	formTheme.Focused.Title = formTheme.Focused.Title.Foreground(orange)
	formTheme.Blurred.Title = formTheme.Blurred.Title.Foreground(orange)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Server name").
				Description("Advertised in the initialize reply's serverInfo.name").
				Value(&name).
				Validate(huh.ValidateNotEmpty()),

			huh.NewInput().
				Title("Server version").
				Value(&serverVersion).
				Validate(huh.ValidateNotEmpty()),

			huh.NewInput().
				Title("Session idle timeout (seconds)").
				Description("How long an uninitialized or inactive session may sit before eviction").
				Value(&idleTimeoutSecs).
				Validate(func(s string) error {
					if _, err := strconv.Atoi(s); err != nil {
						return fmt.Errorf("must be a whole number of seconds")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Advertise tools capability?").Value(&enableTools),
			huh.NewConfirm().Title("Advertise prompts capability?").Value(&enablePrompts),
			huh.NewConfirm().Title("Advertise resources capability?").Value(&enableResources),
			huh.NewConfirm().Title("Advertise logging capability?").Value(&enableLogging),
		),
	).WithTheme(formTheme).
		WithWidth(64).
		WithShowHelp(true).
		WithShowErrors(true)

	if err := form.Run(); err != nil {
		return fmt.Errorf("form cancelled: %w", err)
	}

	idleSeconds, err := strconv.Atoi(idleTimeoutSecs)
	if err != nil {
		return err
	}

	cfg := config.NewConfig()
	cfg.ServerInfo = config.ServerInfo{Name: name, Version: serverVersion}
	cfg.SessionIdleTimeoutMS = int64(idleSeconds) * 1000
	cfg.Capabilities = config.ServerCapabilities{}
	if enableTools {
		cfg.Capabilities.Tools = &config.Capability{ListChanged: true}
	}
	if enablePrompts {
		cfg.Capabilities.Prompts = &config.Capability{ListChanged: true}
	}
	if enableResources {
		cfg.Capabilities.Resources = &config.Capability{ListChanged: true, Subscribe: true}
	}
	if enableLogging {
		cfg.Capabilities.Logging = &config.Capability{}
	}

	target := configPath
	if target == "" {
		target = defaultPath
	}
	if err := config.SaveTo(target, cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("Wrote config to %s\n", target)
	return nil
}
