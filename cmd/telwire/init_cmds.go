package main

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"telwire/internal/ansi"
	"telwire/internal/app"
	"telwire/internal/assets"
)

var initCmd = &cobra.Command{
	Use:   "init [config_name]",
	Short: "Initialize a new telwire configuration",
	Long:  "Creates a new configuration file and log directory, prompting for details.",
	Args:  cobra.MaximumNArgs(1),
	Run:   runInit,
}

type ConfigTemplateData struct {
	Name     string
	Hostname string
	Version  string
	Dir      string
	Port     int
	MaxNodes int
	Metrics  bool
	Options  []string
}

func runInit(cmd *cobra.Command, args []string) {
	configName := "config"
	if len(args) > 0 {
		configName = args[0]
	}

	// Sanitized name for filename and paths
	safeName := sanitizeFilename(configName)

	data := ConfigTemplateData{
		Name:    configName,
		Version: app.Version,
		Dir:     safeName,
		Options: []string{"Echo", "SGA", "NAWS", "TType"},
	}
	port, maxNodes := "2323", "10"

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Description("Shown in the greeting").
				Value(&data.Name),
			huh.NewInput().
				Title("Hostname").
				Value(&data.Hostname),
			huh.NewInput().
				Title("Telnet port").
				Value(&port).
				Validate(validateInt(1, 65535)),
			huh.NewInput().
				Title("Max nodes").
				Value(&maxNodes).
				Validate(validateInt(1, 1000)),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Options to offer on connect").
				Options(huh.NewOptions("Echo", "SGA", "NAWS", "TType", "EOR", "TransmitBinary")...).
				Value(&data.Options),
			huh.NewConfirm().
				Title("Expose Prometheus metrics?").
				Value(&data.Metrics),
		),
	)

	if err := form.Run(); err != nil {
		log.Fatal(err)
	}

	// Both were validated by the form
	data.Port, _ = strconv.Atoi(port)
	data.MaxNodes, _ = strconv.Atoi(maxNodes)

	configFile := safeName + ".yml"
	fmt.Printf("Initializing '%s' (config: %s)...\n", data.Name, configFile)

	// Create directory structure
	path := safeName + "/logs"
	if err := os.MkdirAll(path, 0755); err != nil {
		fmt.Printf("Error creating directory %s: %v\n", path, err)
		os.Exit(1)
	}
	fmt.Printf("Created directory: %s\n", path)

	// Read yml template from assets
	tmplContent, err := assets.FS.ReadFile("config.yml")
	if err != nil {
		fmt.Printf("Error reading embedded config template: %v\n", err)
		os.Exit(1)
	}

	out, err := ansi.RenderTemplate("config", string(tmplContent), data)
	if err != nil {
		fmt.Printf("Error rendering template: %v\n", err)
		os.Exit(1)
	}

	// Write new config file
	if err := os.WriteFile(configFile, out, 0644); err != nil {
		fmt.Printf("Error writing config file %s: %v\n", configFile, err)
		os.Exit(1)
	}

	fmt.Printf("Configuration file created: %s\n", configFile)
	fmt.Println("Initialization complete.")
}

func validateInt(lo, hi int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("not a number")
		}
		if n < lo || n > hi {
			return fmt.Errorf("must be between %d and %d", lo, hi)
		}
		return nil
	}
}

func sanitizeFilename(name string) string {
	name = strings.ToLower(name)
	// Replace spaces with underscores
	name = strings.ReplaceAll(name, " ", "_")
	// Remove non-alphanumeric characters (except underscores and hyphens)
	re := regexp.MustCompile(`[^a-z0-9_-]`)
	name = re.ReplaceAllString(name, "")
	return name
}
