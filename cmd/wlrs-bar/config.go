package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/elijahimmer/wlrs-bar/internal/config"
	"github.com/elijahimmer/wlrs-bar/internal/theme"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
	// Subcommands load the file themselves so a broken file can still be
	// located and reported.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()
		return nil
	},
}

var configDefaultCmd = &cobra.Command{
	Use:   "default",
	Short: "Print the default configuration as TOML",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := config.DefaultTOML()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the path of the config file in use",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the config file and report every problem",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			fmt.Printf("%s does not exist, defaults are used\n", path)
			return nil
		}
		c, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if !theme.IsEmbeddedTheme(c.Theme.Name) {
			if _, err := os.Stat(themePath(c.Theme.Name)); err != nil {
				fmt.Printf("warning: theme %q not found, %s is used instead\n", c.Theme.Name, theme.DefaultThemeName)
			}
		}
		fmt.Printf("%s is valid\n", path)
		return nil
	},
}

var configThemesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List the available themes",
	RunE: func(cmd *cobra.Command, args []string) error {
		current := config.Default().Theme.Name
		if c, err := loadConfig(cmd); err == nil {
			current = c.Theme.Name
		}
		loader := theme.NewLoader(logger, "")
		for _, name := range loader.ListThemes() {
			marker := " "
			if name == current {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configDefaultCmd, configPathCmd, configValidateCmd, configThemesCmd)
}

func themePath(name string) string {
	dir, err := theme.ThemesDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, name+".toml")
}
