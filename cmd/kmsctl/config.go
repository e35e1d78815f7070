package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/drmkit/kmsctl/internal/config"
)

func runConfig(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: kmsctl config <print|validate> [-config path]")
		return 2
	}
	sub := args[0]

	fs := flag.NewFlagSet("config "+sub, flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	fs.Parse(args[1:])

	switch sub {
	case "print":
		cfg, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			return 1
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "encode config: %v\n", err)
			return 1
		}
		os.Stdout.Write(out)
		return 0

	case "validate":
		path := *configPath
		if path == "" {
			var err error
			path, err = config.DefaultConfigPath()
			if err != nil {
				fmt.Fprintf(os.Stderr, "config: %v\n", err)
				return 1
			}
		}
		if _, err := config.LoadFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			return 1
		}
		fmt.Printf("%s: ok\n", path)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", sub)
		return 2
	}
}
