package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jopela/regions/config"
)

// CLIConfig holds command-line configuration. Empty values leave the file
// configuration untouched.
type CLIConfig struct {
	ConfigPath  string
	Filename    string
	Countries   listFlag
	Endpoint    string
	LogFile     string
	LogFormat   string
	Debug       bool
	CountryList bool
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	TargetPath  string
	GuidePath   string
	Resources   bool
	Workers     int
	NoCache     bool
	ShowVersion bool
}

// listFlag accepts repeated and comma-separated values.
type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(value string) error {
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			*l = append(*l, v)
		}
	}
	return nil
}

func parseFlags(args []string, output io.Writer) (*CLIConfig, error) {
	cfg := &CLIConfig{}
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(output)

	// Short and long forms share one variable
	str := func(p *string, short, long, env, usage string) {
		def := getEnv(env, "")
		usage = fmt.Sprintf("%s (env: %s)", usage, env)
		if short != "" {
			fs.StringVar(p, short, def, usage)
		}
		fs.StringVar(p, long, def, usage)
	}
	boolean := func(p *bool, short, long, env, usage string) {
		def := getEnvBool(env, false)
		if env != "" {
			usage = fmt.Sprintf("%s (env: %s)", usage, env)
		}
		if short != "" {
			fs.BoolVar(p, short, def, usage)
		}
		fs.BoolVar(p, long, def, usage)
	}

	str(&cfg.ConfigPath, "", "config", "REGIONS_CONFIG", "Path to a YAML configuration file")
	str(&cfg.Filename, "f", "filename", "REGIONS_FILENAME", "City guide filename (default result.json)")
	str(&cfg.Endpoint, "e", "endpoint", "REGIONS_ENDPOINT", "SPARQL endpoint used for resource resolution")
	str(&cfg.LogFile, "l", "log-file", "REGIONS_LOG_FILE", "Log file path, stderr when empty")
	str(&cfg.LogFormat, "", "log-format", "REGIONS_LOG_FORMAT", "Log format: json, text")
	str(&cfg.DBHost, "H", "hostname-db", "REGIONS_DB_HOST", "Hostname of the database holding the FOI schema")
	str(&cfg.DBUser, "u", "username-db", "REGIONS_DB_USER", "Username for the FOI database")
	str(&cfg.DBPassword, "p", "password-db", "REGIONS_DB_PASSWORD", "Password for the FOI database")
	str(&cfg.DBName, "D", "database-name", "REGIONS_DB_NAME", "Name of the FOI database (default gis)")
	str(&cfg.TargetPath, "t", "target-path", "REGIONS_TARGET", "Directory receiving the regional guides")
	str(&cfg.GuidePath, "g", "guide-path", "REGIONS_GUIDES", "Directory containing the city guides")

	countriesUsage := "ISO 3166 alpha-3 codes to build, comma separated or repeated; ALL for every country (env: REGIONS_COUNTRIES)"
	fs.Var(&cfg.Countries, "c", countriesUsage)
	fs.Var(&cfg.Countries, "countries", countriesUsage)

	boolean(&cfg.Debug, "d", "debug-messages", "REGIONS_DEBUG", "Include debug messages in the log")
	boolean(&cfg.CountryList, "C", "country-list", "", "Print every ISO 3166 alpha-3 code and exit")
	boolean(&cfg.Resources, "r", "resources", "", "Print the graph resource of every ISO 3166 country and exit")
	boolean(&cfg.NoCache, "", "no-cache", "REGIONS_NO_CACHE", "Disable lookup memoization")
	boolean(&cfg.ShowVersion, "v", "version", "", "Show version information")

	fs.IntVar(&cfg.Workers, "workers", getEnvInt("REGIONS_WORKERS", 0),
		"Concurrent guide resolutions (env: REGIONS_WORKERS)")

	fs.Usage = func() {
		printDetailedHelp(fs)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if len(cfg.Countries) == 0 {
		_ = cfg.Countries.Set(getEnv("REGIONS_COUNTRIES", ""))
	}
	return cfg, nil
}

// apply overrides cfg with every flag that was given a value.
func (c *CLIConfig) apply(cfg *config.Config) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	if len(c.Countries) > 0 {
		cfg.Countries = append([]string(nil), c.Countries...)
	}
	set(&cfg.Guides.Filename, c.Filename)
	set(&cfg.Guides.Root, c.GuidePath)
	set(&cfg.SPARQL.Endpoint, c.Endpoint)
	set(&cfg.Log.File, c.LogFile)
	set(&cfg.Log.Format, c.LogFormat)
	set(&cfg.FOI.Host, c.DBHost)
	set(&cfg.FOI.User, c.DBUser)
	set(&cfg.FOI.Password, c.DBPassword)
	set(&cfg.FOI.Database, c.DBName)
	set(&cfg.Output.Target, c.TargetPath)

	if c.Debug {
		cfg.Log.Level = "debug"
	}
	if c.Workers > 0 {
		cfg.Workers = c.Workers
	}
	if c.NoCache {
		cfg.Cache.Enabled = false
		cfg.Memo.Store = config.MemoStoreNone
	}
}

func printDetailedHelp(fs *flag.FlagSet) {
	out := fs.Output()
	_, _ = fmt.Fprintf(out, `%s - Regional guide generation

Usage: %s [options]

Options:
`, appName, appName)
	fs.PrintDefaults()
	_, _ = fmt.Fprintf(out, `
Examples:
  # Build the Canadian and Peruvian guides
  %s -c CAN,PER -g /data/guides -t ./target

  # Build every country against a local endpoint
  %s -c ALL -e http://localhost:8890/sparql

  # List valid country codes
  %s -C

Exit codes:
  0 success (possibly partial)
  1 failure
  2 panic
  3 no valid country code requested
  4 no guide discovered

Version: %s
`, appName, appName, appName, Version)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if key == "" {
		return defaultValue
	}
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
