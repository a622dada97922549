package main

import (
	"fmt"
	"os"

	"github.com/go-yaml/yaml"
	"github.com/spf13/pflag"
)

// settings holds everything the daemon needs to start.  Values come from
// the command line, with a YAML file passed via -c filling in anything
// not set explicitly.
type settings struct {
	Listen         string   `yaml:"listen"`
	RedisAddr      string   `yaml:"redis"`
	RedisPassword  string   `yaml:"redis_password"`
	RedisDB        int      `yaml:"redis_db"`
	Brokers        []string `yaml:"brokers"`
	Topic          string   `yaml:"topic"`
	LogLevel       string   `yaml:"log_level"`
	NoErrorReports bool     `yaml:"no_error_reports"`
}

func defaultSettings() settings {
	return settings{
		Listen:    ":8086",
		RedisAddr: "localhost:6379",
		Topic:     "spc.violations",
		LogLevel:  "info",
	}
}

// parseCommandLine configures the daemon from command line options or
// from a YAML configuration file passed with the -c flag.  Explicit
// flags win over file values.
func parseCommandLine() (settings, error) {
	pf := createFlagSet()
	return parse(os.Args[1:], pf)
}

func parse(args []string, pf *pflag.FlagSet) (settings, error) {
	s := defaultSettings()
	if err := pf.Parse(args); err != nil {
		return s, err
	}

	if path, _ := pf.GetString("config"); path != "" {
		if err := parseFromFile(path, &s); err != nil {
			return s, err
		}
	}

	pf.Visit(func(flag *pflag.Flag) {
		switch flag.Name {
		case "listen":
			s.Listen, _ = pf.GetString("listen")
		case "redis":
			s.RedisAddr, _ = pf.GetString("redis")
		case "redis-db":
			s.RedisDB, _ = pf.GetInt("redis-db")
		case "brokers":
			s.Brokers, _ = pf.GetStringSlice("brokers")
		case "topic":
			s.Topic, _ = pf.GetString("topic")
		case "log-level":
			s.LogLevel, _ = pf.GetString("log-level")
		case "no-error-reports":
			s.NoErrorReports, _ = pf.GetBool("no-error-reports")
		}
	})
	return s, nil
}

func createFlagSet() *pflag.FlagSet {
	pf := pflag.NewFlagSet("spcd", pflag.ContinueOnError)
	pf.Usage = func() {
		fmt.Printf("Usage of spcd:\nspcd [options]\nspcd -c config.yml\n")
		fmt.Printf("\n%s", pf.FlagUsagesWrapped(10))
	}

	pf.StringP("config", "c", "", "Use yaml configuration file")
	pf.String("listen", ":8086", "Address to serve the SPC API on as host:port")
	pf.String("redis", "localhost:6379", "Redis address for configurations and violation history as host:port")
	pf.Int("redis-db", 0, "Redis database number")
	pf.StringSlice("brokers", nil, "Kafka broker addresses for violation events.  Publishing is disabled when empty.")
	pf.String("topic", "spc.violations", "Kafka topic for violation events")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.Bool("no-error-reports", false, "Do not send reports when there are unexpected errors in the service")

	return pf
}

func parseFromFile(path string, s *settings) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read config file %s: %w", path, err)
	}
	if err := yaml.UnmarshalStrict(raw, s); err != nil {
		return fmt.Errorf("could not parse config file %s: %w", path, err)
	}
	return nil
}
