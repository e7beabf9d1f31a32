package main

import (
	"os"
	"strconv"
)

const envPrefix = "TEXTCLF_"

// env reads TEXTCLF_<name> through parse, falling back to def when the
// variable is unset or does not parse.
func env[T any](name string, def T, parse func(string) (T, error)) T {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok || v == "" {
		return def
	}
	parsed, err := parse(v)
	if err != nil {
		return def
	}
	return parsed
}

func envInt(name string, def int) int { return env(name, def, strconv.Atoi) }

func envInt64(name string, def int64) int64 {
	return env(name, def, func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
}

func envFloat(name string, def float64) float64 {
	return env(name, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

func envString(name, def string) string {
	return env(name, def, func(s string) (string, error) { return s, nil })
}
