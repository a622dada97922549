package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDefaults(t *testing.T) {
	s, err := parse(nil, createFlagSet())
	assert.NoError(t, err)
	assert.Equal(t, ":8086", s.Listen)
	assert.Equal(t, "localhost:6379", s.RedisAddr)
	assert.Equal(t, "spc.violations", s.Topic)
	assert.Empty(t, s.Brokers)
	assert.False(t, s.NoErrorReports)
}

func TestParseFlags(t *testing.T) {
	args := []string{
		"--listen", ":9000",
		"--redis", "cache:6379",
		"--brokers", "k1:9092,k2:9092",
		"--topic", "quality.spc",
		"--log-level", "debug",
		"--no-error-reports",
	}
	s, err := parse(args, createFlagSet())
	assert.NoError(t, err)
	assert.Equal(t, ":9000", s.Listen)
	assert.Equal(t, "cache:6379", s.RedisAddr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, s.Brokers)
	assert.Equal(t, "quality.spc", s.Topic)
	assert.Equal(t, "debug", s.LogLevel)
	assert.True(t, s.NoErrorReports)
}

func TestParseFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spcd.yml")
	content := []byte("listen: \":9100\"\nredis: cache:6379\nbrokers:\n  - k1:9092\ntopic: quality.spc\n")
	assert.NoError(t, os.WriteFile(path, content, 0644))

	s, err := parse([]string{"-c", path}, createFlagSet())
	assert.NoError(t, err)
	assert.Equal(t, ":9100", s.Listen)
	assert.Equal(t, []string{"k1:9092"}, s.Brokers)
	assert.Equal(t, "quality.spc", s.Topic)
}

func TestFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spcd.yml")
	assert.NoError(t, os.WriteFile(path, []byte("listen: \":9100\"\n"), 0644))

	s, err := parse([]string{"-c", path, "--listen", ":9200"}, createFlagSet())
	assert.NoError(t, err)
	assert.Equal(t, ":9200", s.Listen)
}

func TestParseBadFile(t *testing.T) {
	_, err := parse([]string{"-c", "/does/not/exist.yml"}, createFlagSet())
	assert.Error(t, err)
}

func TestParseUnknownYAMLKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spcd.yml")
	assert.NoError(t, os.WriteFile(path, []byte("listne: \":9100\"\n"), 0644))

	_, err := parse([]string{"-c", path}, createFlagSet())
	assert.Error(t, err)
}
