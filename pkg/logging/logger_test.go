// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

func TestNew_FileLogging(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{
		Level:   LevelInfo,
		LogDir:  dir,
		Service: "assistant",
		Quiet:   true,
	})

	logger.Info("turn classified", "decision", "local")
	require.NoError(t, logger.Close())

	name := "assistant_" + time.Now().Format("2006-01-02") + ".log"
	raw, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(raw, &entry))
	assert.Equal(t, "turn classified", entry["msg"])
	assert.Equal(t, "local", entry["decision"])
	assert.Equal(t, "assistant", entry["service"])
}

func TestNew_LevelFilter(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{
		Level:   LevelWarn,
		LogDir:  dir,
		Service: "assistant",
		Quiet:   true,
	})

	logger.Info("filtered out")
	logger.Warn("kept")
	require.NoError(t, logger.Close())

	name := "assistant_" + time.Now().Format("2006-01-02") + ".log"
	raw, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "filtered out")
	assert.Contains(t, string(raw), "kept")
}

func TestLogger_ExporterReceivesEntries(t *testing.T) {
	exporter := NewBufferedExporter()
	logger := New(Config{
		Level:    LevelInfo,
		Service:  "assistant",
		Quiet:    true,
		Exporter: exporter,
	})

	logger.Info("reminder sent", "deadline_count", 2)

	// Export is async.
	require.Eventually(t, func() bool {
		return len(exporter.Entries()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	entry := exporter.Entries()[0]
	assert.Equal(t, "reminder sent", entry.Message)
	assert.Equal(t, LevelInfo, entry.Level)
	assert.Equal(t, 2, entry.Attrs["deadline_count"])
	require.NoError(t, logger.Close())
}

func TestLogger_With(t *testing.T) {
	dir := t.TempDir()
	logger := New(Config{
		Level:   LevelInfo,
		LogDir:  dir,
		Service: "assistant",
		Quiet:   true,
	})

	child := logger.With("session_key", "web:lawyer-1")
	child.Info("turn done")
	require.NoError(t, logger.Close())

	name := "assistant_" + time.Now().Format("2006-01-02") + ".log"
	raw, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "web:lawyer-1")
}

func TestDefault(t *testing.T) {
	logger := Default()
	require.NotNil(t, logger.Slog())
	assert.Equal(t, "paragraf", logger.config.Service)
}
