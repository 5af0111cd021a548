// File: logger_test.go
// Title: Logger Tests
// Description: Tests for level filtering, clone isolation, formatters and
//              severity based LogError levels.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation
// - 2026-10-19 v0.2.0: Coder aware LogError

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	mdwerror "github.com/msto63/codasai/foundation/core/error"
)

func newBufferLogger(level Level, format Format) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewWithConfig(Config{Level: level, Format: format, Output: buf, Name: "test"}), buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn, FormatJSON)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")
	logger.Audit("always")

	lines := decodeLines(t, buf)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %s", len(lines), buf.String())
	}
	if lines[0]["message"] != "shown" || lines[1]["level"] != "audit" {
		t.Errorf("unexpected entries: %v", lines)
	}
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	parent, buf := newBufferLogger(LevelInfo, FormatJSON)
	child := parent.WithField("component", "dispatcher")

	parent.Info("from parent")
	child.Info("from child", Fields{"action": "open_file"})

	lines := decodeLines(t, buf)
	if _, ok := lines[0]["component"]; ok {
		t.Error("parent entry carries child field")
	}
	if lines[1]["component"] != "dispatcher" || lines[1]["action"] != "open_file" {
		t.Errorf("child entry = %v", lines[1])
	}
	if lines[1]["logger"] != "test" {
		t.Errorf("logger name = %v", lines[1]["logger"])
	}
}

func TestLogErrorLevels(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantLevel string
		wantCode  interface{}
	}{
		{"low severity code", mdwerror.New("bad link").WithCode(mdwerror.CodeStateSyntax), "info", "STATE_SYNTAX"},
		{"medium severity code", mdwerror.New("dup").WithCode(mdwerror.CodeDuplicateEntry), "warn", "DUPLICATE_ENTRY"},
		{"high severity code", mdwerror.New("db").WithCode(mdwerror.CodeDatabaseError), "error", "DATABASE_ERROR"},
		{"wrapped code", fmt.Errorf("x: %w", mdwerror.New("db").WithCode(mdwerror.CodeDatabaseError)), "error", "DATABASE_ERROR"},
		{"plain error", errors.New("plain"), "error", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferLogger(LevelTrace, FormatJSON)
			logger.LogError(tt.err)

			lines := decodeLines(t, buf)
			if len(lines) != 1 {
				t.Fatalf("got %d lines", len(lines))
			}
			if lines[0]["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %v", lines[0]["level"], tt.wantLevel)
			}
			if lines[0]["error_code"] != tt.wantCode {
				t.Errorf("error_code = %v, want %v", lines[0]["error_code"], tt.wantCode)
			}
		})
	}

	logger, buf := newBufferLogger(LevelTrace, FormatJSON)
	logger.LogError(nil)
	if buf.Len() != 0 {
		t.Error("LogError(nil) wrote output")
	}
}

func TestTextFormatterSortsFields(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatText)
	logger.WithRequestID("r1").Info("dispatched", Fields{"b": 2, "a": 1})

	line := buf.String()
	for _, want := range []string{"[INF]", "{test}", "(req=r1)", "dispatched", "[a=1 b=2]"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{" WARNING ", LevelWarn, false},
		{"aud", LevelAudit, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel = %v, want %v", got, tt.want)
			}
		})
	}

	if f, err := ParseFormat("console"); err != nil || f != FormatText {
		t.Errorf("ParseFormat(console) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestConcurrentClonesShareOutput(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			child := logger.WithField("session", i)
			for j := 0; j < 20; j++ {
				child.Info("tick")
			}
		}(i)
	}
	wg.Wait()

	if got := len(decodeLines(t, buf)); got != 160 {
		t.Errorf("got %d lines, want 160", got)
	}
}

func TestDefaultLogger(t *testing.T) {
	original := GetDefault()
	defer SetDefault(original)

	logger, buf := newBufferLogger(LevelInfo, FormatText)
	SetDefault(logger)
	Info("via default")

	if !strings.Contains(buf.String(), "via default") {
		t.Errorf("default logger not used: %q", buf.String())
	}
}
