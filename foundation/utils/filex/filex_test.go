package filex

import (
	"os"
	"path/filepath"
	"testing"
)

func TestKinds(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	os.WriteFile(file, []byte("hello"), 0o644)

	tests := []struct {
		name           string
		path           string
		exists, isFile bool
		isDir          bool
	}{
		{"file", file, true, true, false},
		{"dir", dir, true, false, true},
		{"missing", filepath.Join(dir, "none"), false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Exists(tt.path); got != tt.exists {
				t.Errorf("Exists() = %v", got)
			}
			if got := IsFile(tt.path); got != tt.isFile {
				t.Errorf("IsFile() = %v", got)
			}
			if got := IsDir(tt.path); got != tt.isDir {
				t.Errorf("IsDir() = %v", got)
			}
		})
	}
}

func TestIsBinaryContent(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		truncated bool
		want      bool
	}{
		{"ascii", []byte("fn main() {}\n"), false, false},
		{"utf8", []byte("grüße"), false, false},
		{"empty", nil, false, false},
		{"nul byte", []byte("ab\x00cd"), false, true},
		{"invalid utf8", []byte{0xff, 0xfe, 'a'}, false, true},
		{"cut rune when truncated", []byte("abc\xc3"), true, false},
		{"cut rune when complete", []byte("abc\xc3"), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBinaryContent(tt.data, tt.truncated); got != tt.want {
				t.Errorf("IsBinaryContent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsBinary(t *testing.T) {
	dir := t.TempDir()
	text := filepath.Join(dir, "main.go")
	bin := filepath.Join(dir, "logo.png")
	os.WriteFile(text, []byte("package main\n"), 0o644)
	os.WriteFile(bin, []byte{0x89, 'P', 'N', 'G', 0x00, 0x01}, 0o644)

	if got, err := IsBinary(text); err != nil || got {
		t.Errorf("IsBinary(text) = %v, %v", got, err)
	}
	if got, err := IsBinary(bin); err != nil || !got {
		t.Errorf("IsBinary(bin) = %v, %v", got, err)
	}
	if _, err := IsBinary(filepath.Join(dir, "none")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.in); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
