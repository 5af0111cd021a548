// File: filex.go
// Title: File Utilities
// Description: Small file checks used by the workspace: existence, kind
//              and text/binary sniffing.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-25 v0.1.0: Initial implementation with comprehensive file utilities
// - 2026-10-19 v0.2.0: Reduced to the checks the workspace needs, content
//                      based text detection

package filex

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// sniffLen is the number of leading bytes inspected by IsBinary
const sniffLen = 8000

// Exists checks if a file or directory exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// IsFile checks if the path exists and is a regular file
func IsFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// IsDir checks if the path exists and is a directory
func IsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsBinary reports whether the file looks binary: a NUL byte or invalid
// UTF-8 in its first bytes. Unreadable files report an error.
func IsBinary(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, err
	}
	return IsBinaryContent(buf[:n], n == sniffLen), nil
}

// IsBinaryContent applies the IsBinary heuristic to data. truncated means
// data may end inside a multi-byte rune.
func IsBinaryContent(data []byte, truncated bool) bool {
	if bytes.IndexByte(data, 0) >= 0 {
		return true
	}
	if truncated {
		// drop a rune cut off at the end
		for i := 0; i < utf8.UTFMax && len(data) > 0; i++ {
			if utf8.Valid(data) {
				return false
			}
			data = data[:len(data)-1]
		}
	}
	return !utf8.Valid(data)
}

// FormatSize formats a byte count in human readable form
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
