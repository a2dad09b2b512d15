package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/notwitcheer/env-dev-ai-agent/capability"
)

// pathValidator rejects empty and parent-escaping paths before the capability
// body runs.
func pathValidator(value any) error {
	path, _ := value.(string)
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path must not be empty")
	}
	if strings.Contains(path, "..") {
		return fmt.Errorf("path must not contain '..'")
	}
	return nil
}

// ReadFile returns the "read_file" capability rooted at dir.
func ReadFile(dir string) capability.Capability {
	return capability.NewFunc(
		"read_file",
		"Read a UTF-8 text file below the workspace directory.",
		[]capability.Parameter{
			{Name: "path", Kind: capability.KindString, Description: "Relative file path", Required: true, Validator: pathValidator},
		},
		func(_ context.Context, params map[string]any) (any, error) {
			rel := params["path"].(string)
			data, err := os.ReadFile(filepath.Join(dir, rel))
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", rel, err)
			}
			return map[string]any{"path": rel, "content": string(data)}, nil
		},
	)
}

// WriteFile returns the "write_file" capability rooted at dir.
func WriteFile(dir string) capability.Capability {
	return capability.NewFunc(
		"write_file",
		"Write a UTF-8 text file below the workspace directory.",
		[]capability.Parameter{
			{Name: "path", Kind: capability.KindString, Description: "Relative file path", Required: true, Validator: pathValidator},
			{Name: "content", Kind: capability.KindString, Description: "File content", Required: true},
		},
		func(_ context.Context, params map[string]any) (any, error) {
			rel := params["path"].(string)
			content := params["content"].(string)
			full := filepath.Join(dir, rel)
			if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
				return nil, fmt.Errorf("write %s: %w", rel, err)
			}
			if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
				return nil, fmt.Errorf("write %s: %w", rel, err)
			}
			return map[string]any{"path": rel, "bytes": len(content)}, nil
		},
	)
}
