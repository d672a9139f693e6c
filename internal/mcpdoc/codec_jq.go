package mcpdoc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vsavkov/mcpsetup/internal/execx"
)

// JQCodec reads documents through the external jq tool.
type JQCodec struct {
	run execx.Runner
}

func NewJQCodec(run execx.Runner) *JQCodec {
	return &JQCodec{run: run}
}

func (c *JQCodec) Names(path string) ([]string, error) {
	res, err := c.run.Run(context.Background(), "jq", "-r", ".mcpServers | keys[]", path)
	if err != nil {
		return nil, fmt.Errorf("jq keys: %w", err)
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("jq keys exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	var names []string
	for _, line := range strings.Split(res.Stdout, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

func (c *JQCodec) Extract(path, name string) (json.RawMessage, error) {
	res, err := c.run.Run(context.Background(), "jq", "-c", "--arg", "name", name, ".mcpServers[$name]", path)
	if err != nil {
		return nil, fmt.Errorf("jq extract %q: %w", name, err)
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("jq extract %q exited %d: %s", name, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	out := strings.TrimSpace(res.Stdout)
	if out == "" || out == "null" {
		return nil, ErrNotFound
	}
	return json.RawMessage(out), nil
}

func (c *JQCodec) Check(data []byte) error {
	res, err := c.run.RunStdin(context.Background(), data, "jq", "-e", ".")
	if err != nil {
		return fmt.Errorf("jq check: %w", err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("jq check exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}
