package profile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultCommandTimeout bounds a single profile switch
const DefaultCommandTimeout = 30 * time.Second

// Command selects a profile by running an external command with the profile
// name appended, e.g. "tuned-adm profile powersave".
// This implements the ports.ProfileApplier interface
type Command struct {
	argv    []string
	timeout time.Duration
}

// NewCommand creates an applier for argv. A non-positive timeout selects
// DefaultCommandTimeout.
func NewCommand(argv []string, timeout time.Duration) (*Command, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, errors.New("empty profile command")
	}
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	return &Command{argv: argv, timeout: timeout}, nil
}

// ParseCommand splits a command line on whitespace
func ParseCommand(line string, timeout time.Duration) (*Command, error) {
	return NewCommand(strings.Fields(line), timeout)
}

// Apply runs the command. A non-zero exit is returned with the command output.
func (c *Command) Apply(ctx context.Context, profile string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := append(append([]string(nil), c.argv[1:]...), profile)
	cmd := exec.CommandContext(ctx, c.argv[0], args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	// children that inherit the output pipe must not outlive the timeout
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(out.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", c.argv[0], err, msg)
		}
		return fmt.Errorf("%s: %w", c.argv[0], err)
	}
	return nil
}
