// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"

	"github.com/pdiddy/citegraph/pkg/types"
)

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args []string, stdout io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) Run(ctx context.Context, name string, args []string, stdout io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// CommandSource runs an external harvester process. The process is invoked
// as
//
//	<bin> <args...> --ping
//	<bin> <args...> --from <year> --to <year>
//
// and must exit 0; the second form writes papers to stdout as a JSON array
// or JSON Lines. Open range bounds are omitted from the arguments.
type CommandSource struct {
	Bin  string
	Args []string
	exec executor
}

// NewCommandSource returns a source that runs bin with the leading args.
func NewCommandSource(bin string, args ...string) *CommandSource {
	return &CommandSource{Bin: bin, Args: args, exec: osExecutor{}}
}

func (s *CommandSource) args(extra ...string) []string {
	out := make([]string, 0, len(s.Args)+len(extra))
	out = append(out, s.Args...)
	return append(out, extra...)
}

// Ping checks the binary is on PATH and answers the ping handshake.
func (s *CommandSource) Ping(ctx context.Context) error {
	if _, err := s.exec.LookPath(s.Bin); err != nil {
		return fmt.Errorf("%w: %s not found: %v", ErrUnavailable, s.Bin, err)
	}
	if err := s.exec.Run(ctx, s.Bin, s.args("--ping"), io.Discard); err != nil {
		return fmt.Errorf("%w: %s --ping: %v", ErrUnavailable, s.Bin, err)
	}
	return nil
}

// FetchPapers runs the harvester for r and decodes its output.
func (s *CommandSource) FetchPapers(ctx context.Context, r Range) ([]types.Paper, error) {
	var extra []string
	if r.FromYear > 0 {
		extra = append(extra, "--from", strconv.Itoa(r.FromYear))
	}
	if r.ToYear > 0 {
		extra = append(extra, "--to", strconv.Itoa(r.ToYear))
	}

	var out bytes.Buffer
	if err := s.exec.Run(ctx, s.Bin, s.args(extra...), &out); err != nil {
		return nil, fmt.Errorf("running harvester %s: %w", s.Bin, err)
	}
	papers, err := Decode(&out)
	if err != nil {
		return nil, fmt.Errorf("harvester %s output: %w", s.Bin, err)
	}
	return inRange(papers, r), nil
}
