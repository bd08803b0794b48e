// Package materialize drives the external catalog tool that (re)builds the warehouse file
// and the schema export.
package materialize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lostma-project/lostma-audit/pkg/apperrors"
	"github.com/lostma-project/lostma-audit/pkg/logging"
)

const maxStderrLength = 2000

// Config identifies the catalog database and the credentials the tool logs in with.
type Config struct {
	CLIPath  string
	Database string
	Login    string
	Password string
	// Timeout bounds one tool invocation. Zero means no limit beyond the caller's context.
	Timeout time.Duration
}

// ToolError reports a tool invocation that failed or exited non-zero.
type ToolError struct {
	Command  []string // sanitized
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s: %s exited with code %d", apperrors.ErrExternalTool, strings.Join(e.Command, " "), e.ExitCode)
	if e.Err != nil && e.ExitCode < 0 {
		msg += ": " + logging.SanitizeError(e.Err)
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ToolError) Unwrap() error {
	return apperrors.ErrExternalTool
}

// Runner invokes the tool and waits for it. It never retries.
type Runner struct {
	cfg    Config
	logger *zap.Logger
}

// NewRunner creates a runner for the given tool configuration.
func NewRunner(cfg Config, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CLIPath == "" {
		cfg.CLIPath = "heurist"
	}
	return &Runner{cfg: cfg, logger: logger.Named("materialize")}
}

// DownloadWarehouse writes a fresh warehouse file to dest. The tool writes next to dest
// and the result is renamed over it, so a failed download leaves the old file in place.
// recordTypes optionally restricts the download to some record types.
func (r *Runner) DownloadWarehouse(ctx context.Context, dest string, recordTypes []string) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create warehouse dir: %w", err)
	}
	tmp := filepath.Join(dir, "."+filepath.Base(dest)+".download")
	defer os.Remove(tmp)

	args := append(r.baseArgs(), "download", "-f", tmp)
	for _, t := range recordTypes {
		args = append(args, "-t", t)
	}
	if err := r.run(ctx, "", args); err != nil {
		return err
	}
	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("replace warehouse file: %w", err)
	}
	return nil
}

// DownloadSchema writes the per-entity CSV schema export. The tool writes into workDir.
func (r *Runner) DownloadSchema(ctx context.Context, workDir string) error {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("create schema work dir: %w", err)
	}
	return r.run(ctx, workDir, append(r.baseArgs(), "schema", "-t", "csv"))
}

func (r *Runner) baseArgs() []string {
	return []string{"-d", r.cfg.Database, "-l", r.cfg.Login, "-p", r.cfg.Password}
}

func (r *Runner) run(ctx context.Context, dir string, args []string) error {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	command := logging.SanitizeCommandArgs(append([]string{r.cfg.CLIPath}, args...))
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.cfg.CLIPath, args...)
	cmd.Dir = dir
	cmd.Stderr = &stderr

	start := time.Now()
	r.logger.Info("Running catalog tool", zap.Strings("command", command))

	err := cmd.Run()
	if err == nil {
		r.logger.Info("Catalog tool finished", zap.Strings("command", command), zap.Duration("elapsed", time.Since(start)))
		return nil
	}

	toolErr := &ToolError{
		Command:  command,
		ExitCode: -1,
		Stderr:   strings.TrimSpace(logging.TruncateString(logging.SanitizeOutput(stderr.String(), r.cfg.Password), maxStderrLength)),
		Err:      err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		toolErr.ExitCode = exitErr.ExitCode()
	}
	r.logger.Error("Catalog tool failed",
		zap.Strings("command", command),
		zap.Int("exit_code", toolErr.ExitCode),
		zap.String("error", logging.SanitizeError(err)))
	return toolErr
}
