package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"go.uber.org/zap"

	"github.com/gradeflow/judge-engine/internal/model"
)

const containerWorkdir = "/workspace"

// Execute launches one isolated container against an already-staged
// workspace and returns the captured result. The workspace itself is left
// untouched; callers decide when to clear or release it.
func (r *Runner) Execute(ctx context.Context, workspacePath string, lang model.Language, scriptFile string, args, stdinLines []string, timeout time.Duration) (*RunResult, error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire execution slot: %w", err)
	}
	defer r.sem.Release(1)

	cli, err := r.runtime.resolve(ctx)
	if err != nil {
		return &RunResult{Error: err.Error()}, nil
	}

	if timeout <= 0 {
		timeout = time.Duration(r.config.PerTestTimeoutMS) * time.Millisecond
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entrypoint := fmt.Sprintf(`%s ./%s "$@"`, lang.Interpreter, scriptFile)
	cmd := append([]string{"sh", "-c", entrypoint, "sh"}, args...)

	hasStdin := len(stdinLines) > 0
	pidsLimit := int64(r.config.ContainerPidsCap)
	memoryBytes := int64(r.config.ContainerMemoryCapMiB) * 1024 * 1024

	created, err := cli.ContainerCreate(runCtx, &container.Config{
		Image:        lang.ExecImage,
		WorkingDir:   containerWorkdir,
		Cmd:          cmd,
		OpenStdin:    hasStdin,
		StdinOnce:    hasStdin,
		AttachStdin:  hasStdin,
		AttachStdout: true,
		AttachStderr: true,
	}, &container.HostConfig{
		NetworkMode: "none",
		CapDrop:     []string{"ALL"},
		Mounts: []mount.Mount{
			{Type: mount.TypeBind, Source: workspacePath, Target: containerWorkdir},
		},
		Resources: container.Resources{
			Memory:     memoryBytes,
			MemorySwap: memoryBytes,
			PidsLimit:  &pidsLimit,
		},
	}, &network.NetworkingConfig{}, nil, "")
	if err != nil {
		return &RunResult{Error: fmt.Sprintf("create container: %v", err)}, nil
	}
	defer func() {
		_ = cli.ContainerRemove(context.Background(), created.ID, container.RemoveOptions{Force: true})
	}()

	if err := cli.ContainerStart(runCtx, created.ID, container.StartOptions{}); err != nil {
		return &RunResult{Error: fmt.Sprintf("start container: %v", err)}, nil
	}

	if hasStdin {
		if err := r.attachStdin(runCtx, cli, created.ID, strings.Join(stdinLines, "\n")); err != nil {
			r.logger.Warn(ctx, "stdin attach failed, continuing without it", zap.Error(err))
		}
	}

	waitCh, errCh := cli.ContainerWait(runCtx, created.ID, container.WaitConditionNotRunning)

	select {
	case <-runCtx.Done():
		_ = cli.ContainerKill(context.Background(), created.ID, "SIGKILL")
		stdout, stderr, _ := r.readLogs(context.Background(), cli, created.ID)
		result := &RunResult{Stdout: normalizeLineEndings(stdout), Stderr: normalizeLineEndings(stderr)}
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			result.TimedOut = true
			code := -1
			result.ExitCode = &code
		}
		return result, nil

	case waitErr := <-errCh:
		return &RunResult{Error: fmt.Sprintf("wait for container: %v", waitErr)}, nil

	case resp := <-waitCh:
		stdout, stderr, err := r.readLogs(context.Background(), cli, created.ID)
		if err != nil {
			return &RunResult{Error: fmt.Sprintf("read container logs: %v", err)}, nil
		}

		code := int(resp.StatusCode)
		return &RunResult{
			Stdout:   normalizeLineEndings(stdout),
			Stderr:   normalizeLineEndings(stderr),
			ExitCode: &code,
		}, nil
	}
}

// attachStdin writes stdin to an already-started container with
// OpenStdin/StdinOnce set. A failure here is non-fatal to the caller: the
// script may still complete successfully without its stdin.
func (r *Runner) attachStdin(ctx context.Context, cli *client.Client, containerID, stdin string) error {
	att, err := cli.ContainerAttach(ctx, containerID, container.AttachOptions{Stdin: true, Stream: true})
	if err != nil {
		return err
	}
	defer att.Close()

	if _, err := att.Conn.Write([]byte(stdin)); err != nil {
		return err
	}
	if cw, ok := att.Conn.(interface{ CloseWrite() error }); ok {
		return cw.CloseWrite()
	}
	return nil
}

// readLogs pulls the container's demuxed stdout/stderr streams after it
// has stopped (or been killed).
func (r *Runner) readLogs(ctx context.Context, cli *client.Client, containerID string) (string, string, error) {
	rc, err := cli.ContainerLogs(ctx, containerID, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return "", "", err
	}
	defer rc.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, rc); err != nil {
		return stdout.String(), stderr.String(), err
	}

	return stdout.String(), stderr.String(), nil
}
