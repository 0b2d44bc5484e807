package sandbox

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/gradeflow/judge-engine/internal/fixtures"
	"github.com/gradeflow/judge-engine/internal/model"
)

// normalizeLineEndings collapses CRLF to LF; used both on input (script
// text, stdin lines) and output (captured streams).
func normalizeLineEndings(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// AllocateWorkspace creates a fresh, permissive-mode directory under the
// configured temp root. Isolation comes from the container, not the host
// directory, hence mode 0777.
func (r *Runner) AllocateWorkspace(ctx context.Context) (string, error) {
	if err := os.MkdirAll(r.config.TempRootDir, 0o777); err != nil {
		return "", &ErrWorkspaceSetup{Path: r.config.TempRootDir, Err: err}
	}

	dir := filepath.Join(r.config.TempRootDir, "ws-"+uuid.NewString())
	if err := os.Mkdir(dir, 0o777); err != nil {
		return "", &ErrWorkspaceSetup{Path: dir, Err: err}
	}

	if err := os.Chmod(dir, 0o777); err != nil {
		return "", &ErrWorkspaceSetup{Path: dir, Err: err}
	}

	return dir, nil
}

// WriteScript writes the submission into "script.<extension>" with LF
// line endings and mode 0777, and returns the filename.
func (r *Runner) WriteScript(workspacePath, script, extension string) (string, error) {
	filename := "script." + extension
	dest := filepath.Join(workspacePath, filename)

	if _, err := os.Stat(dest); err == nil {
		if rmErr := os.Remove(dest); rmErr != nil {
			return "", &ErrWorkspaceSetup{Path: dest, Err: rmErr}
		}
	}

	if err := os.WriteFile(dest, []byte(normalizeLineEndings(script)), 0o777); err != nil {
		return "", &ErrWorkspaceSetup{Path: dest, Err: err}
	}
	if err := os.Chmod(dest, 0o777); err != nil {
		return "", &ErrWorkspaceSetup{Path: dest, Err: err}
	}

	return filename, nil
}

// StageFixture resolves ref against the Fixture Store and copies it into
// workspacePath, returning the top-level entry name added (used by the
// grading package to seed its protected set). A missing fixture is the
// caller's concern to log and skip; it is returned as an error here.
func (r *Runner) StageFixture(ctx context.Context, workspacePath string, ref model.FixtureRef) (string, error) {
	f, err := r.fixtures.Get(ctx, ref.Path)
	if err != nil {
		return "", fmt.Errorf("resolve fixture %q: %w", ref.Path, err)
	}

	permissions := ref.Permissions
	if permissions == "" {
		permissions = f.Permissions
	}
	mode, err := fixtures.PermissionsToMode(permissions)
	if err != nil {
		return "", fmt.Errorf("fixture %q permissions: %w", ref.Path, err)
	}

	name := path.Base(ref.Path)

	switch f.Kind {
	case model.FixtureKindFile:
		dest := filepath.Join(workspacePath, name)
		if err := os.WriteFile(dest, f.Content, os.FileMode(mode)); err != nil {
			return "", fmt.Errorf("stage fixture %q: %w", ref.Path, err)
		}
		if err := os.Chmod(dest, os.FileMode(mode)); err != nil {
			return "", fmt.Errorf("chmod fixture %q: %w", ref.Path, err)
		}
		return name, nil

	case model.FixtureKindFolder:
		destRoot := filepath.Join(workspacePath, name)
		if err := os.MkdirAll(destRoot, os.FileMode(mode)); err != nil {
			return "", fmt.Errorf("stage fixture folder %q: %w", ref.Path, err)
		}

		entries, err := r.fixtures.ListFolder(ctx, ref.Path)
		if err != nil {
			return "", fmt.Errorf("list fixture folder %q: %w", ref.Path, err)
		}

		for _, entry := range entries {
			if entry.Kind != model.FixtureKindFile {
				continue
			}

			rel := strings.TrimPrefix(entry.Path, ref.Path+"/")
			nested, err := r.fixtures.Get(ctx, entry.Path)
			if err != nil {
				r.logger.Warn(ctx, "skipping missing nested fixture during folder copy")
				continue
			}

			nestedMode, err := fixtures.PermissionsToMode(nested.Permissions)
			if err != nil {
				continue
			}

			destPath := filepath.Join(destRoot, filepath.FromSlash(rel))
			if err := os.MkdirAll(filepath.Dir(destPath), 0o777); err != nil {
				return "", fmt.Errorf("stage nested fixture %q: %w", entry.Path, err)
			}
			if err := os.WriteFile(destPath, nested.Content, os.FileMode(nestedMode)); err != nil {
				return "", fmt.Errorf("stage nested fixture %q: %w", entry.Path, err)
			}
		}

		return name, nil

	default:
		return "", fmt.Errorf("fixture %q has unknown kind %q", ref.Path, f.Kind)
	}
}

// Release removes a workspace and everything in it.
func (r *Runner) Release(workspacePath string) error {
	return os.RemoveAll(workspacePath)
}

// ClearUnprotected deletes every entry directly under workspacePath whose
// name is not in protected, used by the grading package between test
// cases so output-file residue from the previous case can't leak into the
// next one.
func ClearUnprotected(workspacePath string, protected map[string]bool) error {
	entries, err := os.ReadDir(workspacePath)
	if err != nil {
		return fmt.Errorf("read workspace %q: %w", workspacePath, err)
	}

	for _, entry := range entries {
		if protected[entry.Name()] {
			continue
		}

		if err := os.RemoveAll(filepath.Join(workspacePath, entry.Name())); err != nil {
			return fmt.Errorf("clear workspace entry %q: %w", entry.Name(), err)
		}
	}

	return nil
}
