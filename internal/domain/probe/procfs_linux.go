//go:build linux

package probe

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/prometheus/procfs"
)

// procfsTable reads the process table straight from /proc.
type procfsTable struct {
	fs procfs.FS
}

func newProcfsTable(mountPoint string) (*procfsTable, error) {
	pfs, err := procfs.NewFS(mountPoint)
	if err != nil {
		return nil, err
	}
	return &procfsTable{fs: pfs}, nil
}

func (t *procfsTable) list(ctx context.Context) ([]ProcessInfo, error) {
	procs, err := t.fs.AllProcs()
	if err != nil {
		return nil, err
	}

	infos := make([]ProcessInfo, 0, len(procs))
	for _, p := range procs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// processes may exit between the directory scan and these reads
		args, err := p.CmdLine()
		if err != nil || len(args) == 0 {
			continue
		}
		stat, err := p.Stat()
		if err != nil {
			continue
		}
		infos = append(infos, ProcessInfo{PID: p.PID, PPID: stat.PPID, Args: args})
	}
	return infos, nil
}

func (t *procfsTable) cwd(ctx context.Context, pid int) (string, error) {
	p, err := t.fs.Proc(pid)
	if err != nil {
		return "", fmt.Errorf("%w: pid %d", ErrNotFound, pid)
	}
	dir, err := p.Cwd()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: pid %d", ErrNotFound, pid)
		}
		return "", fmt.Errorf("failed to read cwd of pid %d: %w", pid, err)
	}
	return dir, nil
}
