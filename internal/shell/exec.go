//go:build linux

package shell

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"syscall"
)

// ExecLauncher runs the console with os/exec. The process is detached from
// our process group and is not tied to ctx, since it outlives the caller.
type ExecLauncher struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (l ExecLauncher) Launch(_ context.Context, argv []string) (Process, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty shell command")
	}
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return nil, fmt.Errorf("shell command %q not found: %w", argv[0], err)
	}

	cmd := exec.Command(path, argv[1:]...)
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Printf("Shell console exited: %v", err)
		}
	}()
	return cmd.Process, nil
}
