//go:build !windows

package picker

import "os/exec"

func applyHiddenWindow(*exec.Cmd) {}
