// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container detects a local container runtime and runs
// conversion images on it. The markitdown backend pipes documents
// through a container this way.
package container

import (
	"fmt"
	"io"
	"os/exec"
)

const (
	binDocker = "docker"
	binPodman = "podman"
)

// Runtime is a usable container engine: docker or podman.
type Runtime interface {
	// Name returns the runtime binary name.
	Name() string

	// Available reports whether the binary exists on PATH and the
	// daemon answers an info command.
	Available() bool

	// HasImage returns nil when the named image exists locally.
	HasImage(image string) error

	// Pipe runs the image once, streaming stdin through it to stdout.
	Pipe(image string, stdin io.Reader, stdout io.Writer) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (o *osExecutor) RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	return cmd.Run()
}

// engine implements Runtime for one binary. Docker and podman differ
// only in name and the image-existence subcommand.
type engine struct {
	bin           string
	imageCheckCmd []string
	exec          executor
}

func (e *engine) Name() string { return e.bin }

func (e *engine) Available() bool {
	if _, err := e.exec.LookPath(e.bin); err != nil {
		return false
	}
	return e.exec.RunSilent(e.bin, "info") == nil
}

func (e *engine) HasImage(image string) error {
	args := append(append([]string{}, e.imageCheckCmd...), image)
	if err := e.exec.RunSilent(e.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, e.bin, err)
	}
	return nil
}

func (e *engine) Pipe(image string, stdin io.Reader, stdout io.Writer) error {
	args := []string{"run", "--rm", "-i", image}
	if err := e.exec.RunPiped(e.bin, args, stdin, stdout); err != nil {
		return fmt.Errorf("running %s container %s: %w", e.bin, image, err)
	}
	return nil
}

func newDockerEngine(exec executor) *engine {
	return &engine{
		bin:           binDocker,
		imageCheckCmd: []string{"image", "inspect"},
		exec:          exec,
	}
}

func newPodmanEngine(exec executor) *engine {
	return &engine{
		bin:           binPodman,
		imageCheckCmd: []string{"image", "exists"},
		exec:          exec,
	}
}

var defaultExec = &osExecutor{}

// Detect tries docker first, then podman. An error means no usable
// container runtime, which makes the container backend unavailable.
func Detect() (Runtime, error) {
	return detect(defaultExec)
}

func detect(exec executor) (Runtime, error) {
	docker := newDockerEngine(exec)
	if docker.Available() {
		return docker, nil
	}

	podman := newPodmanEngine(exec)
	if podman.Available() {
		return podman, nil
	}

	return nil, fmt.Errorf(
		"no container runtime available: neither %s nor %s found or operational",
		binDocker, binPodman,
	)
}
