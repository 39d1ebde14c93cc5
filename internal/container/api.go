// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/moby/go-archive"
)

// APIEngine implements Engine against the Docker Engine API.
type APIEngine struct {
	client *client.Client
	binary string
}

// NewAPIEngine creates an engine configured from the environment (DOCKER_HOST,
// DOCKER_CERT_PATH, ...). Extra client options are applied last.
func NewAPIEngine(opts ...client.Opt) (*APIEngine, error) {
	opts = append([]client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}, opts...)
	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &APIEngine{client: cli, binary: DefaultBinary}, nil
}

// Name returns the engine name.
func (e *APIEngine) Name() string { return "docker" }

// Binary returns the docker binary used for the run command.
func (e *APIEngine) Binary() string { return e.binary }

// Close releases the underlying HTTP transport.
func (e *APIEngine) Close() error { return e.client.Close() }

// Ping checks the daemon answers.
func (e *APIEngine) Ping(ctx context.Context) error {
	if _, err := e.client.Ping(ctx); err != nil {
		return &EngineUnavailableError{Engine: e.Name(), Err: err}
	}
	return nil
}

// Networks lists the daemon's network names, sorted.
func (e *APIEngine) Networks(ctx context.Context) ([]string, error) {
	nets, err := e.client.NetworkList(ctx, network.ListOptions{})
	if err != nil {
		return nil, &EngineUnavailableError{Engine: e.Name(), Err: err}
	}
	names := make([]string, 0, len(nets))
	for _, n := range nets {
		names = append(names, n.Name)
	}
	slices.Sort(names)
	return names, nil
}

// Build sends ContextDir as a tar stream and builds it with the classic
// builder, passing every stream line to opts.Output.
func (e *APIEngine) Build(ctx context.Context, opts BuildOptions) error {
	tar, err := archive.TarWithOptions(opts.ContextDir, &archive.TarOptions{})
	if err != nil {
		return buildContainerError(e.Name(), opts, fmt.Errorf("archive build context: %w", err))
	}
	defer tar.Close()

	var tags []string
	if opts.Tag != "" {
		tags = []string{opts.Tag}
	}
	resp, err := e.client.ImageBuild(ctx, tar, build.ImageBuildOptions{
		Tags:       tags,
		Dockerfile: opts.Dockerfile,
		NoCache:    opts.NoCache,
		PullParent: opts.Pull,
		Remove:     true,
		Version:    build.BuilderV1,
	})
	if err != nil {
		return buildContainerError(e.Name(), opts, err)
	}
	defer resp.Body.Close()

	if err := decodeBuildStream(resp.Body, opts.Output); err != nil {
		return buildContainerError(e.Name(), opts, err)
	}
	return nil
}

// decodeBuildStream reads the daemon's JSON message stream, forwarding
// "stream" payloads and returning the first reported error.
func decodeBuildStream(r io.Reader, out func(string)) error {
	dec := json.NewDecoder(r)
	for {
		var msg jsonmessage.JSONMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decode build output: %w", err)
		}
		if msg.Error != nil {
			return msg.Error
		}
		splitLines(msg.Stream, out)
	}
}
