// SPDX-License-Identifier: MPL-2.0

package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/invowk/dockhand/internal/console"
	"github.com/invowk/dockhand/internal/container"
	"github.com/invowk/dockhand/internal/dockerfile"
	"github.com/invowk/dockhand/pkg/types"
)

var imageIDPattern = regexp.MustCompile(`^Successfully built ([a-z0-9]{12})`)

// BuildOptions controls the image build.
type BuildOptions struct {
	NoCache bool
	Pull    bool
	// Tag names the image; when set, the run command refers to it instead of the id.
	Tag string
}

// Build writes the Dockerfile and requested files into a fresh build context
// and builds it. The result is recorded the first time; later calls return
// it without contacting the engine.
//
// Exit codes: 0 built, 1 engine error (BuildError), 2 no image id (ErrNoImageID).
func (g *Generator) Build(ctx context.Context, opts BuildOptions) BuildResult {
	if g.result != nil {
		return *g.result
	}
	res := g.build(ctx, opts)
	g.result = &res
	return res
}

func (g *Generator) build(ctx context.Context, opts BuildOptions) BuildResult {
	dir, err := os.MkdirTemp(g.tempDir, "dockhand-build-")
	if err != nil {
		return BuildResult{ExitCode: types.ExitFailure, Err: fmt.Errorf("create build context: %w", err)}
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			g.logger.Warn("failed to remove build context", "dir", dir, "err", rmErr)
		}
	}()

	path := filepath.Join(dir, dockerfile.Name)
	//nolint:gosec // the build context is read by the engine
	if err := os.WriteFile(path, []byte(g.dockerfile), 0o644); err != nil {
		return BuildResult{ExitCode: types.ExitFailure, Err: fmt.Errorf("write %s: %w", dockerfile.Name, err)}
	}
	g.printer.Banner(fmt.Sprintf("Dockerfile (%s)", path))
	g.printer.Println(g.dockerfile)

	if _, err := dockerfile.WriteFiles(dir, g.extensions, g.opts, g.logger); err != nil {
		return BuildResult{ExitCode: types.ExitFailure, Err: err}
	}

	kvs := []console.KeyValue{
		{Key: "path", Value: dir},
		{Key: "rm", Value: true},
		{Key: "nocache", Value: opts.NoCache},
		{Key: "pull", Value: opts.Pull},
	}
	if opts.Tag != "" {
		kvs = append(kvs, console.KeyValue{Key: "tag", Value: opts.Tag})
		g.imageName = opts.Tag
	}
	g.printer.Banner("Docker Build")
	g.printer.KeyValues("Docker Build Arguments", kvs)

	var imageID string
	err = g.engine.Build(ctx, container.BuildOptions{
		ContextDir: dir,
		Dockerfile: dockerfile.Name,
		Tag:        opts.Tag,
		NoCache:    opts.NoCache,
		Pull:       opts.Pull,
		Output: func(line string) {
			g.printer.BuildLine(line)
			if m := imageIDPattern.FindStringSubmatch(line); m != nil {
				imageID = m[1]
			}
		},
	})
	if err != nil {
		buildErr := &BuildError{Err: err}
		g.printer.Error(buildErr.Error())
		return BuildResult{ExitCode: types.ExitFailure, Err: buildErr}
	}
	if imageID == "" {
		g.logger.Warn("no more output and success not detected")
		return BuildResult{ExitCode: types.ExitNoImageID, Err: ErrNoImageID}
	}

	g.logger.Debug("image built", "id", imageID)
	return BuildResult{ExitCode: types.ExitSuccess, ImageID: imageID}
}
