// SPDX-License-Identifier: MPL-2.0

// Package container abstracts the container engine used to build images and
// answer host queries (reachability, network names).
//
// Two implementations are provided. APIEngine talks to the Docker Engine API
// through the docker SDK and is the default. CLIEngine shells out to the
// docker binary and forces the classic builder (DOCKER_BUILDKIT=0) because
// only the classic builder reports "Successfully built <id>".
//
// Running the container is not part of the Engine: the run command is a
// plain "docker run" command line assembled from extension fragments, and
// Binary names the program that command starts with.
package container
