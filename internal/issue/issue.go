// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"

	"github.com/charmbracelet/glamour"
)

const (
	DockerUnavailableId Id = iota + 1
	DependencyCycleId
	ImageBuildFailedId
	ImageIdNotFoundId
	PreconditionFailedId
	ConfigLoadFailedId
	PermissionDeniedId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink
		extLinks []HttpLink // external links that might be useful for the user
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as terminal Markdown with the given glamour style
// ("" or "auto" detects the terminal background).
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	if stylePath == "" {
		stylePath = "auto"
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	dockerUnavailableIssue = &Issue{
		id: DockerUnavailableId,
		mdMsg: `
# Cannot reach the docker daemon!

dockhand asks the daemon for its networks before it can even list its own
flags, so nothing works until the daemon answers.

## Things you can try:
- Check the daemon is running:
~~~
$ docker version
~~~
- Make sure your user may talk to it (usually membership in the docker group):
~~~
$ sudo usermod -aG docker $USER
~~~
- If the daemon lives elsewhere, point ` + "`DOCKER_HOST`" + ` at it.
- Switch backends if only the CLI works in your setup:
~~~
$ dockhand --engine cli ...
~~~`,
		extLinks: []HttpLink{"https://docs.docker.com/engine/install/linux-postinstall/"},
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Extensions depend on each other in a cycle!

The active extensions listed above each want to come after another one in the
same set, so no order satisfies all of them.

## Things you can try:
- Leave one of them out:
~~~
$ dockhand --exclude-extension <name> ...
~~~
- Fix the desired predecessors of the extensions involved.`,
	}

	imageBuildFailedIssue = &Issue{
		id: ImageBuildFailedId,
		mdMsg: `
# The image build failed!

The daemon rejected the generated Dockerfile or one of its steps failed.

## Things you can try:
- Read the build output above for the failing step.
- Preview the generated Dockerfile and run command without building side effects:
~~~
$ dockhand --mode dry-run ...
~~~
- Rebuild from scratch, refreshing the base image:
~~~
$ dockhand --nocache --pull ...
~~~`,
	}

	imageIdNotFoundIssue = &Issue{
		id: ImageIdNotFoundId,
		mdMsg: `
# The build finished but no image id was reported!

dockhand needs the classic builder's ` + "`Successfully built <id>`" + ` line to
know which image to run. BuildKit does not print it.

## Things you can try:
- Make sure the classic builder is used (` + "`DOCKER_BUILDKIT=0`" + `).
- Tag the image so it can be run by name:
~~~
$ dockhand --tag myimage ...
~~~`,
	}

	preconditionFailedIssue = &Issue{
		id: PreconditionFailedId,
		mdMsg: `
# An extension could not prepare the host!

Before the container starts, extensions may set up local state (for example the
x11 extension writes an Xauthority file).

## Things you can try:
- Check the message above for the extension and the command that failed.
- Disable that extension for this run:
~~~
$ dockhand --exclude-extension <name> ...
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load the configuration file!

## Things you can try:
- Check the file parses (CUE, YAML and TOML are accepted, by extension).
- Only ` + "`engine`" + `, ` + "`ui`" + ` and ` + "`defaults`" + ` are recognized top-level keys.
- Start from a minimal file:
~~~cue
engine: backend: "api"
defaults: {
    home: true
    mode: "interactive"
}
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

## Common causes:
- Your user is not allowed to access the docker socket
- The build context directory cannot be created in $TMPDIR

## Things you can try:
- Join the docker group and log in again:
~~~
$ sudo usermod -aG docker $USER
~~~
- Point $TMPDIR at a directory you own`,
	}

	issues = map[Id]*Issue{
		dockerUnavailableIssue.Id():  dockerUnavailableIssue,
		dependencyCycleIssue.Id():    dependencyCycleIssue,
		imageBuildFailedIssue.Id():   imageBuildFailedIssue,
		imageIdNotFoundIssue.Id():    imageIdNotFoundIssue,
		preconditionFailedIssue.Id(): preconditionFailedIssue,
		configLoadFailedIssue.Id():   configLoadFailedIssue,
		permissionDeniedIssue.Id():   permissionDeniedIssue,
	}
)

// Values returns every known issue ordered by id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int { return int(a.id - b.id) })
}

func Get(id Id) *Issue {
	return issues[id]
}
