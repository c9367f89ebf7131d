package docker

import (
	"archive/tar"
	"bytes"
	"context"
	"io"
	"path"

	docker "github.com/fsouza/go-dockerclient"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/cytomine/stevedore/pkg/domain/interfaces"
	"github.com/cytomine/stevedore/pkg/domain/model"
)

// Auth carries registry credentials for pushes.
type Auth struct {
	Username string
	Password string
}

type engine struct {
	client *docker.Client
	auth   Auth
}

// New wraps an existing Docker client.
func New(client *docker.Client, auth Auth) interfaces.ContainerEngine {
	return &engine{client: client, auth: auth}
}

// NewFromEnv connects to the Docker daemon using the standard DOCKER_*
// environment variables.
func NewFromEnv(auth Auth) (interfaces.ContainerEngine, error) {
	client, err := docker.NewClientFromEnv()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create docker client")
	}
	return New(client, auth), nil
}

// BuildImage delegates the build to the daemon. Build arguments pass through
// unmodified.
func (e *engine) BuildImage(ctx context.Context, spec *model.BuildSpec) error {
	args := make([]docker.BuildArg, 0, len(spec.Args))
	for name, value := range spec.Args {
		args = append(args, docker.BuildArg{Name: name, Value: value})
	}

	opts := docker.BuildImageOptions{
		Name:         spec.Image.String(),
		Dockerfile:   spec.Dockerfile,
		ContextDir:   spec.ContextDir,
		BuildArgs:    args,
		Pull:         true,
		OutputStream: newLogWriter(ctx, "docker build", spec.Image.String()),
		Context:      ctx,
	}

	if err := e.client.BuildImage(opts); err != nil {
		return goerr.Wrap(err, "docker build failed", goerr.V("image", spec.Image.String()))
	}
	return nil
}

// PushImage pushes the tagged image to its registry.
func (e *engine) PushImage(ctx context.Context, ref model.ImageRef) error {
	opts := docker.PushImageOptions{
		Name:         ref.Repository(),
		Tag:          ref.Tag,
		Registry:     ref.Registry,
		OutputStream: newLogWriter(ctx, "docker push", ref.String()),
		Context:      ctx,
	}
	auth := docker.AuthConfiguration{
		Username:      e.auth.Username,
		Password:      e.auth.Password,
		ServerAddress: ref.Registry,
	}

	if err := e.client.PushImage(opts, auth); err != nil {
		return goerr.Wrap(err, "docker push failed", goerr.V("image", ref.String()))
	}
	return nil
}

// RunTests runs the test command in a container from the image and copies
// the report file out afterward. The report file path is also exported to
// the container through TEST_REPORT_FILE.
func (e *engine) RunTests(ctx context.Context, ref model.ImageRef, cmd []string, reportFile string) (*model.TestReport, error) {
	logger := ctxlog.From(ctx)

	container, err := e.client.CreateContainer(docker.CreateContainerOptions{
		Config: &docker.Config{
			Image: ref.String(),
			Cmd:   cmd,
			Env:   []string{"TEST_REPORT_FILE=" + reportFile},
		},
		Context: ctx,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create test container", goerr.V("image", ref.String()))
	}
	defer func() {
		removeOpts := docker.RemoveContainerOptions{ID: container.ID, Force: true}
		if err := e.client.RemoveContainer(removeOpts); err != nil {
			logger.Warn("Failed to remove test container", "container_id", container.ID, "error", err)
		}
	}()

	if err := e.client.StartContainerWithContext(container.ID, nil, ctx); err != nil {
		return nil, goerr.Wrap(err, "failed to start test container", goerr.V("container_id", container.ID))
	}

	exitCode, err := e.client.WaitContainerWithContext(container.ID, ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to wait for test container", goerr.V("container_id", container.ID))
	}

	logger.Info("Test container exited",
		"container_id", container.ID,
		"exit_code", exitCode,
	)

	data, err := e.downloadFile(ctx, container.ID, reportFile)
	if err != nil {
		return nil, err
	}

	return &model.TestReport{
		FileName: path.Base(reportFile),
		Data:     data,
		ExitCode: exitCode,
	}, nil
}

// RemoveImage removes the local image, forcing removal of the tag.
func (e *engine) RemoveImage(ctx context.Context, ref model.ImageRef) error {
	opts := docker.RemoveImageOptions{Force: true, Context: ctx}
	if err := e.client.RemoveImageExtended(ref.String(), opts); err != nil {
		return goerr.Wrap(err, "failed to remove image", goerr.V("image", ref.String()))
	}
	return nil
}

// downloadFile copies one file out of a stopped container. The daemon hands
// the file back as a single-entry tar stream.
func (e *engine) downloadFile(ctx context.Context, containerID, filePath string) ([]byte, error) {
	var buf bytes.Buffer
	err := e.client.DownloadFromContainer(containerID, docker.DownloadFromContainerOptions{
		Path:         filePath,
		OutputStream: &buf,
		Context:      ctx,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download report from container",
			goerr.V("container_id", containerID), goerr.V("path", filePath))
	}

	return extractSingleFile(&buf, path.Base(filePath))
}

// extractSingleFile pulls the named file out of a tar stream.
func extractSingleFile(r io.Reader, name string) ([]byte, error) {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "broken tar stream from daemon")
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if path.Base(hdr.Name) == name {
			data, err := io.ReadAll(tr)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to read file from tar stream", goerr.V("name", hdr.Name))
			}
			return data, nil
		}
	}
	return nil, goerr.New("file not found in container archive", goerr.V("name", name))
}
