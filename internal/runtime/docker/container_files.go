package docker

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

type fileSpec struct {
	Name string
	Mode int64
	Data []byte
}

func (c *containerEngine) copyFiles(ctx context.Context, containerID, workdir string, files []fileSpec) error {
	if len(files) == 0 {
		return nil
	}

	reader, err := makeArchive(files)
	if err != nil {
		return err
	}

	return c.cli.CopyToContainer(ctx, containerID, workdir, reader, types.CopyToContainerOptions{AllowOverwriteDirWithFile: true})
}

func makeArchive(files []fileSpec) (io.Reader, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	now := time.Now()
	for _, file := range files {
		mode := file.Mode
		if mode == 0 {
			mode = 0o644
		}

		header := &tar.Header{
			Name:    file.Name,
			Mode:    mode,
			Size:    int64(len(file.Data)),
			ModTime: now,
		}

		if err := tw.WriteHeader(header); err != nil {
			return nil, fmt.Errorf("write tar header: %w", err)
		}

		if _, err := tw.Write(file.Data); err != nil {
			return nil, fmt.Errorf("write tar contents: %w", err)
		}
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("close tar writer: %w", err)
	}

	return bytes.NewReader(buf.Bytes()), nil
}

func (c *containerEngine) fetchLogs(ctx context.Context, containerID string) (stdout, stderr string, err error) {
	logs, err := c.cli.ContainerLogs(ctx, containerID, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return "", "", err
	}
	defer logs.Close()

	var stdoutBuf, stderrBuf bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdoutBuf, &stderrBuf, logs); err != nil {
		return "", "", err
	}

	return stdoutBuf.String(), stderrBuf.String(), nil
}

func isNotFound(err error) bool {
	return client.IsErrNotFound(err)
}
