package main

import (
	"bytes"
	"context"
	stderrors "errors"
	"io/fs"

	"github.com/goccy/go-json"

	"github.com/kbukum/consensus/errors"
	"github.com/kbukum/consensus/provider"
)

// fileSource returns a provider that reads path from the input filesystem
// and decodes it as a JSON array. Objects decode to map[string]any, so an
// object with an "id" member compares by that member.
func fileSource(path string) provider.RequestResponse[fs.FS, []any] {
	return provider.Func(path, func(ctx context.Context, fsys fs.FS) ([]any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !fs.ValidPath(path) {
			return nil, errors.InvalidInput("sources", "source paths must be relative to root: "+path)
		}

		data, err := fs.ReadFile(fsys, path)
		switch {
		case stderrors.Is(err, fs.ErrNotExist):
			return nil, errors.NotFound("source file", path).WithCause(err)
		case err != nil:
			return nil, errors.SourceFailed(path).WithCause(err)
		}
		return decodeItems(path, data)
	})
}

func decodeItems(path string, data []byte) ([]any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.InvalidFormat(path, "JSON array")
	}
	var items []any
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, errors.InvalidFormat(path, "JSON array").WithCause(err)
	}
	return items, nil
}
