// Package modelzoo resolves model references to local files, downloading
// from the HuggingFace Hub when the reference is a repo id.
package modelzoo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomlx/go-huggingface/hub"
)

// DefaultModelFile is the file fetched from a repo when none is named.
const DefaultModelFile = "model.onnx"

// Resolve returns a local filesystem path for ref. A path to an existing
// file is returned as-is. Otherwise ref is treated as a HuggingFace repo id
// ("owner/name") and fileName is downloaded into cacheDir (empty means the
// standard ~/.cache/huggingface/hub location). Downloads are cached; a
// second call for the same ref is a disk lookup.
func Resolve(ref, fileName, cacheDir string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("modelzoo: no model configured")
	}
	if _, err := os.Stat(ref); err == nil {
		return ref, nil
	}
	if !strings.Contains(ref, "/") {
		return "", fmt.Errorf("modelzoo: %q is neither a local file nor a repo id", ref)
	}

	if fileName == "" {
		fileName = DefaultModelFile
	}
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("modelzoo: resolving cache dir: %w", err)
		}
		cacheDir = filepath.Join(home, ".cache", "huggingface", "hub")
	}

	repo := hub.New(ref).WithCacheDir(cacheDir)
	path, err := repo.DownloadFile(fileName)
	if err != nil {
		return "", fmt.Errorf("modelzoo: downloading %s from %s: %w", fileName, ref, err)
	}
	return path, nil
}
