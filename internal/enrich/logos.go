package enrich

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// SyncLogos copies every regular file in srcDir into dstDir, overwriting
// files of the same name. dstDir is created if needed. A missing srcDir is
// logged and reported as zero copies.
func SyncLogos(srcDir, dstDir string, log *slog.Logger) (int, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return 0, fmt.Errorf("creating logo dir: %w", err)
	}

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("logos source folder not found", "path", srcDir)
			return 0, nil
		}
		return 0, fmt.Errorf("listing logos: %w", err)
	}

	copied := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if err := copyFile(filepath.Join(srcDir, e.Name()), filepath.Join(dstDir, e.Name())); err != nil {
			return copied, err
		}
		copied++
	}
	log.Info("copied logos", "count", copied, "dest", dstDir)
	return copied, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}
