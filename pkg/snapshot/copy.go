package snapshot

import (
	"io"
	"os"
	"path/filepath"

	"github.com/arthur-debert/scaffoldcheck/pkg/errors"
	"github.com/spf13/afero"
)

// CopyTree copies src into dst with merge semantics: directories that
// already exist in dst are reused and files are overwritten. Symlinks are
// recreated when fs supports them.
func CopyTree(fs afero.Fs, src, dst string) error {
	info, err := fs.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrNotFound, "template root %s is not accessible", src).
			WithDetail("path", src)
	}
	if !info.IsDir() {
		return errors.Newf(errors.ErrInvalidInput, "template root %s is not a directory", src).
			WithDetail("path", src)
	}

	return afero.Walk(fs, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to walk %s", path).
				WithDetail("path", path)
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return errors.Wrapf(err, errors.ErrInternal, "failed to relativize %s", path)
		}
		target := filepath.Join(dst, rel)

		switch {
		case info.IsDir():
			if err := fs.MkdirAll(target, info.Mode().Perm()|0700); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", target).
					WithDetail("path", target)
			}
			return nil
		case info.Mode()&os.ModeSymlink != 0:
			return copySymlink(fs, path, target)
		default:
			return copyFile(fs, path, target, info.Mode().Perm())
		}
	})
}

func copyFile(fs afero.Fs, src, dst string, perm os.FileMode) error {
	in, err := fs.Open(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to open %s", src).WithDetail("path", src)
	}
	defer in.Close()

	out, err := fs.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to create %s", dst).WithDetail("path", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to copy %s", src).WithDetail("path", src)
	}
	if err := out.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to close %s", dst).WithDetail("path", dst)
	}
	return nil
}

func copySymlink(fs afero.Fs, src, dst string) error {
	linker, ok := fs.(afero.Symlinker)
	if !ok {
		return errors.Newf(errors.ErrInvalidInput, "filesystem cannot copy symlink %s", src).
			WithDetail("path", src)
	}
	target, err := linker.ReadlinkIfPossible(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read link %s", src).WithDetail("path", src)
	}
	if _, _, err := linker.LstatIfPossible(dst); err == nil {
		if err := fs.Remove(dst); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to replace %s", dst).WithDetail("path", dst)
		}
	}
	if err := linker.SymlinkIfPossible(target, dst); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to link %s", dst).WithDetail("path", dst)
	}
	return nil
}
