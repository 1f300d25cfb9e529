// Package workdir changes the process working directory for the duration of
// a scoped operation.
//
// The current directory is process-wide state. Inside restores it on every
// exit path, but it takes no lock: callers must not run two scoped
// operations concurrently.
package workdir

import (
	stderrors "errors"
	"os"

	"github.com/arthur-debert/scaffoldcheck/pkg/errors"
	"github.com/arthur-debert/scaffoldcheck/pkg/logging"
)

// Inside runs fn with the working directory set to dir and restores the
// previous directory afterwards, including when fn returns an error or
// panics. A panic is re-raised once the directory has been restored.
func Inside(dir string, fn func() error) (err error) {
	logger := logging.GetLogger("workdir")

	oldDir, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, errors.ErrWorkdir, "failed to get current directory")
	}

	if err := os.Chdir(dir); err != nil {
		return errors.Wrapf(err, errors.ErrWorkdir, "failed to change directory to %s", dir).
			WithDetail("dir", dir)
	}
	logger.Trace().Str("from", oldDir).Str("to", dir).Msg("Entered directory")

	defer func() {
		restoreErr := os.Chdir(oldDir)
		if restoreErr != nil {
			logger.Error().Err(restoreErr).Str("dir", oldDir).Msg("Failed to restore working directory")
			restoreErr = errors.Wrapf(restoreErr, errors.ErrWorkdir, "failed to restore directory %s", oldDir).
				WithDetail("dir", oldDir)
		} else {
			logger.Trace().Str("dir", oldDir).Msg("Restored directory")
		}

		if r := recover(); r != nil {
			panic(r)
		}

		if restoreErr != nil {
			err = stderrors.Join(err, restoreErr)
		}
	}()

	return fn()
}
