package main

import (
	"errors"

	"github.com/matsen/proceedings/internal/config"
	"github.com/matsen/proceedings/internal/deposit"
	"github.com/matsen/proceedings/internal/importer"
	"github.com/matsen/proceedings/internal/layout"
	"github.com/matsen/proceedings/internal/merge"
	"github.com/matsen/proceedings/internal/paper"
	"github.com/matsen/proceedings/internal/render"
	"github.com/matsen/proceedings/internal/split"
)

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (bad proceedings.yml, missing year or token)
	ExitDataError   = 3 // Data error (unknown paper, unmatched PDF, page range, malformed CSV)
)

// exitCode classifies err into one of the exit codes above.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var silent silentExitError
	if errors.As(err, &silent) {
		return silent.code
	}
	if errors.Is(err, config.ErrInvalid) || deposit.IsAuthError(err) {
		return ExitConfigError
	}

	var (
		unknown  *layout.UnknownPaperError
		sessions *paper.SessionMismatchError
		placed   *paper.MisplacedPaperError
		order    *merge.OrderMismatchError
		match    *merge.MatchError
		rangeErr *split.RangeError
		column   *importer.MissingColumnError
		parse    *importer.ParseError
		mismatch *render.LayoutMismatchError
		unplaced *render.UnplacedError
	)
	switch {
	case errors.As(err, &unknown),
		errors.As(err, &sessions),
		errors.As(err, &placed),
		errors.As(err, &order),
		errors.As(err, &match),
		errors.Is(err, merge.ErrPaperNotFound),
		errors.Is(err, merge.ErrAmbiguousMatch),
		errors.As(err, &rangeErr),
		errors.As(err, &column),
		errors.As(err, &parse),
		errors.Is(err, importer.ErrEmptyCSV),
		errors.As(err, &mismatch),
		errors.As(err, &unplaced),
		errors.Is(err, paper.ErrInvalidRecord):
		return ExitDataError
	}
	return ExitError
}

// silentExitError carries an exit code for a command that already reported
// its failure.
type silentExitError struct {
	code int
}

func (e silentExitError) Error() string {
	return ""
}

func exitErrorSilent(code int) error {
	return silentExitError{code: code}
}
