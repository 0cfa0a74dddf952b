package deposit

import (
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/matsen/proceedings/internal/paper"
)

// Upload is a finished deposition keyed by its PDF file name.
type Upload struct {
	ZenodoID int
	DOI      string
	Title    string
}

// UploadedFiles selects depositions that carry a title, a DOI and a PDF. When
// createdPrefix is set only depositions created on that date (or whatever
// prefix of the timestamp is given) count.
func UploadedFiles(deps []Deposition, createdPrefix string) map[string]Upload {
	out := make(map[string]Upload)
	for _, d := range deps {
		if createdPrefix != "" && !strings.HasPrefix(d.Created, createdPrefix) {
			continue
		}
		if len(d.Files) == 0 {
			continue
		}
		name := d.Files[0].Filename
		if d.Metadata.Title == "" || d.DOI == "" || !strings.HasSuffix(name, ".pdf") {
			continue
		}
		out[name] = Upload{ZenodoID: d.ID, DOI: d.DOI, Title: d.Metadata.Title}
	}
	return out
}

// Partition splits publications into those already uploaded, updated with
// their Zenodo identifiers, and those still to upload. The input records are
// not modified.
func Partition(records []*paper.Record, uploaded map[string]Upload) (completed, remaining []*paper.Record, err error) {
	for _, rec := range records {
		if rec.EE == "" {
			return nil, nil, fmt.Errorf("paper %q has no ee link; run generate first", rec.Title)
		}
		file := path.Base(rec.EE)

		up, ok := uploaded[file]
		if !ok {
			slog.Info("needs upload", "file", file, "title", rec.Title)
			remaining = append(remaining, rec)
			continue
		}

		done := *rec
		done.ZenodoID = up.ZenodoID
		done.DOI = up.DOI
		done.URL = "https://doi.org/" + up.DOI
		done.EE = fmt.Sprintf("https://zenodo.org/record/%d/files/%s", up.ZenodoID, file)
		slog.Info("already uploaded", "file", file, "zenodo_id", up.ZenodoID)
		completed = append(completed, &done)
	}
	return completed, remaining, nil
}
