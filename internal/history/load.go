package history

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/julianstephens/go-utils/helpers"
	"github.com/julianstephens/go-utils/jsonutil"
)

// ErrNoHistories is returned by Merge when it is given nothing to merge.
var ErrNoHistories = errors.New("history: no history files given")

// Load loads and parses a history JSON file. Operation indices are
// reassigned to the position of each record in the file.
func Load(path string) (History, error) {
	if !helpers.Exists(path) {
		return nil, errors.WithHint(
			errors.Newf("history: %s does not exist", path),
			"pass the path of a JSON array of operation records",
		)
	}

	var h History
	if err := jsonutil.ReadFileStrict(path, &h); err != nil {
		return nil, errors.WithHint(
			errors.Wrapf(err, "history: parsing %s", path),
			"each record is {process, type, f, value, error, time}",
		)
	}
	return h.reindex(), nil
}

// Merge combines multiple history files into a single history ordered by
// operation time. Records with equal times keep their file order.
func Merge(paths []string) (History, error) {
	if len(paths) == 0 {
		return nil, ErrNoHistories
	}

	var all History
	for _, path := range paths {
		h, err := Load(path)
		if err != nil {
			return nil, errors.Wrapf(err, "history: merging %d files", len(paths))
		}
		all = append(all, h...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Time < all[j].Time
	})
	return all.reindex(), nil
}

// WriteFile atomically writes h to path as a JSON array.
func WriteFile(path string, h History) error {
	data, err := jsonutil.Marshal(h)
	if err != nil {
		return errors.Wrap(err, "history: encoding")
	}
	if err := helpers.AtomicFileWrite(path, data); err != nil {
		return errors.Wrapf(err, "history: writing %s", path)
	}
	return nil
}

func (h History) reindex() History {
	for i := range h {
		h[i].Index = i
	}
	return h
}
