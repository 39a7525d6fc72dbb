package media

import (
	"context"
	"fmt"
	"strings"

	"facade/internal/storage"

	"github.com/google/uuid"
)

// Entry is one desired media item as submitted by a client: either an
// absolute URL (already stored, kept as-is) or an inline data URI (uploaded
// during reconciliation). ID references an existing stored row for updates.
type Entry struct {
	ID        *int64
	Value     string
	Type      Kind
	SortOrder int
	IsPrimary bool
}

// Row is a resolved media row ready to persist. ID zero means a new row.
type Row struct {
	ID        int64
	URL       string
	Type      Kind
	SortOrder int
	IsPrimary bool
}

// Result of one reconciliation run. Rows is the full desired row set in
// input order; DeleteIDs are stored rows absent from the desired list and
// RemovedURLs their object URLs, for remote cleanup after the DB commit.
// A URL that any final row still references never appears in RemovedURLs.
// UploadedURLs are the objects created by this run, so a caller whose
// persistence step fails can remove them again.
type Result struct {
	Rows         []Row
	DeleteIDs    []int64
	RemovedURLs  []string
	UploadedURLs []string
}

type Reconciler struct {
	storage  storage.Storage
	folder   string
	maxBytes int64
}

func NewReconciler(st storage.Storage, folder string, maxBytes int64) *Reconciler {
	if folder == "" {
		folder = "products"
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Reconciler{storage: st, folder: folder, maxBytes: maxBytes}
}

type classified struct {
	entry  Entry
	inline bool
	ext    string
	data   []byte
}

// Reconcile converges the stored media rows of a product toward the desired
// list. Every entry is classified and validated before any upload happens,
// so a single bad entry aborts the run with zero storage side effects.
// Inline payloads are then uploaded in input order and replaced by their
// public URLs; URL entries pass through untouched, which makes resubmitting
// a resolved list produce zero uploads.
//
// Primary flags are normalized first-wins: only the first entry claiming
// primary keeps it, and when nothing claims primary the first entry is
// promoted so a product with media always has exactly one primary row.
func (rc *Reconciler) Reconcile(ctx context.Context, desired []Entry, existing []Row) (*Result, error) {
	entries, err := rc.classify(desired)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	desiredIDs := make(map[int64]bool, len(entries))

	sawPrimary := false
	for i := range entries {
		e := &entries[i].entry
		if e.IsPrimary {
			if sawPrimary {
				e.IsPrimary = false
			}
			sawPrimary = true
		}
	}
	if !sawPrimary && len(entries) > 0 {
		entries[0].entry.IsPrimary = true
	}

	for i := range entries {
		ce := &entries[i]
		finalURL := ce.entry.Value
		if ce.inline {
			key := fmt.Sprintf("%s/%s.%s", rc.folder, uuid.NewString(), ce.ext)
			u, err := rc.storage.Upload(ctx, key, ce.data, MIMEForExtension(ce.ext))
			if err != nil {
				return nil, err
			}
			res.UploadedURLs = append(res.UploadedURLs, u)
			finalURL = u
		}

		row := Row{
			URL:       finalURL,
			Type:      ce.entry.Type,
			SortOrder: ce.entry.SortOrder,
			IsPrimary: ce.entry.IsPrimary,
		}
		if ce.entry.ID != nil {
			row.ID = *ce.entry.ID
			desiredIDs[row.ID] = true
		}
		res.Rows = append(res.Rows, row)
	}

	// A resubmitted URL without its row id replaces the old row with a new
	// one pointing at the same object; the object must survive.
	surviving := make(map[string]bool, len(res.Rows))
	for _, row := range res.Rows {
		surviving[row.URL] = true
	}
	for _, ex := range existing {
		if desiredIDs[ex.ID] {
			continue
		}
		res.DeleteIDs = append(res.DeleteIDs, ex.ID)
		if !surviving[ex.URL] {
			res.RemovedURLs = append(res.RemovedURLs, ex.URL)
		}
	}

	return res, nil
}

// classify validates the whole list up front. Empty values are dropped, URL
// entries are final as submitted, everything else must be a well-formed data
// URI with a format supported for its kind and a payload under the cap.
func (rc *Reconciler) classify(desired []Entry) ([]classified, error) {
	out := make([]classified, 0, len(desired))
	for i, e := range desired {
		if strings.TrimSpace(e.Value) == "" {
			continue
		}
		if e.Type == "" {
			e.Type = KindImage
		}
		if IsURL(e.Value) {
			out = append(out, classified{entry: e})
			continue
		}

		ext, payload, err := ParseDataURI(e.Value)
		if err != nil {
			return nil, &ValidationError{Index: i, Reason: err.Error()}
		}
		if !SupportedFormat(e.Type, ext) {
			return nil, &ValidationError{Index: i, Reason: fmt.Sprintf("unsupported %s format %q", e.Type, ext)}
		}
		data, err := Decode(payload, rc.maxBytes)
		if err != nil {
			return nil, &ValidationError{Index: i, Reason: err.Error()}
		}
		out = append(out, classified{entry: e, inline: true, ext: ext, data: data})
	}
	return out, nil
}
