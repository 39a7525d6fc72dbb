package media_test

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facade/internal/media"
)

// fakeStorage records uploads and serves URLs derived from the key.
type fakeStorage struct {
	uploads   []string
	deletes   []string
	uploadErr error
}

func (f *fakeStorage) Upload(_ context.Context, key string, _ []byte, _ string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads = append(f.uploads, key)
	return "https://cdn.example.com/" + key, nil
}

func (f *fakeStorage) Delete(_ context.Context, fileURL string) error {
	f.deletes = append(f.deletes, fileURL)
	return nil
}

func (f *fakeStorage) Exists(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func dataURI(sub string, payload []byte) string {
	return fmt.Sprintf("data:image/%s;base64,%s", sub, base64.StdEncoding.EncodeToString(payload))
}

func TestReconcileUploadsInlineAndKeepsURLs(t *testing.T) {
	st := &fakeStorage{}
	rc := media.NewReconciler(st, "products", 0)

	id := int64(7)
	desired := []media.Entry{
		{ID: &id, Value: "https://cdn.example.com/products/existing.png", Type: media.KindImage, IsPrimary: true},
		{Value: dataURI("png", []byte("new image")), Type: media.KindImage, SortOrder: 1},
	}
	existing := []media.Row{
		{ID: 7, URL: "https://cdn.example.com/products/existing.png"},
	}

	res, err := rc.Reconcile(context.Background(), desired, existing)
	require.NoError(t, err)

	require.Len(t, res.Rows, 2)
	assert.Equal(t, int64(7), res.Rows[0].ID)
	assert.Equal(t, "https://cdn.example.com/products/existing.png", res.Rows[0].URL)
	assert.True(t, res.Rows[0].IsPrimary)

	assert.Zero(t, res.Rows[1].ID)
	assert.Contains(t, res.Rows[1].URL, "https://cdn.example.com/products/")
	assert.False(t, res.Rows[1].IsPrimary)

	assert.Len(t, st.uploads, 1)
	assert.Len(t, res.UploadedURLs, 1)
	assert.Empty(t, res.DeleteIDs)
}

func TestReconcileAllURLsIsIdempotent(t *testing.T) {
	st := &fakeStorage{}
	rc := media.NewReconciler(st, "products", 0)

	a, b := int64(1), int64(2)
	desired := []media.Entry{
		{ID: &a, Value: "https://cdn.example.com/products/a.png", IsPrimary: true},
		{ID: &b, Value: "https://cdn.example.com/products/b.png", SortOrder: 1},
	}
	existing := []media.Row{
		{ID: 1, URL: "https://cdn.example.com/products/a.png"},
		{ID: 2, URL: "https://cdn.example.com/products/b.png"},
	}

	res, err := rc.Reconcile(context.Background(), desired, existing)
	require.NoError(t, err)

	assert.Empty(t, st.uploads)
	assert.Empty(t, res.UploadedURLs)
	assert.Empty(t, res.DeleteIDs)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "https://cdn.example.com/products/a.png", res.Rows[0].URL)
}

func TestReconcileValidatesBeforeUploading(t *testing.T) {
	st := &fakeStorage{}
	rc := media.NewReconciler(st, "products", 0)

	desired := []media.Entry{
		{Value: dataURI("png", []byte("good")), Type: media.KindImage},
		{Value: "data:application;base64,YQ==", Type: media.KindImage},
	}

	_, err := rc.Reconcile(context.Background(), desired, nil)
	require.Error(t, err)

	var vErr *media.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, 1, vErr.Index)

	// Nothing was uploaded; the bad entry aborted the run up front.
	assert.Empty(t, st.uploads)
}

func TestReconcileRejectsUnsupportedFormatForKind(t *testing.T) {
	rc := media.NewReconciler(&fakeStorage{}, "products", 0)

	desired := []media.Entry{
		{Value: dataURI("png", []byte("x")), Type: media.KindVideo},
	}

	_, err := rc.Reconcile(context.Background(), desired, nil)
	var vErr *media.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Reason, "unsupported video format")
}

func TestReconcileRejectsOversizePayload(t *testing.T) {
	rc := media.NewReconciler(&fakeStorage{}, "products", 8)

	desired := []media.Entry{
		{Value: dataURI("png", []byte("this payload is beyond the cap")), Type: media.KindImage},
	}

	_, err := rc.Reconcile(context.Background(), desired, nil)
	var vErr *media.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestReconcileDeletesOmittedRows(t *testing.T) {
	rc := media.NewReconciler(&fakeStorage{}, "products", 0)

	keep := int64(1)
	desired := []media.Entry{
		{ID: &keep, Value: "https://cdn.example.com/products/a.png", IsPrimary: true},
	}
	existing := []media.Row{
		{ID: 1, URL: "https://cdn.example.com/products/a.png"},
		{ID: 2, URL: "https://cdn.example.com/products/b.png"},
		{ID: 3, URL: "https://cdn.example.com/products/c.png"},
	}

	res, err := rc.Reconcile(context.Background(), desired, existing)
	require.NoError(t, err)

	assert.Equal(t, []int64{2, 3}, res.DeleteIDs)
	assert.Equal(t, []string{
		"https://cdn.example.com/products/b.png",
		"https://cdn.example.com/products/c.png",
	}, res.RemovedURLs)
}

func TestReconcileKeepsObjectWhenURLResubmittedWithoutID(t *testing.T) {
	rc := media.NewReconciler(&fakeStorage{}, "products", 0)

	// The client resubmits a stored URL but drops the row id: the old row
	// is replaced by a new one pointing at the same object.
	desired := []media.Entry{
		{Value: "https://cdn.example.com/products/live.png", IsPrimary: true},
	}
	existing := []media.Row{
		{ID: 5, URL: "https://cdn.example.com/products/live.png"},
	}

	res, err := rc.Reconcile(context.Background(), desired, existing)
	require.NoError(t, err)

	assert.Equal(t, []int64{5}, res.DeleteIDs)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "https://cdn.example.com/products/live.png", res.Rows[0].URL)
	assert.Empty(t, res.RemovedURLs, "object referenced by a surviving row must not be queued for deletion")
}

func TestReconcileNormalizesPrimaryFirstWins(t *testing.T) {
	rc := media.NewReconciler(&fakeStorage{}, "products", 0)

	desired := []media.Entry{
		{Value: "https://cdn.example.com/a.png", IsPrimary: true},
		{Value: "https://cdn.example.com/b.png", IsPrimary: true},
		{Value: "https://cdn.example.com/c.png", IsPrimary: true},
	}

	res, err := rc.Reconcile(context.Background(), desired, nil)
	require.NoError(t, err)

	assert.True(t, res.Rows[0].IsPrimary)
	assert.False(t, res.Rows[1].IsPrimary)
	assert.False(t, res.Rows[2].IsPrimary)
}

func TestReconcilePromotesFirstWhenNoPrimary(t *testing.T) {
	rc := media.NewReconciler(&fakeStorage{}, "products", 0)

	desired := []media.Entry{
		{Value: "https://cdn.example.com/a.png"},
		{Value: "https://cdn.example.com/b.png"},
	}

	res, err := rc.Reconcile(context.Background(), desired, nil)
	require.NoError(t, err)

	assert.True(t, res.Rows[0].IsPrimary)
	assert.False(t, res.Rows[1].IsPrimary)
}

func TestReconcileSkipsEmptyValues(t *testing.T) {
	rc := media.NewReconciler(&fakeStorage{}, "products", 0)

	desired := []media.Entry{
		{Value: "   "},
		{Value: "https://cdn.example.com/a.png"},
		{Value: ""},
	}

	res, err := rc.Reconcile(context.Background(), desired, nil)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "https://cdn.example.com/a.png", res.Rows[0].URL)
}

func TestReconcileSurfacesUploadError(t *testing.T) {
	st := &fakeStorage{uploadErr: fmt.Errorf("bucket unavailable")}
	rc := media.NewReconciler(st, "products", 0)

	desired := []media.Entry{
		{Value: dataURI("png", []byte("x")), Type: media.KindImage},
	}

	_, err := rc.Reconcile(context.Background(), desired, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket unavailable")
}
