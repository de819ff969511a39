package service

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/datadeck/internal/analysis"
	"github.com/KaramelBytes/datadeck/internal/apperr"
	"github.com/KaramelBytes/datadeck/internal/workspace"
)

const salesCSV = "Product,Category,Sales\nLaptop,A,5\nPhone,B,3\nTablet,A,2\n"

func newService(t *testing.T) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	return New(workspace.NewStore(workspace.Options{}), Options{UploadDir: dir}), dir
}

func TestUploadPublishesWorkingDataset(t *testing.T) {
	svc, dir := newService(t)
	ctx := context.Background()

	res, err := svc.Upload(ctx, "s1", "sales.csv", []byte(salesCSV))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.DatasetID)
	assert.Equal(t, "sales.csv", res.Filename)
	assert.Equal(t, []string{"Product", "Category", "Sales"}, res.Columns)
	assert.Equal(t, 3, res.Stats.TotalRows)
	assert.Equal(t, 1, res.Stats.NumericColumns)
	assert.Len(t, res.Preview.Rows, 3)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp upload should be removed")

	info, err := svc.Stats(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, res.DatasetID, info.DatasetID)
	assert.Equal(t, res.Stats, info.Stats)
}

func TestChartBeforeUpload(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.GenerateChart(context.Background(), "fresh", analysis.ChartRequest{Kind: "bar", XColumn: "a", YColumn: "b"})
	require.ErrorIs(t, err, apperr.ErrNoDatasetLoaded)

	resp := apperr.ToResponse(err)
	assert.Equal(t, apperr.CodeNoDatasetLoaded, resp.Code)
}

func TestGenerateChartBar(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Upload(ctx, "s1", "sales.csv", []byte(salesCSV))
	require.NoError(t, err)

	res, err := svc.GenerateChart(ctx, "s1", analysis.ChartRequest{Kind: "bar", XColumn: "Category", YColumn: "Sales"})
	require.NoError(t, err)
	require.NotNil(t, res.ChartData.Series)
	assert.Equal(t, []string{"A", "B"}, res.ChartData.Series.Labels)
	assert.Equal(t, []float64{7, 3}, res.ChartData.Series.Values)

	_, err = svc.GenerateChart(ctx, "s1", analysis.ChartRequest{Kind: "box", YColumn: "Product"})
	assert.ErrorIs(t, err, apperr.ErrInsufficientData)

	_, err = svc.GenerateChart(ctx, "s1", analysis.ChartRequest{Kind: "radar", XColumn: "Category"})
	assert.ErrorIs(t, err, apperr.ErrUnsupportedChartKind)
}

func TestFailedUploadKeepsPreviousDataset(t *testing.T) {
	svc, dir := newService(t)
	ctx := context.Background()
	first, err := svc.Upload(ctx, "s1", "sales.csv", []byte(salesCSV))
	require.NoError(t, err)

	_, err = svc.Upload(ctx, "s1", "notes.txt", []byte("hello"))
	assert.ErrorIs(t, err, apperr.ErrUnsupportedFormat)

	_, err = svc.Upload(ctx, "s1", "broken.csv", []byte{0xff, 0xfe, 'a'})
	assert.ErrorIs(t, err, apperr.ErrFormat)

	_, err = svc.Upload(ctx, "s1", "", nil)
	assert.ErrorIs(t, err, apperr.ErrNoFileProvided)

	info, err := svc.Stats(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, first.DatasetID, info.DatasetID)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed uploads must not leave temp files")
}

func TestUploadTooLarge(t *testing.T) {
	svc := New(workspace.NewStore(workspace.Options{}), Options{UploadDir: t.TempDir(), MaxUploadBytes: 8})
	_, err := svc.Upload(context.Background(), "s1", "big.csv", []byte(salesCSV))
	require.ErrorIs(t, err, apperr.ErrPayloadTooLarge)
	_, err = svc.Stats(context.Background(), "s1")
	assert.ErrorIs(t, err, apperr.ErrNoDatasetLoaded)
}

func TestPreviewLimitAndClear(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Upload(ctx, "s1", "sales.csv", []byte(salesCSV))
	require.NoError(t, err)

	p, err := svc.Preview(ctx, "s1", 2)
	require.NoError(t, err)
	assert.Len(t, p.Rows, 2)

	assert.True(t, svc.Clear("s1"))
	assert.False(t, svc.Clear("s1"))
	_, err = svc.Preview(ctx, "s1", 0)
	assert.ErrorIs(t, err, apperr.ErrNoDatasetLoaded)
}

func TestUploadEmptyCSV(t *testing.T) {
	svc, _ := newService(t)
	res, err := svc.Upload(context.Background(), "s1", "empty.csv", []byte("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Stats.TotalRows)
	assert.Empty(t, res.Stats.Columns)
	assert.True(t, res.Preview.Empty)
}

func TestCanceledContext(t *testing.T) {
	svc, _ := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Upload(ctx, "s1", "sales.csv", []byte(salesCSV))
	assert.ErrorIs(t, err, context.Canceled)
}
