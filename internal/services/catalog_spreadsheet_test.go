package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"catalog-service/internal/pagination"
)

func buildWorkbook(t *testing.T, sheet string, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", sheet)
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf := new(bytes.Buffer)
	_, err := f.WriteTo(buf)
	require.NoError(t, err)
	return buf
}

func TestImportProductsReportsRowErrors(t *testing.T) {
	f := newFixture(t)
	category := f.category.ID.String()

	workbook := buildWorkbook(t, "Products", [][]interface{}{
		{"Name *", "Description *", "Price *", "CategoryId *", "SKU *", "Stock", "DiscountPrice"},
		{"Red Shoes", "Leather", "50", category, "A", "3", "45"},
		{"", "", "", "", "", "", ""},
		{"Blue Hat", "Wool", "not-a-number", category, "B", "", ""},
		{"Green Sock", "Cotton", "5", category, "A", "", ""},
		{"Cheap Belt", "Leather", "10", category, "C", "", "12"},
	})

	result, err := f.products.Import(f.ctx, f.owner, workbook)
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalRows, "empty rows are skipped")
	assert.Equal(t, 1, result.CreatedCount)
	assert.Equal(t, 3, result.FailedCount)
	require.Len(t, result.CreatedIDs, 1)

	codes := map[int]string{}
	for _, e := range result.Errors {
		codes[e.Row] = e.Code
	}
	assert.Equal(t, "INVALID", codes[4])
	assert.Equal(t, "DUPLICATE", codes[5])
	assert.Equal(t, "INVALID", codes[6])

	items, _, err := f.products.List(f.ctx, pagination.Normalize(1, 10))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Red Shoes", items[0].Base.Name)
}

func TestImportRejectsEmptyWorkbook(t *testing.T) {
	f := newFixture(t)
	workbook := buildWorkbook(t, "Products", [][]interface{}{
		{"name", "description", "price", "categoryId", "sku"},
	})

	_, err := f.products.Import(f.ctx, f.owner, workbook)
	assert.Error(t, err)

	_, err = f.products.Import(f.ctx, f.owner, bytes.NewBufferString("not a workbook"))
	assert.Error(t, err)
}

func TestExportThenImportServices(t *testing.T) {
	f := newFixture(t)
	_, err := f.services.Create(f.ctx, f.owner, serviceRequest("Screen Repair", 80, f.category.ID))
	require.NoError(t, err)

	buf := new(bytes.Buffer)
	require.NoError(t, f.services.Export(f.ctx, buf))

	exported, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer exported.Close()
	rows, err := exported.GetRows("Services")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "id", rows[0][0])
	assert.Contains(t, rows[0], "serviceType")
	assert.Contains(t, rows[1], "Screen Repair")

	// Services carry no unique key, so re-importing an export duplicates every row.
	result, err := f.services.Import(f.ctx, f.owner, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 1, result.CreatedCount)
	assert.Empty(t, result.Errors)

	items, info, err := f.services.List(f.ctx, pagination.Normalize(1, 10))
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, int64(2), info.TotalCount)
}

func TestExportThenImportProductsHitsSKU(t *testing.T) {
	f := newFixture(t)
	f.createProduct(t, "Red Shoes", 50, "A")

	buf := new(bytes.Buffer)
	require.NoError(t, f.products.Export(f.ctx, buf))

	result, err := f.products.Import(f.ctx, f.owner, buf)
	require.NoError(t, err)
	assert.Equal(t, 0, result.CreatedCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "DUPLICATE", result.Errors[0].Code)
	assert.Equal(t, 2, result.Errors[0].Row)
}
