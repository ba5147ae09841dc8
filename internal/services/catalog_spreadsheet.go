package services

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"catalog-service/internal/apperrors"
	"catalog-service/internal/models"
)

// Export writes every active item of the service's kind as an XLSX workbook.
// The first column is the item id; the rest follow the import template so an
// export can be edited and re-imported.
func (s *CatalogService) Export(ctx context.Context, w io.Writer) error {
	items, err := s.store.Items.All(ctx, s.kind)
	if err != nil {
		return err
	}

	template := models.ImportTemplateFor(s.kind)
	f := excelize.NewFile()
	defer f.Close()

	sheetName := sheetTitle(s.kind)
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	headers := append([]string{"id"}, columnNamesOf(template)...)
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	for r, item := range items {
		values := exportRow(&item)
		for i, header := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			if v, ok := values[header]; ok {
				f.SetCellValue(sheetName, cell, v)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return apperrors.Persistence(err, "failed to write spreadsheet")
	}
	s.logger.WithField("rows", len(items)).Info("Catalog exported")
	return nil
}

// Import creates one item per data row of the first sheet. Rows are
// independent: a failing row is reported and the others are still created.
func (s *CatalogService) Import(ctx context.Context, ownerID uuid.UUID, r io.Reader) (*models.ImportResult, error) {
	rows, err := parseSheet(r, sheetTitle(s.kind))
	if err != nil {
		return nil, apperrors.Validation("%s", err.Error())
	}

	result := &models.ImportResult{TotalRows: len(rows)}
	for _, row := range rows {
		rowNum, _ := strconv.Atoi(row["_row"])
		req, ok := s.rowToRequest(row, rowNum, result)
		if !ok {
			result.FailedCount++
			continue
		}

		item, err := s.Create(ctx, ownerID, req)
		if err != nil {
			addImportError(result, rowNum, "", importErrorCode(err), apperrors.Message(err))
			result.FailedCount++
			continue
		}
		result.CreatedCount++
		result.CreatedIDs = append(result.CreatedIDs, item.ID().String())
	}

	s.logger.WithFields(logrus.Fields{
		"total":   result.TotalRows,
		"created": result.CreatedCount,
		"failed":  result.FailedCount,
	}).Info("Catalog import finished")
	return result, nil
}

func (s *CatalogService) rowToRequest(row map[string]string, rowNum int, result *models.ImportResult) (models.CreateItemRequest, bool) {
	var req models.CreateItemRequest
	before := len(result.Errors)

	req.Name = row["name"]
	req.Description = row["description"]
	if req.Name == "" {
		addImportError(result, rowNum, "name", "REQUIRED", "Name is required")
	}
	if req.Description == "" {
		addImportError(result, rowNum, "description", "REQUIRED", "Description is required")
	}

	if row["price"] == "" {
		addImportError(result, rowNum, "price", "REQUIRED", "Price is required")
	} else if price, err := strconv.ParseFloat(row["price"], 64); err != nil {
		addImportError(result, rowNum, "price", "INVALID", "Price must be a valid number")
	} else {
		req.Price = &price
	}

	if row["categoryid"] == "" {
		addImportError(result, rowNum, "categoryId", "REQUIRED", "Category ID is required")
	} else if categoryID, err := uuid.Parse(row["categoryid"]); err != nil {
		addImportError(result, rowNum, "categoryId", "INVALID", "Category ID must be a UUID")
	} else {
		req.CategoryID = &categoryID
	}

	if v := row["isavailable"]; v != "" {
		available, err := strconv.ParseBool(v)
		if err != nil {
			addImportError(result, rowNum, "isAvailable", "INVALID", "isAvailable must be true or false")
		} else {
			req.IsAvailable = &available
		}
	}

	switch s.kind {
	case models.KindProduct:
		req.SKU = row["sku"]
		if req.SKU == "" {
			addImportError(result, rowNum, "sku", "REQUIRED", "SKU is required")
		}
		if v := row["stock"]; v != "" {
			stock, err := strconv.ParseFloat(v, 64)
			if err != nil {
				addImportError(result, rowNum, "stock", "INVALID", "Stock must be a valid number")
			}
			req.Stock = stock
		}
		if v := row["discountprice"]; v != "" {
			discount, err := strconv.ParseFloat(v, 64)
			if err != nil {
				addImportError(result, rowNum, "discountPrice", "INVALID", "Discount price must be a valid number")
			} else {
				req.DiscountPrice = &discount
			}
		}
	case models.KindService:
		req.ServiceType = row["servicetype"]
		if v := row["duration"]; v != "" {
			duration, err := strconv.Atoi(v)
			if err != nil {
				addImportError(result, rowNum, "duration", "INVALID", "Duration must be a whole number")
			}
			req.Duration = duration
		}
	}

	return req, len(result.Errors) == before
}

// parseSheet reads the preferred sheet (or the first one) into one map per
// data row keyed by lower-cased header. The "_row" key holds the sheet row number.
func parseSheet(r io.Reader, preferred string) ([]map[string]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}
	sheetName := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(name, preferred) {
			sheetName = name
			break
		}
	}

	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(excelRows) < 2 {
		return nil, fmt.Errorf("file must have a header row and at least one data row")
	}

	headers := excelRows[0]
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.ToLower(headers[i]))
		headers[i] = strings.TrimSuffix(headers[i], " *")
	}

	var rows []map[string]string
	for rowIdx, excelRow := range excelRows[1:] {
		row := make(map[string]string)
		empty := true
		for i, value := range excelRow {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
				if row[headers[i]] != "" {
					empty = false
				}
			}
		}
		if empty {
			continue
		}
		row["_row"] = strconv.Itoa(rowIdx + 2)
		rows = append(rows, row)
	}
	return rows, nil
}

func exportRow(item *models.CatalogItem) map[string]interface{} {
	values := map[string]interface{}{
		"id":          item.ID().String(),
		"name":        item.Base.Name,
		"description": item.Base.Description,
		"price":       item.Base.Price,
		"isAvailable": item.Available(),
	}
	if item.Base.CategoryID != nil {
		values["categoryId"] = item.Base.CategoryID.String()
	}
	switch v := item.Variant.(type) {
	case models.ProductVariant:
		values["sku"] = v.SKU
		values["stock"] = v.Stock
		if v.DiscountPrice != nil {
			values["discountPrice"] = *v.DiscountPrice
		}
	case models.ServiceVariant:
		values["serviceType"] = v.ServiceType
		values["duration"] = v.Duration
	}
	return values
}

func columnNamesOf(template models.ImportTemplate) []string {
	names := make([]string, len(template.Columns))
	for i, col := range template.Columns {
		names[i] = col.Name
	}
	return names
}

func sheetTitle(kind models.ItemKind) string {
	plural := kind.Plural()
	return strings.ToUpper(plural[:1]) + plural[1:]
}

func addImportError(result *models.ImportResult, rowNum int, column, code, message string) {
	result.Errors = append(result.Errors, models.ImportRowError{
		Row:     rowNum,
		Column:  column,
		Code:    code,
		Message: message,
	})
}

func importErrorCode(err error) string {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		return "INVALID"
	case apperrors.KindNotFound:
		return "NOT_FOUND"
	case apperrors.KindConflict:
		return "DUPLICATE"
	default:
		return "FAILED"
	}
}
