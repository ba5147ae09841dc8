package models

// ImportTemplateColumn defines a column of the spreadsheet layout.
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // string, number, uuid
	Example     string `json:"example"`
}

// ImportTemplate is the spreadsheet layout for one item kind.
type ImportTemplate struct {
	Entity  string                 `json:"entity"`
	Version string                 `json:"version"`
	Columns []ImportTemplateColumn `json:"columns"`
}

// ImportRowError represents an error for a specific row
type ImportRowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportResult represents the result of an import operation
type ImportResult struct {
	TotalRows    int              `json:"totalRows"`
	CreatedCount int              `json:"createdCount"`
	FailedCount  int              `json:"failedCount"`
	Errors       []ImportRowError `json:"errors,omitempty"`
	CreatedIDs   []string         `json:"createdIds,omitempty"`
}

var commonImportColumns = []ImportTemplateColumn{
	{Name: "name", Description: "Item name", Required: true, Type: "string", Example: "Red Shoes"},
	{Name: "description", Description: "Item description", Required: true, Type: "string", Example: "Leather running shoes"},
	{Name: "price", Description: "Price, zero or more", Required: true, Type: "number", Example: "49.99"},
	{Name: "categoryId", Description: "Category UUID", Required: true, Type: "uuid", Example: ""},
	{Name: "isAvailable", Description: "true or false, defaults to true", Required: false, Type: "boolean", Example: "true"},
}

// ImportTemplateFor returns the spreadsheet layout for kind.
func ImportTemplateFor(kind ItemKind) ImportTemplate {
	columns := append([]ImportTemplateColumn{}, commonImportColumns...)
	switch kind {
	case KindProduct:
		columns = append(columns,
			ImportTemplateColumn{Name: "sku", Description: "Stock keeping unit, unique among active products", Required: true, Type: "string", Example: "SHO-RED-42"},
			ImportTemplateColumn{Name: "stock", Description: "Quantity on hand, fractions allowed", Required: false, Type: "number", Example: "10"},
			ImportTemplateColumn{Name: "discountPrice", Description: "Must be below price", Required: false, Type: "number", Example: ""},
		)
	case KindService:
		columns = append(columns,
			ImportTemplateColumn{Name: "serviceType", Description: "Free-text service label", Required: false, Type: "string", Example: "Repair"},
			ImportTemplateColumn{Name: "duration", Description: "Duration in minutes", Required: false, Type: "number", Example: "60"},
		)
	}
	return ImportTemplate{Entity: kind.Plural(), Version: "1.0", Columns: columns}
}
