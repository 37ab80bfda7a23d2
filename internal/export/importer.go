package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"crazygels/internal/logger"
	"crazygels/internal/models"

	"gorm.io/gorm"
)

// RowError records why one CSV row was skipped.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult summarises a bulk CSV import. Rows fail independently; there
// is no rollback.
type ImportResult struct {
	TotalRows int        `json:"total_rows"`
	Inserted  int        `json:"inserted"`
	Updated   int        `json:"updated"`
	Errors    []RowError `json:"errors"`
}

// Importer loads catalog rows from an admin-uploaded CSV.
type Importer struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewImporter(db *gorm.DB, logger *logger.Logger) *Importer {
	return &Importer{
		db:     db,
		logger: logger,
	}
}

var importColumns = []string{
	"product_hash", "display_name", "category", "product_type", "brand",
	"retail_price", "currency", "image_url", "source_url", "description",
}

// ImportCatalog reads the CSV and upserts one catalog row per line, keyed on
// product_hash. Existing non-empty fields are preserved when the CSV cell is
// blank.
func (im *Importer) ImportCatalog(r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := map[string]int{}
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, required := range []string{"product_hash", "display_name"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	result := &ImportResult{}
	rowNum := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: err.Error()})
			continue
		}
		result.TotalRows++

		cell := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		hash := cell("product_hash")
		name := cell("display_name")
		if hash == "" || name == "" {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: "product_hash and display_name are required"})
			continue
		}

		var price *float64
		if raw := cell("retail_price"); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || v < 0 {
				result.Errors = append(result.Errors, RowError{Row: rowNum, Message: "invalid retail_price"})
				continue
			}
			price = &v
		}

		inserted, err := im.upsertRow(hash, name, price, cell)
		if err != nil {
			im.logger.Error("Import row %d failed: %v", rowNum, err)
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: err.Error()})
			continue
		}
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}

	return result, nil
}

func (im *Importer) upsertRow(hash, name string, price *float64, cell func(string) string) (bool, error) {
	var existing models.CatalogProduct
	err := im.db.Where("product_hash = ?", hash).First(&existing).Error

	if err == gorm.ErrRecordNotFound {
		entry := models.CatalogProduct{
			ProductHash: hash,
			DisplayName: name,
			Category:    cell("category"),
			ProductType: cell("product_type"),
			Status:      string(models.StatusResearch),
			Source:      "csv_import",
		}
		applyOptional(&entry, price, cell)
		if entry.PriceTier == "" {
			entry.PriceTier = "unknown"
		}
		return true, im.db.Create(&entry).Error
	}
	if err != nil {
		return false, err
	}

	existing.DisplayName = name
	if v := cell("category"); v != "" {
		existing.Category = v
	}
	if v := cell("product_type"); v != "" {
		existing.ProductType = v
	}
	applyOptional(&existing, price, cell)
	return false, im.db.Save(&existing).Error
}

func applyOptional(entry *models.CatalogProduct, price *float64, cell func(string) string) {
	if price != nil {
		entry.RetailPrice = price
		currency := cell("currency")
		if currency == "" {
			currency = "EUR"
		}
		entry.Currency = &currency
	}
	if v := cell("brand"); v != "" {
		entry.Brand = &v
	}
	if v := cell("image_url"); v != "" {
		entry.ImageURL = &v
	}
	if v := cell("source_url"); v != "" {
		entry.SourceURL = &v
	}
	if v := cell("description"); v != "" {
		entry.DescriptionGenerated = &v
	}
}
