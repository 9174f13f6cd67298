// Package catalog reads product catalogs from spreadsheets.
package catalog

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Sahani-Mohottige/SafeOnlineShop/internal/app/model"
	"github.com/xuri/excelize/v2"
)

// Columns recognised in the header row. Order in the sheet does not matter.
const (
	ColName          = "name"
	ColDescription   = "description"
	ColPrice         = "price"
	ColDiscountPrice = "discount_price"
	ColCountInStock  = "count_in_stock"
	ColSKU           = "sku"
	ColCategory      = "category"
	ColBrand         = "brand"
	ColSizes         = "sizes"
	ColColors        = "colors"
	ColCollections   = "collections"
	ColMaterial      = "material"
	ColGender        = "gender"
	ColImageURL      = "image_url"
	ColRating        = "rating"
	ColNumReviews    = "num_reviews"
)

var requiredColumns = []string{ColName, ColSKU, ColPrice}

// Stats summarises a read.
type Stats struct {
	Rows    int
	Skipped int
	// Duplicates counts rows whose SKU already appeared earlier in the sheet.
	Duplicates int
}

// ReadProducts parses the first sheet of an XLSX workbook. Rows without a name,
// SKU or positive price are skipped; a repeated SKU keeps the first row.
func ReadProducts(r io.Reader) ([]model.Product, Stats, error) {
	var stats Stats

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to open XLSX: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, stats, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, stats, fmt.Errorf("no data found in XLSX file")
	}

	index := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, stats, fmt.Errorf("missing required column %q", col)
		}
	}

	var products []model.Product
	seen := make(map[string]bool)
	for _, row := range rows[1:] {
		stats.Rows++
		cell := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		product, ok := productFromRow(cell)
		if !ok {
			stats.Skipped++
			continue
		}
		if seen[product.SKU] {
			stats.Duplicates++
			continue
		}
		seen[product.SKU] = true
		products = append(products, product)
	}

	return products, stats, nil
}

func productFromRow(cell func(string) string) (model.Product, bool) {
	price, err := strconv.ParseFloat(cell(ColPrice), 64)
	if err != nil || price <= 0 {
		return model.Product{}, false
	}
	p := model.Product{
		Name:          cell(ColName),
		Description:   cell(ColDescription),
		Price:         price,
		DiscountPrice: parseFloat(cell(ColDiscountPrice)),
		CountInStock:  parseInt(cell(ColCountInStock)),
		SKU:           cell(ColSKU),
		Category:      cell(ColCategory),
		Brand:         cell(ColBrand),
		Sizes:         splitList(cell(ColSizes)),
		Colors:        splitList(cell(ColColors)),
		Collections:   cell(ColCollections),
		Material:      cell(ColMaterial),
		Gender:        cell(ColGender),
		ImageURL:      cell(ColImageURL),
		Rating:        parseFloat(cell(ColRating)),
		NumReviews:    parseInt(cell(ColNumReviews)),
	}
	if p.Name == "" || p.SKU == "" {
		return model.Product{}, false
	}
	return p, true
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
