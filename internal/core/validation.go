package core

// validation.go turns a raw CSV row into a Product.
//
// Validation happens in two steps:
//  1. Normalization: trim every cell, map blank optional cells to nil and
//     parse the numeric cells. Parse failures are reported against the field.
//  2. Constraints: struct tags evaluated by go-playground/validator plus a
//     struct-level price/mrp rule. Every failing rule is reported, not only
//     the first one.

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Column names recognized in an uploaded file.
const (
	ColSKU      = "sku"
	ColName     = "name"
	ColBrand    = "brand"
	ColColor    = "color"
	ColSize     = "size"
	ColMRP      = "mrp"
	ColPrice    = "price"
	ColQuantity = "quantity"
)

// columns lists the template header in upload order.
var columns = []string{ColSKU, ColName, ColBrand, ColColor, ColSize, ColMRP, ColPrice, ColQuantity}

// fieldOrder fixes the order messages are reported in: template order.
var fieldOrder = func() map[string]int {
	order := make(map[string]int, len(columns))
	for i, col := range columns {
		order[col] = i
	}
	return order
}()

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string // Column name
	Value   string // The trimmed input value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// RowResult is the outcome of validating one row: either a normalized
// product or the list of every rule the row violates.
type RowResult struct {
	Product *Product
	Errors  []ValidationError
}

// Valid reports whether the row produced a product.
func (r RowResult) Valid() bool {
	return r.Product != nil && len(r.Errors) == 0
}

// Messages returns the errors formatted as "field: message".
func (r RowResult) Messages() []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Error()
	}
	return out
}

// productInput is the normalized row the constraint tags run against.
type productInput struct {
	SKU      string  `csv:"sku" validate:"required"`
	Name     string  `csv:"name" validate:"required"`
	Brand    string  `csv:"brand" validate:"required"`
	MRP      float64 `csv:"mrp" validate:"gt=0"`
	Price    float64 `csv:"price" validate:"gt=0"`
	Quantity int     `csv:"quantity" validate:"gte=0"`

	// parsed tracks which numeric columns converted cleanly; rules for the
	// others are skipped because the parse error already covers them.
	parsed map[string]bool
}

// RowValidator validates raw rows against the product rules.
type RowValidator struct {
	validate *validator.Validate
}

// NewRowValidator creates a validator with the product rules registered.
func NewRowValidator() *RowValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("csv"); name != "" {
			return name
		}
		return strings.ToLower(fld.Name)
	})
	v.RegisterStructValidation(priceWithinMRP, productInput{})

	return &RowValidator{validate: v}
}

// priceWithinMRP enforces price <= mrp when both parsed.
func priceWithinMRP(sl validator.StructLevel) {
	in := sl.Current().Interface().(productInput)
	if !in.parsed[ColMRP] || !in.parsed[ColPrice] {
		return
	}
	if in.Price > in.MRP {
		sl.ReportError(in.Price, ColPrice, "Price", "ltefield", ColMRP)
	}
}

// Validate normalizes row and checks every rule. Missing columns behave as
// empty cells.
func (v *RowValidator) Validate(row RawRow) RowResult {
	var errs []ValidationError

	in := productInput{
		SKU:    cell(row, ColSKU),
		Name:   cell(row, ColName),
		Brand:  cell(row, ColBrand),
		parsed: make(map[string]bool, 3),
	}

	if f, err := parseDecimal(cell(row, ColMRP)); err != nil {
		errs = append(errs, ValidationError{Field: ColMRP, Value: cell(row, ColMRP), Message: err.Error()})
	} else {
		in.MRP = f
		in.parsed[ColMRP] = true
	}

	if f, err := parseDecimal(cell(row, ColPrice)); err != nil {
		errs = append(errs, ValidationError{Field: ColPrice, Value: cell(row, ColPrice), Message: err.Error()})
	} else {
		in.Price = f
		in.parsed[ColPrice] = true
	}

	if n, err := parseQuantity(cell(row, ColQuantity)); err != nil {
		errs = append(errs, ValidationError{Field: ColQuantity, Value: cell(row, ColQuantity), Message: err.Error()})
	} else {
		in.Quantity = n
		in.parsed[ColQuantity] = true
	}

	if err := v.validate.Struct(in); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			errs = append(errs, ValidationError{Message: err.Error()})
		}
		for _, fe := range fieldErrs {
			if isNumericColumn(fe.Field()) && !in.parsed[fe.Field()] {
				continue
			}
			errs = append(errs, ValidationError{
				Field:   fe.Field(),
				Value:   fmt.Sprint(fe.Value()),
				Message: ruleMessage(fe),
			})
		}
	}

	if len(errs) > 0 {
		sort.SliceStable(errs, func(i, j int) bool {
			return fieldOrder[errs[i].Field] < fieldOrder[errs[j].Field]
		})
		return RowResult{Errors: errs}
	}

	return RowResult{Product: &Product{
		SKU:      in.SKU,
		Name:     in.Name,
		Brand:    in.Brand,
		Color:    optional(cell(row, ColColor)),
		Size:     optional(cell(row, ColSize)),
		MRP:      in.MRP,
		Price:    in.Price,
		Quantity: in.Quantity,
	}}
}

// ruleMessage renders a failed validator tag for the user.
func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "cannot be empty or whitespace"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "ltefield":
		return "must be less than or equal to " + fe.Param()
	default:
		return "failed " + fe.Tag() + " rule"
	}
}

func isNumericColumn(name string) bool {
	return name == ColMRP || name == ColPrice || name == ColQuantity
}

// cell returns the trimmed value for column, matching the header
// case-insensitively.
func cell(row RawRow, column string) string {
	if v, ok := row[column]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range row {
		if strings.EqualFold(strings.TrimSpace(k), column) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// optional maps a blank cell to nil.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func parseDecimal(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("is required")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("must be a valid number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("must be a finite number")
	}
	return f, nil
}

func parseQuantity(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("is required")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("must be a valid integer")
	}
	return n, nil
}
