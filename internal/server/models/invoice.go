package models

// Invoice is one uploaded document plus whatever an extraction pass managed
// to read out of it.
//
// The seven extracted attributes are stored as opaque text, exactly as the
// extractor produced them: no date parsing, no numeric normalization. A nil
// field means extraction produced no value for it, which is distinct from
// an empty string.
type Invoice struct {
	ID       int64
	FilePath string

	InvoiceNumber   *string
	InvoiceDate     *string
	VendorName      *string
	TrnVatNumber    *string
	BeforeTaxAmount *string
	TaxAmount       *string
	Total           *string

	Reviewed bool
	OwnerID  int64
}

// ExtractionResult is the sparse outcome of one extraction pass over a
// document. Nil fields mean the extractor found nothing for that attribute.
type ExtractionResult struct {
	InvoiceNumber   *string
	InvoiceDate     *string
	VendorName      *string
	TrnVatNumber    *string
	BeforeTaxAmount *string
	TaxAmount       *string
	Total           *string
}

// ExtractedField names one of the correctable invoice attributes. The
// values match the database column names.
type ExtractedField string

const (
	FieldInvoiceNumber   ExtractedField = "invoice_number"
	FieldInvoiceDate     ExtractedField = "invoice_date"
	FieldVendorName      ExtractedField = "vendor_name"
	FieldTrnVatNumber    ExtractedField = "trn_vat_number"
	FieldBeforeTaxAmount ExtractedField = "before_tax_amount"
	FieldTaxAmount       ExtractedField = "tax_amount"
	FieldTotal           ExtractedField = "total"
)

// ExtractedFieldNames lists the correctable attributes in schema order.
func ExtractedFieldNames() []ExtractedField {
	return []ExtractedField{
		FieldInvoiceNumber,
		FieldInvoiceDate,
		FieldVendorName,
		FieldTrnVatNumber,
		FieldBeforeTaxAmount,
		FieldTaxAmount,
		FieldTotal,
	}
}

// IsExtractedField reports whether name refers to one of the seven stored
// extraction attributes.
func IsExtractedField(name string) bool {
	switch ExtractedField(name) {
	case FieldInvoiceNumber, FieldInvoiceDate, FieldVendorName,
		FieldTrnVatNumber, FieldBeforeTaxAmount, FieldTaxAmount, FieldTotal:
		return true
	}
	return false
}

// FieldChanges is a sparse set of corrections to extracted attributes.
// A key that is absent leaves the column untouched, a nil value clears the
// column, and a non-nil value replaces it.
type FieldChanges map[ExtractedField]*string
