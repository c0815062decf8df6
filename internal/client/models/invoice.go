package models

import (
	"fmt"
	"strings"
)

// ExtractedFieldNames lists the invoice attributes the server accepts in
// correction payloads, in display order.
var ExtractedFieldNames = []string{
	"invoice_number",
	"invoice_date",
	"vendor_name",
	"trn_vat_number",
	"before_tax_amount",
	"tax_amount",
	"total",
}

// Invoice mirrors the API wire shape. Extracted attributes are pointers:
// nil means the extraction produced nothing for that field.
type Invoice struct {
	ID       int64  `json:"id"`
	FilePath string `json:"file_path"`

	InvoiceNumber   *string `json:"invoice_number"`
	InvoiceDate     *string `json:"invoice_date"`
	VendorName      *string `json:"vendor_name"`
	TrnVatNumber    *string `json:"trn_vat_number"`
	BeforeTaxAmount *string `json:"before_tax_amount"`
	TaxAmount       *string `json:"tax_amount"`
	Total           *string `json:"total"`

	Reviewed bool  `json:"reviewed"`
	OwnerID  int64 `json:"owner_id"`
}

// ReviewState renders the review latch for display.
func (i *Invoice) ReviewState() string {
	if i.Reviewed {
		return "reviewed"
	}
	return "unreviewed"
}

// String renders a one-line overview used by the list command.
func (i *Invoice) String() string {
	return fmt.Sprintf("%d\t%s\t%s\t%s\t%s\t[%s]",
		i.ID,
		orDash(i.InvoiceNumber),
		orDash(i.VendorName),
		orDash(i.InvoiceDate),
		orDash(i.Total),
		i.ReviewState(),
	)
}

// Details renders the full record, one attribute per line.
func (i *Invoice) Details() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Invoice #%d [%s]\n", i.ID, i.ReviewState())
	fmt.Fprintf(&b, "Document key: %s\n", i.FilePath)
	fmt.Fprintf(&b, "Invoice number: %s\n", orDash(i.InvoiceNumber))
	fmt.Fprintf(&b, "Invoice date: %s\n", orDash(i.InvoiceDate))
	fmt.Fprintf(&b, "Vendor name: %s\n", orDash(i.VendorName))
	fmt.Fprintf(&b, "TRN/VAT number: %s\n", orDash(i.TrnVatNumber))
	fmt.Fprintf(&b, "Before tax: %s\n", orDash(i.BeforeTaxAmount))
	fmt.Fprintf(&b, "Tax: %s\n", orDash(i.TaxAmount))
	fmt.Fprintf(&b, "Total: %s", orDash(i.Total))
	return b.String()
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
