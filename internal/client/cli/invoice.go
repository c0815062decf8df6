package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dbelyakov/invoicekeeper/internal/client/models"
	"github.com/dbelyakov/invoicekeeper/internal/filex"
	"github.com/dbelyakov/invoicekeeper/internal/netx"
)

// uploadFile and downloadFile are indirections over the raw presigned-URL
// transfers so command tests stay off the network.
var uploadFile = netx.UploadToS3PresignedURL
var downloadFile = netx.DownloadFromS3PresignedURL

// promptInvoiceID reads and parses a numeric invoice id.
func (a *App) promptInvoiceID(prompt string) (int64, error) {
	raw, err := GetSimpleText(a.reader, prompt, os.Stdout)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("invalid invoice id %q", raw)
		return 0, fmt.Errorf("invalid invoice id %q", raw)
	}
	return id, nil
}

// Upload is a small workflow helper that:
//  1. reads a local document from a prompted path,
//  2. asks the server for a storage key and presigned PUT URL,
//  3. uploads the raw bytes,
//  4. records the invoice under the key so the server runs extraction.
func (a *App) Upload(ctx context.Context) error {
	filePath, err := GetSimpleText(a.reader, "Enter path to the invoice document", os.Stdout)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	key, uploadURL, err := a.api.NewUploadURL(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	if err := uploadFile(ctx, uploadURL, data); err != nil {
		log.Printf("error: %v", err)
		return err
	}

	invoice, err := a.api.CreateInvoice(ctx, key, nil)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	log.Printf("Invoice %d recorded (document key %s)", invoice.ID, invoice.FilePath)
	return nil
}

// List prints a one-line overview for each of the caller's invoices.
func (a *App) List(ctx context.Context) error {
	return a.printInvoices(ctx, false)
}

// ListUnreviewed prints only the invoices still awaiting review.
func (a *App) ListUnreviewed(ctx context.Context) error {
	return a.printInvoices(ctx, true)
}

func (a *App) printInvoices(ctx context.Context, unreviewedOnly bool) error {
	invoices, err := a.api.ListInvoices(ctx, unreviewedOnly)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	for _, invoice := range invoices {
		fmt.Println(invoice)
	}
	return nil
}

// Show fetches and displays a single invoice.
func (a *App) Show(ctx context.Context) error {
	id, err := a.promptInvoiceID("Enter invoice id to show")
	if err != nil {
		return err
	}

	invoice, err := a.api.GetInvoice(ctx, id)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	fmt.Println(invoice.Details())
	return nil
}

// Correct prompts for one extracted field and its replacement value, then
// submits the correction. An empty value clears the field back to unknown.
func (a *App) Correct(ctx context.Context) error {
	id, err := a.promptInvoiceID("Enter invoice id to correct")
	if err != nil {
		return err
	}

	field, err := GetSimpleText(a.reader, "Enter field name ("+strings.Join(models.ExtractedFieldNames, ", ")+")", os.Stdout)
	if err != nil {
		return err
	}

	value, err := GetSimpleText(a.reader, "Enter new value (empty clears the field)", os.Stdout)
	if err != nil {
		return err
	}

	fields := map[string]*string{}
	if value == "" {
		fields[field] = nil
	} else {
		fields[field] = &value
	}

	invoice, err := a.api.UpdateInvoice(ctx, id, fields)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	log.Printf("Invoice %d updated", invoice.ID)
	return nil
}

// Review marks an invoice reviewed. Repeating it is a no-op on the server.
func (a *App) Review(ctx context.Context) error {
	id, err := a.promptInvoiceID("Enter invoice id to mark reviewed")
	if err != nil {
		return err
	}

	invoice, err := a.api.MarkReviewed(ctx, id)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	log.Printf("Invoice %d is now %s", invoice.ID, invoice.ReviewState())
	return nil
}

// Reopen puts a reviewed invoice back into the unreviewed backlog.
func (a *App) Reopen(ctx context.Context) error {
	id, err := a.promptInvoiceID("Enter invoice id to reopen")
	if err != nil {
		return err
	}

	invoice, err := a.api.ReopenReview(ctx, id)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	log.Printf("Invoice %d is now %s", invoice.ID, invoice.ReviewState())
	return nil
}

// Download saves the stored document locally:
//  1. resolves the invoice to learn its document key,
//  2. requests a presigned GET URL,
//  3. downloads the content,
//  4. ensures a local "download" directory,
//  5. writes the file under the key's basename and prints the path.
func (a *App) Download(ctx context.Context) error {
	id, err := a.promptInvoiceID("Enter invoice id to download")
	if err != nil {
		return err
	}

	invoice, err := a.api.GetInvoice(ctx, id)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	url, err := a.api.DocumentURL(ctx, id)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	content, err := downloadFile(ctx, url)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	dir, err := filex.EnsureSubDir("download")
	if err != nil {
		return err
	}

	outputFile := filepath.Join(dir, filepath.Base(invoice.FilePath))
	if err := os.WriteFile(outputFile, content, 0o600); err != nil {
		return err
	}

	log.Printf("Document saved to: %s", outputFile)
	return nil
}

// Delete removes an invoice by its identifier, prompting the user for the ID.
func (a *App) Delete(ctx context.Context) error {
	id, err := a.promptInvoiceID("Enter invoice id to delete")
	if err != nil {
		return err
	}
	return a.api.DeleteInvoice(ctx, id)
}
