// Package cli provides the interactive InvoiceKeeper command-line client.
//
// It wires configuration, the HTTP API client, and an interactive REPL for
// operators reviewing extracted invoices. Typical flow: prompt for
// credentials, start a background connectivity watcher, and execute user
// commands.
//
// Key features:
//   - Register / Login / Logout against the server's user directory
//   - Upload an invoice document and record it for extraction
//   - List / Show invoices, including the unreviewed backlog
//   - Correct an extracted field, mark an invoice reviewed, reopen it
//   - Download the stored document via a presigned URL
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
