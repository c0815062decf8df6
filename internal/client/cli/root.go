package cli

import (
	"bufio"
	"context"
	"log"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	parts := make([]string, 0, 2)
	if a.userName != "" {
		parts = append(parts, a.userName)
	}
	if a.Mode != "" {
		parts = append(parts, string(a.Mode))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Root runs the interactive session: an initial login prompt, the
// connectivity watcher, then the command loop until EOF or exit.
func (a *App) Root(ctx context.Context) {
	log.Println("Welcome to InvoiceKeeper CLI (type 'help' for commands)")

	_ = a.Login(ctx)

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}
