// Package cli implements the interactive Vinylvault front end: a small REPL
// over the account service, the record keeper and the purchase ledger.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/waxworks/vinylvault/internal/account"
	"github.com/waxworks/vinylvault/internal/config"
	"github.com/waxworks/vinylvault/internal/keeper"
	"github.com/waxworks/vinylvault/internal/ledger"
	"github.com/waxworks/vinylvault/internal/logging"
)

// App holds the wired components and the interactive I/O state. It caches no
// password or key material: every operation that needs the password prompts
// for it.
type App struct {
	config   *config.Config
	accounts *account.Service
	keeper   *keeper.Keeper
	ledger   *ledger.Ledger
	log      logging.Logger

	reader   *bufio.Reader
	out      io.Writer
	userName string
}

// NewApp constructs the CLI over already-wired components.
func NewApp(cfg *config.Config, accounts *account.Service, k *keeper.Keeper, led *ledger.Ledger, log logging.Logger) *App {
	return &App{
		config:   cfg,
		accounts: accounts,
		keeper:   k,
		ledger:   led,
		log:      log,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}
}

// Run starts the REPL and blocks until the user exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner, a.out)
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" {
		s = a.userName
	}
	if a.keeper.IsSessionValid(context.Background()) {
		if s != "" {
			s += " "
		}
		s += "session ok"
	}
	if s != "" {
		s = "(" + s + ")"
	}
	return s
}
