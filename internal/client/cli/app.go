package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/moodjournal/internal/client/client"
	"github.com/dmitrijs2005/moodjournal/internal/client/config"
	"github.com/dmitrijs2005/moodjournal/internal/client/models"
	"github.com/dmitrijs2005/moodjournal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/moodjournal/internal/client/services"
	"github.com/dmitrijs2005/moodjournal/internal/client/session"
	"github.com/dmitrijs2005/moodjournal/internal/filex"
	"github.com/dmitrijs2005/moodjournal/internal/logging"
	"golang.org/x/term"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	store          *session.Store
	authService    services.AuthService
	entryService   services.EntryService
	insightService services.InsightService
	reader         *bufio.Reader
	out            io.Writer
	color          bool
	loc            *time.Location
	now            func() time.Time
	closers        []io.Closer
}

// NewApp opens the local database, restores nothing yet, and wires the
// session store, the HTTP client and the services on top of it.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Nop{}
	}

	dbPath, err := filex.EnsureParentDir(c.DatabasePath)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, dbPath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", dbPath, "error", err)
		return nil, err
	}

	store := session.NewStore(session.NewSQLitePersister(metadata.NewSQLiteRepository(db)), logger)

	apiClient, err := client.NewHTTPClient(c.ServerBaseURL, store,
		client.WithTimeout(c.RequestTimeout),
		client.WithRateLimit(c.RequestsPerSecond),
		client.WithLogger(logger),
		client.WithUnauthorizedHandler(store.ForceLogout),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		config:         c,
		logger:         logger,
		store:          store,
		authService:    services.NewAuthService(apiClient, store, logger),
		entryService:   services.NewEntryService(apiClient, store, logger),
		insightService: services.NewInsightService(apiClient, store, logger),
		reader:         bufio.NewReader(os.Stdin),
		out:            os.Stdout,
		color:          term.IsTerminal(int(os.Stdout.Fd())),
		loc:            time.Local,
		now:            time.Now,
		closers:        []io.Closer{apiClient, db},
	}, nil
}

// Run resumes the persisted session and blocks in the REPL until the user
// exits or stdin is closed.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn("Welcome to the mood journal (type 'help' for commands)")
	a.resume(ctx)
	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close releases the HTTP client and the database.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// resume restores the stored session and, when it is still valid, loads
// the latest entries. Failures are reported and leave the cached view.
func (a *App) resume(ctx context.Context) {
	user, err := a.authService.Resume(ctx)
	if err != nil {
		a.showError(err)
		return
	}
	if user == nil {
		if msg := a.store.Err(); msg != "" {
			a.println(msg)
			a.store.ClearError()
		}
		return
	}
	a.println("Welcome back,", user.DisplayName())

	if _, err := a.entryService.Refresh(ctx, models.EntryQuery{}); err != nil {
		a.showError(err)
		a.println("Showing entries saved on this device.")
		a.printLastSaved(ctx)
	}
}

func (a *App) printLastSaved(ctx context.Context) {
	at, err := a.store.SavedAt(ctx)
	if err != nil {
		a.logger.Warn(ctx, "failed to read last save time", "error", err)
		return
	}
	if at.IsZero() {
		return
	}
	a.printf("Last saved %s.\n", at.In(a.location()).Format("Jan 2, 2006 15:04"))
}

func (a *App) isLoggedIn() bool {
	return a.store.IsAuthenticated()
}

func (a *App) getStatus() string {
	u := a.store.User()
	if !a.store.IsAuthenticated() || u == nil {
		return ""
	}
	return fmt.Sprintf("(%s)", u.DisplayName())
}

// showError prints the user-facing text for err and dismisses the stored
// error, which has now been seen.
func (a *App) showError(err error) {
	if err == nil {
		return
	}
	a.logger.Debug(context.Background(), "command failed", "error", err)
	a.println("Error:", services.Message(err))
	a.store.ClearError()
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) clock() time.Time {
	if a.now == nil {
		return time.Now()
	}
	return a.now()
}

func (a *App) location() *time.Location {
	if a.loc == nil {
		return time.Local
	}
	return a.loc
}
