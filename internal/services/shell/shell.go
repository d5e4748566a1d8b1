package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"cafeteria/internal/api"
	"cafeteria/internal/logger"
	"cafeteria/internal/messaging"
	"cafeteria/internal/models"
	"cafeteria/internal/services/menu"
	"cafeteria/internal/services/order"
	"cafeteria/internal/services/session"
)

// Backend is the part of the REST client the shell drives
type Backend interface {
	menu.Fetcher

	SetToken(token string)
	Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error)
	VerifyCode(ctx context.Context, email, code string) (*models.VerifyCodeResponse, error)
	Me(ctx context.Context) (*models.User, error)

	CreateOrder(ctx context.Context, req models.OrderRequest) (*models.Order, error)
	Orders(ctx context.Context) ([]models.Order, error)
	Order(ctx context.Context, id int) (*models.Order, error)
	PayOrder(ctx context.Context, id int, filename string, proof io.Reader) error
	Receipt(ctx context.Context, id int, w io.Writer) (api.Download, error)

	UpdateOrderStatus(ctx context.Context, id int, status models.OrderStatus) error
	SummaryReport(ctx context.Context, date models.Date) (*models.SummaryReport, error)
	TableReport(ctx context.Context, date models.Date, w io.Writer) (api.Download, error)
	ExportModuleMenu(ctx context.Context, w io.Writer) (api.Download, error)
	SetModuleMenu(ctx context.Context, weekStart models.Date, schedule models.WeekSchedule) error
}

// Options configures a Shell
type Options struct {
	Backend   Backend
	Store     session.Store
	Publisher messaging.EventPublisher
	Logger    *logger.Logger
	Out       io.Writer
	Terminal  string
	// WeekStart is normalized to its Monday; zero means the current week
	WeekStart time.Time
	Now       func() time.Time
}

// Shell owns everything the browser pages kept in globals: the session, the
// loaded menu, the selected week and the order being built. Commands are
// processed one at a time.
type Shell struct {
	backend   Backend
	store     session.Store
	publisher messaging.EventPublisher
	logger    *logger.Logger
	out       io.Writer
	terminal  string
	now       func() time.Time

	loader  *menu.Loader
	builder *order.Builder

	mu        sync.Mutex
	session   session.Session
	weekStart models.Date
}

func New(opts Options) *Shell {
	if opts.Publisher == nil {
		opts.Publisher = messaging.NopPublisher{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.WeekStart.IsZero() {
		opts.WeekStart = opts.Now()
	}

	return &Shell{
		backend:   opts.Backend,
		store:     opts.Store,
		publisher: opts.Publisher,
		logger:    opts.Logger,
		out:       opts.Out,
		terminal:  opts.Terminal,
		now:       opts.Now,
		loader:    menu.NewLoader(opts.Backend, opts.Logger),
		builder:   order.NewBuilder(),
		weekStart: order.WeekStart(opts.WeekStart),
	}
}

// Restore loads a stored session and attaches its token to the backend
func (s *Shell) Restore(ctx context.Context) error {
	sess, err := s.store.Load(ctx)
	if errors.Is(err, session.ErrNoSession) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
	s.backend.SetToken(sess.Token)

	s.logger.Info("session_restored", "Restored stored session", "", map[string]interface{}{
		"role":     sess.Role,
		"terminal": s.terminal,
	})
	return nil
}

// Expire drops the session after the backend rejected the token. It is
// registered as the API client's unauthorized hook.
func (s *Shell) Expire() {
	s.mu.Lock()
	s.session = session.Session{}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Error("session_clear_failed", "Failed to clear expired session", "", err, nil)
	}
}

// Session returns a copy of the current session
func (s *Shell) Session() session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// WeekStart returns the Monday of the selected week
func (s *Shell) WeekStart() models.Date {
	return s.weekStart
}

// Run reads commands from in until EOF, "quit" or ctx cancellation. Command
// errors are printed and do not stop the loop.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	s.prompt()
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			return nil
		}
		if line != "" {
			if err := s.Execute(ctx, line); err != nil {
				s.report(err)
			}
		}
		s.prompt()
	}
	return scanner.Err()
}

func (s *Shell) prompt() {
	fmt.Fprint(s.out, "> ")
}

// report turns a command error into a message for the user
func (s *Shell) report(err error) {
	var (
		apiErr   *api.APIError
		valErr   order.ValidationError
		usageErr *usageError
	)
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		s.builder.Reset()
		fmt.Fprintln(s.out, "Session expired. Log in again with: login <email>")
	case errors.Is(err, api.ErrNotLoggedIn):
		fmt.Fprintln(s.out, "Not logged in. Start with: login <email>")
	case errors.Is(err, menu.ErrSuperseded):
	case errors.As(err, &usageErr):
		fmt.Fprintf(s.out, "Usage: %s\n", usageErr.usage)
	case errors.As(err, &valErr):
		fmt.Fprintf(s.out, "Cannot submit: %s\n", valErr.Message)
	case errors.As(err, &apiErr):
		fmt.Fprintf(s.out, "Server error %d: %s\n", apiErr.StatusCode, apiErr.Detail)
	default:
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
}

type usageError struct {
	usage string
}

func (e *usageError) Error() string {
	return "usage: " + e.usage
}
