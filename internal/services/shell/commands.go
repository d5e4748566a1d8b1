package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"cafeteria/internal/api"
	"cafeteria/internal/models"
	"cafeteria/internal/services/order"
	"cafeteria/internal/services/session"
)

type command struct {
	usage string
	help  string
	run   func(s *Shell, ctx context.Context, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"login":       {"login <email>", "send a login code to email", (*Shell).login},
		"register":    {"register <email> <name> <surname>", "create an account and send a code", (*Shell).register},
		"verify":      {"verify <email> <code>", "finish login with the emailed code", (*Shell).verify},
		"me":          {"me", "show the logged in user", (*Shell).me},
		"logout":      {"logout", "forget the stored session", (*Shell).logout},
		"week":        {"week [YYYY-MM-DD|next|prev]", "select the week containing date", (*Shell).week},
		"menu":        {"menu", "show the week's menu with your selection", (*Shell).showMenu},
		"toggle":      {"toggle <day> <dish>", "select or unselect a dish", (*Shell).toggle},
		"add":         {"add <day> <dish> [n]", "add n portions (default 1)", (*Shell).add},
		"remove":      {"remove <day> <dish> [n]", "remove n portions (default 1)", (*Shell).remove},
		"total":       {"total", "show selected dishes and price", (*Shell).total},
		"submit":      {"submit", "send the order", (*Shell).submit},
		"reset":       {"reset", "clear the selection", (*Shell).reset},
		"orders":      {"orders", "list your orders", (*Shell).orders},
		"pay":         {"pay <order> <file>", "upload payment proof", (*Shell).pay},
		"receipt":     {"receipt <order> <file>", "download payment proof to file", (*Shell).receipt},
		"status":      {"status <order> <status>", "change an order's status (admin)", (*Shell).setStatus},
		"report":      {"report [YYYY-MM-DD]", "revenue per dish for a day (admin, cook)", (*Shell).salesReport},
		"report-doc":  {"report-doc <YYYY-MM-DD> <file>", "download the table-setting document for a day (admin)", (*Shell).reportDoc},
		"menu-export": {"menu-export <file>", "download the module menu as CSV (admin)", (*Shell).menuExport},
		"menu-set":    {"menu-set <day> <id,id,...|->", "replace the dishes served on a day (admin)", (*Shell).menuSet},
		"help":        {"help", "list commands", (*Shell).help},
	}
}

// Execute runs a single command line
func (s *Shell) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	cmd, ok := commands[strings.ToLower(fields[0])]
	if !ok {
		return fmt.Errorf("unknown command %q, type help", fields[0])
	}

	s.logger.Debug("command_received", "Executing command", "", map[string]interface{}{
		"command": fields[0],
		"args":    len(fields) - 1,
	})
	return cmd.run(s, ctx, fields[1:])
}

func (s *Shell) login(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return &usageError{commands["login"].usage}
	}
	resp, err := s.backend.Register(ctx, models.RegisterRequest{Email: args[0], Status: "active"})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s. Check %s and run: verify %s <code>\n", resp.Message, args[0], args[0])
	return nil
}

func (s *Shell) register(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return &usageError{commands["register"].usage}
	}
	resp, err := s.backend.Register(ctx, models.RegisterRequest{
		Email:         args[0],
		Name:          args[1],
		SecondaryName: args[2],
		Status:        "active",
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s. Check %s and run: verify %s <code>\n", resp.Message, args[0], args[0])
	return nil
}

func (s *Shell) verify(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return &usageError{commands["verify"].usage}
	}
	resp, err := s.backend.VerifyCode(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	sess := session.New(resp.AccessToken, resp.User)
	s.backend.SetToken(sess.Token)
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()

	if err := s.store.Save(ctx, sess); err != nil {
		return err
	}

	s.logger.Info("user_logged_in", "User logged in", "", map[string]interface{}{
		"user_id":  resp.User.ID,
		"role":     sess.Role,
		"terminal": s.terminal,
	})
	fmt.Fprintf(s.out, "Logged in as %s (%s)\n", resp.User.FullName(), sess.Role)
	return nil
}

func (s *Shell) me(ctx context.Context, _ []string) error {
	user, err := s.backend.Me(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.session.User = user
	s.session.Role = models.RoleFor(*user)
	sess := s.session
	s.mu.Unlock()
	if err := s.store.Save(ctx, sess); err != nil {
		return err
	}

	fmt.Fprintf(s.out, "%s <%s>, role %s\n", user.FullName(), user.Email, sess.Role)
	return nil
}

func (s *Shell) logout(ctx context.Context, _ []string) error {
	s.mu.Lock()
	s.session = session.Session{}
	s.mu.Unlock()
	s.backend.SetToken("")
	s.builder.Reset()

	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Logged out")
	return nil
}

// week changes the selected week; the selection belongs to a week and is
// discarded
func (s *Shell) week(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return &usageError{commands["week"].usage}
	}

	target := s.now()
	if len(args) == 1 {
		switch args[0] {
		case "next":
			target = s.weekStart.AddDate(0, 0, 7)
		case "prev":
			target = s.weekStart.AddDate(0, 0, -7)
		default:
			d, err := models.ParseDate(args[0])
			if err != nil {
				return err
			}
			target = d.Time
		}
	}

	s.weekStart = order.WeekStart(target)
	s.builder.Reset()
	fmt.Fprintf(s.out, "Week of %s\n", s.weekStart)

	if err := s.loadMenu(ctx); err != nil {
		return err
	}
	s.renderMenu()
	return nil
}

func (s *Shell) showMenu(ctx context.Context, _ []string) error {
	if err := s.loadMenu(ctx); err != nil {
		return err
	}
	s.renderMenu()
	return nil
}

// loadMenu fetches the menu of the selected week and rebinds the builder
func (s *Shell) loadMenu(ctx context.Context) error {
	snap, err := s.loader.Load(ctx, s.weekStart)
	if err != nil {
		return err
	}
	if dropped := s.builder.Bind(snap.Catalog, snap.Schedule); dropped > 0 {
		fmt.Fprintf(s.out, "%d selected dish(es) are no longer on the menu and were removed\n", dropped)
	}
	return nil
}

// ensureMenu loads the menu once per week
func (s *Shell) ensureMenu(ctx context.Context) error {
	if snap := s.loader.Current(); snap != nil && snap.WeekStart.Equal(s.weekStart.Time) {
		return nil
	}
	return s.loadMenu(ctx)
}

func (s *Shell) toggle(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return &usageError{commands["toggle"].usage}
	}
	day, dishID, err := s.pick(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	if s.builder.Toggle(day, dishID) {
		fmt.Fprintf(s.out, "Selected %s on %s\n", s.dishName(dishID), models.DayName(day))
	} else {
		fmt.Fprintf(s.out, "Removed %s from %s\n", s.dishName(dishID), models.DayName(day))
	}
	s.printTotal()
	return nil
}

func (s *Shell) add(ctx context.Context, args []string) error {
	return s.adjust(ctx, "add", args, 1)
}

func (s *Shell) remove(ctx context.Context, args []string) error {
	return s.adjust(ctx, "remove", args, -1)
}

func (s *Shell) adjust(ctx context.Context, name string, args []string, sign int) error {
	if len(args) < 2 || len(args) > 3 {
		return &usageError{commands[name].usage}
	}
	n := 1
	if len(args) == 3 {
		v, err := strconv.Atoi(args[2])
		if err != nil || v <= 0 {
			return fmt.Errorf("portion count must be a positive number, got %q", args[2])
		}
		n = v
	}

	day, dishID, err := s.pick(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	qty := s.builder.Adjust(day, dishID, sign*n)
	fmt.Fprintf(s.out, "%s on %s: %d\n", s.dishName(dishID), models.DayName(day), qty)
	s.printTotal()
	return nil
}

// pick resolves day and dish arguments against the loaded menu
func (s *Shell) pick(ctx context.Context, dayArg, dishArg string) (int, int, error) {
	day, err := parseDay(dayArg)
	if err != nil {
		return 0, 0, err
	}
	dishID, err := strconv.Atoi(strings.TrimPrefix(dishArg, "#"))
	if err != nil {
		return 0, 0, fmt.Errorf("dish must be a numeric id, got %q", dishArg)
	}

	if err := s.ensureMenu(ctx); err != nil {
		return 0, 0, err
	}
	snap := s.loader.Current()
	if _, ok := snap.Catalog.Lookup(dishID); !ok {
		return 0, 0, fmt.Errorf("dish #%d is not in the catalog", dishID)
	}
	if !snap.Schedule.Offers(day, dishID) {
		return 0, 0, fmt.Errorf("dish #%d is not served on %s", dishID, models.DayName(day))
	}
	return day, dishID, nil
}

func (s *Shell) total(context.Context, []string) error {
	s.printTotal()
	return nil
}

func (s *Shell) reset(context.Context, []string) error {
	s.builder.Reset()
	fmt.Fprintln(s.out, "Selection cleared")
	return nil
}

// submit validates locally before any network call; on success the server
// total is shown and the selection cleared
func (s *Shell) submit(ctx context.Context, _ []string) error {
	req, err := s.builder.ToOrderRequest(s.weekStart.Time)
	if err != nil {
		return err
	}

	created, err := s.backend.CreateOrder(ctx, req)
	if err != nil {
		return err
	}
	s.builder.Reset()

	s.logger.Info("order_submitted", "Order accepted by backend", "", map[string]interface{}{
		"order_id":     created.ID,
		"week_start":   req.WeekStartDate.String(),
		"days":         len(req.Days),
		"total_amount": created.TotalAmount.String(),
	})
	fmt.Fprintf(s.out, "Order #%d created for the week of %s, total %s (%s)\n",
		created.ID, req.WeekStartDate, formatPrice(created.TotalAmount), created.Status)

	s.publishOrderEvent(ctx, models.EventOrderPlaced, *created, len(req.Days))
	return nil
}

func (s *Shell) orders(ctx context.Context, _ []string) error {
	list, err := s.backend.Orders(ctx)
	if err != nil {
		return err
	}
	s.renderOrders(list)
	return nil
}

func (s *Shell) pay(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return &usageError{commands["pay"].usage}
	}
	id, err := parseOrderID(args[0])
	if err != nil {
		return err
	}

	// the stored order carries the week and total the event is tallied under
	paid, err := s.backend.Order(ctx, id)
	if err != nil {
		return err
	}

	f, err := os.Open(args[1])
	if err != nil {
		return fmt.Errorf("failed to open payment proof: %w", err)
	}
	defer f.Close()

	if err := s.backend.PayOrder(ctx, id, args[1], f); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Payment proof for order #%d uploaded, waiting for review\n", id)

	previous := paid.Status
	paid.Status = models.StatusOnReview
	s.publishOrderEvent(ctx, models.EventPaymentUploaded, *paid, 0)
	s.publishStatus(ctx, id, previous, models.StatusOnReview)
	return nil
}

func (s *Shell) receipt(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return &usageError{commands["receipt"].usage}
	}
	id, err := parseOrderID(args[0])
	if err != nil {
		return err
	}

	return s.saveDownload(args[1], "receipt", func(w io.Writer) (api.Download, error) {
		return s.backend.Receipt(ctx, id, w)
	})
}

// saveDownload writes a download to path, removing the file on failure
func (s *Shell) saveDownload(path, fallbackName string, fetch func(w io.Writer) (api.Download, error)) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	dl, err := fetch(f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return err
	}

	fmt.Fprintf(s.out, "Saved %s (%d bytes) to %s\n", nonEmpty(dl.Filename, fallbackName), dl.Size, path)
	return nil
}

func (s *Shell) setStatus(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return &usageError{commands["status"].usage}
	}
	if err := s.requireRole(models.RoleAdmin); err != nil {
		return err
	}
	id, err := parseOrderID(args[0])
	if err != nil {
		return err
	}
	status, err := models.ParseOrderStatus(args[1])
	if err != nil {
		return err
	}

	if err := s.backend.UpdateOrderStatus(ctx, id, status); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Order #%d marked as %s\n", id, status)
	s.publishStatus(ctx, id, "", status)
	return nil
}

func (s *Shell) salesReport(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return &usageError{commands["report"].usage}
	}
	if err := s.requireRole(models.RoleAdmin, models.RoleCook); err != nil {
		return err
	}

	day := models.NewDate(s.now())
	if len(args) == 1 {
		d, err := models.ParseDate(args[0])
		if err != nil {
			return err
		}
		day = d
	}

	rep, err := s.backend.SummaryReport(ctx, day)
	if err != nil {
		return err
	}
	s.renderReport(day, rep)
	return nil
}

func (s *Shell) reportDoc(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return &usageError{commands["report-doc"].usage}
	}
	if err := s.requireRole(models.RoleAdmin); err != nil {
		return err
	}
	day, err := models.ParseDate(args[0])
	if err != nil {
		return err
	}

	return s.saveDownload(args[1], "table report", func(w io.Writer) (api.Download, error) {
		return s.backend.TableReport(ctx, day, w)
	})
}

func (s *Shell) menuExport(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return &usageError{commands["menu-export"].usage}
	}
	if err := s.requireRole(models.RoleAdmin); err != nil {
		return err
	}

	return s.saveDownload(args[0], "module menu", func(w io.Writer) (api.Download, error) {
		return s.backend.ExportModuleMenu(ctx, w)
	})
}

// maxDishesPerType is how many dishes of one type the kitchen serves per day
const maxDishesPerType = 2

// menuSet replaces one day of the loaded schedule and saves the whole week.
// A dish list of "-" clears the day.
func (s *Shell) menuSet(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return &usageError{commands["menu-set"].usage}
	}
	if err := s.requireRole(models.RoleAdmin); err != nil {
		return err
	}
	day, err := parseDay(args[0])
	if err != nil {
		return err
	}
	if err := s.ensureMenu(ctx); err != nil {
		return err
	}
	snap := s.loader.Current()

	var ids []int
	if args[1] != "-" {
		perType := make(map[models.DishType]int)
		for _, part := range strings.Split(args[1], ",") {
			id, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(part), "#"))
			if err != nil {
				return fmt.Errorf("dish ids must be numbers separated by commas, got %q", part)
			}
			dish, ok := snap.Catalog.Lookup(id)
			if !ok {
				return fmt.Errorf("dish #%d is not in the catalog", id)
			}
			perType[dish.Type]++
			if perType[dish.Type] > maxDishesPerType {
				return fmt.Errorf("at most %d dishes of type %s per day", maxDishesPerType, dish.Type.Title())
			}
			ids = append(ids, id)
		}
	}

	entries := make([]models.ScheduleEntry, 0, models.DaysInWeek)
	for _, e := range snap.Schedule.Entries() {
		if e.DayOfWeek != day {
			entries = append(entries, e)
		}
	}
	if len(ids) > 0 {
		entries = append(entries, models.ScheduleEntry{DayOfWeek: day, DishIDs: ids})
	}

	if err := s.backend.SetModuleMenu(ctx, s.weekStart, models.NewWeekSchedule(entries)); err != nil {
		return err
	}
	s.logger.Info("module_menu_updated", "Module menu saved", "", map[string]interface{}{
		"day":    day,
		"dishes": len(ids),
	})
	fmt.Fprintf(s.out, "Menu for %s saved (%d dish(es))\n", models.DayName(day), len(ids))
	return s.loadMenu(ctx)
}

func (s *Shell) help(context.Context, []string) error {
	s.renderHelp()
	return nil
}

func (s *Shell) requireRole(roles ...models.Role) error {
	sess := s.Session()
	for _, r := range roles {
		if sess.Role == r {
			return nil
		}
	}
	return fmt.Errorf("this command needs the %s role", roles[0])
}

func (s *Shell) publishOrderEvent(ctx context.Context, eventType models.OrderEventType, o models.Order, days int) {
	var user models.User
	if sess := s.Session(); sess.User != nil {
		user = *sess.User
	}
	event := models.NewOrderEvent(eventType, o, user, days, s.terminal)
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		s.logger.Error("event_publish_failed", "Failed to publish order event", "", err, map[string]interface{}{
			"order_id": o.ID,
			"type":     eventType,
		})
	}
}

func (s *Shell) publishStatus(ctx context.Context, id int, from, to models.OrderStatus) {
	by := s.terminal
	if sess := s.Session(); sess.User != nil {
		by = sess.User.Email
	}
	msg := models.NewStatusUpdateMessage(id, from, to, by)
	if err := s.publisher.PublishStatusUpdate(ctx, msg); err != nil {
		s.logger.Error("event_publish_failed", "Failed to publish status update", "", err, map[string]interface{}{
			"order_id":   id,
			"new_status": to,
		})
	}
}

var dayAliases = map[string]int{
	"mon": 0, "tue": 1, "wed": 2, "thu": 3, "fri": 4, "sat": 5, "sun": 6,
}

// parseDay accepts 0-6 (Monday first) or an English day name or prefix
func parseDay(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if !models.ValidDay(n) {
			return 0, fmt.Errorf("day must be between 0 (Monday) and 6 (Sunday), got %d", n)
		}
		return n, nil
	}
	lower := strings.ToLower(s)
	if len(lower) >= 3 {
		if day, ok := dayAliases[lower[:3]]; ok && strings.HasPrefix(strings.ToLower(models.DayName(day)), lower) {
			return day, nil
		}
	}
	return 0, fmt.Errorf("unknown day %q", s)
}

func parseOrderID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(s, "#"))
	if err != nil || id <= 0 {
		return 0, errors.New("order must be a positive numeric id")
	}
	return id, nil
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
