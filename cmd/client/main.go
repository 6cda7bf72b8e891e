// Command client is an interactive terminal client for the event platform.
// It drives the full flow: register or log in, finish onboarding, browse and
// paginate the feed, and like posts.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"kotekapu/client/internal/api"
	"kotekapu/client/internal/config"
	"kotekapu/client/internal/feed"
	"kotekapu/client/internal/onboarding"
	"kotekapu/client/internal/session"
	"kotekapu/client/internal/storage"
	"kotekapu/client/internal/telemetry"
	otelsetup "kotekapu/client/internal/telemetry/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := otelsetup.NewProviders(ctx, cfg.OTLPEndpoint, "kotekapu-client", false)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()
	emitter := otelsetup.NewEventEmitter(providers.LoggerProvider)

	db, err := storage.Open(cfg.StoragePath)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer db.Close()

	sess := session.New(ctx, db)
	client := api.New(cfg.APIBaseURL, cfg.ConnectTimeout(), cfg.RequestTimeout(), sess.DeviceID())
	engine := feed.NewEngine(client, sess, cfg.FeedPageSize, cfg.FeedMorePageSize, cfg.FeedPlaceholderFallback)

	app := &app{
		cfg:     cfg,
		client:  client,
		sess:    sess,
		engine:  engine,
		emitter: emitter,
	}
	app.run(ctx)
}

type app struct {
	cfg     *config.Config
	client  *api.Client
	sess    *session.Store
	engine  *feed.Engine
	emitter telemetry.EventEmitter
	gate    *onboarding.Gate
}

func (a *app) run(ctx context.Context) {
	if a.sess.IsLoggedIn() {
		fmt.Printf("logged in as user %d\n", a.sess.UserID())
	} else {
		fmt.Println("not logged in; use 'register' or 'login'")
	}
	fmt.Println("commands: ping, register, login, logout, feed, more, like <id>, profile, prefs, whoami, quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "quit", "exit":
			return
		case "ping":
			a.ping(ctx)
		case "register":
			a.register(ctx, scanner)
		case "login":
			a.login(ctx, scanner)
		case "logout":
			a.logout(ctx)
		case "feed":
			a.refresh(ctx)
		case "more":
			a.loadMore(ctx)
		case "like":
			a.like(ctx, args)
		case "profile":
			a.profile(ctx)
		case "prefs":
			a.preferences(ctx)
		case "whoami":
			a.whoami()
		default:
			fmt.Printf("unknown command %q\n", cmd)
		}
	}
}

func (a *app) ping(ctx context.Context) {
	out, err := a.client.Ping(ctx)
	if err != nil {
		fmt.Printf("ping failed: %v\n", err)
		return
	}
	fmt.Printf("%s (%s)\n", out.Message, out.Status)
}

func prompt(scanner *bufio.Scanner, label string) string {
	fmt.Printf("%s: ", label)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}

func (a *app) register(ctx context.Context, scanner *bufio.Scanner) {
	req := api.RegisterRequest{
		Email:     prompt(scanner, "email"),
		Password:  prompt(scanner, "password"),
		FirstName: prompt(scanner, "first name"),
		LastName:  prompt(scanner, "last name"),
	}
	out, err := a.client.Register(ctx, req)
	if err != nil {
		fmt.Printf("register failed: %v\n", err)
		return
	}
	a.establishSession(ctx, scanner, out, "register")
}

func (a *app) login(ctx context.Context, scanner *bufio.Scanner) {
	req := api.LoginRequest{
		Email:    prompt(scanner, "email"),
		Password: prompt(scanner, "password"),
	}
	out, err := a.client.Login(ctx, req)
	if err != nil {
		fmt.Printf("login failed: %v\n", err)
		return
	}
	a.establishSession(ctx, scanner, out, "login")
}

func (a *app) establishSession(ctx context.Context, scanner *bufio.Scanner, out *api.AuthResponse, eventType string) {
	if err := a.sess.SaveAuthData(ctx, out.AccessToken, out.User.ID); err != nil {
		fmt.Printf("could not persist session: %v\n", err)
		return
	}
	a.gate = onboarding.NewGate(out.User.ProfileCompleted, out.User.PreferencesCompleted)
	otelsetup.EmitAsync(a.emitter, &telemetry.Event{
		UserID:    out.User.ID,
		DeviceID:  a.sess.DeviceID(),
		EventType: eventType,
	})

	fmt.Printf("welcome, %s %s\n", out.User.FirstName, out.User.LastName)
	a.runOnboarding(ctx, scanner)
}

// runOnboarding walks the user through any unfinished setup steps before
// showing the feed.
func (a *app) runOnboarding(ctx context.Context, scanner *bufio.Scanner) {
	if a.gate == nil {
		return
	}
	for {
		switch a.gate.Current() {
		case onboarding.StepCompleteProfile:
			fmt.Println("finish your profile first (enter to skip any field, 'skip' to skip the step)")
			a.completeProfile(ctx, scanner)
		case onboarding.StepCompletePreferences:
			fmt.Println("pick your interests next")
			a.completePreferences(ctx, scanner)
		case onboarding.StepMain:
			a.refresh(ctx)
			return
		}
	}
}

func (a *app) completeProfile(ctx context.Context, scanner *bufio.Scanner) {
	phone := prompt(scanner, "phone")
	if phone == "skip" {
		// Skipping counts as completing the step.
		a.gate.ProfileSkipped()
		return
	}
	req := api.CompleteProfileRequest{}
	if phone != "" {
		req.Phone = &phone
	}
	if raw := prompt(scanner, "age"); raw != "" {
		if age, err := strconv.Atoi(raw); err == nil {
			req.AgeUser = &age
		}
	}
	if placement := prompt(scanner, "city"); placement != "" {
		req.Placement = &placement
	}
	if study := prompt(scanner, "school or university"); study != "" {
		req.StudyPlace = &study
	}
	if grade := prompt(scanner, "grade or course"); grade != "" {
		req.GradeCourse = &grade
	}

	if _, err := a.client.CompleteProfile(ctx, a.sess.Token(), a.sess.UserID(), req); err != nil {
		fmt.Printf("complete profile failed: %v\n", err)
		return
	}
	a.gate.ProfileDone()
}

func (a *app) completePreferences(ctx context.Context, scanner *bufio.Scanner) {
	cats, err := a.client.GetPreferenceCategories(ctx)
	if err != nil {
		fmt.Printf("could not load categories: %v\n", err)
		return
	}
	fmt.Printf("interests: %s\n", strings.Join(cats.InterestCategories, ", "))
	fmt.Printf("formats:   %s\n", strings.Join(cats.FormatTypes, ", "))
	fmt.Printf("events:    %s\n", strings.Join(cats.EventTypes, ", "))

	req := api.CompletePreferencesRequest{
		Interests:  splitChoices(prompt(scanner, "your interests (comma separated)")),
		Formats:    splitChoices(prompt(scanner, "your formats (comma separated)")),
		EventTypes: splitChoices(prompt(scanner, "your event types (comma separated)")),
	}
	if _, err := a.client.CompletePreferences(ctx, a.sess.Token(), a.sess.UserID(), req); err != nil {
		fmt.Printf("complete preferences failed: %v\n", err)
		return
	}
	a.gate.PreferencesDone()
}

func splitChoices(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (a *app) logout(ctx context.Context) {
	if err := a.sess.Logout(ctx); err != nil {
		fmt.Printf("logout failed: %v\n", err)
		return
	}
	a.gate = nil
	fmt.Println("logged out")
}

func (a *app) refresh(ctx context.Context) {
	if err := a.engine.Refresh(ctx); err != nil {
		fmt.Printf("feed refresh failed: %v\n", err)
	}
	a.printFeed()
}

func (a *app) loadMore(ctx context.Context) {
	if err := a.engine.LoadMore(ctx); err != nil {
		fmt.Printf("load more failed: %v\n", err)
		return
	}
	a.printFeed()
}

func (a *app) printFeed() {
	s := a.engine.Snapshot()
	if len(s.Posts) == 0 {
		fmt.Println("feed is empty")
		return
	}
	for _, p := range s.Posts {
		when := ""
		if p.DateTime != nil {
			when = " @ " + *p.DateTime
		}
		fmt.Printf("  [%d] %s%s (likes: %d)\n", p.ID, p.Title, when, p.Likes)
	}
	if s.HasMore {
		fmt.Println("  -- 'more' loads the next page --")
	}
}

func (a *app) like(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("usage: like <post id>")
		return
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Printf("invalid post id %q\n", args[0])
		return
	}
	if err := a.engine.Like(ctx, id); err != nil {
		fmt.Printf("like failed: %v\n", err)
		return
	}
	otelsetup.EmitAsync(a.emitter, &telemetry.Event{
		UserID:    a.sess.UserID(),
		DeviceID:  a.sess.DeviceID(),
		EventType: "like",
	})
}

func (a *app) profile(ctx context.Context) {
	if !a.sess.IsLoggedIn() {
		fmt.Println("log in first")
		return
	}
	out, err := a.client.GetUserProfile(ctx, a.sess.Token(), a.sess.UserID())
	if err != nil {
		fmt.Printf("profile failed: %v\n", err)
		return
	}
	fmt.Printf("%s %s <%s>\n", out.User.FirstName, out.User.LastName, out.User.Email)
	fmt.Printf("level %d (%d exp), %d events attended, %d likes given\n",
		out.Stats.Level, out.Stats.Exp, out.Stats.EventsAttended, out.Stats.LikesGiven)
	for _, ach := range out.Achievements {
		fmt.Printf("  * %s: %s (+%d)\n", ach.Name, ach.Description, ach.Points)
	}
}

func (a *app) preferences(ctx context.Context) {
	if !a.sess.IsLoggedIn() {
		fmt.Println("log in first")
		return
	}
	out, err := a.client.GetUserInterests(ctx, a.sess.Token(), a.sess.UserID())
	if err != nil {
		fmt.Printf("interests failed: %v\n", err)
		return
	}
	fmt.Println("interest weights:")
	for tag, weight := range out.InterestsMetrics {
		fmt.Printf("  %-24s %.2f\n", tag, weight)
	}
	fmt.Println("format weights:")
	for tag, weight := range out.FormatMetrics {
		fmt.Printf("  %-24s %.2f\n", tag, weight)
	}
}

func (a *app) whoami() {
	if !a.sess.IsLoggedIn() {
		fmt.Println("not logged in")
		return
	}
	fmt.Printf("user %d, device %s\n", a.sess.UserID(), a.sess.DeviceID())
}
