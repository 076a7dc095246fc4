package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/educlove/discovery-engine/config"
	errs "github.com/educlove/discovery-engine/pkg/errors"
	"github.com/educlove/discovery-engine/pkg/httpclient"
	"github.com/educlove/discovery-engine/pkg/jwt"
	"github.com/educlove/discovery-engine/pkg/logger"

	"github.com/educlove/discovery-engine/internal/api"
	"github.com/educlove/discovery-engine/internal/engine"
	"github.com/educlove/discovery-engine/internal/input"
	"github.com/educlove/discovery-engine/internal/models"
	"github.com/educlove/discovery-engine/internal/nav"
)

const demoEmail = "marie@educlove.fr"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.App.Env,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpClient := httpclient.NewStandardClientWithTimeout(
		time.Duration(cfg.API.TimeoutSeconds) * time.Second)

	token := cfg.API.AuthToken
	if token == "" && cfg.App.DemoMode {
		token, err = demoSignIn(httpClient, cfg.API.BaseURL)
		if err != nil {
			logger.Fatal("Demo sign-in failed", zap.Error(err))
		}
	}

	if claims, err := jwt.DecodeClaims(token); err == nil {
		logger.Info("Session token decoded",
			zap.String("subject", claims.Subject),
			zap.String("email", claims.Email),
			zap.Bool("email_verified", claims.EmailVerified))
	}

	client := api.NewHTTPClient(cfg.API.BaseURL, token, httpClient)
	history := nav.NewHistory(nav.RouteDiscovery)

	sessions := engine.NewSessionContext()
	if err := sessions.Refresh(ctx, client); err != nil {
		logger.Fatal("Could not resolve session", zap.Error(err))
	}

	gate := engine.NewSessionGate(sessions)
	decision := gate.Check(nav.RouteDiscovery)
	switch {
	case decision.Pending:
		logger.Fatal("Session still unresolved after refresh")
	case decision.Redirect == nav.RouteSignIn:
		fmt.Println("You are signed out. Set API_AUTH_TOKEN or run with DEMO_MODE=true.")
		return
	case decision.Redirect == nav.RouteVerifyEmail:
		fmt.Printf("Please verify your email first (%s).\n", decision.Email)
		return
	case decision.Redirect == nav.RouteCompleteProfile:
		fmt.Println("Please complete your profile before browsing.")
		return
	}

	guard := engine.NewCriteriaGuard(client, history)
	allowed, err := guard.Ensure(ctx)
	if err != nil {
		logger.Fatal("Criteria check failed", zap.Error(err))
	}
	if !allowed {
		fmt.Println("No search criteria saved yet; saving defaults (Lyon, 50 km).")
		if _, err := client.SaveSearchCriteria(ctx, defaultCriteria()); err != nil {
			logger.Fatal("Could not save search criteria", zap.Error(err))
		}
		guard.Reset()
		if allowed, err = guard.Ensure(ctx); err != nil || !allowed {
			logger.Fatal("Criteria still unresolved", zap.Error(err))
		}
	}

	loopOpts := []engine.LoopOption{
		engine.WithPrefsCacheTTL(time.Duration(cfg.Discovery.PrefsCacheTTL) * time.Second),
	}
	if cfg.App.DemoMode {
		loopOpts = append(loopOpts, engine.WithDemoMode())
	}
	loop := engine.NewDiscoveryLoop(
		client,
		engine.NewVisitRecorder(client),
		engine.NewMatchResolver(client),
		guard,
		history,
		loopOpts...,
	)

	if err := loop.Init(ctx); err != nil {
		logger.Fatal("Could not load the first profile", zap.Error(err))
	}

	runREPL(ctx, loop, history, cfg.Discovery.SwipeThresholdPx)
}

func demoSignIn(client httpclient.Client, baseURL string) (string, error) {
	body := strings.NewReader(fmt.Sprintf(`{"email":%q}`, demoEmail))
	resp, err := client.Post(strings.TrimRight(baseURL, "/")+"/auth/token", "application/json", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return "", fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	return payload.AccessToken, nil
}

func defaultCriteria() models.SearchCriteriaRequest {
	return models.SearchCriteriaRequest{
		Locations: []models.Location{{CityName: "Lyon", Coordinates: []float64{4.8357, 45.7640}}},
		Radii:     []int{50},
	}
}

// keyNames maps REPL words to the key identifiers the input package
// understands, so the CLI goes through the same unified action path as
// swipes and buttons.
var keyNames = map[string]string{
	"left":  "ArrowLeft",
	"right": "ArrowRight",
}

// parseSwipe turns "swipe <startX> <endX> [message]" arguments into a
// gesture and classifies it against the configured threshold.
func parseSwipe(rest string, threshold float64) (input.Action, string, error) {
	fields := strings.SplitN(rest, " ", 3)
	if len(fields) < 2 {
		return input.ActionNone, "", fmt.Errorf("usage: swipe <startX> <endX> [message]")
	}
	startX, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return input.ActionNone, "", fmt.Errorf("invalid start coordinate %q", fields[0])
	}
	endX, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return input.ActionNone, "", fmt.Errorf("invalid end coordinate %q", fields[1])
	}

	swipe := input.Swipe{
		Start: &input.Point{X: startX},
		End:   &input.Point{X: endX},
	}
	message := ""
	if len(fields) == 3 {
		message = fields[2]
	}
	return swipe.Action(threshold), message, nil
}

func runREPL(ctx context.Context, loop *engine.DiscoveryLoop, history *nav.History, swipeThreshold float64) {
	fmt.Println("Commands: s|left = skip, l <message>|right <message> = like, swipe <startX> <endX> [message], p = my preferences, q = quit")
	printCandidate(loop)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("[%s] > ", history.Current())
		if !scanner.Scan() {
			return
		}
		if ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		command, rest, _ := strings.Cut(line, " ")

		var action input.Action
		switch command {
		case "q", "quit":
			return
		case "p", "prefs":
			printPreferences(ctx, loop)
			continue
		case "s":
			action = input.FromButton(input.ButtonSkip)
		case "l":
			action = input.FromButton(input.ButtonLike)
		case "swipe":
			var err error
			action, rest, err = parseSwipe(rest, swipeThreshold)
			if err != nil {
				fmt.Println(err)
				continue
			}
			if action == input.ActionNone {
				fmt.Printf("Swipe too short; move at least %.0f px.\n", swipeThreshold)
				continue
			}
		default:
			if key, ok := keyNames[command]; ok {
				action = input.FromKey(key)
			}
		}
		if action == input.ActionNone {
			fmt.Println("Unknown command.")
			continue
		}

		outcome, err := loop.HandleAction(ctx, action, rest)
		switch {
		case errs.Is(err, errs.ErrBusy):
			fmt.Println("Hold on, the previous action is still settling.")
			continue
		case errs.Is(err, errs.ErrNoCandidate):
			fmt.Println("No profile to act on.")
			continue
		case errs.Is(err, errs.ErrInvalidInput):
			fmt.Println("A like needs a message between 1 and 500 characters.")
			continue
		case err != nil:
			fmt.Printf("Something went wrong: %v\n", err)
			continue
		}

		if outcome != nil && outcome.Mutual() {
			fmt.Printf("It's a match! Opening conversation %s\n", outcome.MatchID)
			fmt.Printf("[%s]\n", history.Current())
			return
		}
		if outcome != nil && outcome.Action == models.ActionAlreadyLiked {
			fmt.Println("You had already liked this profile; moving on.")
		}
		printCandidate(loop)
	}
}

func printCandidate(loop *engine.DiscoveryLoop) {
	candidate, _ := loop.Current()
	if candidate == nil {
		if msg := loop.Message(); msg != "" {
			fmt.Println(msg)
		} else {
			fmt.Println("No more profiles for now.")
		}
		return
	}
	fmt.Printf("%s, %d — %s (%s), %d profils restants\n",
		candidate.FirstName, candidate.Age,
		candidate.Subject, candidate.Location.CityName,
		loop.Total())
	if candidate.Description != "" {
		fmt.Printf("  « %s »\n", candidate.Description)
	}
}

func printPreferences(ctx context.Context, loop *engine.DiscoveryLoop) {
	prefs, err := loop.Preferences(ctx)
	if err != nil {
		fmt.Printf("Could not load preferences: %v\n", err)
		return
	}
	fmt.Printf("Signed in as %s (%s, %s). Looking for: %s\n",
		prefs.FirstName, prefs.Subject, prefs.Location.CityName,
		strings.Join(prefs.LookingForGender, ", "))
}
