package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"dinnerdice/internal/google"
	"dinnerdice/internal/icloud"
	"dinnerdice/internal/picker"
	"dinnerdice/internal/places"
	"dinnerdice/internal/roller"
	"dinnerdice/internal/server"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/oauth2"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "dinnerdice",
		Usage: "Pick a new restaurant for Monday dinner and put it on the calendar.",
		Flags: globalFlags(),
		Commands: []*cli.Command{
			authCommand(),
			rollCommand(),
			historyCommand(),
			initCommand(),
			calendarsCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "log-level", Value: "info", EnvVars: []string{"LOG_LEVEL"}, Usage: "debug, info, warn or error"},
		&cli.StringFlag{Name: "maps-api-key", EnvVars: []string{"MAPS_API_KEY", "Maps_API_KEY"}, Usage: "Google Places API key"},
		&cli.StringFlag{Name: "spreadsheet-id", EnvVars: []string{"SPREADSHEET_ID"}, Usage: "Google Sheet holding the History tab"},
		&cli.StringFlag{Name: "calendar-id", Value: google.DefaultCalendarID, EnvVars: []string{"CALENDAR_ID"}, Usage: "Google Calendar to create events in"},
		&cli.StringFlag{Name: "service-account-json", EnvVars: []string{"GOOGLE_SERVICE_ACCOUNT_JSON"}, Usage: "inline service account key"},
		&cli.StringFlag{Name: "credentials-file", EnvVars: []string{"GOOGLE_CREDENTIALS_FILE"}, Usage: "service account key or OAuth client secret file"},
		&cli.StringFlag{Name: "client-id", EnvVars: []string{"GOOGLE_CLIENT_ID"}, Usage: "OAuth client ID"},
		&cli.StringFlag{Name: "client-secret", EnvVars: []string{"GOOGLE_CLIENT_SECRET"}, Usage: "OAuth client secret"},
		&cli.StringFlag{Name: "token-file", Value: google.DefaultTokenFile, EnvVars: []string{"GOOGLE_TOKEN_FILE"}, Usage: "OAuth token written by the auth command"},
		&cli.StringFlag{Name: "timezone", Value: "America/Los_Angeles", EnvVars: []string{"TIMEZONE"}, Usage: "IANA zone for the dinner date"},
		&cli.StringFlag{Name: "anchor", Value: roller.DefaultAnchor, EnvVars: []string{"LOCATION_ANCHOR"}, Usage: "location text appended to every search"},
		&cli.Float64Flag{Name: "min-rating", Value: picker.DefaultMinRating, EnvVars: []string{"MIN_RATING"}},
		&cli.IntFlag{Name: "min-reviews", Value: picker.DefaultMinReviews, EnvVars: []string{"MIN_REVIEWS"}},
		&cli.StringFlag{Name: "icloud-username", EnvVars: []string{"ICLOUD_USERNAME"}, Usage: "mirror events to this iCloud account"},
		&cli.StringFlag{Name: "icloud-password", EnvVars: []string{"ICLOUD_APP_SPECIFIC_PASSWORD"}},
		&cli.StringFlag{Name: "icloud-calendar", EnvVars: []string{"ICLOUD_CALENDAR_NAME"}},
	}
}

func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with a Google account and save an OAuth token.",
		Action: func(c *cli.Context) error {
			logger := setupLogger(c.String("log-level"))
			logger.Info("Starting Google authentication flow.")

			config, err := google.GetOAuthConfig(c.String("client-id"), c.String("client-secret"), c.String("credentials-file"))
			if err != nil {
				return fmt.Errorf("failed to get google oauth config: %w", err)
			}

			authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
			fmt.Printf("Go to the following link in your browser then type the "+
				"authorization code: \n%v\n", authURL)

			fmt.Print("Enter Authorization Code: ")
			reader := bufio.NewReader(os.Stdin)
			authCode, _ := reader.ReadString('\n')
			authCode = strings.TrimSpace(authCode)

			token, err := google.TokenFromWeb(c.Context, config, authCode)
			if err != nil {
				return fmt.Errorf("unable to retrieve token from web: %w", err)
			}

			tokenFile := c.String("token-file")
			if err := google.SaveToken(tokenFile, token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			logger.Info("Successfully authenticated and saved token.", "file", tokenFile)
			return nil
		},
	}
}

func rollCommand() *cli.Command {
	return &cli.Command{
		Name:  "roll",
		Usage: "Roll the dice: pick a restaurant, log it and schedule dinner.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "Pick a restaurant without writing history or calendar."},
			&cli.StringFlag{Name: "cuisine", Usage: "Use this cuisine instead of a random one."},
		},
		Action: func(c *cli.Context) error {
			logger := setupLogger(c.String("log-level"))
			if c.Bool("dry-run") {
				logger.Info("Performing a dry run. No changes will be made.")
			}

			r, err := buildRoller(c, logger, c.Bool("dry-run"))
			if err != nil {
				return err
			}

			res, err := r.Roll(c.Context, c.String("cuisine"))
			out := roller.Classify(res, err)
			printOutcome(c.App.Writer, out)
			if out.Status == roller.StatusError {
				return err
			}
			return nil
		},
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List past picks from the history sheet.",
		Action: func(c *cli.Context) error {
			logger := setupLogger(c.String("log-level"))
			history, _, err := buildGoogle(c, logger)
			if err != nil {
				return err
			}

			entries, err := history.Entries(c.Context)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(c.App.Writer, "No history yet.")
				return nil
			}

			tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tCUISINE\tRESTAURANT\tRATING\tREVIEWS")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.EventDate, e.Cuisine, e.Restaurant, e.Rating, e.ReviewCount)
			}
			return tw.Flush()
		},
	}
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write the header row to an empty history sheet.",
		Action: func(c *cli.Context) error {
			logger := setupLogger(c.String("log-level"))
			history, _, err := buildGoogle(c, logger)
			if err != nil {
				return err
			}

			wrote, err := history.EnsureHeader(c.Context)
			if err != nil {
				return err
			}
			if !wrote {
				logger.Info("History sheet already has rows, header left as is.")
			}
			return nil
		},
	}
}

func calendarsCommand() *cli.Command {
	return &cli.Command{
		Name:  "calendars",
		Usage: "List the Google calendars the credentials can see.",
		Action: func(c *cli.Context) error {
			logger := setupLogger(c.String("log-level"))
			_, cal, err := buildGoogle(c, logger)
			if err != nil {
				return err
			}

			calendars, err := cal.ListCalendars(c.Context)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME")
			for id, name := range calendars {
				fmt.Fprintf(tw, "%s\t%s\n", id, name)
			}
			return tw.Flush()
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve a web page with a Roll the Dice button.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: ":8080", EnvVars: []string{"LISTEN_ADDR"}},
		},
		Action: func(c *cli.Context) error {
			logger := setupLogger(c.String("log-level"))

			r, err := buildRoller(c, logger, false)
			if err != nil {
				return err
			}

			srv, err := server.New(logger, server.Config{Addr: c.String("addr"), Roller: r})
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}
}

func buildGoogle(c *cli.Context, logger *slog.Logger) (*google.HistoryLog, *google.CalendarClient, error) {
	httpClient, err := google.HTTPClient(c.Context, google.Credentials{
		ServiceAccountJSON: c.String("service-account-json"),
		CredentialsFile:    c.String("credentials-file"),
		ClientID:           c.String("client-id"),
		ClientSecret:       c.String("client-secret"),
		TokenFile:          c.String("token-file"),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load google credentials: %w", err)
	}

	history, err := google.NewHistoryLog(c.Context, logger, httpClient, c.String("spreadsheet-id"))
	if err != nil {
		return nil, nil, err
	}
	cal, err := google.NewCalendarClient(c.Context, logger, httpClient, c.String("calendar-id"))
	if err != nil {
		return nil, nil, err
	}
	return history, cal, nil
}

func buildRoller(c *cli.Context, logger *slog.Logger, dryRun bool) (*roller.Roller, error) {
	loc, err := time.LoadLocation(c.String("timezone"))
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w", c.String("timezone"), err)
	}

	searcher, err := places.NewClient(logger, "", c.String("maps-api-key"))
	if err != nil {
		return nil, err
	}

	history, cal, err := buildGoogle(c, logger)
	if err != nil {
		return nil, err
	}

	var mirrors []roller.Scheduler
	if user := c.String("icloud-username"); user != "" {
		ctx, cancel := context.WithTimeout(c.Context, 30*time.Second)
		defer cancel()
		iClient, err := icloud.NewClient(ctx, logger, "", user, c.String("icloud-password"), c.String("icloud-calendar"))
		if err != nil {
			return nil, fmt.Errorf("failed to create icloud client: %w", err)
		}
		mirrors = append(mirrors, iClient)
	}

	return roller.NewRoller(logger, searcher, history, cal, roller.Options{
		Anchor:   c.String("anchor"),
		Criteria: picker.Criteria{MinRating: c.Float64("min-rating"), MinReviews: c.Int("min-reviews")},
		Location: loc,
		DryRun:   dryRun,
		Mirrors:  mirrors,
	})
}

func printOutcome(w io.Writer, out roller.Outcome) {
	if res := out.Result; res != nil {
		fmt.Fprintln(w, res.Place.Name())
		fmt.Fprintf(w, "%s | %s ⭐ | %s\n", res.Cuisine, res.Place.RatingText("N/A"), res.EventDate.Format("Monday, Jan 2"))
		if res.Place.GoogleMapsURI != "" {
			fmt.Fprintf(w, "View on Google Maps: %s\n", res.Place.GoogleMapsURI)
		}
	}
	for _, msg := range out.Messages {
		fmt.Fprintf(w, "[%s] %s\n", out.Status, msg)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
