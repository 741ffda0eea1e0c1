package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"planifia/internal/app"
	"planifia/internal/config"
	"planifia/internal/database"
	"planifia/internal/ingredients"
	"planifia/internal/llm"
	"planifia/internal/logging"
	"planifia/internal/metrics"
	"planifia/internal/planner"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	metricsStore := metrics.NewStore(db.SQL)

	textGen, err := llm.NewFromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create llm client: %v", err)
	}
	if c, ok := textGen.(llm.Closer); ok {
		defer c.Close()
	}

	resolver, err := ingredients.NewFromConfig(cfg, textGen, metricsStore, logger)
	if err != nil {
		log.Fatalf("Failed to build ingredient resolver: %v", err)
	}

	application := app.NewApp(db.SQL, resolver,
		app.WithMetrics(metricsStore),
		app.WithLocation(cfg.Location),
		app.WithLogger(logger),
	)

	if err := run(ctx, application, os.Args[1], os.Args[2:]); err != nil {
		logger.Debug("command failed", zap.String("command", os.Args[1]), zap.Error(err))
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, command string, args []string) error {
	switch command {
	case "signin":
		email := strings.Join(args, " ")
		ws, err := a.SignIn(ctx, email)
		if err != nil {
			return err
		}
		fmt.Printf("Signed in as %s\n", ws.Session.Email)
		return nil

	case "signout":
		if err := a.SignOut(ctx); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil

	case "whoami":
		s, err := a.Session(ctx)
		if err != nil {
			if app.IsNoSession(err) {
				fmt.Println("Not signed in.")
				return nil
			}
			return err
		}
		fmt.Printf("%s (%s)\n", s.Email, s.ID)
		return nil

	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(args)

		affected, err := a.Metrics().Cleanup(ctx, *days)
		if err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
		return nil

	case "usage":
		usageCmd := flag.NewFlagSet("usage", flag.ExitOnError)
		days := usageCmd.Int("days", 7, "Report the last N days")
		usageCmd.Parse(args)

		usage, err := a.Usage(ctx, *days)
		if err != nil {
			return err
		}
		fmt.Println(renderUsage(usage))
		return nil
	}

	ws, err := a.Workspace(ctx)
	if err != nil {
		if app.IsNoSession(err) {
			return fmt.Errorf("not signed in, run: planifia signin <email>")
		}
		return err
	}

	switch command {
	case "week":
		weekCmd := flag.NewFlagSet("week", flag.ExitOnError)
		next := weekCmd.Bool("next", false, "Show next week")
		weekCmd.Parse(args)

		offset := 0
		if *next {
			offset = 1
		}
		days, err := ws.Planner.WeekPlan(ctx, offset)
		if err != nil {
			return err
		}
		fmt.Println(renderWeek(days, offset))

	case "save-meal":
		saveCmd := flag.NewFlagSet("save-meal", flag.ExitOnError)
		date := saveCmd.String("date", "", "Meal date (yyyy-mm-dd)")
		mealType := saveCmd.String("type", "", "lunch or dinner")
		dish := saveCmd.String("dish", "", "Dish name")
		edit := saveCmd.String("edit", "", "Id of the meal being replaced")
		saveCmd.Parse(args)

		res, err := ws.Planner.SaveMeal(ctx, planner.SaveRequest{
			Date:          *date,
			MealType:      *mealType,
			DishName:      *dish,
			EditingMealID: *edit,
		})
		if err != nil {
			return err
		}
		if res == nil {
			fmt.Println("Nothing to save.")
			return nil
		}
		fmt.Println(renderSaveResult(res))

	case "delete-meal":
		if len(args) != 1 {
			return fmt.Errorf("usage: planifia delete-meal <id>")
		}
		if err := ws.Planner.DeleteMeal(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("Meal deleted.")

	case "list":
		summary, err := ws.Shopping.Refresh(ctx)
		if err != nil {
			return err
		}
		fmt.Println(renderList(summary))

	case "add-item":
		item, err := ws.Shopping.AddManualItem(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		if item == nil {
			fmt.Println("Nothing to add.")
			return nil
		}
		fmt.Println(renderList(ws.Shopping.Summary()))

	case "toggle", "remove":
		group, err := ws.Shopping.Group(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		if command == "toggle" {
			err = ws.Shopping.TogglePurchased(ctx, group)
		} else {
			err = ws.Shopping.DeleteGroup(ctx, group)
		}
		if err != nil {
			return err
		}
		fmt.Println(renderList(ws.Shopping.Summary()))

	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
	return nil
}

func printUsage() {
	fmt.Println("Usage: planifia <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  signin <email>                         Start a session")
	fmt.Println("  signout                                End the session")
	fmt.Println("  whoami                                 Show the signed-in user")
	fmt.Println("  week [-next]                           Show this week's (or next week's) plan")
	fmt.Println("  save-meal -date -type -dish [-edit]    Plan a lunch or dinner")
	fmt.Println("  delete-meal <id>                       Delete a meal and its ingredients")
	fmt.Println("  list                                   Show the shopping list")
	fmt.Println("  add-item <name>                        Add a manual item")
	fmt.Println("  toggle <name>                          Mark an item as purchased or not")
	fmt.Println("  remove <name>                          Remove an item from the list")
	fmt.Println("  usage [-days N]                        Show LLM token usage")
	fmt.Println("  metrics-cleanup [-days N]              Remove old metric records")
}
