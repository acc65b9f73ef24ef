package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"mealweek/internal/app"
	"mealweek/internal/catalog"
	"mealweek/internal/clipper"
	"mealweek/internal/config"
	"mealweek/internal/database"
	"mealweek/internal/llm"
	"mealweek/internal/metrics"
	"mealweek/internal/plan"
	"mealweek/internal/shoppinglist"
	"mealweek/internal/storage"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var (
		catalogStore catalog.Store
		planStore    plan.Store
		metricsStore *metrics.Store
	)

	switch cfg.StorageBackend {
	case config.BackendSQLite:
		db, err := database.NewDB(cfg.DatabasePath())
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()

		catalogStore = database.NewCatalogStore(db.SQL)
		planStore = database.NewPlanStore(db.SQL)
		metricsStore = metrics.NewStore(db.SQL)
	default:
		cs, err := storage.NewCatalogStore(cfg.CatalogPath())
		if err != nil {
			log.Fatalf("Failed to initialize catalog store: %v", err)
		}
		ps, err := storage.NewPlanStore(cfg.PlanPath())
		if err != nil {
			log.Fatalf("Failed to initialize plan store: %v", err)
		}
		catalogStore, planStore = cs, ps
	}

	cat, err := catalog.New(catalogStore)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	grid, err := plan.NewGrid(planStore, cfg.ActiveDays(), cfg.ActiveMeals())
	if err != nil {
		log.Fatalf("Failed to load plan: %v", err)
	}

	var recipeClipper *clipper.Clipper
	if cfg.GeminiAPIKey != "" {
		geminiClient, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		defer geminiClient.Close()
		recipeClipper = clipper.NewClipper(geminiClient)
	}

	application := app.NewApp(cfg, cat, grid, shoppinglist.NewCompositor(), recipeClipper, metricsStore)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "recipes":
		err = runRecipes(ctx, application, os.Args[2:])
	case "plan":
		err = runPlan(cfg, application, os.Args[2:])
	case "shop":
		err = runShop(application, os.Args[2:])
	case "clip":
		err = runClip(ctx, application, os.Args[2:])
	case "metrics":
		err = runMetrics(ctx, cfg, application, os.Args[2:])
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("Command failed: %v", err)
	}
}

func runRecipes(ctx context.Context, a *app.App, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: mealweek recipes <list|add|edit|delete|delete-recipe|import|export>")
	}

	switch args[0] {
	case "list":
		lines := a.Catalog.Lines()
		if len(lines) == 0 {
			fmt.Println("The catalog is empty. Add lines with 'mealweek recipes add'.")
			return nil
		}
		for i, line := range lines {
			fmt.Printf("%3d  %-24s %-24s %10s %s\n", i, line.Recipe, line.Ingredient, line.Quantity, line.Unit)
		}
		fmt.Printf("\n%d lines, %d recipes\n", a.Catalog.Len(), len(a.Catalog.RecipeNames()))

	case "add":
		addCmd := flag.NewFlagSet("recipes add", flag.ExitOnError)
		recipe := addCmd.String("recipe", "", "Recipe name")
		ingredient := addCmd.String("ingredient", "", "Ingredient name")
		quantity := addCmd.String("quantity", "", "Quantity (free text, numeric values aggregate)")
		unit := addCmd.String("unit", "", "Unit of measure")
		addCmd.Parse(args[1:])

		if err := a.Catalog.AddLine(*recipe, *ingredient, *quantity, *unit); err != nil {
			return err
		}
		fmt.Printf("Added %s / %s.\n", *recipe, *ingredient)

	case "edit":
		editCmd := flag.NewFlagSet("recipes edit", flag.ExitOnError)
		index := editCmd.Int("index", -1, "Line index from 'recipes list'")
		recipe := editCmd.String("recipe", "", "Recipe name")
		ingredient := editCmd.String("ingredient", "", "Ingredient name")
		quantity := editCmd.String("quantity", "", "Quantity")
		unit := editCmd.String("unit", "", "Unit of measure")
		editCmd.Parse(args[1:])

		if err := a.Catalog.EditLine(*index, *recipe, *ingredient, *quantity, *unit); err != nil {
			return err
		}
		fmt.Printf("Updated line %d.\n", *index)

	case "delete":
		deleteCmd := flag.NewFlagSet("recipes delete", flag.ExitOnError)
		index := deleteCmd.Int("index", -1, "Line index from 'recipes list'")
		deleteCmd.Parse(args[1:])

		if err := a.Catalog.DeleteLine(*index); err != nil {
			return err
		}
		fmt.Printf("Deleted line %d.\n", *index)

	case "delete-recipe":
		deleteCmd := flag.NewFlagSet("recipes delete-recipe", flag.ExitOnError)
		name := deleteCmd.String("name", "", "Recipe whose lines to remove")
		deleteCmd.Parse(args[1:])

		if err := a.Catalog.DeleteRecipe(*name); err != nil {
			return err
		}
		fmt.Printf("Deleted all lines of %q.\n", *name)

	case "import":
		importCmd := flag.NewFlagSet("recipes import", flag.ExitOnError)
		file := importCmd.String("file", "", "CSV file to import")
		importCmd.Parse(args[1:])

		f, err := os.Open(*file)
		if err != nil {
			return fmt.Errorf("failed to open import file: %w", err)
		}
		defer f.Close()

		n, err := a.ImportRecipesCSV(ctx, f)
		if err != nil {
			return err
		}
		fmt.Printf("Read %d rows; catalog now has %d lines.\n", n, a.Catalog.Len())

	case "export":
		exportCmd := flag.NewFlagSet("recipes export", flag.ExitOnError)
		file := exportCmd.String("file", "", "Destination file (stdout when empty)")
		exportCmd.Parse(args[1:])

		data, err := catalog.EncodeCSV(a.Catalog.Lines())
		if err != nil {
			return err
		}
		return writeOut(*file, data)

	default:
		return fmt.Errorf("unknown recipes subcommand: %s", args[0])
	}
	return nil
}

func runPlan(cfg *config.Config, a *app.App, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: mealweek plan <show|set|clear|resize>")
	}

	switch args[0] {
	case "show":
		for _, day := range a.Grid.Days() {
			fmt.Printf("%s\n", day)
			for _, meal := range a.Grid.Meals() {
				recipe := a.Grid.Get(day, meal)
				if recipe == plan.Unassigned {
					recipe = "-"
				}
				fmt.Printf("  %-12s %s\n", meal, recipe)
			}
		}

	case "set":
		setCmd := flag.NewFlagSet("plan set", flag.ExitOnError)
		day := setCmd.String("day", "", "Day of the week")
		meal := setCmd.String("meal", "", "Meal slot")
		recipe := setCmd.String("recipe", "", "Recipe name ('-' clears the slot)")
		setCmd.Parse(args[1:])

		if err := a.Grid.Set(plan.Day(*day), plan.Meal(*meal), *recipe); err != nil {
			return err
		}
		fmt.Printf("%s %s set.\n", *day, *meal)

	case "clear":
		if err := a.Grid.ClearAll(); err != nil {
			return err
		}
		fmt.Println("Plan cleared.")

	case "resize":
		resizeCmd := flag.NewFlagSet("plan resize", flag.ExitOnError)
		days := resizeCmd.Int("days", cfg.Planner.Days, "Number of days in scope, 1-7")
		meals := resizeCmd.String("meals", strings.Join(cfg.Planner.Meals, ","), "Comma-separated meal slots")
		resizeCmd.Parse(args[1:])

		mealNames := []string{}
		for _, m := range strings.Split(*meals, ",") {
			if m = strings.TrimSpace(m); m != "" {
				mealNames = append(mealNames, m)
			}
		}
		if *days < 1 || *days > len(plan.Days) {
			return fmt.Errorf("days must be between 1 and %d, got %d", len(plan.Days), *days)
		}
		if len(mealNames) == 0 {
			return fmt.Errorf("meals must not be empty")
		}

		mealSlots := make([]plan.Meal, 0, len(mealNames))
		for _, m := range mealNames {
			mealSlots = append(mealSlots, plan.Meal(m))
		}
		if err := a.Grid.Resize(plan.FirstDays(*days), mealSlots); err != nil {
			return err
		}

		// Persist the new dimensions so subsequent runs load the same grid.
		settings, err := yaml.Marshal(config.Settings{Days: *days, Meals: mealNames})
		if err != nil {
			return fmt.Errorf("failed to encode settings: %w", err)
		}
		if err := os.WriteFile(filepath.Join(cfg.DataDir, "settings.yaml"), settings, 0644); err != nil {
			return fmt.Errorf("failed to write settings: %w", err)
		}
		fmt.Printf("Plan resized to %d days x %d meals.\n", *days, len(mealSlots))

	default:
		return fmt.Errorf("unknown plan subcommand: %s", args[0])
	}
	return nil
}

func runShop(a *app.App, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: mealweek shop <list|add|check|import|export>")
	}

	switch args[0] {
	case "list":
		listCmd := flag.NewFlagSet("shop list", flag.ExitOnError)
		showIDs := listCmd.Bool("ids", false, "Show item IDs (for 'shop check')")
		listCmd.Parse(args[1:])

		printShoppingListIDs(a, *showIDs)

	case "add":
		addCmd := flag.NewFlagSet("shop add", flag.ExitOnError)
		ingredient := addCmd.String("ingredient", "", "Item to buy")
		quantity := addCmd.String("quantity", "", "Quantity (free text)")
		unit := addCmd.String("unit", "", "Unit of measure")
		notes := addCmd.String("notes", "", "Free-text note")
		addCmd.Parse(args[1:])

		if _, err := a.Compositor.AddManual(*ingredient, *quantity, *unit, *notes); err != nil {
			return err
		}
		printShoppingList(a)

	case "check":
		checkCmd := flag.NewFlagSet("shop check", flag.ExitOnError)
		id := checkCmd.String("id", "", "Item ID from 'shop list -ids'")
		checkCmd.Parse(args[1:])

		if a.Compositor.ToggleChecked(*id) {
			fmt.Printf("Checked %s.\n", *id)
		} else {
			fmt.Printf("Unchecked %s.\n", *id)
		}
		printShoppingList(a)

	case "import":
		importCmd := flag.NewFlagSet("shop import", flag.ExitOnError)
		file := importCmd.String("file", "", "CSV file to import")
		importCmd.Parse(args[1:])

		f, err := os.Open(*file)
		if err != nil {
			return fmt.Errorf("failed to open import file: %w", err)
		}
		defer f.Close()

		n, err := a.ImportShoppingCSV(f)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d items.\n", n)
		printShoppingList(a)

	case "export":
		exportCmd := flag.NewFlagSet("shop export", flag.ExitOnError)
		file := exportCmd.String("file", "", "Destination file (stdout when empty)")
		withImport := exportCmd.String("with", "", "CSV file of extra items to include")
		exportCmd.Parse(args[1:])

		if *withImport != "" {
			f, err := os.Open(*withImport)
			if err != nil {
				return fmt.Errorf("failed to open import file: %w", err)
			}
			if _, err := a.ImportShoppingCSV(f); err != nil {
				f.Close()
				return err
			}
			f.Close()
		}

		items, report := a.ShoppingList()
		data, err := shoppinglist.ExportCSV(items)
		if err != nil {
			return err
		}
		if report.CoercionFailures > 0 {
			fmt.Fprintf(os.Stderr, "Warning: %d ingredient(s) have non-numeric quantities and count as 0.\n", report.CoercionFailures)
		}
		return writeOut(*file, data)

	default:
		return fmt.Errorf("unknown shop subcommand: %s", args[0])
	}
	return nil
}

func runClip(ctx context.Context, a *app.App, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: mealweek clip <url>")
	}

	lines, err := a.ClipRecipe(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Saved %q with %d ingredients.\n", lines[0].Recipe, len(lines))
	return nil
}

func runMetrics(ctx context.Context, cfg *config.Config, a *app.App, args []string) error {
	if a.Metrics == nil {
		return fmt.Errorf("import diagnostics require MEALWEEK_STORAGE=%s", config.BackendSQLite)
	}
	if len(args) < 1 {
		return fmt.Errorf("usage: mealweek metrics <recent|cleanup>")
	}

	switch args[0] {
	case "recent":
		recentCmd := flag.NewFlagSet("metrics recent", flag.ExitOnError)
		limit := recentCmd.Int("limit", 20, "Number of events to show")
		recentCmd.Parse(args[1:])

		events, err := a.Metrics.Recent(ctx, *limit)
		if err != nil {
			return err
		}
		for _, e := range events {
			fmt.Printf("%s  %-5s rows=%-4d coercion_failures=%-3d latency=%dms\n",
				e.Timestamp.Format("2006-01-02 15:04:05"), e.Source, e.RowsImported, e.CoercionFailures, e.LatencyMS)
		}

	case "cleanup":
		cleanupCmd := flag.NewFlagSet("metrics cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(args[1:])

		if err := a.Metrics.Cleanup(ctx, *days); err != nil {
			return err
		}
		fmt.Println("Old import events removed.")

	default:
		return fmt.Errorf("unknown metrics subcommand: %s", args[0])
	}
	return nil
}

func printShoppingList(a *app.App) {
	printShoppingListIDs(a, false)
}

func printShoppingListIDs(a *app.App, showIDs bool) {
	items, report := a.ShoppingList()
	if len(items) == 0 {
		fmt.Println("Nothing to buy. Assign some meals first.")
		return
	}
	for _, item := range items {
		mark := " "
		if item.Checked {
			mark = "x"
		}
		fmt.Printf("[%s] %-24s %10s %-8s (%s)", mark, item.Ingredient, item.Quantity, item.Unit, item.Source)
		if item.Notes != "" {
			fmt.Printf("  %s", item.Notes)
		}
		if showIDs {
			fmt.Printf("  id=%s", item.ID)
		}
		fmt.Println()
	}
	if report.CoercionFailures > 0 {
		fmt.Printf("\nWarning: %d ingredient(s) have non-numeric quantities and count as 0.\n", report.CoercionFailures)
	}
}

func writeOut(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Printf("Wrote %s.\n", path)
	return nil
}

func printUsage() {
	fmt.Println("Usage: mealweek <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  recipes    Manage the recipe catalog (list, add, edit, delete, delete-recipe, import, export)")
	fmt.Println("  plan       Manage the weekly plan (show, set, clear, resize)")
	fmt.Println("  shop       Compose and export the shopping list (list, add, check, import, export)")
	fmt.Println("  clip       Import a recipe from a URL (requires GEMINI_API_KEY)")
	fmt.Println("  metrics    Inspect import diagnostics (recent, cleanup; sqlite backend only)")
}
