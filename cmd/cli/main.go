package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"golact/adapters/characteristics"
	"golact/adapters/excel"
	"golact/adapters/fitting"
	"golact/adapters/icar"
	"golact/adapters/milkbot"
	"golact/adapters/postgres"
	"golact/domain/lactation"
	"golact/domain/model"
	"golact/internal"
	"golact/internal/config"
	"golact/ports"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "golact",
		Short: "Lactation curve fitting and 305-day yield estimation",
	}

	rootCmd.AddCommand(
		newModelsCmd(),
		newFitCmd(),
		newTestIntervalCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List available lactation curve models",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("=== LACTATION CURVE MODELS ===")
			for _, spec := range model.All() {
				fit := ""
				if spec.Fittable {
					fit = " (fittable)"
				}
				fmt.Printf("%-14s params: %v%s\n", spec.Name, spec.Params, fit)
			}
		},
	}
}

func newFitCmd() *cobra.Command {
	var (
		modelName      string
		fitMode        string
		breed          string
		parity         int
		region         string
		priors         string
		milkbotMethod  string
		characteristic string
		persistency    string
		length         string
	)

	cmd := &cobra.Command{
		Use:   "fit [data-file]",
		Short: "Fit a lactation curve model to test-day data",
		Long: `Fit a lactation curve to test-day records from an .xlsx or .csv file.

Bayesian fitting uses the hosted MilkBot service and reads the API key from
MILKBOT_API_KEY.

Example: golact fit herd.xlsx --model wood --characteristic time_to_peak`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFit(cmd.Context(), args[0], lactation.RawInput{
				Model:             modelName,
				Fitting:           fitMode,
				Breed:             breed,
				Parity:            parity,
				Region:            region,
				Priors:            priors,
				PersistencyMethod: persistency,
				LactationLength:   length,
			}, milkbotMethod, characteristic)
		},
	}

	cmd.Flags().StringVar(&modelName, "model", "wood", "Model name (see 'golact models')")
	cmd.Flags().StringVar(&fitMode, "fitting", "frequentist", "Fitting mode: frequentist|bayesian")
	cmd.Flags().StringVar(&breed, "breed", "", "Breed for Bayesian priors: H|J")
	cmd.Flags().IntVar(&parity, "parity", 0, "Parity for Bayesian priors")
	cmd.Flags().StringVar(&region, "region", "", "Prior region: USA|EU")
	cmd.Flags().StringVar(&priors, "priors", "", "Prior set token (CHEN)")
	cmd.Flags().StringVar(&milkbotMethod, "milkbot-method", "", "MilkBot frequentist path: minimize|least_squares")
	cmd.Flags().StringVar(&characteristic, "characteristic", "", "Also compute one characteristic, or 'all'")
	cmd.Flags().StringVar(&persistency, "persistency-method", "", "Persistency method: derived|literature")
	cmd.Flags().StringVar(&length, "lactation-length", "", "Lactation length in days, or 'max'")

	return cmd
}

func runFit(ctx context.Context, path string, raw lactation.RawInput, milkbotMethod, characteristic string) error {
	reader := excel.NewRecordReader()
	records, err := reader.Read(path)
	if err != nil {
		return err
	}

	raw.Days = make([]float64, len(records))
	raw.Yields = make([]float64, len(records))
	for i, r := range records {
		raw.Days[i] = r.Day
		raw.Yields[i] = r.Yield
	}

	in, err := lactation.PrepareInputs(raw)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	mbClient := milkbot.NewClient(milkbot.Config{
		BaseURL:   cfg.MilkBot.BaseURL,
		EUBaseURL: cfg.MilkBot.EUBaseURL,
		Timeout:   cfg.MilkBot.Timeout,
	})
	fits := fitting.NewEngine(mbClient)
	opts := fitting.FitOptions{
		APIKey:        cfg.MilkBot.APIKey,
		MilkBotMethod: fitting.MilkBotMethod(milkbotMethod),
	}

	spec, params, err := fits.FitCurveParameters(ctx, in, opts)
	if err != nil {
		return err
	}

	fmt.Printf("=== FITTED PARAMETERS (%s, %d points) ===\n", spec.Name, len(in.Days))
	for i, name := range spec.Params {
		fmt.Printf("%-4s %.6f\n", name, params[i])
	}

	if characteristic == "" {
		return nil
	}

	chars := characteristics.NewEngine(characteristics.NewCache(), fits)
	fmt.Printf("\n=== CHARACTERISTICS ===\n")
	if characteristic == "all" {
		values, err := chars.CalculateAll(ctx, in, opts)
		if err != nil {
			return err
		}
		for _, ch := range []characteristics.Characteristic{
			characteristics.TimeToPeak,
			characteristics.PeakYield,
			characteristics.CumulativeMilkYield,
			characteristics.Persistency,
		} {
			fmt.Printf("%-24s %.4f\n", ch, values[ch])
		}
		return nil
	}

	value, err := chars.Calculate(ctx, in, characteristic, opts)
	if err != nil {
		return err
	}
	fmt.Printf("%-24s %.4f\n", characteristic, value)
	return nil
}

func newTestIntervalCmd() *cobra.Command {
	var persist bool

	cmd := &cobra.Command{
		Use:   "test-interval [data-file]",
		Short: "Estimate 305-day yields with the ICAR Test Interval Method",
		Long: `Estimate accumulated 305-day milk yield per lactation from sparse
test-day records in an .xlsx or .csv file.

Example: golact test-interval herd.xlsx --persist`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTestInterval(cmd.Context(), args[0], persist)
		},
	}

	cmd.Flags().BoolVar(&persist, "persist", false, "Store records and totals in the database (DATABASE_URL)")

	return cmd
}

func runTestInterval(ctx context.Context, path string, persist bool) error {
	reader := excel.NewRecordReader()
	records, err := reader.Read(path)
	if err != nil {
		return err
	}

	calc := icar.NewCalculator(internal.DefaultLogger)
	yields, err := calc.Estimate(ctx, records)
	if err != nil {
		return err
	}

	fmt.Printf("=== 305-DAY YIELD ESTIMATES (%d lactations) ===\n", len(yields))
	for _, y := range yields {
		fmt.Printf("%-12s %.1f\n", y.LactationID, y.Total)
	}

	if !persist {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("--persist requires DATABASE_URL")
	}
	db, err := postgres.Connect(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return err
	}

	var repo ports.YieldRepository = postgres.NewYieldRepository(db)
	if err := repo.SaveRecords(ctx, records); err != nil {
		return err
	}
	if err := repo.SaveYields(ctx, yields); err != nil {
		return err
	}
	fmt.Printf("\nSaved %d records and %d totals\n", len(records), len(yields))
	return nil
}
