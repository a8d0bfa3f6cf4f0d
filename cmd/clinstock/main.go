// cmd/clinstock/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"text/tabwriter"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/clinvita/clinstock/internal/cache"
	"github.com/clinvita/clinstock/internal/config"
	"github.com/clinvita/clinstock/internal/domain"
	"github.com/clinvita/clinstock/internal/repository"
	"github.com/clinvita/clinstock/internal/repository/postgres"
	"github.com/clinvita/clinstock/internal/service"
	"github.com/clinvita/clinstock/internal/storage"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "db-url",
		Usage:   "Database connection string",
		EnvVars: []string{"DATABASE_URL"},
	}
}

// services bundles everything a CLI command can need. Built lazily per
// invocation; the CLI is a batch tool, not a daemon.
type services struct {
	db      *postgres.DB
	verify  *service.VerifyService
	reports *service.ReportService
	imports *service.ImportService
}

func connect(c *cli.Context) (*services, error) {
	cfg := config.Load()

	url := c.String("db-url")
	if url == "" {
		url = cfg.Database.URL()
	}

	sqlxDB, err := sqlx.Connect("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db := postgres.Wrap(sqlxDB)

	var archive storage.ObjectStorage
	if cfg.Storage.Endpoint != "" {
		client, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to configure import archive: %w", err)
		}
		if err := client.EnsureBucket(c.Context); err != nil {
			return nil, err
		}
		archive = client
	}

	catalogRepo := postgres.NewCatalogRepository(db)
	movementRepo := postgres.NewMovementRepository(db)
	lotRepo := postgres.NewLotRepository(db)
	demandRepo := postgres.NewDemandRepository(db)
	paramsRepo := postgres.NewParamsRepository(db)

	verifySvc := service.NewVerifyService(catalogRepo, movementRepo, lotRepo, demandRepo, paramsRepo, cache.NewNoopReportCache(), cfg.Replenish)
	return &services{
		db:      db,
		verify:  verifySvc,
		reports: service.NewReportService(verifySvc, lotRepo, demandRepo),
		imports: service.NewImportService(catalogRepo, movementRepo, lotRepo, verifySvc, archive),
	}, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "clinstock",
		Usage: "Clinic stock replenishment toolkit",
		Flags: []cli.Flag{newDBURLFlag()},
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Apply pending schema migrations",
				Flags: []cli.Flag{newDBURLFlag()},
				Action: func(c *cli.Context) error {
					svc, err := connect(c)
					if err != nil {
						return err
					}
					defer svc.db.Close()
					return postgres.Migrate(c.Context, svc.db)
				},
			},
			{
				Name:  "import",
				Usage: "Import a spreadsheet",
				Subcommands: []*cli.Command{
					importCommand("catalog", "Import the product catalog sheet",
						func(svc *services, c *cli.Context, path string) error {
							return svc.imports.ImportCatalog(c.Context, path)
						}),
					importCommand("entries", "Import a stock entries sheet",
						func(svc *services, c *cli.Context, path string) error {
							return svc.imports.ImportEntries(c.Context, path)
						}),
					importCommand("exits", "Import a stock exits sheet",
						func(svc *services, c *cli.Context, path string) error {
							return svc.imports.ImportExits(c.Context, path)
						}),
				},
			},
			{
				Name:  "params",
				Usage: "Inspect or change the replenishment parameters",
				Subcommands: []*cli.Command{
					{
						Name:  "get",
						Usage: "Show the resolved parameters",
						Flags: []cli.Flag{newDBURLFlag()},
						Action: func(c *cli.Context) error {
							svc, err := connect(c)
							if err != nil {
								return err
							}
							defer svc.db.Close()

							params, err := svc.verify.ResolveParams(c.Context)
							if err != nil {
								return err
							}
							fmt.Printf("service level:      %g\n", params.ServiceLevel)
							fmt.Printf("lead time mean:     %g days\n", params.LeadTimeMean)
							fmt.Printf("lead time std dev:  %g days\n", params.LeadTimeStdDev)
							return nil
						},
					},
					{
						Name:  "set",
						Usage: "Store one or more parameters",
						Flags: []cli.Flag{
							newDBURLFlag(),
							&cli.Float64Flag{Name: "service-level", Usage: "Target service level in (0,1)"},
							&cli.Float64Flag{Name: "lead-time-mean", Usage: "Mean replenishment lead time in days"},
							&cli.Float64Flag{Name: "lead-time-stddev", Usage: "Lead time standard deviation in days"},
						},
						Action: func(c *cli.Context) error {
							svc, err := connect(c)
							if err != nil {
								return err
							}
							defer svc.db.Close()

							set := false
							pairs := map[string]string{
								"service-level":    repository.ParamServiceLevel,
								"lead-time-mean":   repository.ParamLeadTimeMean,
								"lead-time-stddev": repository.ParamLeadTimeStdDev,
							}
							for flag, key := range pairs {
								if !c.IsSet(flag) {
									continue
								}
								if err := svc.verify.SetParam(c.Context, key, c.Float64(flag)); err != nil {
									return err
								}
								set = true
							}
							if !set {
								return fmt.Errorf("nothing to set, pass at least one parameter flag")
							}
							return nil
						},
					},
				},
			},
			{
				Name:  "rebuild-demand",
				Usage: "Regenerate the daily and monthly demand aggregates",
				Flags: []cli.Flag{newDBURLFlag()},
				Action: func(c *cli.Context) error {
					svc, err := connect(c)
					if err != nil {
						return err
					}
					defer svc.db.Close()
					return svc.verify.RebuildDemand(c.Context)
				},
			},
			{
				Name:  "verify",
				Usage: "Run the replenishment check over the whole catalog",
				Flags: []cli.Flag{newDBURLFlag()},
				Action: func(c *cli.Context) error {
					svc, err := connect(c)
					if err != nil {
						return err
					}
					defer svc.db.Close()

					rows, err := svc.verify.Run(c.Context)
					if err != nil {
						return err
					}
					printReportRows(rows)
					return nil
				},
			},
			{
				Name:  "report",
				Usage: "Operational reports",
				Subcommands: []*cli.Command{
					{
						Name:  "rupture",
						Usage: "Products at risk of stockout",
						Flags: []cli.Flag{
							newDBURLFlag(),
							&cli.Float64Flag{Name: "days", Value: 7, Usage: "Coverage horizon in days"},
						},
						Action: func(c *cli.Context) error {
							svc, err := connect(c)
							if err != nil {
								return err
							}
							defer svc.db.Close()

							rows, err := svc.reports.RuptureAlert(c.Context, c.Float64("days"))
							if err != nil {
								return err
							}
							printReportRows(rows)
							return nil
						},
					},
					{
						Name:  "replenishment",
						Usage: "Products at or below their reorder point",
						Flags: []cli.Flag{newDBURLFlag()},
						Action: func(c *cli.Context) error {
							svc, err := connect(c)
							if err != nil {
								return err
							}
							defer svc.db.Close()

							rows, err := svc.reports.ReplenishmentList(c.Context)
							if err != nil {
								return err
							}
							printReportRows(rows)
							return nil
						},
					},
					{
						Name:  "expiring",
						Usage: "Lots expiring soon",
						Flags: []cli.Flag{
							newDBURLFlag(),
							&cli.IntFlag{Name: "days", Value: 30, Usage: "Expiry window in days"},
						},
						Action: func(c *cli.Context) error {
							svc, err := connect(c)
							if err != nil {
								return err
							}
							defer svc.db.Close()

							lots, err := svc.reports.ExpiringLots(c.Context, c.Int("days"))
							if err != nil {
								return err
							}
							w := newTable()
							fmt.Fprintln(w, "CODE\tLOT\tEXPIRES\tDAYS LEFT")
							for _, l := range lots {
								fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", l.Code, l.Lot, l.ExpiresAt, l.DaysLeft)
							}
							return w.Flush()
						},
					},
					{
						Name:  "top-consumed",
						Usage: "Most consumed products over a month range",
						Flags: []cli.Flag{
							newDBURLFlag(),
							&cli.StringFlag{Name: "from", Usage: "Start month (YYYY-MM, inclusive)"},
							&cli.StringFlag{Name: "to", Usage: "End month (YYYY-MM, inclusive)"},
							&cli.IntFlag{Name: "limit", Value: 20, Usage: "Number of products to show"},
						},
						Action: func(c *cli.Context) error {
							svc, err := connect(c)
							if err != nil {
								return err
							}
							defer svc.db.Close()

							totals, err := svc.reports.TopConsumed(c.Context, c.String("from"), c.String("to"), c.Int("limit"))
							if err != nil {
								return err
							}
							w := newTable()
							fmt.Fprintln(w, "CODE\tUNIT\tTOTAL")
							for _, t := range totals {
								fmt.Fprintf(w, "%s\t%s\t%s\n", t.Code, t.Unit, formatFloat(t.Quantity))
							}
							return w.Flush()
						},
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

type importAction func(svc *services, c *cli.Context, path string) error

func importCommand(name, usage string, run importAction) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: []cli.Flag{
			newDBURLFlag(),
			&cli.StringFlag{Name: "file", Usage: "Path to the XLSX file", Required: true},
		},
		Action: func(c *cli.Context) error {
			svc, err := connect(c)
			if err != nil {
				return err
			}
			defer svc.db.Close()
			return run(svc, c, c.String("file"))
		},
	}
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

func printReportRows(rows []domain.ReportRow) {
	w := newTable()
	fmt.Fprintln(w, "CODE\tNAME\tUNIT\tSTOCK\tROP\tSS\tSUGGESTED\tCOVERAGE\tSTATUS\tREASON")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Code, r.Name, r.TargetUnit,
			formatOptional(r.CurrentStock),
			formatOptional(r.ReorderPoint),
			formatOptional(r.SafetyStock),
			formatOptional(r.SuggestedPresent),
			formatOptional(r.CoverageDays),
			r.Status, r.Reason,
		)
	}
	w.Flush()
	fmt.Printf("\n%d products\n", len(rows))
}

func formatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
