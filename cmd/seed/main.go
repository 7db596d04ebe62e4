package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"legacyorders/database"
	"legacyorders/internal/config"
	"legacyorders/internal/metrics"
	ordersapp "legacyorders/internal/orders/application"
	"legacyorders/internal/orders/domain"
	ordersinfra "legacyorders/internal/orders/infrastructure"
	"legacyorders/internal/platform/logger"
	shareddomain "legacyorders/internal/shared/domain"
)

var (
	firstNames = []string{"Palmer", "Alice", "Bruno", "Chloé", "Dimitri", "Eva", "Farid", "Gaëlle", "Hugo", "Inès"}
	lastNames  = []string{"Prosacco", "Martin", "Bernard", "Dubois", "Thomas", "Robert", "Richard", "Petit", "Durand", "Leroy"}
)

// seedOptions paramètres du générateur
type seedOptions struct {
	users  int
	orders int
	seed   uint64
	start  time.Time
}

func main() {
	var (
		users    = flag.Int("users", 100, "nombre d'utilisateurs")
		orders   = flag.Int("orders", 10, "nombre de commandes par utilisateur")
		out      = flag.String("out", "data.txt", "fichier à générer")
		seed     = flag.Uint64("seed", 1, "graine du générateur")
		doImport = flag.Bool("import", false, "importer le fichier dans la base configurée")
	)
	flag.Parse()

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("❌ Erreur création fichier: %v", err)
	}
	lines, err := generate(f, seedOptions{
		users:  *users,
		orders: *orders,
		seed:   *seed,
		start:  time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		log.Fatalf("❌ Erreur génération: %v", err)
	}
	fmt.Printf("✅ %d lignes écrites dans %s\n", lines, *out)

	if !*doImport {
		return
	}
	if err := importFile(*out); err != nil {
		log.Fatalf("❌ Erreur import: %v", err)
	}
}

// generate écrit opts.users * opts.orders commandes de 1 à 4 produits, une ligne par produit
func generate(w io.Writer, opts seedOptions) (int, error) {
	rng := rand.New(rand.NewPCG(opts.seed, opts.seed))
	bw := bufio.NewWriter(w)

	count := 0
	orderID := int64(1)
	productID := int64(1)
	for u := 1; u <= opts.users; u++ {
		name := firstNames[rng.IntN(len(firstNames))] + " " + lastNames[rng.IntN(len(lastNames))]
		for o := 0; o < opts.orders; o++ {
			date := opts.start.AddDate(0, 0, rng.IntN(365)).Format(shareddomain.DateLayout)
			products := 1 + rng.IntN(4)
			for p := 0; p < products; p++ {
				value, err := shareddomain.NewMoney(decimal.New(rng.Int64N(500_000), -2))
				if err != nil {
					return count, err
				}
				raw, err := domain.FormatLine(domain.OrderLine{
					UserID:       int64(u),
					UserName:     name,
					OrderID:      orderID,
					ProductID:    productID,
					ProductValue: value,
					PurchaseDate: date,
				})
				if err != nil {
					return count, err
				}
				if _, err := bw.WriteString(raw + "\n"); err != nil {
					return count, err
				}
				productID++
				count++
			}
			orderID++
		}
	}
	return count, bw.Flush()
}

// importFile charge le fichier via le service d'import, comme un upload HTTP
func importFile(path string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	lg, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer lg.Sync()

	ctx := context.Background()
	db, dialect, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db, dialect); err != nil {
		return err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	svc := ordersapp.NewImportService(
		ordersapp.NewFileParser(lg, cfg.Import.StrictParsing),
		ordersinfra.NewSQLUnitOfWork(db, dialect),
		noopInvalidator{},
		metrics.NewRegistry(),
		lg,
		// pas de limite de taille hors HTTP
		ordersapp.ImportOptions{Workers: 1},
	)
	report, err := svc.ProcessFile(ctx, content)
	if err != nil {
		return err
	}
	fmt.Printf("✅ Import terminé: %d utilisateurs créés, %d commandes créées, %d ignorées\n",
		report.UsersCreated, report.OrdersCreated, report.OrdersSkipped)
	return nil
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate() {}
