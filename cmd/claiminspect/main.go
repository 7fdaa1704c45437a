// Command claiminspect dumps the contents of a claim database for offline
// inspection. It prints one line per region record and, with -ledgers, the
// claim block ledgers stored alongside them.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dm-vev/claimguard/guard/claim"
	"github.com/dm-vev/claimguard/guard/claimdb"
	"github.com/google/uuid"
)

func main() {
	dir := flag.String("dir", "claims", "claim database directory")
	world := flag.String("world", "world", "world to list the regions of")
	ledgers := flag.Bool("ledgers", false, "also print the ledgers of region owners")
	flag.Parse()

	db, err := claimdb.Open(*dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer db.Close()

	records, err := db.LoadRegions(*world)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for _, d := range records {
		fmt.Printf("%s type=%s owner=%s bounds=(%d,%d,%d)-(%d,%d,%d)", d.ID, d.Type, d.Owner,
			d.Min[0], d.Min[1], d.Min[2], d.Max[0], d.Max[1], d.Max[2])
		if d.Parent != uuid.Nil {
			fmt.Printf(" parent=%s", d.Parent)
		}
		if len(d.Flags) > 0 {
			fmt.Printf(" flags=%v", d.Flags)
		}
		fmt.Println()
		if *ledgers {
			printLedger(db, *world, d)
		}
	}
	fmt.Printf("%d regions\n", len(records))
}

func printLedger(db *claimdb.DB, world string, d claim.Data) {
	entry, found, err := db.LoadLedger(world, d.Owner)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  ledger: %v\n", err)
		return
	}
	if !found {
		return
	}
	fmt.Printf("  ledger: accrued=%d bonus=%d initial=%d spent=%d\n",
		entry.Accrued, entry.Bonus, entry.Initial, entry.Spent)
}
