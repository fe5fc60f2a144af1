// Command storeds-bench drives a BigVector and an IterableTable through a
// mixed workload and reports per-phase timings. With -out it also snapshots
// both structures into a directory and reloads them.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/aglyzov/storeds/bigvector"
	"github.com/aglyzov/storeds/iterable"
)

type config struct {
	n          int
	bucketSize uint64
	seed       int64
	outDir     string
	verbose    bool
}

// parseFlags reports every error, with usage, to output.
func parseFlags(args []string, output io.Writer) (config, error) {
	var cfg config
	fl := flag.NewFlagSet("storeds-bench", flag.ContinueOnError)
	fl.SetOutput(output)
	fl.IntVar(&cfg.n, "n", 100000, "number of elements per structure")
	fl.Uint64Var(&cfg.bucketSize, "bucket", 1024, "BigVector page capacity")
	fl.Int64Var(&cfg.seed, "seed", 1, "seed for generated data")
	fl.StringVar(&cfg.outDir, "out", "", "directory for snapshots (skipped if empty)")
	fl.BoolVar(&cfg.verbose, "v", false, "log structural events")
	if err := fl.Parse(args); err != nil {
		return cfg, err
	}
	if cfg.n < 0 {
		err := errors.Newf("-n must not be negative, got %d", cfg.n)
		fmt.Fprintln(output, err)
		fl.Usage()
		return cfg, err
	}
	return cfg, nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(cfg, logger, os.Stdout); err != nil {
		logger.Error("benchmark failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg config, logger *slog.Logger, out io.Writer) error {
	var (
		fake    = gofakeit.New(cfg.seed)
		reports []*stats
	)

	vec, err := bigvector.Empty[uint64](cfg.bucketSize, bigvector.WithLogger[uint64](logger))
	if err != nil {
		return err
	}
	sts, err := benchVector(vec, cfg.n, fake)
	if err != nil {
		return errors.Wrap(err, "vector")
	}
	reports = append(reports, sts...)
	if err := vec.Verify(); err != nil {
		return err
	}

	tbl, err := iterable.New[string, string](iterable.WithLogger[string, string](logger))
	if err != nil {
		return err
	}
	sts, err = benchTable(tbl, cfg.n, fake)
	if err != nil {
		return errors.Wrap(err, "table")
	}
	reports = append(reports, sts...)
	if err := tbl.Verify(); err != nil {
		return err
	}

	if cfg.outDir != "" {
		if err := os.MkdirAll(cfg.outDir, 0755); err != nil {
			return err
		}
		fs := afero.NewBasePathFs(afero.NewOsFs(), cfg.outDir)
		st, err := roundTrip(fs, vec, tbl)
		if err != nil {
			return errors.Wrap(err, "snapshot")
		}
		reports = append(reports, st)
	}

	for _, st := range reports {
		st.Report(out)
	}
	logger.Info("done", "vector_len", vec.Len(), "table_len", tbl.Len())
	return nil
}

// randomIndex picks an index below n, which must be positive.
func randomIndex(fake *gofakeit.Faker, n uint64) uint64 {
	return uint64(fake.Number(0, int(n-1)))
}

func benchVector(vec *bigvector.Vector[uint64], n int, fake *gofakeit.Faker) ([]*stats, error) {
	push := newStats("vector push_back")
	for i := 0; i < n; i++ {
		if err := vec.PushBack(fake.Uint64()); err != nil {
			return nil, err
		}
		push.finishOp()
	}
	push.done()

	swap := newStats("vector swap")
	for i := 0; i < n && vec.Len() > 0; i++ {
		if err := vec.Swap(randomIndex(fake, vec.Len()), randomIndex(fake, vec.Len())); err != nil {
			return nil, err
		}
		swap.finishOp()
	}
	swap.done()

	swapRemove := newStats("vector swap_remove")
	for i := 0; i < n/4 && vec.Len() > 0; i++ {
		if _, err := vec.SwapRemove(randomIndex(fake, vec.Len())); err != nil {
			return nil, err
		}
		swapRemove.finishOp()
	}
	swapRemove.done()

	pop := newStats("vector pop_back")
	for i := 0; i < n/4 && vec.Len() > 0; i++ {
		if _, err := vec.PopBack(); err != nil {
			return nil, err
		}
		pop.finishOp()
	}
	pop.done()

	return []*stats{push, swap, swapRemove, pop}, nil
}

func benchTable(tbl *iterable.Table[string, string], n int, fake *gofakeit.Faker) ([]*stats, error) {
	keys := make([]string, 0, n)

	add := newStats("table add")
	for i := 0; i < n; i++ {
		key := uuid.NewString()
		if err := tbl.Add(key, fake.Word()); err != nil {
			return nil, err
		}
		keys = append(keys, key)
		add.finishOp()
	}
	add.done()

	remove := newStats("table remove")
	for i := 0; i < len(keys); i += 2 {
		if _, err := tbl.Remove(keys[i]); err != nil {
			return nil, err
		}
		remove.finishOp()
	}
	remove.done()

	walk := newStats("table traverse")
	tbl.Iter(func(string, string) bool {
		walk.finishOp()
		return true
	})
	walk.done()

	return []*stats{add, remove, walk}, nil
}

func roundTrip(fs afero.Fs, vec *bigvector.Vector[uint64], tbl *iterable.Table[string, string]) (*stats, error) {
	st := newStats("snapshot round trip")
	if err := vec.Save(fs, "vector.snap"); err != nil {
		return nil, err
	}
	if err := tbl.Save(fs, "table.snap"); err != nil {
		return nil, err
	}
	v2, err := bigvector.Load[uint64](fs, "vector.snap")
	if err != nil {
		return nil, err
	}
	t2, err := iterable.Load[string, string](fs, "table.snap")
	if err != nil {
		return nil, err
	}
	if v2.Len() != vec.Len() || t2.Len() != tbl.Len() {
		return nil, errors.Newf("reloaded sizes %d/%d, want %d/%d", v2.Len(), t2.Len(), vec.Len(), tbl.Len())
	}
	st.finishOp()
	st.done()
	return st, nil
}
