// Command tsdump inspects TSDB files and manages TSDB catalogs.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/andreyvit/tsdb"
	"github.com/andreyvit/tsdb/tsdfile"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type env struct {
	stdout io.Writer
	logger *slog.Logger
}

func (e *env) fileOptions() tsdfile.Options {
	return tsdfile.Options{Logger: e.logger}
}

type handler func(e *env) error

func run(args []string, stdout, stderr io.Writer) int {
	app := kingpin.New("tsdump", "Inspect TSDB files and catalogs.")
	app.HelpFlag.Short('h')
	app.UsageWriter(stdout)
	app.ErrorWriter(stderr)
	exited := false
	app.Terminate(func(int) { exited = true })
	verbose := app.Flag("verbose", "log debug output to stderr").Short('v').Bool()

	handlers := map[string]handler{}
	for _, install := range []func(app *kingpin.Application) map[string]handler{
		fileCommands,
		catalogCommands,
	} {
		for name, h := range install(app) {
			handlers[name] = h
		}
	}

	cmd, err := app.Parse(args)
	if exited {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "tsdump: %v\n", err)
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	e := &env{
		stdout: stdout,
		logger: slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})),
	}
	if err := handlers[cmd](e); err != nil {
		fmt.Fprintf(stderr, "tsdump: %v\n", err)
		return 1
	}
	return 0
}

func fileCommands(app *kingpin.Application) map[string]handler {
	info := app.Command("info", "show a file's header summary")
	infoFile := info.Arg("file", "TSDB file").Required().String()

	dump := app.Command("dump", "print a file's whole tree")
	dumpFile := dump.Arg("file", "TSDB file").Required().String()
	dumpFormat := dump.Flag("format", "output format").Short('f').Default("text").Enum("text", "json", "msgpack", "cbor")

	example := app.Command("example", "write a small example database")
	exampleFile := example.Arg("file", "output file").Required().String()

	return map[string]handler{
		info.FullCommand(): func(e *env) error {
			db, err := tsdfile.ReadFile(*infoFile, e.fileOptions())
			if err != nil {
				return err
			}
			fmt.Fprintf(e.stdout, "name:     %s\n", db.Name())
			fmt.Fprintf(e.stdout, "version:  %d.%d\n", db.Major(), db.Minor())
			fmt.Fprintf(e.stdout, "size:     %s (%d bytes)\n", humanize.Bytes(uint64(db.Size())), db.Size())
			fmt.Fprintf(e.stdout, "objects:  %d\n", db.ObjectCount())
			return nil
		},
		dump.FullCommand(): func(e *env) error {
			db, err := tsdfile.ReadFile(*dumpFile, e.fileOptions())
			if err != nil {
				return err
			}
			return writeDump(e.stdout, db, *dumpFormat)
		},
		example.FullCommand(): func(e *env) error {
			return tsdfile.WriteFile(tsdfile.WithExt(*exampleFile), exampleDatabase(), e.fileOptions())
		},
	}
}

var cborEncMode = func() cbor.EncMode {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

func writeDump(w io.Writer, db *tsdb.Database, format string) error {
	var out []byte
	var err error
	switch format {
	case "text":
		_, err = io.WriteString(w, tsdb.Dump(db))
		return err
	case "json":
		out, err = json.MarshalIndent(tsdb.Export(db), "", "  ")
		out = append(out, '\n')
	case "msgpack":
		out, err = msgpack.Marshal(tsdb.Export(db))
	case "cbor":
		out, err = cborEncMode.Marshal(tsdb.Export(db))
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", format, err)
	}
	_, err = w.Write(out)
	return err
}

func exampleDatabase() *tsdb.Database {
	return tsdb.NewDatabase("Example").Add(
		tsdb.NewObject("Example").Add(
			tsdb.Int32Field("Example Variable", 12),
			tsdb.StringArray("strings", []string{"string", "string two!"}),
			tsdb.NewObject("Transformation").Add(
				tsdb.Vector3Field("Position", tsdb.Vector3{}),
				tsdb.QuaternionField("Rotation", tsdb.Quaternion{W: 1}),
				tsdb.Vector3Field("Scale", tsdb.Vector3{X: 1, Y: 1, Z: 1}),
			),
		),
	)
}
