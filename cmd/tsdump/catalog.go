package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/andreyvit/tsdb/catalog"
	"github.com/andreyvit/tsdb/tsdfile"
)

func addCatalogArg(cmd *kingpin.CmdClause) *string {
	return cmd.Arg("catalog", "catalog file").Required().String()
}

func (e *env) openCatalog(path string) (*catalog.Catalog, error) {
	return catalog.Open(path, catalog.Options{Logger: e.logger})
}

func catalogCommands(app *kingpin.Application) map[string]handler {
	cat := app.Command("catalog", "manage a catalog of databases")

	put := cat.Command("put", "store .tsd files in a catalog, keyed by database name")
	putCatalog := addCatalogArg(put)
	putFiles := put.Arg("files", "TSDB files").Required().Strings()

	ls := cat.Command("ls", "list stored databases")
	lsCatalog := addCatalogArg(ls)
	lsPrefix := ls.Flag("prefix", "only list names starting with this").String()

	get := cat.Command("get", "extract a stored database into a file")
	getCatalog := addCatalogArg(get)
	getName := get.Arg("name", "database name").Required().String()
	getOut := get.Arg("out", "output file").Required().String()

	rm := cat.Command("rm", "delete a stored database")
	rmCatalog := addCatalogArg(rm)
	rmName := rm.Arg("name", "database name").Required().String()

	stats := cat.Command("stats", "show catalog storage statistics")
	statsCatalog := addCatalogArg(stats)

	return map[string]handler{
		put.FullCommand(): func(e *env) error {
			c, err := e.openCatalog(*putCatalog)
			if err != nil {
				return err
			}
			defer c.Close()
			for _, path := range *putFiles {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				ent, err := c.PutRaw(data)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(e.stdout, "%s -> %s (%s)\n", path, ent.Name, humanize.Bytes(uint64(ent.Size)))
			}
			return nil
		},
		ls.FullCommand(): func(e *env) error {
			c, err := e.openCatalog(*lsCatalog)
			if err != nil {
				return err
			}
			defer c.Close()
			entries, err := c.ListPrefix(*lsPrefix)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tVERSION\tSIZE\tOBJECTS\tMODS\tSAVED")
			for _, ent := range entries {
				fmt.Fprintf(tw, "%s\t%d.%d\t%s\t%d\t%d\t%s\n", ent.Name, ent.Version>>8, ent.Version&0xFF,
					humanize.Bytes(uint64(ent.Size)), ent.ObjectCount, ent.ModCount, humanize.Time(ent.Saved))
			}
			return tw.Flush()
		},
		get.FullCommand(): func(e *env) error {
			c, err := e.openCatalog(*getCatalog)
			if err != nil {
				return err
			}
			defer c.Close()
			db, err := c.Get(*getName)
			if err != nil {
				return err
			}
			return tsdfile.WriteFile(*getOut, db, e.fileOptions())
		},
		rm.FullCommand(): func(e *env) error {
			c, err := e.openCatalog(*rmCatalog)
			if err != nil {
				return err
			}
			defer c.Close()
			return c.Delete(*rmName)
		},
		stats.FullCommand(): func(e *env) error {
			c, err := e.openCatalog(*statsCatalog)
			if err != nil {
				return err
			}
			defer c.Close()
			s, err := c.Stats()
			if err != nil {
				return err
			}
			fmt.Fprintf(e.stdout, "entries:  %d\n", s.Entries)
			fmt.Fprintf(e.stdout, "data:     %s (alloc %s)\n", humanize.Bytes(uint64(s.DataSize)), humanize.Bytes(uint64(s.DataAlloc)))
			fmt.Fprintf(e.stdout, "meta:     %s (alloc %s)\n", humanize.Bytes(uint64(s.MetaSize)), humanize.Bytes(uint64(s.MetaAlloc)))
			fmt.Fprintf(e.stdout, "file:     %s\n", humanize.Bytes(uint64(s.FileSize)))
			return nil
		},
	}
}
