// Command layouts inspects and seeds a layout repository file.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/loomlang/bespoke/layout"
	"github.com/loomlang/bespoke/layoutrepo"
)

func main() {
	var (
		repoPath = flag.String("repo", "", "Path to the layout repository file")
		list     = flag.Bool("list", false, "List stored layouts and exit")
		add      = flag.String("add", "", "Shapes to register, e.g. \"a,b,c;x,y\"")
		verbose  = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *repoPath == "" || (!*list && *add == "") {
		fmt.Fprintln(os.Stderr, "Usage: layouts -repo <file> -list")
		fmt.Fprintln(os.Stderr, "       layouts -repo <file> -add \"a,b,c;x,y\"")
		os.Exit(1)
	}

	if err := run(*repoPath, *add, *list, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(repoPath, add string, list, verbose bool) error {
	if verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		defer logger.Sync()
		layout.SetLogger(logger)
	}

	repo, err := layoutrepo.Open(repoPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	reg := layout.NewRegistry()
	if err := repo.Restore(reg); err != nil {
		return err
	}

	if add != "" {
		for _, shape := range strings.Split(add, ";") {
			keys := strings.Split(shape, ",")
			for i := range keys {
				keys[i] = strings.TrimSpace(keys[i])
			}
			l := reg.GetLayout(layout.InternKeys(keys...), true)
			if l == nil {
				return fmt.Errorf("cannot register shape %q", shape)
			}
			fmt.Printf("%#06x  %s\n", uint16(l.Index()), l)
		}
		if err := repo.Save(reg); err != nil {
			return err
		}
	}

	if list {
		reg.Each(func(l *layout.StructLayout) bool {
			fmt.Printf("%#06x  %s\n", uint16(l.Index()), l)
			return true
		})
		fmt.Printf("%d layouts, Top included\n", reg.NumLayouts())
	}
	return nil
}
