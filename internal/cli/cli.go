// Package cli is the command-line front end standing in for the
// presentation layer: each subcommand opens the store, sends one Command
// into a worker loop, and prints the Events that stream back until the
// worker drains.
package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dohuyhoang93/deepsearch-go/internal/config"
	"github.com/dohuyhoang93/deepsearch-go/internal/events"
	"github.com/dohuyhoang93/deepsearch-go/internal/store"
	"github.com/dohuyhoang93/deepsearch-go/internal/taskcontrol"
	"github.com/dohuyhoang93/deepsearch-go/internal/worker"
)

// Run dispatches args[0] to a subcommand.
func Run(args []string) error {
	if len(args) == 0 {
		return usage()
	}
	switch args[0] {
	case "version", "--version", "-v":
		return cmdVersion()
	case "scan":
		return cmdScan(args[1:])
	case "rescan":
		return cmdRescan(args[1:])
	case "search":
		return cmdSearch(args[1:])
	case "live-search":
		return cmdLiveSearch(args[1:])
	case "locations":
		return cmdLocations(args[1:])
	case "delete":
		return cmdDelete(args[1:])
	case "help", "-h", "--help":
		return usage()
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func usage() error {
	fmt.Println(`deepsearch commands: scan | rescan | search | live-search | locations | delete

Examples:
  deepsearch scan --path /home/user/docs
  deepsearch rescan --path /home/user/docs
  deepsearch search --keyword "bao cao"
  deepsearch live-search --path /home/user/docs --keyword invoice --content --plain-text
  deepsearch locations
  deepsearch delete --path /home/user/docs`)
	return nil
}

func openStore() (*store.Store, error) {
	return store.Open(config.DefaultDBPath())
}

func resolveRoot(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("--path is required")
	}
	return filepath.Abs(path)
}

// dispatch runs one command through a worker loop over the Command/Event
// channel pair, printing events as they arrive. The first Error event is
// also returned so the process can exit non-zero.
func dispatch(st *store.Store, cmd events.Command) error {
	commandCh := make(chan events.Command, 1)
	eventCh := make(chan events.Event, 64)
	commandCh <- cmd
	close(commandCh)

	go worker.New(st, nil).Run(commandCh, eventCh)

	var firstErr error
	for e := range eventCh {
		printEvent(e)
		if ev, ok := e.(events.Error); ok && firstErr == nil {
			firstErr = fmt.Errorf("%s", ev.Message)
		}
	}
	return firstErr
}

func printEvent(e events.Event) {
	switch ev := e.(type) {
	case events.ScanProgress:
		fmt.Printf("\r[%3.0f%%] %s", ev.Fraction*100, ev.Status)
	case events.ScanCompleted:
		fmt.Printf("\ndone: %d records\n", ev.FinalCount)
	case events.SearchResultsBatch:
		for _, r := range ev.Results {
			fmt.Printf("%s [%s]\n", r.AbsolutePath, r.IconTag)
		}
	case events.LiveSearchResultsBatch:
		for _, h := range ev.Hits {
			fmt.Printf("%s:%d: %s\n", h.Path, h.Line, h.Snippet)
		}
	case events.SearchFinished:
		fmt.Println("search finished")
	case events.LocationsUpdated:
		for _, l := range ev.Locations {
			fmt.Printf("%s\t%s\t%d records\n", l.Root, l.Table, l.RecordCount)
		}
	case events.Error:
		fmt.Fprintf(os.Stderr, "error: %s\n", ev.Message)
	}
}

func cmdScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	path := fs.String("path", "", "root directory to index")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rootPath, err := resolveRoot(*path)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	return dispatch(st, events.StartInitialScan{Path: rootPath, Controller: taskcontrol.New()})
}

func cmdRescan(args []string) error {
	fs := flag.NewFlagSet("rescan", flag.ContinueOnError)
	path := fs.String("path", "", "previously indexed root to rebuild")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rootPath, err := resolveRoot(*path)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	return dispatch(st, events.StartRescan{Path: rootPath, Controller: taskcontrol.New()})
}

func cmdSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	keyword := fs.String("keyword", "", "search keyword")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*keyword) == "" {
		return fmt.Errorf("search: --keyword is required")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	locs, err := st.ListLocations()
	if err != nil {
		return err
	}
	searchLocations := make([]events.SearchLocation, 0, len(locs))
	for _, l := range locs {
		searchLocations = append(searchLocations, events.SearchLocation{Root: l.Root, Table: l.Table})
	}

	return dispatch(st, events.StartSearch{
		Locations:  searchLocations,
		Keyword:    *keyword,
		Controller: taskcontrol.New(),
	})
}

func cmdLiveSearch(args []string) error {
	fs := flag.NewFlagSet("live-search", flag.ContinueOnError)
	path := fs.String("path", "", "root directory to search live")
	keyword := fs.String("keyword", "", "search keyword")
	content := fs.Bool("content", false, "search file content instead of names")
	pdf := fs.Bool("pdf", false, "include .pdf files in content search")
	office := fs.Bool("office", false, "include .docx/.xlsx files in content search")
	plainText := fs.Bool("plain-text", false, "include plain-text files in content search")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rootPath, err := resolveRoot(*path)
	if err != nil {
		return err
	}
	if strings.TrimSpace(*keyword) == "" {
		return fmt.Errorf("live-search: --keyword is required")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	return dispatch(st, events.StartSearch{
		Keyword:           *keyword,
		LiveActive:        true,
		LivePath:          rootPath,
		SearchInContent:   *content,
		SearchInPDF:       *pdf,
		SearchInOffice:    *office,
		SearchInPlainText: *plainText,
		Controller:        taskcontrol.New(),
	})
}

func cmdLocations(args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	return dispatch(st, events.FetchLocations{})
}

func cmdDelete(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	path := fs.String("path", "", "indexed root to remove")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rootPath, err := resolveRoot(*path)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	return dispatch(st, events.DeleteLocation{Path: rootPath})
}
