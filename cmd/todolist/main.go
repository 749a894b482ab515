package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/selintasman/todo-list/internal/config"
	"github.com/selintasman/todo-list/internal/db"
	"github.com/selintasman/todo-list/internal/todo"
	"github.com/selintasman/todo-list/internal/tui"
	"github.com/selintasman/todo-list/internal/web"
)

func main() {
	configPathFlag := flag.String("config", "", "config file path (.json, .yaml or .yml)")
	journalFlag := flag.String("journal", "", "sqlite journal path (default in-memory)")
	webFlag := flag.Bool("web", false, "enable web server")
	webOnlyFlag := flag.Bool("web-only", false, "run web server only")
	portFlag := flag.Int("port", 0, "web server port")
	collapseFlag := flag.Bool("collapse-on-sort", false, "drop tasks hidden by the search when sorting")
	undatedLastFlag := flag.Bool("undated-last", false, "sort tasks without a finish date last")
	exportDirFlag := flag.String("export-dir", "", "directory for pdf exports")
	flag.Parse()

	cfgPath, err := resolveConfigPath(*configPathFlag)
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	if *journalFlag != "" {
		cfg.JournalPath = *journalFlag
	}
	if cfg.JournalPath == "" {
		cfg.JournalPath = db.MemoryPath
	}
	if *webFlag || *webOnlyFlag {
		cfg.WebEnabled = true
	}
	if *portFlag != 0 {
		cfg.WebPort = *portFlag
	}
	if cfg.WebPort == 0 {
		cfg.WebPort = 8080
	}
	if *collapseFlag {
		cfg.CollapseOnSort = true
	}
	if *undatedLastFlag {
		cfg.UndatedLast = true
	}
	if *exportDirFlag != "" {
		cfg.ExportDir = *exportDirFlag
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		log.Fatal(err)
	}

	journal, err := openJournal(cfg.JournalPath)
	if err != nil {
		log.Fatal(err)
	}
	defer journal.DB.Close()

	store := todo.NewStore(todo.Options{
		CollapseOnSort: cfg.CollapseOnSort,
		UndatedLast:    cfg.UndatedLast,
		OnEvent:        journal.Hook(context.Background()),
	})

	if cfg.WebEnabled {
		addr := fmt.Sprintf(":%d", cfg.WebPort)
		handler := web.NewServer(store, journal).Handler()
		if *webOnlyFlag {
			log.Printf("Web server running at http://localhost%s", addr)
			log.Fatal(http.ListenAndServe(addr, handler))
		}

		go func() {
			log.Printf("Web server running at http://localhost%s", addr)
			if err := http.ListenAndServe(addr, handler); err != nil {
				log.Printf("web server error: %v", err)
			}
		}()
	}

	if err := tui.Run(store, journal, tui.Options{ExportDir: cfg.ExportDir}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultConfigPath()
}

func openJournal(path string) (*db.Store, error) {
	if path != db.MemoryPath {
		if err := config.EnsureDir(path); err != nil {
			return nil, err
		}
	}

	sqlDB, err := db.Open(path)
	if err != nil {
		return nil, err
	}

	return db.NewStore(sqlDB), nil
}
