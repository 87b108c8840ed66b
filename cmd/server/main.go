package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"cajabooks/internal/cache"
	"cajabooks/internal/config"
	"cajabooks/internal/database"
	"cajabooks/internal/filestore"
	"cajabooks/internal/handlers"
	"cajabooks/internal/jobs"
	"cajabooks/internal/logger"
	"cajabooks/internal/refdata"
	"cajabooks/internal/version"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("Cajabooks %s (built %s, commit %s)\n",
			version.Version, version.BuildTime, version.GitCommit)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	logger.Init(cfg.Log.Level)
	log := logger.Default()

	// Without a database path the server runs memory-backed: closures are
	// kept in process and the import endpoints are disabled.
	var db *database.DB
	var ref *refdata.Service
	var files *filestore.Store
	var worker *jobs.Worker

	if cfg.Database.Path != "" {
		db, err = database.Open(cfg.Database.Path)
		if err != nil {
			log.Error("database_open_failed", "path", cfg.Database.Path, "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()

		if err := db.Init(); err != nil {
			log.Error("database_init_failed", "error", err.Error())
			os.Exit(1)
		}

		ref = refdata.New(db, cache.New(), time.Duration(cfg.Cache.TTLMs)*time.Millisecond)

		uploadsDir := cfg.Uploads.Dir
		if uploadsDir == "" {
			uploadsDir = filepath.Join(filepath.Dir(cfg.Database.Path), "uploads")
		}
		files, err = filestore.New(uploadsDir)
		if err != nil {
			log.Error("filestore_init_failed", "path", uploadsDir, "error", err.Error())
			os.Exit(1)
		}

		worker = jobs.NewWorker(db, log)
		worker.Register("import_expenses", jobs.ImportExpensesHandler(func(name string) (io.ReadCloser, error) {
			return files.Open(name)
		}, cfg.Import.BatchSize, cfg.Import.BatchDelayMs))
		worker.Start()
		defer worker.Stop()
	} else {
		log.Warn("no_database_configured", "mode", "memory")
	}

	h := handlers.New(db, ref, files, handlers.NewMemoryStore())
	router := handlers.NewRouter(h)

	log.Info("server_starting",
		"port", cfg.Server.Port,
		"address", "http://localhost:"+cfg.Server.Port,
		"version", version.Version,
	)
	if err := http.ListenAndServe(":"+cfg.Server.Port, router); err != nil {
		log.Error("server_failed", "error", err.Error())
		os.Exit(1)
	}
}
