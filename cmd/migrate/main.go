// Command migrate applies schema migrations against the configured database.
//
//	migrate [-dir db/migrations] up           apply all pending migrations
//	migrate [-dir db/migrations] down [N]     revert N migrations (default 1)
//	migrate [-dir db/migrations] version      print current version and dirty flag
//	migrate [-dir db/migrations] force V      mark version V clean after a failed run
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"templora/internal/config"
)

func main() {
	dir := flag.String("dir", "db/migrations", "migration source directory")
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	m, err := migrate.New("file://"+*dir, cfg.DB.DSN())
	if err != nil {
		log.Fatalf("opening migration source: %v", err)
	}
	defer m.Close()

	if err := run(m, flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func run(m *migrate.Migrate, args []string) error {
	switch args[0] {
	case "up":
		if err := m.Up(); errors.Is(err, migrate.ErrNoChange) {
			log.Println("schema already up to date")
		} else if err != nil {
			return fmt.Errorf("up: %w", err)
		} else {
			log.Println("schema migrated")
		}

	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return fmt.Errorf("down: invalid step count %q", args[1])
			}
			steps = n
		}
		if err := m.Steps(-steps); errors.Is(err, migrate.ErrNoChange) {
			log.Println("nothing to revert")
		} else if err != nil {
			return fmt.Errorf("down: %w", err)
		} else {
			log.Printf("reverted %d migration(s)", steps)
		}

	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Println("no migrations applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("version: %w", err)
		}
		log.Printf("version %d (dirty=%v)", version, dirty)

	case "force":
		if len(args) < 2 {
			return errors.New("force requires a version argument")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("force: invalid version %q", args[1])
		}
		if err := m.Force(v); err != nil {
			return fmt.Errorf("force: %w", err)
		}
		log.Printf("forced version to %d", v)

	default:
		return fmt.Errorf("unknown command %q (want up, down, version, or force)", args[0])
	}
	return nil
}
